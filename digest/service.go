package digest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/JerryLinyx/newsdigest/news"
	"github.com/JerryLinyx/newsdigest/store"
)

var ErrNoNotifiers = errors.New("no delivery channel configured")

type Aggregator interface {
	Aggregate(ctx context.Context, categories []news.CategorySpec) (*news.AggregationResult, error)
}

type Archiver interface {
	SaveRun(ctx context.Context, res *news.AggregationResult, info store.RunInfo) (string, error)
}

// Service runs aggregate -> render -> deliver -> archive once per call.
type Service struct {
	aggregator Aggregator
	categories []news.CategorySpec
	subject    string
	notifiers  []Notifier
	archive    Archiver
}

func NewService(agg Aggregator, categories []news.CategorySpec, subject string, notifiers []Notifier, archive Archiver) *Service {
	return &Service{
		aggregator: agg,
		categories: categories,
		subject:    subject,
		notifiers:  notifiers,
		archive:    archive,
	}
}

// Report summarizes a run.
type Report struct {
	RunID     string           `json:"run_id,omitempty"`
	Articles  int              `json:"articles"`
	Delivered []string         `json:"delivered"`
	Failed    map[string]error `json:"-"`
}

// FailedMessages is Failed in a JSON-friendly shape.
func (r *Report) FailedMessages() map[string]string {
	out := make(map[string]string, len(r.Failed))
	for name, err := range r.Failed {
		out[name] = err.Error()
	}
	return out
}

// Render aggregates and renders without delivering.
func (s *Service) Render(ctx context.Context) (*Digest, error) {
	res, err := s.aggregator.Aggregate(ctx, s.categories)
	if err != nil {
		return nil, fmt.Errorf("aggregating news: %w", err)
	}
	return Build(res, s.subject)
}

// Run delivers the digest through every notifier. It fails only when
// aggregation fails or no channel accepted the digest.
func (s *Service) Run(ctx context.Context, trigger string) (*Report, error) {
	if len(s.notifiers) == 0 {
		return nil, ErrNoNotifiers
	}
	d, err := s.Render(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Articles: len(d.Result.Articles()),
		Failed:   make(map[string]error),
	}
	var errs []error
	for _, n := range s.notifiers {
		if err := n.Deliver(ctx, d); err != nil {
			log.Printf("digest delivery via %s failed: %v", n.Name(), err)
			report.Failed[n.Name()] = err
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		report.Delivered = append(report.Delivered, n.Name())
	}

	if s.archive != nil {
		info := store.RunInfo{Trigger: trigger, Delivered: strings.Join(report.Delivered, ",")}
		if len(errs) > 0 {
			info.Error = errors.Join(errs...).Error()
		}
		runID, err := s.archive.SaveRun(ctx, d.Result, info)
		if err != nil {
			log.Printf("archiving digest run: %v", err)
		}
		report.RunID = runID
	}

	if len(report.Delivered) == 0 {
		return report, errors.Join(errs...)
	}
	return report, nil
}
