package cmd

import (
	"context"
	"log"

	"github.com/JerryLinyx/newsdigest/cache"
	"github.com/JerryLinyx/newsdigest/config"
	"github.com/JerryLinyx/newsdigest/controllers"
	"github.com/JerryLinyx/newsdigest/digest"
	"github.com/JerryLinyx/newsdigest/news"
	"github.com/JerryLinyx/newsdigest/providers"
	"github.com/JerryLinyx/newsdigest/store"
	"github.com/JerryLinyx/newsdigest/summarizer"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// app holds the components shared by every command.
type app struct {
	cfg        *config.Config
	provider   news.Provider
	aggregator *news.Aggregator
	redis      *redis.Client
	db         *gorm.DB
	archive    *store.Archive
}

func newApp(cfg *config.Config) (*app, error) {
	provider, err := providers.New(providers.Options{
		Kind:     cfg.News.Provider,
		APIKey:   cfg.News.APIKey,
		BaseURL:  cfg.News.BaseURL,
		Language: cfg.News.Language,
		Country:  cfg.News.Country,
		Timeout:  cfg.News.Timeout,
	})
	if err != nil {
		return nil, err
	}

	var sum news.Summarizer = summarizer.Truncating{}
	if cfg.Summarizer.Enabled {
		sum = summarizer.New(summarizer.Options{
			URL:           cfg.Summarizer.URL,
			Token:         cfg.Summarizer.Token,
			Timeout:       cfg.Summarizer.Timeout,
			MaxInputChars: cfg.Summarizer.MaxInputChars,
			FallbackChars: cfg.Summarizer.FallbackChars,
			MinLength:     cfg.Summarizer.MinLength,
			MaxLength:     cfg.Summarizer.MaxLength,
		})
	}

	a := &app{
		cfg:      cfg,
		provider: provider,
		aggregator: news.NewAggregator(
			news.NewFetcher(provider, cfg.RecencyWindow()),
			sum,
			news.WithArticlesPerCategory(cfg.Aggregator.ArticlesPerCategory),
			news.WithConcurrency(cfg.Aggregator.Concurrency),
		),
	}

	if cfg.Redis.Enabled {
		client, err := config.InitRedis(cfg.Redis)
		if err != nil {
			log.Printf("redis unavailable, serving without cache: %v", err)
		} else {
			a.redis = client
		}
	}

	if cfg.Database.Enabled {
		db, err := config.InitDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := config.MigrateDB(db); err != nil {
			return nil, err
		}
		a.db = db
		a.archive = store.NewArchive(db)
	}

	log.Printf("news provider %s, %d categories, summarizer enabled=%v", provider.Name(), len(cfg.Categories), cfg.Summarizer.Enabled)
	return a, nil
}

// notifiers builds the configured delivery channels. recipients overrides
// the configured email recipients when non-empty.
func (a *app) notifiers(recipients []string) ([]digest.Notifier, error) {
	var out []digest.Notifier
	if a.cfg.RequireEmail() == nil {
		if len(recipients) == 0 {
			recipients = a.cfg.Email.Recipients
		}
		out = append(out, digest.NewEmail(digest.EmailOptions{
			Host:       a.cfg.Email.Host,
			Port:       a.cfg.Email.Port,
			Address:    a.cfg.Email.Address,
			Password:   a.cfg.Email.Password,
			Recipients: recipients,
		}))
	}
	if a.cfg.TelegramEnabled() {
		tg, err := digest.NewTelegram(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID)
		if err != nil {
			return nil, err
		}
		out = append(out, tg)
	}
	return out, nil
}

func (a *app) digestService(notifiers []digest.Notifier) *digest.Service {
	var archive digest.Archiver
	if a.archive != nil {
		archive = a.archive
	}
	return digest.NewService(a.aggregator, a.cfg.Categories, a.cfg.Email.Subject, notifiers, archive)
}

func (a *app) envelopeCache() controllers.EnvelopeCache {
	if a.redis == nil {
		return nil
	}
	return cache.NewRedis(a.redis, a.cfg.Redis.TTL)
}

func (a *app) healthChecks() map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		}
	}
	if a.db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	return checks
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("closing redis: %v", err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("closing database: %v", err)
			}
		}
	}
}
