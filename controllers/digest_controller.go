package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/JerryLinyx/newsdigest/digest"
	"github.com/JerryLinyx/newsdigest/models"
	"github.com/JerryLinyx/newsdigest/store"
	"github.com/gin-gonic/gin"
)

type DigestRunner interface {
	Run(ctx context.Context, trigger string) (*digest.Report, error)
}

type RunStore interface {
	ListRuns(ctx context.Context, limit int) ([]models.DigestRun, error)
	GetRun(ctx context.Context, runID string) (*models.DigestRun, error)
}

type DigestController struct {
	runner  DigestRunner
	archive RunStore
}

func NewDigestController(runner DigestRunner, archive RunStore) *DigestController {
	return &DigestController{runner: runner, archive: archive}
}

// Send aggregates and delivers a digest immediately.
func (d *DigestController) Send(c *gin.Context) {
	report, err := d.runner.Run(c.Request.Context(), "api")
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, digest.ErrNoNotifiers) {
			status = http.StatusServiceUnavailable
		}
		body := gin.H{"success": false, "error": err.Error()}
		if report != nil {
			body["run_id"] = report.RunID
			body["failed"] = report.FailedMessages()
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"run_id":    report.RunID,
		"articles":  report.Articles,
		"delivered": report.Delivered,
		"failed":    report.FailedMessages(),
	})
}

func (d *DigestController) ListRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := d.archive.ListRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

func (d *DigestController) GetRun(c *gin.Context) {
	run, err := d.archive.GetRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, run)
}
