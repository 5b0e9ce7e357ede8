package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/examify/examify-backend/internal/middleware"
	"github.com/examify/examify-backend/internal/response"
	"github.com/examify/examify-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	keepAliveInterval = 30 * time.Second
	snapshotTimeout   = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

// MonitorHandler streams live exam activity to the exam's creator.
type MonitorHandler struct {
	exams Exams
	feed  MonitorFeed
	log   zerolog.Logger

	keepAlive time.Duration
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(exams Exams, feed MonitorFeed, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		exams:     exams,
		feed:      feed,
		log:       log.With().Str("component", "monitor_handler").Logger(),
		keepAlive: keepAliveInterval,
	}
}

// MonitorExamSSE godoc
// GET /api/exams/:id/monitor
// Sends a snapshot, then forwards every submission and integrity event.
func (h *MonitorHandler) MonitorExamSSE(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	examID, ok := validator.ParamUUID(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reqCtx := c.Request.Context()

	snapCtx, cancel := context.WithTimeout(reqCtx, snapshotTimeout)
	exam, resultsCount, err := h.exams.ExamOverview(snapCtx, p.UserID, examID)
	if err != nil {
		cancel()
		respondError(c, h.log, err)
		return
	}

	// Subscribe before reading counters so events raised meanwhile are still delivered.
	events, stop := h.feed.Subscribe(reqCtx, examID)
	defer stop()

	counters, err := h.feed.IntegrityCounters(snapCtx, examID)
	cancel()
	if err != nil {
		h.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to read integrity counters")
		counters = map[string]map[string]int64{}
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("message", gin.H{
		"type": "snapshot",
		"data": gin.H{
			"exam": gin.H{
				"id":              exam.ID,
				"title":           exam.Title,
				"status":          exam.Status,
				"total_questions": len(exam.Questions),
			},
			"results_count": resultsCount,
			"counters":      counters,
		},
	})
	c.Writer.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	h.log.Info().Str("exam_id", examID.String()).Msg("Examiner attached to live monitor SSE")

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("exam_id", examID.String()).Msg("Examiner disconnected from live monitor SSE")
			return

		case payload, ok := <-events:
			if !ok {
				return
			}
			// Payloads are already JSON; forward them untouched.
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-keepAlive.C:
			c.Writer.Write([]byte("data: {\"type\":\"ping\"}\n\n"))
			c.Writer.Flush()
		}
	}
}
