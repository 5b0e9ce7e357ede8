package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/examify/examify-backend/internal/middleware"
	"github.com/examify/examify-backend/internal/model"
	"github.com/examify/examify-backend/internal/response"
	"github.com/examify/examify-backend/internal/validator"
	ws "github.com/examify/examify-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// IntegrityHandler streams a student's exam-session signals over WebSocket.
// Signals are advisory and never affect scoring.
type IntegrityHandler struct {
	exams    Exams
	recorder IntegrityRecorder
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewIntegrityHandler creates a new IntegrityHandler.
func NewIntegrityHandler(exams Exams, recorder IntegrityRecorder, log zerolog.Logger, allowedOrigins []string) *IntegrityHandler {
	return &IntegrityHandler{
		exams:    exams,
		recorder: recorder,
		log:      log.With().Str("component", "integrity_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /ws/exams/:id/integrity?token=...
func (h *IntegrityHandler) Stream(c *gin.Context) {
	p := middleware.GetPrincipal(c)

	examID, ok := validator.ParamUUID(c, "id")
	if !ok {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	// Only an open attempt may report: the exam must exist and be untaken.
	if _, err := h.exams.GetExam(c.Request.Context(), examID, p.UserID, p.Role); err != nil {
		respondError(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(ws.MaxMessageSize)

	wsLog := h.log.With().
		Str("user_id", p.UserID.String()).
		Str("exam_id", examID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		case ws.ActionTabSwitch, ws.ActionCopyAttempt, ws.ActionAutoSubmit:
			h.handleSignal(conn, wsLog, examID, p.UserID, msg)
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *IntegrityHandler) handleSignal(conn *websocket.Conn, wsLog zerolog.Logger, examID, userID uuid.UUID, msg ws.RequestPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev := model.IntegrityEvent{
		ExamID:     examID,
		UserID:     userID,
		Kind:       model.IntegrityKind(msg.Action),
		Payload:    msg.Payload,
		RecordedAt: time.Now().UTC(),
	}

	count, err := h.recorder.RecordIntegrity(ctx, ev)
	if err != nil {
		wsLog.Error().Err(err).Str("kind", string(ev.Kind)).Msg("Failed to record integrity signal")
		ws.WriteError(conn, "record failed")
		return
	}

	if err := h.recorder.Publish(ctx, examID, model.MonitorEvent{
		Type:   model.MonitorEventIntegrity,
		ExamID: examID,
		UserID: userID,
		Kind:   ev.Kind,
		Count:  count,
		At:     ev.RecordedAt,
	}); err != nil {
		wsLog.Warn().Err(err).Msg("Failed to publish integrity signal")
	}

	ws.WriteTyped(conn, ws.AckResponse{Event: ws.EventAck, Action: msg.Action, Count: count})
}
