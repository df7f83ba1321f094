package calculator

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/observability"
)

// Stream handles GET /calculator/sessions/{sessionID}/ws, a live keypad.
// The server sends the current state on connect, then one StreamUpdate per
// client StreamMessage. A rejected key is reported in the update's Error and
// the connection stays open.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	ctx, span := tracer.Start(ctx, "calculator.stream",
		trace.WithAttributes(
			attribute.String("calculator.session.id", sessionID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	sess, err := h.store.Get(sessionID)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "stream", err.Error(), err, errorStatus(err), w)
		return
	}

	// Upgrade writes its own HTTP error response on failure.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		span.RecordError(err)
		logger.Warn("calculator stream upgrade failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	logger = logger.With(zap.String("session_id", sessionID))
	logger.Info("calculator stream opened", zap.String("request_id", requestID))

	if err := conn.WriteJSON(StreamUpdate{StateResponse: newStateResponse(sessionID, sess.Snapshot())}); err != nil {
		return
	}

	frames := 0
	for {
		var msg StreamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("calculator stream closed unexpectedly", zap.Error(err))
			}
			break
		}
		frames++

		// Refresh last use, and notice sessions deleted or swept meanwhile.
		if _, err := h.store.Get(sessionID); err != nil {
			_ = conn.WriteJSON(StreamUpdate{Error: err.Error()})
			break
		}

		var update StreamUpdate
		keys, err := msg.keys()
		if err == nil {
			var snap engine.Snapshot
			snap, err = sess.Apply(func(e *engine.Engine) error {
				_, err := pressKeys(ctx, logger, e, keys)
				return err
			})
			update.StateResponse = newStateResponse(sessionID, snap)
			if err == nil {
				recordDisplay(ctx, span, logger, "stream", snap)
			}
		} else {
			update.StateResponse = newStateResponse(sessionID, sess.Snapshot())
		}
		if err != nil {
			errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "stream")))
			update.Error = err.Error()
		}

		if err := conn.WriteJSON(update); err != nil {
			break
		}
	}

	span.SetAttributes(attribute.Int("calculator.stream.frames", frames))
	logger.Info("calculator stream closed", zap.Int("frames", frames))
}
