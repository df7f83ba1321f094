package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

const maxBodyBytes = 64 << 10

// Handler serves calculator sessions over HTTP and websocket.
type Handler struct {
	store    *session.Store
	upgrader websocket.Upgrader
}

func NewHandler(store *session.Store) *Handler {
	return &Handler{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrCapacity):
		return http.StatusTooManyRequests
	case errors.Is(err, engine.ErrDigitOutOfRange),
		errors.Is(err, engine.ErrUnknownOperator),
		errors.Is(err, engine.ErrUnknownKey),
		errors.Is(err, errNoKeys):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ---------------------------------------------------------------------------
// Handlers: session lifecycle
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	sess, err := h.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.create", err.Error(), err, errorStatus(err), w)
		return
	}

	span.SetAttributes(attribute.String("calculator.session.id", sess.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusCreated, newStateResponse(sess.ID, sess.Snapshot()))
}

// GetSession handles GET /calculator/sessions/{sessionID}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	ctx, span := tracer.Start(ctx, "calculator.session.get",
		trace.WithAttributes(attribute.String("calculator.session.id", sessionID)),
	)
	defer span.End()

	sess, err := h.store.Get(sessionID)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.get", err.Error(), err, errorStatus(err), w)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, newStateResponse(sess.ID, sess.Snapshot()))
}

// DeleteSession handles DELETE /calculator/sessions/{sessionID}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(attribute.String("calculator.session.id", sessionID)),
	)
	defer span.End()

	if err := h.store.Delete(sessionID); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.delete", err.Error(), err, errorStatus(err), w)
		return
	}

	logger.Info("calculator session deleted",
		zap.String("session_id", sessionID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handlers: single keypad actions
// ---------------------------------------------------------------------------

// EnterDigit handles POST /calculator/sessions/{sessionID}/digit/{digit}
func (h *Handler) EnterDigit(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "digit")
	var d int
	var err error
	if kind, kerr := engine.Classify(raw); kerr != nil || kind != engine.KindDigit {
		err = fmt.Errorf("%w: %q", engine.ErrDigitOutOfRange, raw)
	} else {
		d = int(raw[0] - '0')
	}

	h.handleAction(w, r, engine.KindDigit, func(e *engine.Engine) error {
		if err != nil {
			return err
		}
		return e.EnterDigit(d)
	})
}

// EnterDecimalPoint handles POST /calculator/sessions/{sessionID}/decimal
func (h *Handler) EnterDecimalPoint(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, engine.KindDecimal, func(e *engine.Engine) error {
		e.EnterDecimalPoint()
		return nil
	})
}

// ToggleSign handles POST /calculator/sessions/{sessionID}/sign
func (h *Handler) ToggleSign(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, engine.KindSign, func(e *engine.Engine) error {
		e.ToggleSign()
		return nil
	})
}

// ApplyPercentage handles POST /calculator/sessions/{sessionID}/percent
func (h *Handler) ApplyPercentage(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, engine.KindPercent, func(e *engine.Engine) error {
		e.ApplyPercentage()
		return nil
	})
}

// Reset handles POST /calculator/sessions/{sessionID}/clear
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, engine.KindClear, func(e *engine.Engine) error {
		e.Reset()
		return nil
	})
}

// ApplyOperator handles POST /calculator/sessions/{sessionID}/operator/{op}
func (h *Handler) ApplyOperator(w http.ResponseWriter, r *http.Request) {
	op, err := engine.ParseOperator(chi.URLParam(r, "op"))

	h.handleAction(w, r, engine.KindOperator, func(e *engine.Engine) error {
		if err != nil {
			return err
		}
		return e.ApplyOperator(op)
	})
}

// handleAction is the shared implementation for single keypad actions on a
// session: child span, session lookup, serialized engine mutation, metrics,
// trace-correlated log line and JSON state response.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, kind engine.KeyKind, apply func(*engine.Engine) error) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")
	opName := string(kind)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.action", opName),
			attribute.String("calculator.session.id", sessionID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	sess, err := h.store.Get(sessionID)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, errorStatus(err), w)
		return
	}

	start := time.Now()
	snap, err := sess.Apply(apply)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, errorStatus(err), w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("action", opName))
	actionsCounter.Add(ctx, 1, attrs)
	actionHistogram.Record(ctx, elapsed, attrs)
	recordDisplay(ctx, span, logger, opName, snap)

	span.SetAttributes(attribute.String("calculator.display", snap.Display))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator action applied",
		zap.String("action", opName),
		zap.String("session_id", sessionID),
		zap.String("display", snap.Display),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, newStateResponse(sessionID, snap))
}

// recordDisplay publishes the value on screen. NaN and infinities are not
// errors: they are counted, logged at warn and marked on the span.
func recordDisplay(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, snap engine.Snapshot) {
	attrs := metric.WithAttributes(attribute.String("action", opName))

	if engine.Finite(snap.Input) {
		resultGauge.Record(ctx, snap.Input, attrs)
		return
	}

	nonfiniteCounter.Add(ctx, 1, attrs)
	span.AddEvent("display.nonfinite", trace.WithAttributes(
		attribute.String("display", snap.Display),
	))
	logger.Warn("calculator display is not finite",
		zap.String("action", opName),
		zap.String("display", snap.Display),
	)
}

// ---------------------------------------------------------------------------
// Handlers: key sequences (nested spans per key)
// ---------------------------------------------------------------------------

// PressKeys handles POST /calculator/sessions/{sessionID}/keys. Applies a
// sequence of keypad keys to a session. Keys before a rejected one stay
// applied.
func (h *Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	sessionID := chi.URLParam(r, "sessionID")

	ctx, span := tracer.Start(ctx, "calculator.keys",
		trace.WithAttributes(
			attribute.String("calculator.session.id", sessionID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	keys, ok := decodeKeys(ctx, span, logger, "keys", w, r)
	if !ok {
		return
	}

	sess, err := h.store.Get(sessionID)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", err.Error(), err, errorStatus(err), w)
		return
	}

	var steps []KeyResult
	snap, err := sess.Apply(func(e *engine.Engine) error {
		var err error
		steps, err = pressKeys(ctx, logger, e, keys)
		return err
	})
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", err.Error(), err, errorStatus(err), w)
		return
	}

	recordDisplay(ctx, span, logger, "keys", snap)
	span.SetAttributes(attribute.String("calculator.display", snap.Display))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator keys applied",
		zap.String("session_id", sessionID),
		zap.Int("keys", len(keys)),
		zap.String("display", snap.Display),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, KeysResponse{
		StateResponse: newStateResponse(sessionID, snap),
		Steps:         steps,
	})
}

// Evaluate handles POST /calculator/evaluate. Runs a key sequence on a fresh
// engine that is discarded afterwards.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	keys, ok := decodeKeys(ctx, span, logger, "evaluate", w, r)
	if !ok {
		return
	}

	e := engine.New()
	steps, err := pressKeys(ctx, logger, e, keys)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", err.Error(), err, errorStatus(err), w)
		return
	}

	snap := e.Snapshot()
	recordDisplay(ctx, span, logger, "evaluate", snap)

	span.AddEvent("evaluate.complete", trace.WithAttributes(
		attribute.String("display", snap.Display),
		attribute.Int("total_keys", len(keys)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator sequence evaluated",
		zap.Int("keys", len(keys)),
		zap.String("display", snap.Display),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, KeysResponse{
		StateResponse: newStateResponse("", snap),
		Steps:         steps,
	})
}

func decodeKeys(ctx context.Context, span trace.Span, logger *zap.Logger, opName string, w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req KeysRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return nil, false
	}

	keys, err := req.resolve()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
		return nil, false
	}

	span.SetAttributes(attribute.Int("calculator.keys_count", len(keys)))
	return keys, true
}

// pressKeys applies keys in order, one child span per key, and stops at the
// first rejected key.
func pressKeys(ctx context.Context, logger *zap.Logger, e *engine.Engine, keys []string) ([]KeyResult, error) {
	results := make([]KeyResult, 0, len(keys))

	for i, key := range keys {
		_, keySpan := tracer.Start(ctx, fmt.Sprintf("calculator.key.%d", i),
			trace.WithAttributes(
				attribute.Int("calculator.key.index", i),
				attribute.String("calculator.key", key),
			),
		)

		kind, err := engine.Classify(key)
		start := time.Now()
		if err == nil {
			err = e.Press(key)
		}
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0

		if err != nil {
			keySpan.RecordError(err)
			keySpan.SetStatus(codes.Error, err.Error())
			keySpan.End()

			logger.Warn("calculator key rejected",
				zap.Int("index", i),
				zap.String("key", key),
				zap.Error(err),
			)
			return results, fmt.Errorf("key %d: %w", i, err)
		}

		attrs := metric.WithAttributes(attribute.String("action", string(kind)))
		actionsCounter.Add(ctx, 1, attrs)
		actionHistogram.Record(ctx, elapsed, attrs)

		display := e.Display()
		keySpan.SetAttributes(attribute.String("calculator.display", display))
		keySpan.SetStatus(codes.Ok, "")
		keySpan.End()

		logger.Debug("calculator key applied",
			zap.Int("index", i),
			zap.String("key", key),
			zap.String("display", display),
		)

		results = append(results, KeyResult{Key: key, Display: display})
	}

	return results, nil
}
