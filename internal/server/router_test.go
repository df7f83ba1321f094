package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
	"go-chi-calculator/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	oldLogger := observability.Logger
	observability.Logger = zap.NewNop()
	t.Cleanup(func() { observability.Logger = oldLogger })

	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	store := session.NewStore(session.WithObserver(calculator.ObserveSessions))
	return NewRouter(calculator.NewHandler(store))
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterEvaluateSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", calculator.KeysRequest{Sequence: "5+3="})
	w := testutil.ExecuteRequest(req, router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	testutil.DecodeJSONBody(t, w.Result().Body, &payload)

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if got, ok := payload["display"].(string); !ok || got != "8" {
		t.Fatalf("expected display 8, got %#v", payload["display"])
	}
	if got, ok := payload["value"].(float64); !ok || got != 8 {
		t.Fatalf("expected value 8, got %#v", payload["value"])
	}
}

func TestNewRouterSessionFlow(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var created calculator.StateResponse
	testutil.DecodeJSONBody(t, w.Body, &created)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions/"+created.SessionID+"/keys",
		calculator.KeysRequest{Sequence: "7÷2="})
	w = testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp calculator.KeysResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Display != "3.5" {
		t.Fatalf("expected display %q, got %q", "3.5", resp.Display)
	}
}

func TestNewRouterServesMetrics(t *testing.T) {
	router := newTestRouter(t)

	_ = testutil.ExecuteRequest(testutil.NewJSONRequest(t, http.MethodPost, "/calculator/sessions", nil), router)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if !strings.Contains(w.Body.String(), "calculator_sessions_active") {
		t.Fatal("expected calculator_sessions_active in metrics output")
	}
}
