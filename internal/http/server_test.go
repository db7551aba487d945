package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"storebot/app/internal/assistant"
	"storebot/app/internal/telegram"
	"storebot/app/internal/translit"
)

const testSecret = "webhook-secret"

func TestQueryRouteReturnsReply(t *testing.T) {
	t.Parallel()

	pipeline := &stubPipeline{result: assistant.Reply("Ունենք", "https://shop.am/?s=x&post_type=product")}
	srv := newTestServer(t, pipeline, nil)

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"text":"  do you have shat  "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Kind          string `json:"kind"`
		Text          string `json:"text"`
		AuxiliaryLink string `json:"auxiliary_link"`
		State         string `json:"state"`
		Cause         string `json:"cause"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}

	if body.Kind != "reply" || body.Text != "Ունենք" || body.State != "done" || body.Cause != "" {
		t.Fatalf("unexpected body %+v", body)
	}
	if body.AuxiliaryLink != "https://shop.am/?s=x&post_type=product" {
		t.Fatalf("unexpected link %q", body.AuxiliaryLink)
	}
	if pipeline.lastText != "do you have shat" {
		t.Fatalf("expected trimmed text, got %q", pipeline.lastText)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestQueryRouteReportsFailureCause(t *testing.T) {
	t.Parallel()

	pipeline := &stubPipeline{result: assistant.Failure("connection error", assistant.KindCatalogUnavailable)}
	srv := newTestServer(t, pipeline, nil)

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"text":"phone"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !contains(rec.Body.String(), `"cause":"catalog_unavailable"`) {
		t.Fatalf("expected failure cause in body, got %q", rec.Body.String())
	}
}

func TestQueryRouteRejectsBlankText(t *testing.T) {
	t.Parallel()

	pipeline := &stubPipeline{}
	srv := newTestServer(t, pipeline, nil)

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"text":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if pipeline.calls != 0 {
		t.Fatalf("pipeline should not run for blank text")
	}
}

func TestTransliterateRouteBothDirections(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPipeline{}, nil)

	cases := []struct {
		query string
		want  string
	}{
		{query: "text=shat", want: "շատ"},
		{query: "text=khach&direction=native", want: "խաչ"},
		{query: "direction=phonetic&text=" + url.QueryEscape("ուրախ"), want: "urakh"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/api/v1/transliterate?"+tc.query, nil)
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, req)

		if rec.Code != 200 {
			t.Fatalf("%s: expected status 200, got %d", tc.query, rec.Code)
		}

		var body struct {
			Output string `json:"output"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decoding body: %v", tc.query, err)
		}
		if body.Output != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.query, tc.want, body.Output)
		}
	}
}

func TestTransliterateRouteRejectsUnknownDirection(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPipeline{}, nil)

	req := httptest.NewRequest("GET", "/api/v1/transliterate?text=shat&direction=sideways", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code < 400 || rec.Code >= 500 {
		t.Fatalf("expected client error, got %d", rec.Code)
	}
}

func TestWebhookRoutesUpdate(t *testing.T) {
	t.Parallel()

	chat := &stubChat{}
	srv := newTestServer(t, &stubPipeline{}, chat)

	payload := `{"update_id":1,"message":{"message_id":3,"chat":{"id":77},"text":"shat"}}`
	req := httptest.NewRequest("POST", "/telegram/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", testSecret)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if chat.texts() != "77:shat" {
		t.Fatalf("expected routed message, got %q", chat.texts())
	}
}

func TestWebhookAcceptsFullBotAPIUpdate(t *testing.T) {
	t.Parallel()

	chat := &stubChat{}
	srv := newTestServer(t, &stubPipeline{}, chat)

	payload := `{"update_id":9,"message":{"message_id":4,"date":1700000000,` +
		`"from":{"id":77,"is_bot":false,"first_name":"Ani","language_code":"hy"},` +
		`"chat":{"id":77,"type":"private","first_name":"Ani"},"text":"tsakhik"}}`
	req := httptest.NewRequest("POST", "/telegram/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", testSecret)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if chat.texts() != "77:tsakhik" {
		t.Fatalf("expected routed message, got %q", chat.texts())
	}
}

func TestWebhookRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	chat := &stubChat{}
	srv := newTestServer(t, &stubPipeline{}, chat)

	payload := `{"update_id":1,"message":{"message_id":3,"chat":{"id":77},"text":"shat"}}`
	req := httptest.NewRequest("POST", "/telegram/webhook", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "wrong")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 401 {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
	if chat.texts() != "" {
		t.Fatalf("update should not be routed")
	}
}

func TestWebhookDisabledWithoutChatHandler(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPipeline{}, nil)

	req := httptest.NewRequest("POST", "/telegram/webhook", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 404 && rec.Code != 405 {
		t.Fatalf("expected webhook route to be absent, got %d", rec.Code)
	}
}

func TestNewServerRequiresWebhookSecret(t *testing.T) {
	t.Parallel()

	engine, err := translit.NewEngine(translit.ArmenianTable())
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	_, err = NewServer(Options{Pipeline: &stubPipeline{}, Engine: engine, Chat: &stubChat{}})
	if err == nil {
		t.Fatalf("expected error without webhook secret")
	}
}

func TestHealthRouteReportsOK(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPipeline{}, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !contains(rec.Body.String(), `"webhook":"disabled"`) {
		t.Fatalf("expected webhook state in body, got %q", rec.Body.String())
	}
}

func TestRecoveryMiddlewareReturns500(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &stubPipeline{panicWith: "boom"}, nil)

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"text":"phone"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	if rec.Code != 500 {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestRecoveredPanicLogCarriesRequestID(t *testing.T) {
	t.Parallel()

	logger, hook := logtest.NewNullLogger()
	srv := newTestServerWithLogger(t, &stubPipeline{panicWith: "boom"}, nil, logger)

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"text":"phone"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	requestID := rec.Header().Get(requestIDHeader)
	if requestID == "" {
		t.Fatalf("expected %s header on the 500 response", requestIDHeader)
	}

	for _, entry := range hook.AllEntries() {
		if entry.Message != "panic recovered" {
			continue
		}
		if entry.Data["request_id"] != requestID {
			t.Fatalf("expected request_id %q on panic log, got %v", requestID, entry.Data["request_id"])
		}
		return
	}
	t.Fatalf("expected a panic recovered log entry")
}

// helper utilities

func newTestServer(t *testing.T, pipeline assistant.Pipeline, chat telegram.Handler) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return newTestServerWithLogger(t, pipeline, chat, logger)
}

func newTestServerWithLogger(t *testing.T, pipeline assistant.Pipeline, chat telegram.Handler, logger *logrus.Logger) *Server {
	t.Helper()

	engine, err := translit.NewEngine(translit.ArmenianTable())
	if err != nil {
		t.Fatalf("NewEngine returned error: %v", err)
	}

	srv, err := NewServer(Options{
		Pipeline:      pipeline,
		Engine:        engine,
		Chat:          chat,
		WebhookSecret: testSecret,
		Logger:        logger,
	})
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}

	return srv
}

func contains(body, substring string) bool {
	return strings.Contains(body, substring)
}

// stubs

type stubPipeline struct {
	result    assistant.Result
	panicWith string
	calls     int
	lastText  string
}

func (s *stubPipeline) Run(_ context.Context, text string) assistant.Result {
	if s.panicWith != "" {
		panic(s.panicWith)
	}
	s.calls++
	s.lastText = text
	return s.result
}

type stubChat struct {
	mu      sync.Mutex
	entries []string
}

func (s *stubChat) OnTextMessage(_ context.Context, chatID int64, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, strconv.FormatInt(chatID, 10)+":"+text)
}

func (s *stubChat) OnStartCommand(_ context.Context, _ int64) {}

func (s *stubChat) OnStopCommand(_ context.Context, _ int64) {}

func (s *stubChat) texts() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.entries, ",")
}

var _ assistant.Pipeline = (*stubPipeline)(nil)
var _ telegram.Handler = (*stubChat)(nil)
