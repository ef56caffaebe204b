package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/warelabs/warelay/internal/api/middleware"
	"github.com/warelabs/warelay/internal/chat"
	"github.com/warelabs/warelay/internal/handlers"
	"github.com/warelabs/warelay/internal/models"
	"github.com/warelabs/warelay/internal/twilio"
)

const testNumber = "whatsapp:+14155238886"

// stubChat answers every message with a fixed reply.
type stubChat struct {
	reply string
	err   error
	calls int
}

func (s *stubChat) Reply(ctx context.Context, userID, message string) (string, error) {
	s.calls++
	return s.reply, s.err
}

// stubSender accepts every message.
type stubSender struct {
	sent []models.OutboundMessage
}

func (s *stubSender) Send(ctx context.Context, msg models.OutboundMessage) (string, error) {
	s.sent = append(s.sent, msg)
	return "SM1", nil
}

func webhookForm() url.Values {
	return url.Values{
		"From": {"whatsapp:+447123456789"},
		"Body": {"hello"},
	}
}

func postWebhook(t *testing.T, router http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// TestRouterRelayEndToEnd drives the full stack: router, webhook handler
// and both real HTTP clients against fake upstream servers.
func TestRouterRelayEndToEnd(t *testing.T) {
	type chatRequest struct {
		UserID  string `json:"user_id"`
		Message string `json:"message"`
	}

	var gotChat chatRequest
	chatSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotChat); err != nil {
			t.Errorf("decode chat request: %v", err)
		}
		w.Write([]byte(`{"reply":"hi there"}`))
	}))
	defer chatSrv.Close()

	var gotTwilio url.Values
	twilioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse twilio form: %v", err)
		}
		gotTwilio = r.PostForm
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM999","status":"queued"}`))
	}))
	defer twilioSrv.Close()

	chatClient := chat.NewHTTPClient(chatSrv.URL, "", 5*time.Second)
	twilioClient := twilio.NewClient("AC123", "tok", 5*time.Second)
	twilioClient.BaseURL = twilioSrv.URL

	h := handlers.NewHandler(chatClient, twilioClient, testNumber, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), h, Options{MaxBodyBytes: 65536})

	rec := postWebhook(t, router, webhookForm())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"replied"`) {
		t.Errorf("body = %q, want replied status", rec.Body.String())
	}
	if gotChat.UserID != "447123456789" {
		t.Errorf("chat user_id = %q, want %q", gotChat.UserID, "447123456789")
	}
	if gotChat.Message != "hello" {
		t.Errorf("chat message = %q, want %q", gotChat.Message, "hello")
	}
	if gotTwilio.Get("To") != "whatsapp:+447123456789" {
		t.Errorf("twilio To = %q, want original sender", gotTwilio.Get("To"))
	}
	if gotTwilio.Get("From") != testNumber {
		t.Errorf("twilio From = %q, want %q", gotTwilio.Get("From"), testNumber)
	}
	if gotTwilio.Get("Body") != "hi there" {
		t.Errorf("twilio Body = %q, want %q", gotTwilio.Get("Body"), "hi there")
	}
}

func TestRouterChatFailureIsBadGateway(t *testing.T) {
	sender := &stubSender{}
	h := handlers.NewHandler(&stubChat{err: errors.New("down")}, sender, testNumber, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), h, Options{})

	rec := postWebhook(t, router, webhookForm())
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if len(sender.sent) != 0 {
		t.Errorf("twilio called %d times, want 0", len(sender.sent))
	}
}

func TestRouterHealth(t *testing.T) {
	h := handlers.NewHandler(&stubChat{}, &stubSender{}, testNumber, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), h, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q, want ok status", rec.Body.String())
	}
}

func TestRouterRoot(t *testing.T) {
	h := handlers.NewHandler(&stubChat{}, &stubSender{}, testNumber, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), h, Options{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"warelay"`) {
		t.Errorf("body = %q, want service name", rec.Body.String())
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	h := handlers.NewHandler(&stubChat{reply: "ok"}, &stubSender{}, testNumber, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), h, Options{})

	// Generate at least one request so the counters have series.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "warelay_http_requests_total") {
		t.Error("metrics output missing warelay_http_requests_total")
	}
}

func TestRouterBodyTooLarge(t *testing.T) {
	h := handlers.NewHandler(&stubChat{}, &stubSender{}, testNumber, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), h, Options{MaxBodyBytes: 32})

	body := strings.Repeat("a", 1024)
	req := httptest.NewRequest(http.MethodPost, "/whatsapp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestRouterSignatureValidation(t *testing.T) {
	validator := twilio.NewRequestValidator("secret-token")
	auth := middleware.NewTwilioAuth(validator, "https://relay.example.com", zerolog.Nop())

	chatStub := &stubChat{reply: "hi"}
	h := handlers.NewHandler(chatStub, &stubSender{}, testNumber, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), h, Options{TwilioAuth: auth})

	t.Run("unsigned request rejected before any outbound call", func(t *testing.T) {
		rec := postWebhook(t, router, webhookForm())
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
		if chatStub.calls != 0 {
			t.Errorf("chat called %d times, want 0", chatStub.calls)
		}
	})

	t.Run("signed request relayed", func(t *testing.T) {
		form := webhookForm()
		req := httptest.NewRequest(http.MethodPost, "/whatsapp", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Twilio-Signature", validator.Signature("https://relay.example.com/whatsapp", form))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
		}
	})
}

func TestRouterRateLimiting(t *testing.T) {
	limiter := middleware.NewSenderLimiter(60, 1, zerolog.Nop())
	h := handlers.NewHandler(&stubChat{reply: "hi"}, &stubSender{}, testNumber, zerolog.Nop())
	router := NewRouter(zerolog.Nop(), h, Options{RateLimiter: limiter})

	rec := postWebhook(t, router, webhookForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", rec.Code)
	}

	rec = postWebhook(t, router, webhookForm())
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", rec.Code)
	}
}
