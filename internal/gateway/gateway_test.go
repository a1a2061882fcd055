package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoreClientForwardsQuery(t *testing.T) {
	var (
		got       map[string]any
		requestID string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversation/query", r.URL.Path)
		requestID = r.Header.Get("X-Request-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"conversation_id":"77","answer":"¡Hola, Tyzy!"}`)
	}))
	defer srv.Close()

	c := NewCoreClient(srv.URL+"/", time.Second, nil)
	answer := c.Ask(context.Background(), 77, "Ana", "hola")

	assert.Equal(t, "¡Hola, Tyzy!", answer)
	assert.Equal(t, map[string]any{
		"phone_number":    "77",
		"question":        "hola",
		"user_name":       "Ana",
		"conversation_id": nil,
	}, got)
	_, err := uuid.Parse(requestID)
	assert.NoError(t, err, "request id %q", requestID)
}

func TestCoreClientApologies(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name:    "no answer field",
			handler: func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, `{"conversation_id":"1"}`) },
			want:    ApologyDefault,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"detail":"No se pudo cargar el material de estudio para el Día 2."}`, http.StatusInternalServerError)
			},
			want: "Lo siento, ocurrió un error (500) al comunicarme con el servicio de conversación.",
		},
		{
			name: "validation error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			want: ApologyStatus(422),
		},
		{
			name:    "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, `<html>`) },
			want:    ApologyUnexpected,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			assert.Equal(t, tt.want, NewCoreClient(srv.URL, time.Second, nil).Ask(context.Background(), 1, "Ana", "hola"))
		})
	}
}

func TestCoreClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewCoreClient(srv.URL, 50*time.Millisecond, nil)
	assert.Equal(t, ApologyTimeout, c.Ask(context.Background(), 1, "Ana", "hola"))
}

func TestCoreClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewCoreClient(url, time.Second, nil)
	assert.Equal(t, ApologyTransport, c.Ask(context.Background(), 1, "Ana", "hola"))
}

type fakeAsker struct {
	chatID   int64
	userName string
	question string
	answer   string
}

func (f *fakeAsker) Ask(_ context.Context, chatID int64, userName, question string) string {
	f.chatID, f.userName, f.question = chatID, userName, question
	return f.answer
}

type sent struct {
	chatID int64
	text   string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeSender) SendHTML(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{chatID, text})
	return f.err
}

func webhook(t *testing.T, h *Handler, body string) map[string]string {
	t.Helper()
	w := httptest.NewRecorder()
	NewRouter(h).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return got
}

const textUpdate = `{"update_id":1,"message":{"message_id":5,"date":0,"chat":{"id":991,"type":"private"},"from":{"id":991,"is_bot":false,"first_name":"Valentina"},"text":"hola"}}`

func TestWebhookDeliversAnswer(t *testing.T) {
	asker := &fakeAsker{answer: `Línea 1\nLínea 2`}
	sender := &fakeSender{}
	got := webhook(t, NewHandler(asker, sender, nil), textUpdate)

	assert.Equal(t, map[string]string{"status": "ok"}, got)
	assert.Equal(t, int64(991), asker.chatID)
	assert.Equal(t, "Valentina", asker.userName)
	assert.Equal(t, "hola", asker.question)
	assert.Equal(t, []sent{{991, "Línea 1\nLínea 2"}}, sender.sent)
}

func TestWebhookDefaultUserName(t *testing.T) {
	asker := &fakeAsker{answer: "ok"}
	body := `{"update_id":1,"message":{"message_id":5,"date":0,"chat":{"id":3,"type":"private"},"text":"hola"}}`
	webhook(t, NewHandler(asker, &fakeSender{}, nil), body)
	assert.Equal(t, DefaultUserName, asker.userName)
}

func TestWebhookStatuses(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status string
	}{
		{"empty body", "", "empty body"},
		{"invalid json", "{nope", "error"},
		{"no text", `{"update_id":1,"message":{"message_id":5,"date":0,"chat":{"id":3,"type":"private"},"sticker":{}}}`, "no text message"},
		{"no message", `{"update_id":1,"edited_message":{"message_id":5,"date":0,"chat":{"id":3,"type":"private"},"text":"x"}}`, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			got := webhook(t, NewHandler(&fakeAsker{}, sender, nil), tt.body)
			assert.Equal(t, tt.status, got["status"])
			assert.Empty(t, sender.sent)
		})
	}
}

func TestWebhookInvalidJSONMessage(t *testing.T) {
	got := webhook(t, NewHandler(&fakeAsker{}, &fakeSender{}, nil), "{nope")
	assert.True(t, strings.HasPrefix(got["message"], "Invalid JSON body: "), got["message"])
}

func TestWebhookDeliveryFailureStillOK(t *testing.T) {
	sender := &fakeSender{err: errors.New("chat not found")}
	got := webhook(t, NewHandler(&fakeAsker{answer: "x"}, sender, nil), textUpdate)
	assert.Equal(t, "ok", got["status"])
	assert.Len(t, sender.sent, 1)
}

func TestGatewayHealth(t *testing.T) {
	w := httptest.NewRecorder()
	NewRouter(NewHandler(&fakeAsker{}, &fakeSender{}, nil)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"status":"Channel Service está funcionando"}`, w.Body.String())
}

// fakeTelegram is a minimal Bot API server.
type fakeTelegram struct {
	mu      sync.Mutex
	methods []string
	forms   []map[string]string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "botTOKEN" {
		http.Error(w, "bad path", http.StatusNotFound)
		return
	}
	_ = r.ParseForm()
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	f.mu.Lock()
	f.methods = append(f.methods, parts[1])
	f.forms = append(f.forms, form)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch parts[1] {
	case "getMe":
		io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"PySis","username":"pysis_bot"}}`)
	case "sendMessage":
		io.WriteString(w, `{"ok":true,"result":{"message_id":9,"date":0,"chat":{"id":991,"type":"private"},"text":"x"}}`)
	case "setWebhook":
		io.WriteString(w, `{"ok":true,"result":true,"description":"Webhook was set"}`)
	default:
		io.WriteString(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func TestTelegramSender(t *testing.T) {
	tg := &fakeTelegram{}
	srv := httptest.NewServer(tg)
	defer srv.Close()

	s, err := NewTelegramSender("TOKEN", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	assert.Equal(t, "pysis_bot", s.Username())

	require.NoError(t, s.SendHTML(context.Background(), 991, "<b>Hola</b>"))
	require.NoError(t, s.RegisterWebhook("https://example.com/webhook/"))

	tg.mu.Lock()
	defer tg.mu.Unlock()
	assert.Equal(t, []string{"getMe", "sendMessage", "setWebhook"}, tg.methods)
	assert.Equal(t, "991", tg.forms[1]["chat_id"])
	assert.Equal(t, "<b>Hola</b>", tg.forms[1]["text"])
	assert.Equal(t, "HTML", tg.forms[1]["parse_mode"])
	assert.Equal(t, "https://example.com/webhook/", tg.forms[2]["url"])
}

func TestTelegramSenderRequiresToken(t *testing.T) {
	_, err := NewTelegramSender("", "", nil)
	assert.Error(t, err)
}
