// Package gateway connects Telegram to the core conversation service: it
// receives webhook updates, asks the core for a reply and delivers it.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/api"
)

// ChannelStatus is the health message of the gateway.
const ChannelStatus = "Channel Service está funcionando"

// DefaultUserName is used when a message carries no sender name.
const DefaultUserName = "Usuario Anónimo"

// Asker obtains the reply for a learner message.
type Asker interface {
	Ask(ctx context.Context, chatID int64, userName, question string) string
}

// Handler serves the Telegram webhook.
type Handler struct {
	core   Asker
	sender Sender
	logger *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(core Asker, sender Sender, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{core: core, sender: sender, logger: logger}
}

// RegisterRoutes registers the gateway routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { api.Status(w, ChannelStatus) })
	r.Post("/webhook/", h.Webhook)
}

// NewRouter returns the full HTTP handler of the gateway.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(api.RequestLogger(h.logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	h.RegisterRoutes(r)
	return r
}

// Webhook handles one Telegram update. Telegram retries updates that are
// not acknowledged with 200, so every outcome replies 200 with a status.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		api.JSON(w, http.StatusOK, map[string]string{"status": "error", "message": fmt.Sprintf("Internal server error: %v", err)})
		return
	}
	if len(body) == 0 {
		api.JSON(w, http.StatusOK, map[string]string{"status": "empty body"})
		return
	}
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		h.logger.Warn("invalid webhook body", zap.Error(err))
		api.JSON(w, http.StatusOK, map[string]string{"status": "error", "message": fmt.Sprintf("Invalid JSON body: %v", err)})
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if msg.Text == "" {
		api.JSON(w, http.StatusOK, map[string]string{"status": "no text message"})
		return
	}

	userName := DefaultUserName
	if msg.From != nil && msg.From.FirstName != "" {
		userName = msg.From.FirstName
	}

	answer := h.core.Ask(r.Context(), msg.Chat.ID, userName, msg.Text)
	answer = strings.ReplaceAll(answer, `\n`, "\n")

	if err := h.sender.SendHTML(r.Context(), msg.Chat.ID, answer); err != nil {
		h.logger.Error("delivery failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
