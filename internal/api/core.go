package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/logging"
	"github.com/abhisek/pysis/internal/tutor"
)

// CoreStatus is the health message of the core service.
const CoreStatus = "Core Service (RAG Service) está funcionando"

// Conversation handles one learner message.
type Conversation interface {
	Handle(ctx context.Context, learnerID int64, name, text string) (string, error)
}

// QueryRequest is the body of POST /conversation/query.
type QueryRequest struct {
	PhoneNumber    *string `json:"phone_number"`
	Question       *string `json:"question"`
	UserName       *string `json:"user_name"`
	ConversationID *string `json:"conversation_id"`
}

// QueryResponse is the reply to POST /conversation/query.
type QueryResponse struct {
	ConversationID string     `json:"conversation_id"`
	Answer         string     `json:"answer"`
	ChatHistory    []struct{} `json:"chat_history"`
}

// CoreHandler serves the conversation endpoint.
type CoreHandler struct {
	conv Conversation
}

// NewCoreHandler creates a CoreHandler.
func NewCoreHandler(conv Conversation) *CoreHandler {
	return &CoreHandler{conv: conv}
}

// RegisterRoutes registers the core routes.
func (h *CoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { Status(w, CoreStatus) })
	r.Post("/conversation/query", h.Query)
}

// NewCoreRouter returns the full HTTP handler of the core service.
func NewCoreRouter(conv Conversation, logger *zap.Logger) http.Handler {
	r := newRouter(logger)
	NewCoreHandler(conv).RegisterRoutes(r)
	return r
}

// Query handles POST /conversation/query.
func (h *CoreHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Detail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	var missing []string
	if req.PhoneNumber == nil {
		missing = append(missing, "phone_number")
	}
	if req.Question == nil {
		missing = append(missing, "question")
	}
	if len(missing) > 0 {
		Detail(w, http.StatusUnprocessableEntity, "missing required fields: "+strings.Join(missing, ", "))
		return
	}
	learnerID, err := strconv.ParseInt(strings.TrimSpace(*req.PhoneNumber), 10, 64)
	if err != nil {
		Detail(w, http.StatusUnprocessableEntity, "phone_number must be an integer")
		return
	}
	var name string
	if req.UserName != nil {
		name = *req.UserName
	}

	answer, err := h.conv.Handle(r.Context(), learnerID, name, *req.Question)
	if err != nil {
		logger := logging.FromContext(r.Context())
		var unavailable *tutor.ErrMaterialUnavailable
		if errors.As(err, &unavailable) {
			logger.Error("study material unavailable", zap.Int("lesson_day", unavailable.Day), zap.Error(err))
			Detail(w, http.StatusInternalServerError, tutor.MaterialUnavailableReply(unavailable.Day))
			return
		}
		logger.Error("conversation failed", zap.Int64("learner_id", learnerID), zap.Error(err))
		Detail(w, http.StatusInternalServerError, tutor.FallbackReply)
		return
	}

	JSON(w, http.StatusOK, QueryResponse{
		ConversationID: *req.PhoneNumber,
		Answer:         answer,
		ChatHistory:    []struct{}{},
	})
}
