package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Apologies sent to the learner when the core service cannot answer.
const (
	ApologyDefault    = "Lo siento, no pude procesar tu consulta en este momento."
	ApologyTimeout    = "Lo siento, el servicio de conversación tardó demasiado en responder."
	ApologyTransport  = "Error en la comunicación con el servicio de conversación."
	ApologyUnexpected = "Error inesperado procesando tu solicitud."
)

// ApologyStatus is the apology for a non-200 reply from the core service.
func ApologyStatus(code int) string {
	return fmt.Sprintf("Lo siento, ocurrió un error (%d) al comunicarme con el servicio de conversación.", code)
}

// DefaultCoreTimeout bounds one call to the core service.
const DefaultCoreTimeout = 45 * time.Second

// CoreClient forwards learner messages to the core conversation service.
type CoreClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewCoreClient creates a client for the core service at baseURL. A
// non-positive timeout uses DefaultCoreTimeout.
func NewCoreClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CoreClient {
	if timeout <= 0 {
		timeout = DefaultCoreTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoreClient{
		url:    strings.TrimSuffix(baseURL, "/") + "/conversation/query",
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type coreRequest struct {
	PhoneNumber    string  `json:"phone_number"`
	Question       string  `json:"question"`
	UserName       string  `json:"user_name"`
	ConversationID *string `json:"conversation_id"`
}

// Ask sends question on behalf of chatID and returns the text to deliver.
// Failures never surface as errors: they become one of the apologies.
func (c *CoreClient) Ask(ctx context.Context, chatID int64, userName, question string) string {
	requestID := uuid.NewString()
	logger := c.logger.With(zap.Int64("chat_id", chatID), zap.String("request_id", requestID))

	body, err := json.Marshal(coreRequest{
		PhoneNumber: fmt.Sprint(chatID),
		Question:    question,
		UserName:    userName,
	})
	if err != nil {
		logger.Error("encode core request", zap.Error(err))
		return ApologyUnexpected
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		logger.Error("build core request", zap.Error(err))
		return ApologyUnexpected
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			logger.Warn("core service timed out", zap.Error(err))
			return ApologyTimeout
		}
		logger.Warn("core service unreachable", zap.Error(err))
		return ApologyTransport
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		logger.Warn("core service error", zap.Int("status", resp.StatusCode), zap.ByteString("detail", detail))
		return ApologyStatus(resp.StatusCode)
	}

	var out struct {
		Answer *string `json:"answer"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if isTimeout(err) {
			logger.Warn("core service timed out", zap.Error(err))
			return ApologyTimeout
		}
		logger.Error("decode core response", zap.Error(err))
		return ApologyUnexpected
	}
	if out.Answer == nil {
		return ApologyDefault
	}
	return *out.Answer
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
