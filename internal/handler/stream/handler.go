package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/chatzinho/chatzinho/backend/internal/model/chat"
	chatService "github.com/chatzinho/chatzinho/backend/internal/service/chat"
	"github.com/chatzinho/chatzinho/backend/pkg/utils"
)

// Handler delivers one chat turn via Server-Sent Events
type Handler struct {
	chatSvc *chatService.Service
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	SessionID string          `json:"sessionId,omitempty"`
	Utterance *chat.Utterance `json:"utterance,omitempty"`
	Finished  bool            `json:"finished,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// RegisterRoutes registers the SSE endpoint
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		userMessage := strings.TrimSpace(r.URL.Query().Get("message"))

		if userMessage == "" {
			utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
			return
		}
		if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
			utils.RespondError(w, http.StatusNotFound, err.Error())
			return
		}

		if err := h.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
			log.Printf("[stream] error handling request: %v", err)
		}
	})
}

// HandleStreamRequest runs a turn for the session and streams its utterances
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return errors.New("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	utils.SendSSEEvent(w, flusher, "start", StreamResponse{SessionID: sessionID})

	exchange, err := h.chatSvc.Turn(ctx, sessionID, userMessage)
	if err != nil {
		h.sendSSEError(w, flusher, sessionID, err)
		return fmt.Errorf("turn failed: %w", err)
	}

	utils.SendSSEEvent(w, flusher, "user", StreamResponse{SessionID: sessionID, Utterance: &exchange.User})
	utils.SendSSEEvent(w, flusher, "message", StreamResponse{SessionID: sessionID, Utterance: &exchange.Bot})
	utils.SendSSEEvent(w, flusher, "end", StreamResponse{SessionID: sessionID, Finished: true})

	log.Printf("[stream] completed turn for session=%s, source=%s", sessionID, exchange.Bot.Source)
	return nil
}

// sendSSEError sends an error via Server-Sent Events
func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, sessionID string, err error) {
	utils.SendSSEEvent(w, flusher, "error", StreamResponse{
		SessionID: sessionID,
		Error:     err.Error(),
	})
}
