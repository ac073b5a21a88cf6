package reply

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	replymodel "github.com/chatzinho/chatzinho/backend/internal/model/reply"
	replyservice "github.com/chatzinho/chatzinho/backend/internal/service/reply"
	"github.com/chatzinho/chatzinho/backend/pkg/utils"
)

// Handler exposes the canned reply table.
type Handler struct {
	resolver *replyservice.Resolver
}

// New creates a reply table handler.
func New(resolver *replyservice.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// RegisterRoutes registers the reply table routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/replies", h.handleListReplies)
}

type listResponse struct {
	Entries    []replymodel.Entry `json:"entries"`
	Fallback   string             `json:"fallback"`
	Delegating bool               `json:"delegating"`
}

func (h *Handler) handleListReplies(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, listResponse{
		Entries:    h.resolver.Table().Entries(),
		Fallback:   h.resolver.FallbackMessage(),
		Delegating: h.resolver.Delegating(),
	})
}
