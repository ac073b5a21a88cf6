package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chatzinho/chatzinho/backend/internal/handler/chat"
	"github.com/chatzinho/chatzinho/backend/internal/handler/reply"
	"github.com/chatzinho/chatzinho/backend/internal/handler/stream"
	"github.com/chatzinho/chatzinho/backend/internal/handler/ws"
	middlewarePkg "github.com/chatzinho/chatzinho/backend/internal/middleware"
	chatService "github.com/chatzinho/chatzinho/backend/internal/service/chat"
	replyService "github.com/chatzinho/chatzinho/backend/internal/service/reply"
	"github.com/chatzinho/chatzinho/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, resolver *replyService.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		reply.New(resolver).RegisterRoutes(api)
		chat.New(chatSvc).RegisterRoutes(api)
		stream.New(chatSvc).RegisterRoutes(api)
		ws.NewWebSocketHandler(chatSvc).RegisterRoutes(api)
	})

	return r
}
