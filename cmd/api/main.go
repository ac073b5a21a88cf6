package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chatzinho/chatzinho/backend/internal/config"
	"github.com/chatzinho/chatzinho/backend/internal/handler"
	"github.com/chatzinho/chatzinho/backend/internal/model/reply"
	"github.com/chatzinho/chatzinho/backend/internal/service/ai"
	"github.com/chatzinho/chatzinho/backend/internal/service/chat"
	replyservice "github.com/chatzinho/chatzinho/backend/internal/service/reply"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	resolver := newResolver(ctx, cfg)
	chatService := chat.NewService(resolver)

	router := handler.NewRouter(chatService, resolver)

	startServer(ctx, cfg.Server, router)
}

func newResolver(ctx context.Context, cfg *config.Config) *replyservice.Resolver {
	table := reply.NewTable(reply.Seed())
	resolverCfg := replyservice.Config{
		FallbackMessage:   cfg.Bot.FallbackMessage,
		DelegationEnabled: cfg.Bot.DelegationEnabled,
		DelegationTimeout: cfg.Bot.DelegationTimeout,
	}

	switch {
	case !cfg.Bot.DelegationEnabled:
		log.Println("remote completion disabled, answering from the reply table only")
	case !cfg.AI.Enabled():
		log.Println("BOT_DELEGATION_ENABLED is set but ark credentials are missing, delegation stays off")
	default:
		completer, err := ai.NewServiceFromConfig(ctx, cfg.AI, cfg.Bot.Name)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without remote completion")
			break
		}
		resolverCfg.Completer = completer
		log.Println("AI service initialized successfully")
	}

	resolver := replyservice.NewResolver(table, resolverCfg)
	log.Printf("reply table loaded with %d entries, delegating=%t", table.Len(), resolver.Delegating())
	return resolver
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Chatzinho backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
