package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/chatzinho/chatzinho/backend/internal/config"
	"github.com/chatzinho/chatzinho/backend/internal/model/reply"
	"github.com/chatzinho/chatzinho/backend/internal/service/ai"
	"github.com/chatzinho/chatzinho/backend/internal/service/chat"
	replyservice "github.com/chatzinho/chatzinho/backend/internal/service/reply"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] .env not loaded, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	delegate := flag.Bool("delegate", cfg.Bot.DelegationEnabled, "hand unmatched messages to the remote model")
	fallback := flag.String("fallback", cfg.Bot.FallbackMessage, "reply used when nothing matches")
	timeout := flag.Duration("timeout", cfg.Bot.DelegationTimeout, "remote completion timeout")
	listReplies := flag.Bool("list", false, "print the reply table and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table := reply.NewTable(reply.Seed())
	if *listReplies {
		for _, entry := range table.Entries() {
			fmt.Printf("%-24s -> %s\n", entry.Phrase, entry.Response)
		}
		return
	}

	resolverCfg := replyservice.Config{
		FallbackMessage:   *fallback,
		DelegationEnabled: *delegate,
		DelegationTimeout: *timeout,
	}
	if *delegate {
		completer, err := ai.NewServiceFromConfig(ctx, cfg.AI, cfg.Bot.Name)
		if err != nil {
			log.Printf("[WARN] remote completion unavailable: %v", err)
		} else {
			resolverCfg.Completer = completer
		}
	}

	svc := chat.NewService(replyservice.NewResolver(table, resolverCfg))
	session, err := svc.CreateSession(ctx)
	if err != nil {
		log.Fatalf("failed to create session: %v", err)
	}

	if err := run(ctx, svc, session.ID, *timeout); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("chat ended with error: %v", err)
	}
}

// run reads one message per line and prints each exchange as it resolves.
func run(ctx context.Context, svc *chat.Service, sessionID string, timeout time.Duration) error {
	fmt.Println("Digite aqui... (Ctrl+D para sair)")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		turnCtx, cancel := context.WithTimeout(ctx, timeout+time.Second)
		exchange, err := svc.Turn(turnCtx, sessionID, scanner.Text())
		cancel()

		switch {
		case errors.Is(err, chat.ErrEmptyInput):
			continue
		case err != nil:
			return err
		}

		fmt.Printf("você: %s\n", exchange.User.Text)
		fmt.Printf("bot:  %s\n", exchange.Bot.Text)
	}
}
