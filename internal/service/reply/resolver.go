package reply

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chatzinho/chatzinho/backend/internal/analysis/normalize"
	"github.com/chatzinho/chatzinho/backend/internal/model/chat"
	"github.com/chatzinho/chatzinho/backend/internal/model/reply"
)

// DefaultFallbackMessage is sent when nothing in the table matches.
const DefaultFallbackMessage = "Ainda não tenho resposta para isso =("

// DefaultDelegationTimeout bounds a single remote completion.
const DefaultDelegationTimeout = 15 * time.Second

// ErrEmptyCompletion is reported when the remote collaborator answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// Completer is the remote text-completion capability a Resolver may delegate to.
// Connection setup, credentials and retries belong to the implementation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config controls the miss policy of a Resolver.
type Config struct {
	FallbackMessage   string
	DelegationEnabled bool
	Completer         Completer
	DelegationTimeout time.Duration
}

// Resolution is the single result delivered for one query.
type Resolution struct {
	Text    string
	Key     string
	Matched bool
	Source  chat.Source
	// Err holds the delegation failure cause, for logging only. Text is always
	// safe to show.
	Err error
}

// Resolver maps canonical keys to responses. It holds no mutable state, so a
// single Resolver serves any number of concurrent callers.
type Resolver struct {
	table     *reply.Table
	fallback  string
	completer Completer
	timeout   time.Duration
}

// NewResolver creates a resolver over an immutable table.
func NewResolver(table *reply.Table, cfg Config) *Resolver {
	fallback := cfg.FallbackMessage
	if strings.TrimSpace(fallback) == "" {
		fallback = DefaultFallbackMessage
	}

	timeout := cfg.DelegationTimeout
	if timeout <= 0 {
		timeout = DefaultDelegationTimeout
	}

	r := &Resolver{
		table:    table,
		fallback: fallback,
		timeout:  timeout,
	}
	if cfg.DelegationEnabled && cfg.Completer != nil {
		r.completer = cfg.Completer
	}
	return r
}

// FallbackMessage returns the text sent on an unmatched query.
func (r *Resolver) FallbackMessage() string {
	return r.fallback
}

// Delegating reports whether misses are handed to the remote collaborator.
func (r *Resolver) Delegating() bool {
	return r.completer != nil
}

// Table exposes the read-only response table.
func (r *Resolver) Table() *reply.Table {
	return r.table
}

// Resolve looks a canonical key up in the table. On a miss it returns the
// fallback message and matched=false. It never delegates.
func (r *Resolver) Resolve(key string) (string, bool) {
	if response, ok := r.table.Lookup(key); ok {
		return response, true
	}
	return r.fallback, false
}

// Answer normalizes raw input and resolves it. The returned channel receives
// exactly one Resolution and is then closed; it is buffered, so callers that
// lose interest may drop it without leaking the sender.
func (r *Resolver) Answer(ctx context.Context, raw string) <-chan Resolution {
	out := make(chan Resolution, 1)

	key := normalize.Key(raw)
	text, matched := r.Resolve(key)
	if matched {
		out <- Resolution{Text: text, Key: key, Matched: true, Source: chat.SourceTable}
		close(out)
		return out
	}

	if !r.Delegating() {
		out <- Resolution{Text: text, Key: key, Source: chat.SourceFallback}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		out <- r.delegate(ctx, raw, key)
	}()
	return out
}

// delegate hands the raw, un-normalized text to the completer and folds every
// failure into the fallback message.
func (r *Resolver) delegate(ctx context.Context, raw, key string) (res Resolution) {
	defer func() {
		if p := recover(); p != nil {
			res = r.delegationFailed(key, fmt.Errorf("completer panic: %v", p))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	completion, err := r.completer.Complete(ctx, raw)
	if err != nil {
		return r.delegationFailed(key, fmt.Errorf("remote completion failed: %w", err))
	}

	completion = strings.TrimSpace(completion)
	if completion == "" {
		return r.delegationFailed(key, ErrEmptyCompletion)
	}

	log.Printf("[reply] delegated miss key=%q length=%d", key, len(completion))
	return Resolution{Text: completion, Key: key, Source: chat.SourceRemote}
}

func (r *Resolver) delegationFailed(key string, err error) Resolution {
	return Resolution{
		Text:   r.fallback,
		Key:    key,
		Source: chat.SourceRemoteFallback,
		Err:    err,
	}
}
