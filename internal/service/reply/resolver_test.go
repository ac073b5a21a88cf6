package reply_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/chatzinho/chatzinho/backend/internal/analysis/normalize"
	"github.com/chatzinho/chatzinho/backend/internal/model/chat"
	"github.com/chatzinho/chatzinho/backend/internal/model/reply"
	replyservice "github.com/chatzinho/chatzinho/backend/internal/service/reply"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	text    string
	err     error
	panics  bool
	block   bool
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.panics {
		panic("boom")
	}
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func (f *fakeCompleter) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func newResolver(cfg replyservice.Config) *replyservice.Resolver {
	return replyservice.NewResolver(reply.NewTable(reply.Seed()), cfg)
}

func answer(t *testing.T, r *replyservice.Resolver, raw string) replyservice.Resolution {
	t.Helper()

	ch := r.Answer(context.Background(), raw)
	select {
	case res, ok := <-ch:
		if !ok {
			t.Fatal("channel closed without a resolution")
		}
		if _, ok := <-ch; ok {
			t.Fatal("expected channel to be closed after one resolution")
		}
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for resolution")
	}
	return replyservice.Resolution{}
}

func TestResolveHit(t *testing.T) {
	r := newResolver(replyservice.Config{})

	text, matched := r.Resolve(normalize.Key("ola"))
	if !matched || text != "Oi! Como posso ajudá-lo?" {
		t.Fatalf("unexpected resolve result: %q matched=%v", text, matched)
	}
}

func TestResolveAccentedInputHitsSameEntry(t *testing.T) {
	r := newResolver(replyservice.Config{})

	plain, _ := r.Resolve(normalize.Key("ola"))
	accented, matched := r.Resolve(normalize.Key("Olá"))
	if !matched || accented != plain {
		t.Fatalf("expected Olá to match ola, got %q matched=%v", accented, matched)
	}
}

func TestResolveNameQuestion(t *testing.T) {
	r := newResolver(replyservice.Config{})

	text, matched := r.Resolve(normalize.Key("qual seu nome?"))
	if !matched || text != "Sou o ChatzinhoBot!" {
		t.Fatalf("unexpected name reply: %q matched=%v", text, matched)
	}
}

func TestResolveMissReturnsConfiguredFallback(t *testing.T) {
	r := newResolver(replyservice.Config{FallbackMessage: "I don't have an answer for that yet"})

	text, matched := r.Resolve(normalize.Key("asdkjasd"))
	if matched {
		t.Fatal("expected miss")
	}
	if text != "I don't have an answer for that yet" {
		t.Fatalf("unexpected fallback: %q", text)
	}
}

func TestResolveDefaultFallback(t *testing.T) {
	r := newResolver(replyservice.Config{FallbackMessage: "   "})

	text, matched := r.Resolve("asdkjasd")
	if matched || text != replyservice.DefaultFallbackMessage {
		t.Fatalf("expected default fallback, got %q matched=%v", text, matched)
	}
}

func TestResolveCaseAndAccentVariantsHit(t *testing.T) {
	r := newResolver(replyservice.Config{})

	for _, raw := range []string{"TUDO BEM?", "túdo bém?", "Tudo Bem?"} {
		if _, matched := r.Resolve(normalize.Key(raw)); !matched {
			t.Fatalf("expected %q to hit", raw)
		}
	}
}

func TestAnswerHitDoesNotDelegate(t *testing.T) {
	completer := &fakeCompleter{text: "remote"}
	r := newResolver(replyservice.Config{DelegationEnabled: true, Completer: completer})

	res := answer(t, r, "Olá")
	if !res.Matched || res.Source != chat.SourceTable || res.Key != "ola" {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if len(completer.calls()) != 0 {
		t.Fatal("completer must not be called on a hit")
	}
}

func TestAnswerMissWithoutDelegation(t *testing.T) {
	completer := &fakeCompleter{text: "remote"}
	r := newResolver(replyservice.Config{FallbackMessage: "fallback", Completer: completer})

	if r.Delegating() {
		t.Fatal("delegation must stay off unless enabled")
	}

	res := answer(t, r, "asdkjasd")
	if res.Matched || res.Text != "fallback" || res.Source != chat.SourceFallback {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if len(completer.calls()) != 0 {
		t.Fatal("completer must not be called when delegation is disabled")
	}
}

func TestAnswerDelegatesRawText(t *testing.T) {
	completer := &fakeCompleter{text: "  resposta remota \n"}
	r := newResolver(replyservice.Config{DelegationEnabled: true, Completer: completer})

	res := answer(t, r, "Quem É Você?")
	if res.Matched {
		t.Fatal("delegated answers are not table matches")
	}
	if res.Source != chat.SourceRemote || res.Text != "resposta remota" || res.Err != nil {
		t.Fatalf("unexpected resolution: %+v", res)
	}

	calls := completer.calls()
	if len(calls) != 1 || calls[0] != "Quem É Você?" {
		t.Fatalf("expected raw prompt to be delegated, got %v", calls)
	}
}

func TestAnswerDelegationFailureFallsBack(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("401 unauthorized")}
	r := newResolver(replyservice.Config{FallbackMessage: "fallback", DelegationEnabled: true, Completer: completer})

	res := answer(t, r, "asdkjasd")
	if res.Matched || res.Text != "fallback" {
		t.Fatalf("expected fallback text, got %+v", res)
	}
	if res.Source != chat.SourceRemoteFallback || res.Err == nil {
		t.Fatalf("expected failure to be recorded, got %+v", res)
	}
}

func TestAnswerEmptyCompletionFallsBack(t *testing.T) {
	completer := &fakeCompleter{text: "   "}
	r := newResolver(replyservice.Config{DelegationEnabled: true, Completer: completer})

	res := answer(t, r, "asdkjasd")
	if res.Text != replyservice.DefaultFallbackMessage || !errors.Is(res.Err, replyservice.ErrEmptyCompletion) {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestAnswerCompleterPanicFallsBack(t *testing.T) {
	completer := &fakeCompleter{panics: true}
	r := newResolver(replyservice.Config{DelegationEnabled: true, Completer: completer})

	res := answer(t, r, "asdkjasd")
	if res.Text != replyservice.DefaultFallbackMessage || res.Source != chat.SourceRemoteFallback {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}

func TestAnswerDelegationTimeoutFallsBack(t *testing.T) {
	completer := &fakeCompleter{block: true}
	r := newResolver(replyservice.Config{
		DelegationEnabled: true,
		Completer:         completer,
		DelegationTimeout: 20 * time.Millisecond,
	})

	res := answer(t, r, "asdkjasd")
	if res.Source != chat.SourceRemoteFallback || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout fallback, got %+v", res)
	}
}

func TestAnswerAbandonedResultDoesNotBlock(t *testing.T) {
	completer := &fakeCompleter{text: "late"}
	r := newResolver(replyservice.Config{DelegationEnabled: true, Completer: completer})

	ctx, cancel := context.WithCancel(context.Background())
	_ = r.Answer(ctx, "stale question")
	cancel()

	// A fresh query still resolves independently of the abandoned one.
	res := answer(t, r, "oi")
	if !res.Matched {
		t.Fatalf("expected hit, got %+v", res)
	}
}

func TestResolverConcurrentUse(t *testing.T) {
	r := newResolver(replyservice.Config{})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, matched := r.Resolve("oi"); !matched {
				t.Error("expected hit")
			}
		}()
	}
	wg.Wait()
}
