package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatzinho/chatzinho/backend/internal/model/chat"
	replyservice "github.com/chatzinho/chatzinho/backend/internal/service/reply"
)

var (
	ErrEmptyInput      = errors.New("message text is required")
	ErrSessionNotFound = errors.New("session not found")
)

// Responder resolves one raw user message into exactly one Resolution.
type Responder interface {
	Answer(ctx context.Context, raw string) <-chan replyservice.Resolution
}

// Service encapsulates conversation state management.
type Service struct {
	responder Responder

	mu          sync.RWMutex
	sessions    map[string]chat.Session
	transcripts map[string][]chat.Utterance
}

// NewService bootstraps the in-memory chat service.
func NewService(responder Responder) *Service {
	return &Service{
		responder:   responder,
		sessions:    make(map[string]chat.Session),
		transcripts: make(map[string][]chat.Utterance),
	}
}

// CreateSession provisions an anonymous session with an empty transcript.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.transcripts[session.ID] = make([]chat.Utterance, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Turn runs one user message through the responder and appends the user
// utterance followed by the bot reply to the session transcript. If ctx ends
// before the reply arrives nothing is appended and ctx.Err() is returned.
func (s *Service) Turn(ctx context.Context, sessionID, raw string) (chat.Exchange, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return chat.Exchange{}, ErrEmptyInput
	}

	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return chat.Exchange{}, err
	}

	var resolution replyservice.Resolution
	select {
	case res, ok := <-s.responder.Answer(ctx, text):
		if !ok {
			return chat.Exchange{}, errors.New("responder closed without a result")
		}
		resolution = res
	case <-ctx.Done():
		return chat.Exchange{}, ctx.Err()
	}

	if resolution.Err != nil {
		log.Printf("[chat] delegation failed session=%s, using fallback: %v", sessionID, resolution.Err)
	}

	now := time.Now().UTC()
	exchange := chat.Exchange{
		User: chat.Utterance{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Origin:    chat.OriginUser,
			Text:      text,
			Key:       resolution.Key,
			CreatedAt: now,
		},
		Bot: chat.Utterance{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Origin:    chat.OriginBot,
			Text:      resolution.Text,
			Source:    resolution.Source,
			CreatedAt: time.Now().UTC(),
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return chat.Exchange{}, ErrSessionNotFound
	}
	s.transcripts[sessionID] = append(s.transcripts[sessionID], exchange.User, exchange.Bot)
	return exchange, nil
}

// LoadTranscript returns the utterances for the session in arrival order.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Utterance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	utterances, ok := s.transcripts[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Utterance, len(utterances))
	copy(copied, utterances)
	return copied, nil
}
