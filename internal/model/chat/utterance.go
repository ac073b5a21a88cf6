package chat

import "time"

// Origin tells who produced an utterance.
type Origin string

const (
	OriginUser Origin = "user"
	OriginBot  Origin = "bot"
)

// Source records how a bot reply was obtained.
type Source string

const (
	SourceTable          Source = "table"
	SourceFallback       Source = "fallback"
	SourceRemote         Source = "remote"
	SourceRemoteFallback Source = "remote-fallback"
)

// Utterance is one immutable turn entry in a transcript. It is created once
// and only ever passed by value.
type Utterance struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Origin    Origin    `json:"origin"`
	Text      string    `json:"text"`
	Key       string    `json:"key"`
	Source    Source    `json:"source,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Exchange is the ordered (user, bot) pair produced by a single turn.
type Exchange struct {
	User Utterance `json:"user"`
	Bot  Utterance `json:"bot"`
}
