package utils

import (
	"net/http/httptest"
	"testing"
)

func TestSendSSEEventFormatsFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)
	SendSSEEvent(rec, rec, "message", map[string]string{"text": "oi"})

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type: %s", got)
	}
	want := "event: message\ndata: {\"text\":\"oi\"}\n\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected frame: %q", rec.Body.String())
	}
	if !rec.Flushed {
		t.Fatal("expected frame to be flushed")
	}
}

func TestRespondErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, 418, "nope")

	if rec.Code != 418 {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if rec.Body.String() != "{\"error\":\"nope\"}\n" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
