package sse

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWriterStart(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)

	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}

	// Start is idempotent
	if err := w.Start(); err != nil {
		t.Errorf("second Start() error: %v", err)
	}
}

func TestWriterFraming(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if err := w.WriteEvent(NewTextEvent("hello")); err != nil {
		t.Fatalf("WriteEvent() error: %v", err)
	}
	if err := w.WriteEvent(NewTextEvent("world")); err != nil {
		t.Fatalf("WriteEvent() error: %v", err)
	}

	body := rec.Body.String()
	want := "data: {\"type\":\"text\",\"content\":\"hello\"}\n\n" +
		"data: {\"type\":\"text\",\"content\":\"world\"}\n\n"
	if body != want {
		t.Errorf("body = %q, want %q", body, want)
	}
}

func TestWriterClosesOnTerminalEvent(t *testing.T) {
	tests := []struct {
		name     string
		terminal Event
	}{
		{"done", NewDoneEvent()},
		{"error", NewErrorEvent("agent failed")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			w := NewWriter(rec)
			if err := w.Start(); err != nil {
				t.Fatalf("Start() error: %v", err)
			}

			if err := w.WriteEvent(tt.terminal); err != nil {
				t.Fatalf("WriteEvent(terminal) error: %v", err)
			}
			if !w.IsClosed() {
				t.Error("writer should be closed after terminal event")
			}

			if err := w.WriteEvent(NewTextEvent("late")); err == nil {
				t.Error("write after terminal event should fail")
			}
			if strings.Contains(rec.Body.String(), "late") {
				t.Error("late event must not reach the wire")
			}
		})
	}
}

func TestWriterCloseRejectsWrites(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewWriter(rec)
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	w.Close()
	if err := w.WriteEvent(NewTextEvent("x")); err == nil {
		t.Error("write after Close() should fail")
	}
}
