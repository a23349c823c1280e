package progress_test

import (
	"testing"

	"github.com/campus-ai/tutor-core/internal/progress"
)

func TestMemorySession_GetSet(t *testing.T) {
	sess := progress.NewMemorySession()

	if _, ok := sess.Get("missing"); ok {
		t.Error("Get(missing) should not be found")
	}

	sess.Set("progress_student_id", "alice")
	v, ok := sess.Get("progress_student_id")
	if !ok || v != "alice" {
		t.Errorf("Get() = %q, %v; want alice, true", v, ok)
	}
}

func TestMemorySessionStore_SameSessionPerConversation(t *testing.T) {
	store := progress.NewMemorySessionStore()

	a := store.Session("conv-1")
	a.Set("k", "v")

	b := store.Session("conv-1")
	if v, ok := b.Get("k"); !ok || v != "v" {
		t.Errorf("Session(conv-1) should share state, got %q, %v", v, ok)
	}
}

func TestMemorySessionStore_DistinctConversations(t *testing.T) {
	store := progress.NewMemorySessionStore()

	store.Session("conv-1").Set("k", "v")

	if _, ok := store.Session("conv-2").Get("k"); ok {
		t.Error("Session(conv-2) should not see conv-1 state")
	}
}

func TestEventLoggers(t *testing.T) {
	mem := progress.NewMemoryEventLogger()
	multi := progress.MultiLogger{progress.NopEventLogger{}, mem}

	if err := multi.LogEvent(progress.Event{StudentID: "alice", EventType: "chapters_recorded"}); err != nil {
		t.Fatalf("LogEvent() error = %v", err)
	}
	if err := mem.LogEvent(progress.Event{}); err == nil {
		t.Error("LogEvent() should require event_type")
	}

	events := mem.Events()
	if len(events) != 1 {
		t.Fatalf("Events() len = %d, want 1", len(events))
	}
	if events[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be defaulted")
	}
}
