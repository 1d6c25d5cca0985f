package eframe

import (
	"testing"

	"github.com/google/uuid"
)

func TestMemory(t *testing.T) {
	tests := []struct {
		name   string
		memory func() Memory
	}{
		{name: "set", memory: NewSetMemory},
		{name: "bloom", memory: func() Memory { return NewBloomMemory(10000, 0.0001) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.memory()

			if m.Contains(42) {
				t.Error("Contains(42) = true on empty memory, want false")
			}

			m.Insert(42)
			m.Insert(42)
			m.Insert(7)

			if !m.Contains(42) || !m.Contains(7) {
				t.Error("Contains() = false for inserted hash, want true")
			}
			if got := m.Len(); got != 2 {
				t.Errorf("Len() = %d, want 2", got)
			}

			m.Reset()
			if m.Contains(42) {
				t.Error("Contains(42) = true after Reset, want false")
			}
			if got := m.Len(); got != 0 {
				t.Errorf("Len() after Reset = %d, want 0", got)
			}
		})
	}
}

func TestHashHelpers(t *testing.T) {
	if HashString("device-1") != HashString("device-1") {
		t.Error("HashString() is not deterministic")
	}
	if HashString("device-1") == HashString("device-2") {
		t.Error("HashString() collides for distinct keys")
	}
	if HashBytes([]byte("device-1")) != HashString("device-1") {
		t.Error("HashBytes() and HashString() disagree on the same key")
	}

	id := uuid.New()
	if HashUUID(id) != HashBytes(id[:]) {
		t.Error("HashUUID() differs from hashing the raw UUID bytes")
	}
}

func TestFrame(t *testing.T) {
	f := NewFrame(entity{ID: "a"})
	if f.Initial() {
		t.Error("NewFrame().Initial() = true, want false")
	}
	if f.Data().ID != "a" {
		t.Errorf("Data().ID = %q, want a", f.Data().ID)
	}

	if !NewInitialFrame(entity{ID: "a"}).Initial() {
		t.Error("NewInitialFrame().Initial() = false, want true")
	}
}
