package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/SebastienMelki/eframe/pkg/eframe"
)

// fakeMsg records how the Source settled it.
type fakeMsg struct {
	subject string
	header  nats.Header
	data    []byte
	acked   bool
	nacked  bool
}

func (m *fakeMsg) Subject() string      { return m.subject }
func (m *fakeMsg) Headers() nats.Header { return m.header }
func (m *fakeMsg) Data() []byte         { return m.data }
func (m *fakeMsg) Ack() error           { m.acked = true; return nil }
func (m *fakeMsg) Nak() error           { m.nacked = true; return nil }

func newFakeMsg(entity string, initial bool) *fakeMsg {
	m := Message{Subject: "frames.devices", Entity: entity, Initial: initial, Data: []byte(entity)}
	return &fakeMsg{subject: m.Subject, header: m.Header(), data: m.Data}
}

func TestSource_HandleAcksAndDedups(t *testing.T) {
	tx, rx := eframe.Bounded[Message](8)
	defer rx.Release()

	src := NewSource(nil, tx, SourceConfig{Consumer: "test"}, nil, nil)
	ctx := context.Background()

	msgs := []*fakeMsg{
		newFakeMsg("device-1", true),
		newFakeMsg("device-1", true),
		newFakeMsg("device-1", false),
	}
	for _, m := range msgs {
		if err := src.handle(ctx, m); err != nil {
			t.Fatalf("handle() error = %v", err)
		}
		if !m.acked || m.nacked {
			t.Errorf("message acked=%v nacked=%v, want acked only", m.acked, m.nacked)
		}
	}

	delivered := 0
	for {
		if _, err := rx.TryRecv(); err != nil {
			break
		}
		delivered++
	}
	if delivered != 2 {
		t.Errorf("delivered %d messages, want 2 (duplicate initial suppressed)", delivered)
	}
}

func TestSource_HandleNaksWhenClosed(t *testing.T) {
	tx, rx := eframe.Bounded[Message](1)
	rx.Release()

	src := NewSource(nil, tx, SourceConfig{Consumer: "test"}, nil, nil)
	m := newFakeMsg("device-1", false)

	err := src.handle(context.Background(), m)
	if !errors.Is(err, eframe.ErrClosed) {
		t.Errorf("handle() error = %v, want %v", err, eframe.ErrClosed)
	}
	if m.acked || !m.nacked {
		t.Errorf("message acked=%v nacked=%v, want nacked only", m.acked, m.nacked)
	}
}

func TestSource_StartTwice(t *testing.T) {
	tx, rx := eframe.Bounded[Message](1)
	defer rx.Release()
	tx.Close()

	src := NewSource(nil, tx, SourceConfig{Consumer: "test"}, nil, nil)
	ctx := context.Background()

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := src.Start(ctx); !errors.Is(err, ErrSourceStarted) {
		t.Errorf("second Start() error = %v, want %v", err, ErrSourceStarted)
	}

	// The channel is already closed, so the loop exits without fetching.
	if err := src.Stop(ctx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if got := rx.SenderCount(); got != 0 {
		t.Errorf("SenderCount() = %d after source exit, want 0", got)
	}
}
