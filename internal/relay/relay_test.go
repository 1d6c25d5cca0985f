package relay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/SebastienMelki/eframe/internal/nats"
	"github.com/SebastienMelki/eframe/pkg/eframe"
)

type published struct {
	subject string
	msg     nats.Message
}

// recordingForwarder captures forwarded messages and fails for entities
// listed in failFor.
type recordingForwarder struct {
	mu      sync.Mutex
	out     []published
	failFor map[string]bool
}

func (f *recordingForwarder) PublishFrame(_ context.Context, subject string, msg nats.Message) error {
	if f.failFor[msg.Entity] {
		return errors.New("downstream unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, published{subject: subject, msg: msg})
	return nil
}

func (f *recordingForwarder) published() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.out...)
}

func snapshot(entity string) nats.Message {
	return nats.Message{Subject: "frames.devices", Entity: entity, Initial: true, Data: []byte(entity)}
}

func update(entity string) nats.Message {
	return nats.Message{Subject: "frames.devices", Entity: entity, Data: []byte(entity)}
}

func runRelay(t *testing.T, r *Relay) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- r.Run(context.Background())
	}()
	return done
}

func waitDone(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after channel closed")
	}
}

func TestRelay_ForwardsDeduplicated(t *testing.T) {
	tx, rx := eframe.Bounded[nats.Message](16)
	defer rx.Release()

	fwd := &recordingForwarder{}
	r := New(rx, fwd, Config{TargetPrefix: "deduped", Burst: 10}, nil, nil)

	for _, m := range []nats.Message{
		snapshot("device-1"),
		snapshot("device-1"),
		update("device-1"),
		snapshot("device-2"),
		update("device-2"),
		snapshot("device-2"),
	} {
		if err := tx.TrySendFrame(frameFor(m)); err != nil {
			t.Fatalf("TrySendFrame() error = %v", err)
		}
	}
	tx.Release()

	waitDone(t, runRelay(t, r))

	got := fwd.published()
	if len(got) != 4 {
		t.Fatalf("forwarded %d messages, want 4", len(got))
	}
	if got[0].subject != "deduped.frames.devices" {
		t.Errorf("subject = %q, want deduped.frames.devices", got[0].subject)
	}
	if !got[0].msg.Initial || got[1].msg.Initial {
		t.Error("initial flag not preserved on forwarded messages")
	}

	stats := r.Stats()
	if stats.Forwarded != 4 || stats.Failed != 0 || stats.Processed != 2 || !stats.Closed {
		t.Errorf("Stats() = %+v, want 4 forwarded, 2 processed, closed", stats)
	}
}

func frameFor(m nats.Message) eframe.Frame[nats.Message] {
	if m.Initial {
		return eframe.NewInitialFrame(m)
	}
	return eframe.NewFrame(m)
}

func TestRelay_CountsFailures(t *testing.T) {
	tx, rx := eframe.Bounded[nats.Message](4)
	defer rx.Release()

	fwd := &recordingForwarder{failFor: map[string]bool{"broken": true}}
	r := New(rx, fwd, Config{}, nil, nil)

	_ = tx.TrySend(update("broken"))
	_ = tx.TrySend(update("ok"))
	tx.Release()

	waitDone(t, runRelay(t, r))

	stats := r.Stats()
	if stats.Failed != 1 || stats.Forwarded != 1 {
		t.Errorf("Stats() = %+v, want 1 failed and 1 forwarded", stats)
	}
	if got := fwd.published(); len(got) != 1 || got[0].subject != "frames.devices" {
		t.Errorf("published %+v, want one message on the unprefixed subject", got)
	}
}

func TestRelay_ResetForwardsSnapshotsAgain(t *testing.T) {
	tx, rx := eframe.Bounded[nats.Message](4)
	defer rx.Release()

	fwd := &recordingForwarder{}
	r := New(rx, fwd, Config{}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	_ = tx.TrySendInitial(snapshot("device-1"))
	waitFor(t, func() bool { return len(fwd.published()) == 1 })

	r.Reset(ctx)
	if r.Stats().Processed != 0 {
		t.Errorf("Processed = %d after Reset, want 0", r.Stats().Processed)
	}

	_ = tx.TrySendInitial(snapshot("device-1"))
	waitFor(t, func() bool { return len(fwd.published()) == 2 })

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want %v", err, context.Canceled)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	tx.Release()
}

func TestRelay_RateLimited(t *testing.T) {
	tx, rx := eframe.Bounded[nats.Message](8)
	defer rx.Release()

	fwd := &recordingForwarder{}
	r := New(rx, fwd, Config{RateLimit: 50, Burst: 1}, nil, nil)

	for range 4 {
		_ = tx.TrySend(update("device-1"))
	}
	tx.Release()

	start := time.Now()
	waitDone(t, runRelay(t, r))

	// One message passes on the burst, the other three wait 20ms each.
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("forwarded 4 messages in %v, want rate limiting to take at least 50ms", elapsed)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
