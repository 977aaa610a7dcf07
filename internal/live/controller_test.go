package live

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"biodash/internal/models"
)

type fakeSource struct {
	mu      sync.Mutex
	reading *models.SensorReading
	err     error
}

func (s *fakeSource) Latest(context.Context) (*models.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reading, s.err
}

func (s *fakeSource) set(r *models.SensorReading, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reading, s.err = r, err
}

type fakePush struct {
	mu         sync.Mutex
	handler    func(models.SensorReading)
	unsubCalls int
	subErr     error
}

func (p *fakePush) Subscribe(h func(models.SensorReading)) (func(), error) {
	if p.subErr != nil {
		return nil, p.subErr
	}
	p.mu.Lock()
	p.handler = h
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.unsubCalls++
		p.mu.Unlock()
	}, nil
}

func (p *fakePush) deliver(r models.SensorReading) {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h(r)
	}
}

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func reading(id string) *models.SensorReading {
	return &models.SensorReading{ID: id, Timestamp: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)}
}

func waitState(t *testing.T, ch <-chan State) State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a state update")
		return State{}
	}
}

func TestPushThenPollLastWriteWins(t *testing.T) {
	// A push delivering R1 followed by a poll returning R2 leaves R2 in
	// place: there is deliberately no ordering check between the channels.
	src := &fakeSource{}
	c := New(src, nil, time.Hour, silentLogger())

	r1 := *reading("r1")
	c.submit(&r1)
	if got := c.Snapshot().Reading; got == nil || got.ID != "r1" {
		t.Fatalf("after push: reading = %+v, want r1", got)
	}

	src.set(reading("r2"), nil)
	c.pollOnce(context.Background(), false)
	if got := c.Snapshot().Reading; got == nil || got.ID != "r2" {
		t.Fatalf("after poll: reading = %+v, want r2 (last write wins)", got)
	}
}

func TestInitialFetchFailureClearsLoading(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	c := New(src, nil, time.Hour, silentLogger())
	c.state.Loading = true

	c.pollOnce(context.Background(), true)
	got := c.Snapshot()
	if got.Loading {
		t.Error("loading still true after failed initial fetch")
	}
	if got.Reading != nil {
		t.Errorf("reading = %+v, want unchanged nil", got.Reading)
	}
}

func TestFetchFailureKeepsPriorReading(t *testing.T) {
	src := &fakeSource{}
	c := New(src, nil, time.Hour, silentLogger())
	c.submit(reading("r1"))

	src.set(nil, errors.New("timeout"))
	c.pollOnce(context.Background(), false)
	if got := c.Snapshot().Reading; got == nil || got.ID != "r1" {
		t.Fatalf("reading = %+v, want stale r1 kept", got)
	}
}

func TestEmptySourceYieldsNilReading(t *testing.T) {
	src := &fakeSource{} // Latest returns (nil, nil): empty store
	c := New(src, nil, time.Hour, silentLogger())
	c.state.Loading = true

	c.pollOnce(context.Background(), true)
	got := c.Snapshot()
	if got.Loading || got.Reading != nil {
		t.Fatalf("state = %+v, want {nil, false}", got)
	}
}

func TestStartSubscribesAndEmitsOnEverySync(t *testing.T) {
	src := &fakeSource{reading: reading("r0")}
	push := &fakePush{}
	c := New(src, push, time.Hour, silentLogger())
	updates, cancel := c.Updates()
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	c.Start(ctx)
	defer c.Stop()

	first := waitState(t, updates)
	if first.Loading || first.Reading == nil || first.Reading.ID != "r0" {
		t.Fatalf("initial sync state = %+v, want r0 loaded", first)
	}

	push.deliver(*reading("r1"))
	second := waitState(t, updates)
	if second.Reading == nil || second.Reading.ID != "r1" {
		t.Fatalf("push sync state = %+v, want r1", second)
	}
}

func TestStopReleasesTriggersAndBlocksLateDelivery(t *testing.T) {
	src := &fakeSource{reading: reading("r0")}
	push := &fakePush{}
	c := New(src, push, time.Hour, silentLogger())
	updates, cancel := c.Updates()
	defer cancel()

	c.Start(context.Background())
	waitState(t, updates)

	c.Stop()
	c.Stop() // idempotent
	if push.unsubCalls != 1 {
		t.Fatalf("unsubscribe calls = %d, want exactly 1", push.unsubCalls)
	}

	// A delayed push delivery after teardown must not reach the slot.
	push.deliver(*reading("late-push"))
	// Neither may a pending poll completing after teardown.
	src.set(reading("late-poll"), nil)
	c.pollOnce(context.Background(), false)

	if got := c.Snapshot().Reading; got == nil || got.ID != "r0" {
		t.Fatalf("reading = %+v, want r0 untouched after Stop", got)
	}
}

func TestStartWithFailingPushFallsBackToPolling(t *testing.T) {
	src := &fakeSource{reading: reading("r0")}
	push := &fakePush{subErr: errors.New("broker unreachable")}
	c := New(src, push, time.Hour, silentLogger())
	updates, cancel := c.Updates()
	defer cancel()

	c.Start(context.Background())
	defer c.Stop()

	got := waitState(t, updates)
	if got.Reading == nil || got.Reading.ID != "r0" {
		t.Fatalf("state = %+v, want r0 from poll", got)
	}
}
