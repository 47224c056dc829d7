package notify

import (
	"context"
	"errors"
	"testing"
)

type stubNotifier struct {
	id    string
	typ   string
	err   error
	calls int
}

func (s *stubNotifier) ID() string   { return s.id }
func (s *stubNotifier) Type() string { return s.typ }
func (s *stubNotifier) Notify(context.Context, Event) error {
	s.calls++
	return s.err
}

func TestFanoutNotifyAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Notifier{
		&stubNotifier{id: "ok", typ: "http"},
		&stubNotifier{id: "bad", typ: "http", err: errors.New("failed")},
	})

	count, err := fanout.Notify(context.Background(), Event{})
	if count != 1 {
		t.Fatalf("expected 1 success, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutSkipsNilNotifiers(t *testing.T) {
	fanout := NewFanout([]Notifier{nil, &stubNotifier{id: "ok", typ: "log"}})
	if fanout.Size() != 1 {
		t.Fatalf("expected nil notifier dropped, size %d", fanout.Size())
	}
}

type closableNotifier struct {
	stubNotifier
	closed   int
	closeErr error
}

func (c *closableNotifier) Close() error {
	c.closed++
	return c.closeErr
}

func TestFanoutCloseReleasesNotifiers(t *testing.T) {
	closable := &closableNotifier{stubNotifier: stubNotifier{id: "conn", typ: "pubsub"}}
	fanout := NewFanout([]Notifier{
		&stubNotifier{id: "plain", typ: "log"},
		closable,
	})

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closable.closed != 1 {
		t.Fatalf("expected 1 close call, got %d", closable.closed)
	}
}

func TestFanoutCloseAggregatesErrors(t *testing.T) {
	fanout := NewFanout([]Notifier{
		&closableNotifier{stubNotifier: stubNotifier{id: "bad", typ: "pubsub"}, closeErr: errors.New("conn refused")},
	})

	if err := fanout.Close(); err == nil {
		t.Fatalf("expected close error surfaced")
	}
}

func TestBuildAllWithDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	notifiers, err := BuildAll(context.Background(), reg, []NotifierConfig{
		{ID: "hook", Type: TypeHTTP, HTTP: &HTTPNotifierConfig{URL: "https://example.com", Method: "POST", TimeoutSeconds: 1}},
		{ID: "stdout", Type: TypeLog},
	}, nil)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	if len(notifiers) != 2 {
		t.Fatalf("expected 2 notifiers, got %d", len(notifiers))
	}
}

func TestBuildAllUnknownType(t *testing.T) {
	reg := DefaultRegistry()
	if _, err := BuildAll(context.Background(), reg, []NotifierConfig{{ID: "x", Type: "carrier-pigeon"}}, nil); err == nil {
		t.Fatalf("expected error for unknown notifier type")
	}
}
