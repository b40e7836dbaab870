package live

import (
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSubscriptionFiltering(t *testing.T) {
	c := &Client{matches: make(map[string]bool)}

	// No subscriptions: receive everything.
	if !c.subscribed("m1") {
		t.Error("unfiltered client should receive all matches")
	}

	c.handleMessage([]byte(`{"type":"subscribe","match_ids":["m1","m2"]}`))
	if !c.subscribed("m1") || !c.subscribed("m2") {
		t.Error("subscribed matches not receiving")
	}
	if c.subscribed("m3") {
		t.Error("unsubscribed match receiving")
	}

	c.handleMessage([]byte(`{"type":"unsubscribe","match_ids":["m1"]}`))
	if c.subscribed("m1") {
		t.Error("m1 still receiving after unsubscribe")
	}
	if !c.subscribed("m2") {
		t.Error("m2 dropped by partial unsubscribe")
	}

	// Bare unsubscribe clears all filters.
	c.handleMessage([]byte(`{"type":"unsubscribe"}`))
	if !c.subscribed("m3") {
		t.Error("cleared client should receive all matches again")
	}
}

func TestMalformedControlFrameIgnored(t *testing.T) {
	c := &Client{matches: map[string]bool{"m1": true}}
	c.handleMessage([]byte(`not json`))
	if !c.subscribed("m1") {
		t.Error("malformed frame changed subscriptions")
	}
}

func TestPublishDoesNotBlockWhenFull(t *testing.T) {
	h := NewHub(testLogger())
	// Fill the queue without a running Run loop.
	for i := 0; i < cap(h.broadcast)+10; i++ {
		h.Publish(&Event{Type: EventScoreUpdate, MatchID: "m1"})
	}
}
