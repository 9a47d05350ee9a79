package classifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wearable-data/hmpdetector/internal/bracelet"
	"github.com/wearable-data/hmpdetector/internal/serialmux"
)

func TestOnlinePublishesPerWarmSample(t *testing.T) {
	rec := &recorder{}
	c := newTestClassifier(t, rec, 3, ModelSpec{Name: "drink", GravityWeight: 1, BodyWeight: 0, Threshold: 10})

	// five good samples and one truncated line that must be dropped
	stream := strings.Repeat("1 0 0 0 0 0 0 0\n", 3) +
		"1 0 0\n" +
		strings.Repeat("1 0 0 0 0 0 0 0\n", 2)
	mux := serialmux.NewMock(stream)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Online(ctx, mux, nil) }()
	// let Online subscribe before the mock stream starts draining
	time.Sleep(100 * time.Millisecond)
	go func() {
		// EOF on the mock stream ends Monitor; closing the mux releases the
		// subscription
		mux.Monitor(ctx)
		mux.Close()
	}()
	if err := <-done; err != nil {
		t.Fatalf("Online returned %v", err)
	}

	count := 0
	for _, tuple := range rec.tuples {
		if tuple[0] == "possibilities" {
			count++
		}
	}
	// five good samples, window of three: vectors for samples 3, 4, 5
	if count != 3 {
		t.Errorf("published %d possibility vectors, want 3", count)
	}
}

func TestOnlineFeedsTracker(t *testing.T) {
	rec := &recorder{}
	c := newTestClassifier(t, rec, 3, ModelSpec{Name: "drink", GravityWeight: 1, BodyWeight: 0, Threshold: 10})

	var events []bracelet.Event
	tracker := bracelet.NewTracker(c.ModelNames(), 0.8, func(e bracelet.Event) {
		events = append(events, e)
	})

	// a zero stream matches the flat model exactly: possibility 1 from the
	// first warm window, so the tracker opens immediately
	mux := serialmux.NewMock(strings.Repeat("1 0 0 0 0 0 0 0\n", 4))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Online(ctx, mux, tracker) }()
	time.Sleep(100 * time.Millisecond)
	go func() {
		mux.Monitor(ctx)
		mux.Close()
	}()
	if err := <-done; err != nil {
		t.Fatalf("Online returned %v", err)
	}

	if len(events) < 2 {
		t.Fatalf("tracker saw %d events, want at least open + update", len(events))
	}
	if events[0].Kind != bracelet.Opened {
		t.Errorf("first event = %v, want Opened", events[0].Kind)
	}
	// online sample indices count acquired samples, so the first warm window
	// is sample 3
	if events[0].Sample != 3 {
		t.Errorf("opened at sample %d, want 3", events[0].Sample)
	}
}
