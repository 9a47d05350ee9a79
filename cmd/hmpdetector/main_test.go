package main

import (
	"flag"
	"io"
	"testing"
)

func TestRunRequiresExactlyOneOperation(t *testing.T) {
	flag.CommandLine.SetOutput(io.Discard)
	flag.Usage = func() {}

	reset := func() {
		*modelMode = false
		*validate = ""
		*testTrial = ""
		*classify = ""
		*braceletArg = ""
		*reason = ""
		*reportArg = ""
	}
	defer reset()

	t.Run("no operation", func(t *testing.T) {
		reset()
		if err := run(); err == nil {
			t.Error("expected error with no operation selected")
		}
	})

	t.Run("two operations", func(t *testing.T) {
		reset()
		*modelMode = true
		*validate = "drink"
		if err := run(); err == nil {
			t.Error("expected error with two operations selected")
		}
	})
}

func TestNewPublisherRejectsUnknownBackend(t *testing.T) {
	old := *publisher
	defer func() { *publisher = old }()
	*publisher = "carrier-pigeon"
	if _, err := newPublisher(); err == nil {
		t.Error("expected error for unknown backend")
	}
}
