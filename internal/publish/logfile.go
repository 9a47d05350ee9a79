package publish

import (
	"fmt"
	"os"
	"sync"
)

// LogFile appends each tuple as a "key value" line to a file.
type LogFile struct {
	mu sync.Mutex
	f  *os.File
}

// NewLogFile opens (or creates) the log file in append mode.
func NewLogFile(path string) (*LogFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log publisher: %w", err)
	}
	return &LogFile{f: f}, nil
}

func (l *LogFile) Publish(key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.f, "%s %s\n", key, value)
	return err
}

func (l *LogFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
