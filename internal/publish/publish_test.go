package publish

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorder captures tuples in memory.
type recorder struct {
	mu     sync.Mutex
	tuples [][2]string
}

func (r *recorder) Publish(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tuples = append(r.tuples, [2]string{key, value})
	return nil
}

func (r *recorder) Close() error { return nil }

func TestNamespaced(t *testing.T) {
	rec := &recorder{}
	p := Namespaced(rec, "HMPdetector.")
	require.NoError(t, p.Publish("possibilities", "0.5 0.2"))
	require.Len(t, rec.tuples, 1)
	require.Equal(t, "HMPdetector.possibilities", rec.tuples[0][0])
	require.Equal(t, "0.5 0.2", rec.tuples[0][1])
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	p, err := NewLogFile(path)
	require.NoError(t, err)
	require.NoError(t, p.Publish("numModels", "3"))
	require.NoError(t, p.Publish("highest", "drink"))
	require.NoError(t, p.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "numModels 3\nhighest drink\n", string(content))
}

func TestLogFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	for _, v := range []string{"1", "2"} {
		p, err := NewLogFile(path)
		require.NoError(t, err)
		require.NoError(t, p.Publish("run", v))
		require.NoError(t, p.Close())
	}
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "run 1\nrun 2\n", string(content))
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuples.db")
	p, err := NewSQLite(path)
	require.NoError(t, err)
	defer p.Close()

	require.NotEmpty(t, p.RunID())
	require.NoError(t, p.Publish("possibilities", "0.1 0.9"))
	require.NoError(t, p.Publish("possibilities", "0.2 0.8"))
	require.NoError(t, p.Publish("highest", "climb"))

	last, err := p.Last("possibilities")
	require.NoError(t, err)
	require.Equal(t, "0.2 0.8", last)

	_, err = p.Last("never-published")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSQLiteSeparatesRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuples.db")
	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Publish("highest", "sit"))
	require.NoError(t, first.Close())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	defer second.Close()
	require.NotEqual(t, first.RunID(), second.RunID())
	_, err = second.Last("highest")
	require.ErrorIs(t, err, sql.ErrNoRows)
}
