package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumsInMemory(t *testing.T) {
	c, err := OpenChecksums(ChecksumOptions{})
	require.NoError(t, err)
	defer c.Close()

	changed, err := c.Changed("orders.yaml", []byte("a"))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = c.Changed("orders.yaml", []byte("a"))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = c.Changed("users.yaml", []byte("a"))
	require.NoError(t, err)
	assert.True(t, changed, "keys are independent")

	changed, err = c.Changed("orders.yaml", []byte("b"))
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, c.Forget("orders.yaml"))
	require.NoError(t, c.Forget("missing"))
	changed, err = c.Changed("orders.yaml", []byte("b"))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestChecksumsPersist(t *testing.T) {
	dir := t.TempDir()

	c, err := OpenChecksums(ChecksumOptions{Dir: dir})
	require.NoError(t, err)
	changed, err := c.Changed("orders.yaml", []byte("spec"))
	require.NoError(t, err)
	assert.True(t, changed)
	require.NoError(t, c.Close())

	c, err = OpenChecksums(ChecksumOptions{Dir: dir})
	require.NoError(t, err)
	defer c.Close()
	changed, err = c.Changed("orders.yaml", []byte("spec"))
	require.NoError(t, err)
	assert.False(t, changed)
}

type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) action(_ context.Context, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, string(data))
	return nil
}

func (r *recorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func TestWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	done := make(chan error, 1)
	go func() {
		done <- NewWatcher(path, 20*time.Millisecond, zerolog.Nop()).Run(ctx, rec.action)
	}()

	require.Eventually(t, func() bool { return len(rec.calls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"v1"}, rec.calls())

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.Eventually(t, func() bool { return len(rec.calls()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"v1", "v2"}, rec.calls())

	// Rewriting identical content and touching other files runs nothing.
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Len(t, rec.calls(), 2)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	err := NewWatcher(path, 0, zerolog.Nop()).Run(context.Background(), (&recorder{}).action)
	require.Error(t, err)
}
