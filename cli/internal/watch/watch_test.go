package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	var calls atomic.Int32

	w, err := NewWatcher(dir, func() error {
		calls.Add(1)
		return nil
	}, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Start())
	assert.Equal(t, int32(1), calls.Load(), "Start runs the callback once")

	// a burst of writes settles into a single rerun
	path := filepath.Join(dir, "V1__init.sql")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("CREATE TABLE t (id INT);"), 0644))
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherInitialFailure(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), func() error { return assert.AnError })
	require.NoError(t, err)
	defer w.Stop()

	err = w.Start()
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), func() error { return nil })
	assert.Error(t, err)
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/s/V1__init.sql", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/s/V2__users.sql", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/s/V1__init.sql", Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: "/s/V1__init.sql", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/s/.V1__init.sql.swx", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/s/V1__init.sql~", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/s/V1__init.sql.swp", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, relevant(tt.event), tt.event.String())
	}
}
