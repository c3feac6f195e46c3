package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ppiankov/mendable/internal/metrics"
	"github.com/ppiankov/mendable/pkg/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, w *Watcher) <-chan []string {
	t.Helper()

	batches := make(chan []string, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(_ context.Context, paths []string) {
			batches <- paths
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		_ = w.Close()
	})
	return batches
}

func waitBatch(t *testing.T, batches <-chan []string) []string {
	t.Helper()
	select {
	case paths := <-batches:
		return paths
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
		return nil
	}
}

func TestRunDebouncesReportChanges(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, true, 100*time.Millisecond, nil)
	require.NoError(t, err)
	w.Metrics = metrics.New()
	batches := startWatcher(t, w)

	report := filepath.Join(root, "app_release-composables.txt")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(report, []byte("fun A()\n"), 0o644))
	require.NoError(t, os.WriteFile(report, []byte("fun A()\nfun B()\n"), 0o644))

	paths := waitBatch(t, batches)
	assert.Equal(t, []string{report}, paths)
	assert.GreaterOrEqual(t, testutil.ToFloat64(w.Metrics.WatchEventsTotal), 1.0)
}

func TestRunFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, true, 50*time.Millisecond, nil)
	require.NoError(t, err)
	batches := startWatcher(t, w)

	dir := filepath.Join(root, "feature")
	require.NoError(t, os.Mkdir(dir, 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)

	report := filepath.Join(dir, "feature_release-composables.txt")
	require.NoError(t, os.WriteFile(report, []byte("fun A()\n"), 0o644))

	assert.Contains(t, waitBatch(t, batches), report)
}

func TestRelevantFiltersEvents(t *testing.T) {
	matcher, err := config.NewExcludeMatcher([]string{"*_debug"})
	require.NoError(t, err)
	w := &Watcher{root: "/repo", exclude: matcher}

	cases := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write report", event: fsnotify.Event{Name: "/repo/app/app_release-composables.txt", Op: fsnotify.Write}, want: true},
		{name: "remove report", event: fsnotify.Event{Name: "/repo/app_release-composables.txt", Op: fsnotify.Remove}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: "/repo/app_release-composables.txt", Op: fsnotify.Chmod}, want: false},
		{name: "other file", event: fsnotify.Event{Name: "/repo/app_release-module.json", Op: fsnotify.Write}, want: false},
		{name: "excluded module", event: fsnotify.Event{Name: "/repo/app_debug-composables.txt", Op: fsnotify.Create}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, w.relevant(tc.event))
		})
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(t.TempDir(), true, 0, nil)
	assert.Error(t, err)

	_, err = New(filepath.Join(t.TempDir(), "missing"), false, time.Second, nil)
	assert.Error(t, err)
}

func TestRunRequiresCallback(t *testing.T) {
	w, err := New(t.TempDir(), false, time.Second, nil)
	require.NoError(t, err)
	defer w.Close()

	assert.ErrorIs(t, w.Run(context.Background(), nil), os.ErrInvalid)
}
