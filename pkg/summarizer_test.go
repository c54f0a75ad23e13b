package pkg

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ecopia-map/pointcloud_core/internal/ingest"
	"github.com/ecopia-map/pointcloud_core/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunSummary(t *testing.T) {
	tools.DisableLogger()
	defer tools.EnableLogger()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "2 10 20 30\n2 12 22 34\n")
	writeFile(t, filepath.Join(dir, "b.xyz"), "1 2 3\n4 5 6\n7 8 9\n")
	writeFile(t, filepath.Join(dir, "c.pts"), "7 1 1 1\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "not a point file")
	writeFile(t, filepath.Join(dir, "nested", "d.txt"), "1 1 1\n")

	opts := ingest.DefaultOptions()
	opts.Input = dir
	opts.FolderProcessing = true

	reports, err := NewSummarizer(tools.NewStandardFileFinder(), newTestIngestor(t, opts), 2).RunSummary(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	byName := make(map[string]*FileReport)
	for _, r := range reports {
		byName[filepath.Base(r.FilePath)] = r
	}
	assert.Equal(t, 2, byName["a.txt"].Summary.Points)
	assert.Equal(t, "a.txt", byName["a.txt"].Summary.Source)
	assert.Equal(t, 3, byName["b.xyz"].Summary.Points)
	assert.NoError(t, byName["b.xyz"].Err)
	assert.ErrorIs(t, byName["c.pts"].Err, ErrEmptyDataset)
	assert.NotEmpty(t, byName["c.pts"].Error)

	opts.Recursive = true
	reports, err = NewSummarizer(tools.NewStandardFileFinder(), newTestIngestor(t, opts), 0).RunSummary(context.Background(), opts)
	require.NoError(t, err)
	assert.Len(t, reports, 4)
}

func TestRunSummaryMissingFolder(t *testing.T) {
	opts := ingest.DefaultOptions()
	opts.Input = filepath.Join(t.TempDir(), "missing")
	opts.FolderProcessing = true

	_, err := NewSummarizer(tools.NewStandardFileFinder(), newTestIngestor(t, opts), 1).RunSummary(context.Background(), opts)
	assert.Error(t, err)
}

// finishes files in reverse order and cancels the run after the third one
type reversingIngestor struct {
	IIngestor
	delays   map[string]time.Duration
	cancel   context.CancelFunc
	finished atomic.Int32
}

func (r *reversingIngestor) IngestFile(ctx context.Context, filePath string) (*Result, error) {
	time.Sleep(r.delays[filepath.Base(filePath)])
	res, err := r.IIngestor.IngestFile(ctx, filePath)
	if r.finished.Add(1) == 3 {
		r.cancel()
	}
	return res, err
}

func TestRunSummaryCancelledKeepsFileOrder(t *testing.T) {
	tools.DisableLogger()
	defer tools.EnableLogger()

	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		writeFile(t, filepath.Join(dir, name), "2 10 20 30\n")
	}
	opts := ingest.DefaultOptions()
	opts.Input = dir
	opts.FolderProcessing = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	in := &reversingIngestor{
		IIngestor: newTestIngestor(t, opts),
		delays: map[string]time.Duration{
			"a.txt": 90 * time.Millisecond,
			"b.txt": 60 * time.Millisecond,
			"c.txt": 30 * time.Millisecond,
		},
		cancel: cancel,
	}

	reports, err := NewSummarizer(tools.NewStandardFileFinder(), in, 4).RunSummary(ctx, opts)
	assert.ErrorIs(t, err, context.Canceled)
	require.GreaterOrEqual(t, len(reports), 2)
	assert.True(t, sort.SliceIsSorted(reports, func(i, j int) bool { return reports[i].Index < reports[j].Index }),
		"partial reports out of file order")
}
