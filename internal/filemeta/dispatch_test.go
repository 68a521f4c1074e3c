package filemeta

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/filemeta/internal/workpool"
)

// makeFiles creates n files with distinct names and contents.
func makeFiles(t *testing.T, dir string, n int) []string {
	t.Helper()

	paths := make([]string, 0, n)
	for i := range n {
		name := fmt.Sprintf("file-%02d.dat", i)
		paths = append(paths, writeFile(t, filepath.Join(dir, name), bytes.Repeat([]byte{byte(i + 1)}, i+1)))
	}

	return paths
}

func TestRun_NoPaths(t *testing.T) {
	report, err := Run(context.Background(), nil, Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, EmptyReport, report.Text)
	assert.Empty(t, report.Lines)
	assert.Zero(t, report.Total)
	assert.Equal(t, "inline", report.Strategy)
	assert.NoError(t, report.Err())
}

func TestRun_SinglePath(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "one.bin"), bytes.Repeat([]byte{0x01}, 10))

	report, err := Run(context.Background(), []string{path}, Options{Location: time.UTC}, nil)
	require.NoError(t, err)

	require.Len(t, report.Lines, 1)
	assert.Equal(t, "inline", report.Strategy)
	assert.Zero(t, report.Workers)
	assert.Equal(t, report.Lines[0], report.Text)
	assert.True(t, strings.HasPrefix(report.Text, "one.bin;   size: 10 KB;   creation time: "))
	assert.True(t, strings.HasSuffix(report.Text, "   checksum: 10"))
}

func TestRun_Strategies(t *testing.T) {
	paths := makeFiles(t, t.TempDir(), 25)

	// Shuffle the input order; the report order must not depend on it.
	slices.Reverse(paths)

	var reports []*Report

	for _, strategy := range []Strategy{StrategyPool, StrategySpawn} {
		t.Run(strategy.String(), func(t *testing.T) {
			report, err := Run(context.Background(), paths, Options{
				Strategy: strategy,
				Workers:  4,
				Location: time.UTC,
			}, nil)
			require.NoError(t, err)

			assert.Equal(t, strategy.String(), report.Strategy)
			assert.Equal(t, len(paths), report.Total)
			assert.Equal(t, len(paths), report.Inspected)
			assert.Len(t, report.Lines, len(paths))
			assert.Empty(t, report.Skipped)
			assert.True(t, slices.IsSorted(report.Lines))
			assert.Equal(t, strings.Join(report.Lines, LineSeparator), report.Text)

			reports = append(reports, report)
		})
	}

	require.Len(t, reports, 2)
	assert.Equal(t, reports[0].Text, reports[1].Text)
	assert.Equal(t, 4, reports[0].Workers)
	assert.Equal(t, len(paths)-1, reports[1].Workers)
}

func TestRun_WorkersBoundedByBatch(t *testing.T) {
	paths := makeFiles(t, t.TempDir(), 3)

	report, err := Run(context.Background(), paths, Options{Workers: 64}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Workers)
	assert.Len(t, report.Lines, 3)
}

func TestRun_Duplicates(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "dup.txt"), []byte("duplicate"))

	report, err := Run(context.Background(), []string{path, path, path}, Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Inspected)
	assert.Len(t, report.Lines, 1)
}

func TestRun_IdenticalCopiesCollapse(t *testing.T) {
	dir := t.TempDir()
	content := []byte("same bytes in two places")

	paths := []string{
		writeFile(t, filepath.Join(dir, "a", "copy.txt"), content),
		writeFile(t, filepath.Join(dir, "b", "copy.txt"), content),
	}

	distinct := map[string]struct{}{}

	for _, path := range paths {
		desc, err := Inspector{Location: time.UTC}.Inspect(path)
		require.NoError(t, err)

		distinct[desc.Line()] = struct{}{}
	}

	report, err := Run(context.Background(), paths, Options{Location: time.UTC}, nil)
	require.NoError(t, err)

	// Both inputs were inspected; any collapse comes from equal lines only.
	assert.Equal(t, len(paths), report.Inspected)
	assert.Empty(t, report.Skipped)
	assert.Len(t, report.Lines, len(distinct))
	assert.LessOrEqual(t, len(report.Lines), len(paths))
}

func TestRun_UnreadablePaths(t *testing.T) {
	dir := t.TempDir()
	paths := makeFiles(t, dir, 4)
	missing := filepath.Join(dir, "missing.dat")
	paths = append([]string{missing}, paths...)
	paths = append(paths, dir)

	report, err := Run(context.Background(), paths, Options{}, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Inspected)
	assert.Len(t, report.Lines, 4)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, dir, report.Skipped[0].Path)
	assert.Equal(t, missing, report.Skipped[1].Path)

	for _, s := range report.Skipped {
		require.ErrorIs(t, s.Err, ErrPathUnreadable)
		assert.NotEmpty(t, s.Reason)
	}

	err = report.Err()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrPathUnreadable)
	assert.Contains(t, err.Error(), missing)
}

func TestRun_RequireResults(t *testing.T) {
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "nope"), filepath.Join(dir, "neither")}

	report, err := Run(context.Background(), paths, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyReport, report.Text)

	report, err = Run(context.Background(), paths, Options{RequireResults: true}, nil)
	require.ErrorIs(t, err, ErrNoResults)
	require.NotNil(t, report)
	assert.Len(t, report.Skipped, 2)

	report, err = Run(context.Background(), nil, Options{RequireResults: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, EmptyReport, report.Text)
}

func TestRun_SharedPool(t *testing.T) {
	pool := workpool.New(3)
	defer pool.Close()

	dir := t.TempDir()

	first, err := Run(context.Background(), makeFiles(t, filepath.Join(dir, "one"), 10), Options{Pool: pool}, nil)
	require.NoError(t, err)

	second, err := Run(context.Background(), makeFiles(t, filepath.Join(dir, "two"), 10), Options{Pool: pool}, nil)
	require.NoError(t, err)

	assert.Len(t, first.Lines, 10)
	assert.Len(t, second.Lines, 10)
	assert.Equal(t, 3, first.Workers)
	assert.Equal(t, workpool.Running, pool.State())
}

func TestRun_ClosedSharedPoolFallsBackInline(t *testing.T) {
	pool := workpool.New(2)
	pool.Close()

	report, err := Run(context.Background(), makeFiles(t, t.TempDir(), 5), Options{Pool: pool}, nil)
	require.NoError(t, err)

	assert.Len(t, report.Lines, 5)
}

func TestRun_Recursive(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, 3)
	makeFiles(t, filepath.Join(dir, "nested", "deeper"), 2)

	report, err := Run(context.Background(), []string{dir}, Options{}, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Lines)
	assert.Len(t, report.Skipped, 1)

	report, err = Run(context.Background(), []string{dir}, Options{Recursive: true}, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.Equal(t, 5, report.Inspected)
	// file-00 and file-01 exist at both levels with equal contents.
	assert.LessOrEqual(t, len(report.Lines), 5)
	assert.GreaterOrEqual(t, len(report.Lines), 3)
}

func TestRun_ProgressStopsWithBatch(t *testing.T) {
	paths := makeFiles(t, t.TempDir(), 8)

	var calls atomic.Int64

	report, err := Run(context.Background(), paths, Options{ProgressInterval: time.Millisecond}, func(p Progress) {
		assert.Equal(t, int64(len(paths)), p.Total)
		assert.LessOrEqual(t, p.Done, p.Total)
		calls.Add(1)
	})
	require.NoError(t, err)
	require.Len(t, report.Lines, len(paths))

	after := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "progress hook called after Run returned")
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		name    string
		want    Strategy
		wantErr bool
	}{
		{name: "", want: StrategyPool},
		{name: "pool", want: StrategyPool},
		{name: "Spawn", want: StrategySpawn},
		{name: "threads", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStrategy(tt.name)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
