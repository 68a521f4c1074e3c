package filemeta

import (
	"strings"
	"sync"

	"github.com/google/btree"
)

const (
	// EmptyReport is rendered when no line was ever inserted.
	EmptyReport = "empty"
	// LineSeparator separates rendered lines in a report.
	LineSeparator = "\n\n"

	btreeDegree = 16
)

// Aggregator is an ordered, duplicate-free set of rendered lines that is safe
// for concurrent inserts. Lines are kept in ascending byte order regardless of
// the order they arrive in.
type Aggregator struct {
	mu    sync.Mutex // Protect concurrent inserts
	lines *btree.BTreeG[string]
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		lines: btree.NewG[string](btreeDegree, func(a, b string) bool { return a < b }),
	}
}

// Insert adds line and reports whether it was new. Only the set update runs
// under the lock; callers produce the line beforehand.
func (a *Aggregator) Insert(line string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, replaced := a.lines.ReplaceOrInsert(line)

	return !replaced
}

// Len returns the number of distinct lines.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.lines.Len()
}

// Lines returns the distinct lines in sorted order.
func (a *Aggregator) Lines() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, a.lines.Len())
	a.lines.Ascend(func(line string) bool {
		out = append(out, line)

		return true
	})

	return out
}

// Render joins the sorted lines with a blank line between them, or returns
// EmptyReport when nothing was inserted. It must only be called once every
// insert has returned.
func (a *Aggregator) Render() string {
	lines := a.Lines()
	if len(lines) == 0 {
		return EmptyReport
	}

	return strings.Join(lines, LineSeparator)
}
