package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Counts is the running tally of a pool run.
type Counts struct {
	Done    int
	Total   int
	Failed  int
	Fetched int // successful tasks that went to the upstream tile server
}

// Cached returns the successful tasks that were already in the cache.
func (c Counts) Cached() int {
	return max(0, c.Done-c.Failed-c.Fetched)
}

// Finished reports whether every task has completed.
func (c Counts) Finished() bool {
	return c.Done >= c.Total
}

const barWidth = 30

// Bar glyphs: downloaded, already cached, failed, pending.
const (
	glyphFetched = "█"
	glyphCached  = "▒"
	glyphFailed  = "x"
	glyphPending = "░"
)

// Progress renders a one-line seeding status, splitting finished tiles into
// downloaded, already cached and failed.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	start   time.Time
	counts  Counts
}

// NewProgress creates a tracker for total tasks. When enabled it redraws its line
// on stderr after every update.
func NewProgress(total int, enabled bool) *Progress {
	return &Progress{
		out:     os.Stderr,
		enabled: enabled,
		start:   time.Now(),
		counts:  Counts{Total: total},
	}
}

// Update records the latest tally.
func (p *Progress) Update(c Counts) {
	p.mu.Lock()
	p.counts = c
	p.mu.Unlock()

	if p.enabled {
		p.Print()
	}
}

// Callback returns Update as a pool ProgressFunc.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Counts returns the latest tally.
func (p *Progress) Counts() Counts {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts
}

// Print redraws the status line in place.
func (p *Progress) Print() {
	fmt.Fprintf(p.out, "\r%s\x1b[K", p.line())
}

// Done prints the final status line followed by a newline.
func (p *Progress) Done() {
	if !p.enabled {
		return
	}
	p.Print()
	fmt.Fprintln(p.out)
}

// Summary describes the finished run in one sentence.
func (p *Progress) Summary() string {
	c := p.Counts()
	return fmt.Sprintf("Seeded %d/%d tiles in %s: %d downloaded, %d already cached, %d failed",
		c.Done-c.Failed, c.Total, formatDuration(time.Since(p.start)), c.Fetched, c.Cached(), c.Failed)
}

func (p *Progress) line() string {
	c := p.Counts()
	elapsed := time.Since(p.start)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %d/%d tiles: %d downloaded, %d cached", bar(c), c.Done, c.Total, c.Fetched, c.Cached())
	if c.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", c.Failed)
	}

	switch {
	case c.Finished():
		fmt.Fprintf(&b, " | done in %s", formatDuration(elapsed))
	case c.Done > 0:
		perTile := elapsed / time.Duration(c.Done)
		fmt.Fprintf(&b, " | ETA %s", formatDuration(perTile*time.Duration(c.Total-c.Done)))
	}

	return b.String()
}

// bar draws one cell per 1/barWidth of the total, in finishing category order.
func bar(c Counts) string {
	if c.Total <= 0 {
		return "[" + strings.Repeat(glyphPending, barWidth) + "]"
	}
	cells := func(n int) int { return min(barWidth, n*barWidth/c.Total) }

	done := cells(c.Done)
	fetched := cells(c.Fetched)
	failed := min(done-fetched, cells(c.Failed))
	cached := done - fetched - failed

	return "[" +
		strings.Repeat(glyphFetched, fetched) +
		strings.Repeat(glyphCached, cached) +
		strings.Repeat(glyphFailed, failed) +
		strings.Repeat(glyphPending, barWidth-done) +
		"]"
}

// formatDuration rounds to seconds; anything shorter shows as milliseconds.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Second).String()
}
