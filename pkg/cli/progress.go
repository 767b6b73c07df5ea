package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// SimpleProgress implements a simple text-based progress reporter.
type SimpleProgress struct {
	mu      sync.Mutex
	label   string
	unit    string
	total   int64
	current int64
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress reporter counting files, that
// writes to w. If w is nil, it defaults to os.Stderr so that stdout
// stays free for command results.
func NewProgressReporter(w io.Writer) ProgressReporter {
	return NewLabeledProgress(w, "Translating", "files")
}

// NewLabeledProgress creates a progress reporter with a custom label and
// unit.
func NewLabeledProgress(w io.Writer, label, unit string) *SimpleProgress {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{
		writer: w,
		label:  label,
		unit:   unit,
	}
}

// Start initializes the progress reporter with the total number of items.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()

	p.render()
}

// Update updates the current progress. Updates never move it backwards.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current < p.current {
		return
	}
	p.current = current
	p.render()
}

// Finish marks the progress as complete.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	if p.total > 0 {
		fmt.Fprintln(p.writer)
	}
}

// Error reports an error during progress.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}
	fmt.Fprint(p.writer, "\r"+p.line(time.Since(p.started)))
}

// line formats the progress after elapsed, e.g.
// "Translating: [█████░░░░░] 50.0% (2/4) 12.5 files/s".
func (p *SimpleProgress) line(elapsed time.Duration) string {
	const barWidth = 30

	ratio := float64(p.current) / float64(p.total)
	filled := int(barWidth * ratio)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.current) / elapsed.Seconds()
	}
	return fmt.Sprintf("%s: [%s] %.1f%% (%d/%d) %.1f %s/s",
		p.label, bar, ratio*100, p.current, p.total, rate, p.unit)
}
