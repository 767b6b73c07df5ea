package cli

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"calculette-hq/mtranspile/pkg/build"
)

var _ build.Progress = (*SimpleProgress)(nil)

func TestSimpleProgressBasic(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	output := buf.String()
	for _, want := range []string{"Translating:", "50.0% (2/4)", "100.0% (4/4)", "files/s"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if !strings.HasSuffix(output, "\n") {
		t.Error("Finish() should end the line")
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("expected no output for an empty run, got %q", buf.String())
	}
}

func TestSimpleProgressNeverMovesBackwards(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewLabeledProgress(buf, "Loading", "nodes")

	progress.Start(10)
	progress.Update(6)
	progress.Update(3)

	if progress.current != 6 {
		t.Errorf("current = %d, want 6", progress.current)
	}
	if !strings.Contains(buf.String(), "Loading:") {
		t.Errorf("label missing from %q", buf.String())
	}
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(3)
	progress.Error(fmt.Errorf("chap-2.json: malformed node"))

	output := buf.String()
	if !strings.Contains(output, "Error:") || !strings.Contains(output, "malformed node") {
		t.Errorf("error output = %q", output)
	}
}

func TestSimpleProgressConcurrent(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)
	progress.Start(1000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(start int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				progress.Update(int64(start*100 + j))
			}
		}(i)
	}
	wg.Wait()
	progress.Finish()

	if !strings.Contains(buf.String(), "(1000/1000)") {
		t.Error("expected final progress line")
	}
}

func TestNewProgressReporterNilWriter(t *testing.T) {
	progress := NewLabeledProgress(nil, "Translating", "files")
	if progress.writer == nil {
		t.Fatal("writer should default to stderr")
	}
}

func TestSimpleProgressLine(t *testing.T) {
	progress := NewLabeledProgress(&bytes.Buffer{}, "Translating", "files")
	progress.total, progress.current = 4, 2

	want := "Translating: [" + strings.Repeat("█", 15) + strings.Repeat("░", 15) + "] 50.0% (2/4) 1.0 files/s"
	if got := progress.line(2 * time.Second); got != want {
		t.Errorf("line() = %q, want %q", got, want)
	}
}
