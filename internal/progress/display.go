package progress

import (
	"fmt"
	"os"
	"time"
)

// Display periodically renders tracker state to the console
type Display struct {
	tracker  *Tracker
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewDisplay creates a new progress display
func NewDisplay(tracker *Tracker, interval time.Duration) *Display {
	return &Display{
		tracker:  tracker,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start starts the progress display
func (d *Display) Start() {
	go d.displayLoop()
}

// Stop stops the progress display and renders the final line
func (d *Display) Stop() {
	close(d.stopCh)
	<-d.doneCh
}

// displayLoop runs the display update loop
func (d *Display) displayLoop() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.render(false)
		case <-d.stopCh:
			d.render(true)
			return
		}
	}
}

// render draws the progress line in place; final appends a newline so
// subsequent output starts clean
func (d *Display) render(final bool) {
	status := d.tracker.GetStatus()

	line := fmt.Sprintf("Progress: %d/%d files (%.1f%%) | %s/%s | %s (avg %s) | ETA %s | failed %d",
		status.ProcessedObjects,
		status.TotalObjects,
		d.tracker.GetProgressPercent(),
		FormatBytes(status.ProcessedBytes),
		FormatBytes(status.TotalBytes),
		FormatSpeed(status.CurrentSpeed),
		FormatSpeed(status.AverageSpeed),
		FormatDuration(status.ETA),
		status.FailedObjects,
	)

	// \r rewrites the line in place; pad so a shorter line fully covers
	// the previous one.
	fmt.Printf("\r%-100s", line)
	if final {
		fmt.Println()
	}
}

// IsTerminalSupported reports whether stdout is a terminal
func IsTerminalSupported() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
