package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
)

// Activity shows what a running pipeline is doing: a spinner for stages
// of unknown length that switches to a progress bar once work can be
// counted. It is driven from a single goroutine.
type Activity struct {
	spin *spinner.Spinner
	bar  *progressbar.ProgressBar
}

// NewActivity starts a spinner labelled with message.
func NewActivity(message string) *Activity {
	s := spinner.New(spinner.CharSets[11], 120*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return &Activity{spin: s}
}

// Step relabels the spinner. It is ignored while a bar is shown.
func (a *Activity) Step(message string) {
	if a.bar != nil {
		return
	}
	a.spin.Lock()
	a.spin.Suffix = " " + message
	a.spin.Unlock()
}

// Count moves the bar to done of total, replacing the spinner on first use.
func (a *Activity) Count(label string, done, total int) {
	if a.bar == nil {
		a.spin.Stop()
		a.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		)
	}
	_ = a.bar.Set(done)
}

// Print writes a line without tearing the spinner.
func (a *Activity) Print(fn func()) {
	if a.bar != nil {
		fn()
		return
	}
	a.spin.Stop()
	fn()
	a.spin.Start()
}

// Done clears the spinner and completes any bar.
func (a *Activity) Done() {
	a.spin.Stop()
	if a.bar != nil {
		_ = a.bar.Finish()
		a.bar = nil
	}
}

// Wait runs fn behind a spinner labelled message.
func Wait(message string, fn func()) {
	a := NewActivity(message)
	defer a.Done()
	fn()
}
