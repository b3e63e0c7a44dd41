// Package ui provides terminal output helpers for the manifest-ai CLI.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

var verboseFlag bool

// InitUI applies the --no-color and --verbose flags. Color is also off
// when stdout is not a terminal.
func InitUI(noColor, verbose bool) {
	verboseFlag = verbose
	if noColor {
		color.NoColor = true
	}
}

// Verbose reports whether --verbose was given.
func Verbose() bool { return verboseFlag }

type notice struct {
	w      io.Writer
	symbol string
	paint  *color.Color
}

var (
	okNotice   = notice{os.Stdout, "✓", color.New(color.FgGreen)}
	warnNotice = notice{os.Stderr, "!", color.New(color.FgYellow)}
	errNotice  = notice{os.Stderr, "✗", color.New(color.FgRed, color.Bold)}
	infoNotice = notice{os.Stdout, "·", color.New(color.FgHiBlack)}
)

func (n notice) print(format string, args []any) {
	n.paint.Fprint(n.w, n.symbol+" ")
	fmt.Fprintf(n.w, format+"\n", args...)
}

func Success(format string, args ...any) { okNotice.print(format, args) }
func Warning(format string, args ...any) { warnNotice.print(format, args) }
func Error(format string, args ...any)   { errNotice.print(format, args) }
func Info(format string, args ...any)    { infoNotice.print(format, args) }

// Section prints an underlined heading.
func Section(title string) {
	heading := color.New(color.FgCyan, color.Bold)
	heading.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("─", len([]rune(title))))
}

// Table prints rows aligned under headers.
func Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
}

// FormatDuration renders d as "850ms", "12s" or "3m 04s".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	return fmt.Sprintf("%dm %02ds", int(d/time.Minute), int((d%time.Minute)/time.Second))
}
