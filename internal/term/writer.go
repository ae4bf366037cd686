// Package term writes rendered panel lines to the terminal. It is the
// presentation side of the refresh loop: screen clearing, coloring and
// geometry detection live here, never in the renderer.
package term

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/nasharino/weather-forecast-panel/internal/panel"
	"github.com/nasharino/weather-forecast-panel/internal/weather"
)

// Writer owns one terminal surface. Colors degrade to plain text
// automatically when the output is not a tty (fatih/color's detection).
type Writer struct {
	out      io.Writer
	fallback panel.Geometry

	header *color.Color
	okLine *color.Color
	errTxt *color.Color
}

// NewWriter writes to out, using fallback geometry when the size of the
// underlying terminal cannot be detected.
func NewWriter(out io.Writer, fallback panel.Geometry) *Writer {
	return &Writer{
		out:      out,
		fallback: fallback,
		header:   color.New(color.FgMagenta, color.Bold),
		okLine:   color.New(color.FgCyan),
		errTxt:   color.New(color.FgRed),
	}
}

// Geometry returns the current terminal size, reserving one row for the
// status line, or the configured fallback when out is not a tty.
func (w *Writer) Geometry() panel.Geometry {
	f, ok := w.out.(*os.File)
	if !ok {
		return w.fallback
	}
	cols, rows, err := term.GetSize(int(f.Fd()))
	if err != nil || cols < panel.MinColumns || rows-1 < panel.MinRows {
		return w.fallback
	}
	return panel.Geometry{Columns: cols, Rows: rows - 1}
}

// WritePanel clears the screen and writes the panel: a colored header
// line, the remaining panel lines, then the status annotation.
func (w *Writer) WritePanel(lines []string, snap weather.Snapshot, fetchedAt time.Time, fetchErr error) {
	w.clear()

	for i, line := range lines {
		if i == 0 {
			w.header.Fprintln(w.out, line)
			continue
		}
		fmt.Fprintln(w.out, line)
	}

	age := time.Since(fetchedAt).Round(time.Second)
	status := panel.StatusLine(age.String(), fetchErr)
	if fetchErr != nil {
		w.errTxt.Fprintln(w.out, status)
		return
	}
	w.okLine.Fprintf(w.out, "%s · wind %s %.1f %s\n",
		status,
		panel.WindArrow(snap.Current.WindDirection),
		snap.Current.WindSpeed,
		snap.Units.WindSuffix(),
	)
}

// clear resets the terminal with ANSI escapes (cursor home + erase) so a
// shorter panel never leaves residue from the previous one.
func (w *Writer) clear() {
	fmt.Fprint(w.out, "\033[H\033[2J")
}
