package present

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/cafebot-sim/server/internal/robot/model"
)

const (
	minTrackWidth     = 24
	defaultTrackWidth = 80
)

// Console writes a text rendering of every frame: the current action, the
// numbered trace and a one-line picture of the track.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	width int
}

// NewConsole returns a Console writing to w. A width below the minimum is
// raised to it.
func NewConsole(w io.Writer, width int) *Console {
	if width < minTrackWidth {
		width = minTrackWidth
	}
	return &Console{w: w, width: width}
}

// TerminalWidth reports the column count of f when it is a terminal and
// fallback otherwise.
func TerminalWidth(f *os.File, fallback int) int {
	if f == nil {
		return fallback
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

func (c *Console) Idle(_ context.Context, f model.Frame) {
	var b strings.Builder
	fmt.Fprintf(&b, "Idle: robot at entry gate (x=%s)\n", formatX(f.Layout.Gate))
	b.WriteString(RenderTrack(f, c.width))
	c.write(b.String())
}

func (c *Console) Step(_ context.Context, f model.Frame) {
	var b strings.Builder
	if f.Current != nil {
		fmt.Fprintf(&b, "Current action: %s\n", Describe(*f.Current))
	}
	b.WriteString(RenderTrace(f.Trace))
	b.WriteString(RenderTrack(f, c.width))
	c.write(b.String())
}

func (c *Console) Done(_ context.Context, f model.Frame, err error) {
	var b strings.Builder
	if err != nil {
		fmt.Fprintf(&b, "Simulation aborted after %d action(s): %v\n", len(f.Trace), err)
	} else {
		fmt.Fprintf(&b, "Simulation complete! %d action(s) executed.\n", len(f.Trace))
	}
	fmt.Fprintf(&b, "Final pose: x=%s facing %s\n", formatX(f.Pose.Position), f.Pose.Orientation)
	c.write(b.String())
}

func (c *Console) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.w, s+"\n")
}

// RenderTrace lists executed actions as numbered calls.
func RenderTrace(trace []model.TraceEntry) string {
	var b strings.Builder
	b.WriteString("Execution Trace:\n")
	if len(trace) == 0 {
		b.WriteString("  (no actions yet)\n")
		return b.String()
	}
	for i, e := range trace {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, FormatCall(e))
	}
	return b.String()
}

// RenderTrack draws the landmarks, the travelled path and the robot on two
// lines of at most width columns.
func RenderTrack(f model.Frame, width int) string {
	if width < minTrackWidth {
		width = minTrackWidth
	}
	cols := width - 2
	lo, hi := trackBounds(f)
	at := func(x float64) int {
		c := int(math.Round((x - lo) / (hi - lo) * float64(cols-1)))
		return min(max(c, 0), cols-1)
	}

	labels := []rune(strings.Repeat(" ", cols))
	track := []rune(strings.Repeat("-", cols))

	place := func(x float64, name string) {
		start := at(x) - (len(name)-1)/2
		start = min(max(start, 0), cols-len(name))
		for i := start; i < start+len(name); i++ {
			if labels[i] != ' ' {
				return
			}
		}
		copy(labels[start:], []rune(name))
		track[at(x)] = '+'
	}
	place(f.Layout.Gate, "G")
	place(f.Layout.Counter, "C")
	for n := 1; n <= f.Layout.Tables; n++ {
		place(f.Layout.TablePosition(n), fmt.Sprintf("T%d", n))
	}

	for _, p := range f.History {
		track[at(p.Position)] = 'o'
	}
	robot := '>'
	if f.Pose.Orientation == model.Backward {
		robot = '<'
	}
	track[at(f.Pose.Position)] = robot

	return " " + strings.TrimRight(string(labels), " ") + "\n" + " " + string(track) + "\n"
}

// trackBounds spans every landmark and every visited position with one
// metre of margin.
func trackBounds(f model.Frame) (float64, float64) {
	lo := math.Min(f.Layout.Gate, f.Layout.Counter)
	hi := math.Max(f.Layout.Gate, f.Layout.Counter)
	hi = math.Max(hi, f.Layout.TablePosition(f.Layout.Tables))
	for _, p := range f.History {
		lo = math.Min(lo, p.Position)
		hi = math.Max(hi, p.Position)
	}
	lo = math.Min(lo, f.Pose.Position)
	hi = math.Max(hi, f.Pose.Position)
	return lo - 1, hi + 1
}
