// Package ui prints line-oriented status output for the haus commands that
// do not run the full-screen join screen.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/arvrtise/haus/internal/ansi"
	"github.com/arvrtise/haus/internal/devices"
	"github.com/arvrtise/haus/internal/history"
	"github.com/arvrtise/haus/internal/identity"
	"github.com/arvrtise/haus/internal/join"
	"github.com/arvrtise/haus/internal/telemetry"
)

// Printer writes human-readable output to a single writer.
type Printer struct {
	w     io.Writer
	color bool
}

// New returns a colored Printer on stderr.
func New() *Printer {
	return NewWithWriter(os.Stderr, true)
}

// NewWithWriter returns a Printer on w. With color false no escape codes
// are written.
func NewWithWriter(w io.Writer, color bool) *Printer {
	return &Printer{w: w, color: color}
}

func (p *Printer) style(s string, codes ...string) string {
	if !p.color {
		return s
	}
	return ansi.Style(s, codes...)
}

// Banner prints the product header.
func (p *Printer) Banner() {
	fmt.Fprintln(p.w, p.style("  haus", ansi.Bold, ansi.Cyan)+p.style("  create a space and join it", ansi.Dim))
	fmt.Fprintln(p.w)
}

// Info prints a dimmed informational line.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.w, p.style(msg, ansi.Dim))
}

// Error prints msg with an error prefix.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, "%s%s\n", p.style("error: ", ansi.Red, ansi.Bold), msg)
}

// Joined reports a successful join.
func (p *Printer) Joined(name, route string) {
	fmt.Fprintf(p.w, "%s %s %s\n", p.style("✓ joined", ansi.Green, ansi.Bold), route, p.style("as "+name, ansi.Dim))
}

// Presentation prints an open error display. A closed display prints nothing.
func (p *Printer) Presentation(d join.Display) {
	if !d.IsOpen {
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.style("✗", ansi.Red, ansi.Bold), p.style(d.Title, ansi.Bold))
	if d.Message != "" {
		fmt.Fprintf(p.w, "  %s\n", d.Message)
	}
}

// Devices prints the device counts followed by each device path. err is the
// bootstrap result, printed as a warning when non-nil.
func (p *Printer) Devices(list []devices.Device, err error) {
	cams := devices.Count(list, devices.KindCamera)
	mics := devices.Count(list, devices.KindMicrophone)
	fmt.Fprintf(p.w, "%s %d camera(s), %d microphone(s)\n", p.style("devices:", ansi.Bold), cams, mics)
	for _, d := range list {
		fmt.Fprintf(p.w, "  %-10s %s\n", d.Kind, d.Path)
	}
	if err != nil {
		fmt.Fprintf(p.w, "%s %v\n", p.style("⚠", ansi.Yellow, ansi.Bold), err)
	}
}

// History prints joined spaces, newest first as given.
func (p *Printer) History(entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.style("(no spaces joined yet)", ansi.Dim))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(p.w, "%s  %-36s  %s\n",
			p.style(e.CreatedAt.Local().Format(time.DateTime), ansi.Dim),
			e.SpaceID,
			e.Participant)
	}
}

// Identity prints the shared participant identity.
func (p *Printer) Identity(id identity.Identity) {
	name := id.ParticipantName
	if name == "" {
		name = p.style("(unset)", ansi.Dim)
	}
	fmt.Fprintf(p.w, "participant name:      %s\n", name)
	fmt.Fprintf(p.w, "interaction required:  %t\n", id.InteractionRequired)
}

// Listening reports the dev backend's bound address and configuration.
func (p *Printer) Listening(addr string, maxActive int, authorized bool) {
	fmt.Fprintf(p.w, "%s http://%s %s\n",
		p.style("▶ devserver", ansi.Cyan, ansi.Bold), addr,
		p.style(fmt.Sprintf("(max active %d)", maxActive), ansi.Dim))
	if !authorized {
		fmt.Fprintf(p.w, "%s no token configured; every create request returns 401\n",
			p.style("⚠", ansi.Yellow, ansi.Bold))
	}
}

// EventLine prints one raw telemetry JSONL line in readable form. Lines that
// do not decode are echoed with a "???" prefix.
func (p *Printer) EventLine(line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(p.w, "??? %s\n", line)
		return
	}
	p.Event(evt)
}

// Event prints a telemetry event as "[time] kind key=value ...".
func (p *Printer) Event(evt telemetry.Event) {
	parts := []string{
		p.style("["+evt.Timestamp.Format(time.TimeOnly)+"]", ansi.Dim),
		evt.Kind,
	}
	if evt.AttemptID != "" {
		parts = append(parts, "attempt="+evt.AttemptID)
	}
	if evt.SpaceID != "" {
		parts = append(parts, "space="+evt.SpaceID)
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}
	fmt.Fprintln(p.w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
