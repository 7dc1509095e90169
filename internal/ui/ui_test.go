package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/arvrtise/haus/internal/devices"
	"github.com/arvrtise/haus/internal/history"
	"github.com/arvrtise/haus/internal/identity"
	"github.com/arvrtise/haus/internal/join"
	"github.com/arvrtise/haus/internal/telemetry"
)

func newBufferPrinter() (*Printer, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithWriter(&buf, false), &buf
}

func TestPrinter_NoColorWritesPlainText(t *testing.T) {
	t.Parallel()

	p, buf := newBufferPrinter()
	p.Error("boom")
	p.Joined("Ada", "/space/room-42")

	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Errorf("escape codes written with color disabled: %q", out)
	}
	for _, want := range []string{"error: boom", "/space/room-42", "as Ada"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrinter_ColorWritesEscapes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWithWriter(&buf, true).Info("hello")
	if !strings.Contains(buf.String(), "\033[2m") {
		t.Errorf("expected dim escape, got %q", buf.String())
	}
}

func TestPrinter_Presentation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		display join.Display
		want    []string
	}{
		{
			name:    "closed prints nothing",
			display: join.Display{Title: join.AuthorizationPresentation.Title},
		},
		{
			name: "open prints title and message",
			display: join.Display{
				Title:   join.CapacityLimitPresentation.Title,
				Message: join.CapacityLimitPresentation.Message,
				IsOpen:  true,
			},
			want: []string{"Maximum active space limit reached", join.CapacityLimitPresentation.Message},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, buf := newBufferPrinter()
			p.Presentation(tt.display)
			if len(tt.want) == 0 && buf.Len() != 0 {
				t.Errorf("output = %q, want empty", buf.String())
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestPrinter_Devices(t *testing.T) {
	t.Parallel()

	p, buf := newBufferPrinter()
	p.Devices([]devices.Device{
		{Kind: devices.KindCamera, Path: "/dev/video0"},
		{Kind: devices.KindMicrophone, Path: "/dev/snd/pcmC0D0c"},
		{Kind: devices.KindMicrophone, Path: "/dev/snd/pcmC1D0c"},
	}, errors.New("camera probe failed"))

	out := buf.String()
	for _, want := range []string{"1 camera(s), 2 microphone(s)", "/dev/video0", "camera probe failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrinter_History(t *testing.T) {
	t.Parallel()

	p, buf := newBufferPrinter()
	p.History(nil)
	if !strings.Contains(buf.String(), "no spaces joined yet") {
		t.Errorf("empty history output = %q", buf.String())
	}

	buf.Reset()
	p.History([]history.Entry{{SpaceID: "room-1", Participant: "Ada", CreatedAt: time.Now()}})
	if !strings.Contains(buf.String(), "room-1") || !strings.Contains(buf.String(), "Ada") {
		t.Errorf("history output = %q", buf.String())
	}
}

func TestPrinter_Identity(t *testing.T) {
	t.Parallel()

	p, buf := newBufferPrinter()
	p.Identity(identity.Default())
	if !strings.Contains(buf.String(), "(unset)") || !strings.Contains(buf.String(), "true") {
		t.Errorf("identity output = %q", buf.String())
	}
}

func TestPrinter_EventLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "decoded with data",
			line: `{"ts":"2026-03-01T12:00:00Z","kind":"space_failed","attempt":"a1","data":{"kind":"authorization","error":"x"}}`,
			want: "space_failed attempt=a1 error=x kind=authorization",
		},
		{
			name: "space id",
			line: `{"ts":"2026-03-01T12:00:00Z","kind":"navigated","space":"room-42"}`,
			want: "navigated space=room-42",
		},
		{
			name: "garbage",
			line: `not json`,
			want: "??? not json",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, buf := newBufferPrinter()
			p.EventLine(tt.line)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("EventLine() = %q, want to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrinter_Event(t *testing.T) {
	t.Parallel()

	p, buf := newBufferPrinter()
	p.Event(telemetry.Event{Kind: telemetry.KindBootstrapRequested})
	if !strings.Contains(buf.String(), telemetry.KindBootstrapRequested) {
		t.Errorf("Event() = %q", buf.String())
	}
}
