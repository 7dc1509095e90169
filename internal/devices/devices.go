// Package devices discovers the local capture devices a meeting can use.
package devices

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
)

// Kind classifies a capture device.
type Kind string

// Device kinds.
const (
	KindCamera     Kind = "camera"
	KindMicrophone Kind = "microphone"
)

// ErrNoDevices is returned when probing finds neither cameras nor microphones.
var ErrNoDevices = errors.New("no capture devices found")

// Device is a single capture device.
type Device struct {
	Kind Kind
	Path string
}

// Probe lists the device nodes of one kind. The default probes glob the
// platform device nodes; tests substitute fixed lists.
type Probe func(ctx context.Context) ([]string, error)

// GlobProbe returns a probe that reports every path matching pattern.
func GlobProbe(pattern string) Probe {
	return func(ctx context.Context) ([]string, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return filepath.Glob(pattern)
	}
}

// Enumerator requests access to capture devices and keeps the discovered
// list. Access is "requested" by probing the device nodes; a node that
// exists but cannot be opened is still listed, the media layer reports
// permission problems when it opens the device. Enumerator is safe for
// concurrent use.
type Enumerator struct {
	cameras     Probe
	microphones Probe

	mu      sync.RWMutex
	devices []Device
	err     error
	done    bool
}

// NewEnumerator returns an enumerator using the Linux device-node layout.
func NewEnumerator() *Enumerator {
	return NewEnumeratorWithProbes(
		GlobProbe("/dev/video*"),
		GlobProbe("/dev/snd/pcmC*D*c"),
	)
}

// NewEnumeratorWithProbes returns an enumerator using the given probes.
func NewEnumeratorWithProbes(cameras, microphones Probe) *Enumerator {
	return &Enumerator{cameras: cameras, microphones: microphones}
}

// RequestPermissionAndPopulateDevices probes cameras and microphones and
// replaces the device list. A failing probe does not discard the devices the
// other probe found.
func (e *Enumerator) RequestPermissionAndPopulateDevices(ctx context.Context) error {
	var (
		found []Device
		errs  []error
	)
	for _, p := range []struct {
		kind  Kind
		probe Probe
	}{
		{KindCamera, e.cameras},
		{KindMicrophone, e.microphones},
	} {
		paths, err := p.probe(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("devices: probe %s: %w", p.kind, err))
			continue
		}
		sort.Strings(paths)
		for _, path := range paths {
			found = append(found, Device{Kind: p.kind, Path: path})
		}
	}

	err := errors.Join(errs...)
	if err == nil && len(found) == 0 {
		err = ErrNoDevices
	}

	e.mu.Lock()
	e.devices = found
	e.err = err
	e.done = true
	e.mu.Unlock()
	return err
}

// Devices returns a copy of the most recently populated device list.
func (e *Enumerator) Devices() []Device {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Device, len(e.devices))
	copy(out, e.devices)
	return out
}

// Populated reports whether a population attempt has finished, along with
// the error it produced.
func (e *Enumerator) Populated() (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.done, e.err
}

// Count returns how many devices of kind are in the list.
func Count(list []Device, kind Kind) int {
	n := 0
	for _, d := range list {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
