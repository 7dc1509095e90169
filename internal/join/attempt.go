package join

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/arvrtise/haus/internal/spaces"
	"github.com/arvrtise/haus/internal/telemetry"
)

func newAttemptID() string {
	return uuid.NewString()
}

// Bootstrap runs the device bootstrapper the first time it is called and
// reports whether it did. Later calls return false without side effects, so
// callers may invoke it from code that runs on every view evaluation.
// Bootstrap failures are recorded in telemetry and otherwise ignored.
func (c *Controller) Bootstrap(ctx context.Context) bool {
	c.mu.Lock()
	if c.booted {
		c.mu.Unlock()
		return false
	}
	c.booted = true
	c.mu.Unlock()

	c.emit(telemetry.Event{Kind: telemetry.KindBootstrapRequested})
	if c.devices == nil {
		return true
	}
	if err := c.devices.RequestPermissionAndPopulateDevices(ctx); err != nil {
		c.emit(telemetry.Event{
			Kind: telemetry.KindBootstrapFailed,
			Data: map[string]string{"error": err.Error()},
		})
	}
	return true
}

// Begin moves an idle (or failed) controller to PhaseSubmitting, commits the
// name to the session and clears the interaction-required flag. The caller
// must then run Create and hand the result to Resolve. Beginning from
// PhaseFailed closes the open error display first.
func (c *Controller) Begin() (Attempt, error) {
	c.mu.Lock()
	var rejected error
	switch {
	case c.phase == PhaseSubmitting:
		rejected = ErrSubmitting
	case c.phase == PhaseSucceeded:
		rejected = ErrNavigated
	case !ValidName(c.name):
		rejected = ErrInvalidName
	}
	if rejected != nil {
		c.mu.Unlock()
		c.emit(telemetry.Event{
			Kind: telemetry.KindJoinRejected,
			Data: map[string]string{"reason": rejected.Error()},
		})
		return Attempt{}, rejected
	}

	c.display.IsOpen = false
	c.phase = PhaseSubmitting
	a := Attempt{ID: c.newID(), Name: c.name}
	c.current = a.ID
	c.mu.Unlock()

	if err := c.session.SetParticipantName(a.Name); err != nil {
		c.emitIdentityFailure(a, err)
	}
	if err := c.session.SetInteractionRequired(false); err != nil {
		c.emitIdentityFailure(a, err)
	}
	c.emit(telemetry.Event{Kind: telemetry.KindJoinSubmitted, AttemptID: a.ID})
	return a, nil
}

// Create issues the creation request for an attempt returned by Begin. It
// does not touch controller state and may run on any goroutine.
func (c *Controller) Create(ctx context.Context, _ Attempt) (spaces.Space, error) {
	return c.spaces.CreateSpace(ctx)
}

// Resolve finishes attempt a with the creation result. On success the
// controller navigates to the space; on failure the error is classified and,
// if it has a presentation, the error display opens. Results for an attempt
// that is no longer current are ignored.
func (c *Controller) Resolve(a Attempt, space spaces.Space, err error) Outcome {
	if err == nil && space.ID == "" {
		err = &spaces.CreationError{Kind: spaces.KindGeneric, Err: errors.New("response has no space id")}
	}

	c.mu.Lock()
	if c.phase != PhaseSubmitting || a.ID != c.current {
		out := c.outcomeLocked()
		c.mu.Unlock()
		return out
	}

	if err == nil {
		c.phase = PhaseSucceeded
		c.route = RoomPath(space.ID)
		c.lastFail = nil
		out := c.outcomeLocked()
		c.mu.Unlock()

		c.emit(telemetry.Event{Kind: telemetry.KindSpaceCreated, AttemptID: a.ID, SpaceID: space.ID})
		if c.nav != nil {
			c.nav.Navigate(out.Route)
		}
		c.emit(telemetry.Event{
			Kind:      telemetry.KindNavigated,
			AttemptID: a.ID,
			SpaceID:   space.ID,
			Data:      map[string]string{"route": out.Route},
		})
		return out
	}

	p, ok := Classify(err)
	if !ok && c.policy == PolicyNotify {
		p, ok = GenericPresentation, true
	}
	c.lastFail = err
	if ok {
		c.phase = PhaseFailed
		c.display = Display{Title: p.Title, Message: p.Message, IsOpen: true}
	} else {
		c.phase = PhaseIdle
		c.display.IsOpen = false
	}
	out := c.outcomeLocked()
	c.mu.Unlock()

	c.emit(telemetry.Event{
		Kind:      telemetry.KindSpaceFailed,
		AttemptID: a.ID,
		Data:      map[string]string{"kind": failureKind(err).String(), "error": err.Error()},
	})
	if ok {
		c.emit(telemetry.Event{
			Kind:      telemetry.KindErrorPresented,
			AttemptID: a.ID,
			Data:      map[string]string{"title": p.Title},
		})
	}
	return out
}

// Submit runs a whole attempt synchronously: Begin, Create, Resolve.
// The returned error is only a Begin rejection; creation failures are
// reported in the Outcome.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	a, err := c.Begin()
	if err != nil {
		c.mu.Lock()
		out := c.outcomeLocked()
		c.mu.Unlock()
		return out, err
	}
	space, err := c.Create(ctx, a)
	return c.Resolve(a, space, err), nil
}

// Dismiss closes the error display. A failed controller returns to
// PhaseIdle; the title and message are kept.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if !c.display.IsOpen {
		c.mu.Unlock()
		return
	}
	c.display.IsOpen = false
	if c.phase == PhaseFailed {
		c.phase = PhaseIdle
	}
	c.mu.Unlock()
	c.emit(telemetry.Event{Kind: telemetry.KindErrorDismissed})
}

func (c *Controller) emit(evt telemetry.Event) {
	// Telemetry is best-effort; a failed write must not affect the flow.
	_ = c.emitter.Emit(evt)
}

func (c *Controller) emitIdentityFailure(a Attempt, err error) {
	c.emit(telemetry.Event{
		Kind:      telemetry.KindIdentityWriteFailed,
		AttemptID: a.ID,
		Data:      map[string]string{"error": err.Error()},
	})
}

func failureKind(err error) spaces.FailureKind {
	var ce *spaces.CreationError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return spaces.KindGeneric
}
