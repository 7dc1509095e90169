// Package join implements the join flow of the entry screen: participant name
// validation, the one-time device bootstrap, the exclusive space-creation
// request, failure classification, and navigation into the new space.
package join

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/arvrtise/haus/internal/spaces"
	"github.com/arvrtise/haus/internal/telemetry"
)

// Session is the shared participant identity the controller reads once and
// writes back on submission.
type Session interface {
	ParticipantName() string
	SetParticipantName(name string) error
	SetInteractionRequired(required bool) error
}

// Bootstrapper requests media-device permission and populates the device
// list. The controller calls it at most once.
type Bootstrapper interface {
	RequestPermissionAndPopulateDevices(ctx context.Context) error
}

// SpaceCreator provisions a space on the backend.
type SpaceCreator interface {
	CreateSpace(ctx context.Context) (spaces.Space, error)
}

// Navigator moves the user to a route once a space exists.
type Navigator interface {
	Navigate(route string)
}

// Phase is the state of the current join attempt.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// UnclassifiedPolicy decides what the user sees when a failure has no
// dedicated presentation.
type UnclassifiedPolicy int

const (
	// PolicyNotify opens GenericPresentation.
	PolicyNotify UnclassifiedPolicy = iota
	// PolicySilent shows nothing and only restores submittability.
	PolicySilent
)

// ParsePolicy converts a config value ("notify" or "silent") to a policy.
func ParsePolicy(s string) (UnclassifiedPolicy, error) {
	switch s {
	case "notify", "":
		return PolicyNotify, nil
	case "silent":
		return PolicySilent, nil
	default:
		return PolicyNotify, fmt.Errorf("join: unknown unclassified-error policy %q", s)
	}
}

// Errors returned by Begin and Submit.
var (
	ErrInvalidName = errors.New("participant name cannot be empty")
	ErrSubmitting  = errors.New("a space is already being created")
	ErrNavigated   = errors.New("already navigated to a space")
)

// Display is the state of the error-display collaborator.
type Display struct {
	Title   string
	Message string
	IsOpen  bool
}

// Attempt identifies one submission.
type Attempt struct {
	ID   string
	Name string
}

// Outcome is the controller state after an attempt resolves.
type Outcome struct {
	Phase   Phase
	Route   string
	Display Display
	// Err is the creation failure, nil on success.
	Err error
}

// RoomPath returns the route of the space with the given id.
func RoomPath(id string) string {
	return "/space/" + url.PathEscape(id)
}

// Deps are the collaborators of a Controller. Session and Spaces are
// required; the rest may be nil.
type Deps struct {
	Session   Session
	Devices   Bootstrapper
	Spaces    SpaceCreator
	Navigator Navigator
	Telemetry *telemetry.Emitter
	Policy    UnclassifiedPolicy
}

// Controller drives the join screen. It is safe for concurrent use; the
// phase check and the move to PhaseSubmitting happen atomically, so two
// submissions can never both reach the backend.
type Controller struct {
	session  Session
	devices  Bootstrapper
	spaces   SpaceCreator
	nav      Navigator
	emitter  *telemetry.Emitter
	policy   UnclassifiedPolicy
	newID    func() string
	mu       sync.Mutex
	name     string
	blurred  bool
	booted   bool
	phase    Phase
	current  string
	display  Display
	route    string
	lastFail error
}

// NewController returns a controller in PhaseIdle whose editable name is
// read once from the session.
func NewController(d Deps) *Controller {
	return &Controller{
		session: d.Session,
		devices: d.Devices,
		spaces:  d.Spaces,
		nav:     d.Navigator,
		emitter: d.Telemetry,
		policy:  d.Policy,
		newID:   newAttemptID,
		name:    clampName(d.Session.ParticipantName()),
	}
}

// Name returns the editable participant name.
func (c *Controller) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// SetName replaces the editable name, truncated to MaxNameLength runes.
func (c *Controller) SetName(name string) {
	c.mu.Lock()
	c.name = clampName(name)
	c.mu.Unlock()
}

// Blur records that the name field lost focus at least once.
func (c *Controller) Blur() {
	c.mu.Lock()
	c.blurred = true
	c.mu.Unlock()
}

// Valid reports whether the current name passes ValidName.
func (c *Controller) Valid() bool {
	return ValidName(c.Name())
}

// SubmitDisabled reports whether the submit control is disabled, which is
// exactly when the name is invalid.
func (c *Controller) SubmitDisabled() bool {
	return !c.Valid()
}

// ShowInvalid reports whether the inline invalid hint is shown: the name is
// invalid and the field has been blurred at least once.
func (c *Controller) ShowInvalid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !ValidName(c.name) && c.blurred
}

// Loading reports whether a creation request is in flight.
func (c *Controller) Loading() bool {
	return c.Phase() == PhaseSubmitting
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Display returns the error-display state.
func (c *Controller) Display() Display {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Route returns the route navigated to, or "" before success.
func (c *Controller) Route() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.route
}

// LastFailure returns the most recent creation failure, or nil.
func (c *Controller) LastFailure() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFail
}

func (c *Controller) outcomeLocked() Outcome {
	return Outcome{Phase: c.phase, Route: c.route, Display: c.display, Err: c.lastFail}
}
