package join

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/arvrtise/haus/internal/spaces"
)

type fakeSession struct {
	mu          sync.Mutex
	name        string
	interaction bool
	nameWrites  int
	failWrites  bool
}

func (s *fakeSession) ParticipantName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *fakeSession) SetParticipantName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.nameWrites++
	if s.failWrites {
		return errors.New("disk full")
	}
	return nil
}

func (s *fakeSession) SetInteractionRequired(required bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interaction = required
	return nil
}

type countingBootstrapper struct {
	calls atomic.Int32
	err   error
}

func (b *countingBootstrapper) RequestPermissionAndPopulateDevices(context.Context) error {
	b.calls.Add(1)
	return b.err
}

// stubCreator returns a fixed result. When gate is non-nil every call blocks
// until the gate is closed.
type stubCreator struct {
	calls   atomic.Int32
	space   spaces.Space
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (s *stubCreator) CreateSpace(ctx context.Context) (spaces.Space, error) {
	s.calls.Add(1)
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return spaces.Space{}, ctx.Err()
		}
	}
	return s.space, s.err
}

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

func newTestController(session *fakeSession, creator SpaceCreator, nav Navigator, policy UnclassifiedPolicy) *Controller {
	return NewController(Deps{
		Session:   session,
		Spaces:    creator,
		Navigator: nav,
		Policy:    policy,
	})
}
