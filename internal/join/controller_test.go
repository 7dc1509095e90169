package join

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/arvrtise/haus/internal/identity"
	"github.com/arvrtise/haus/internal/spaces"
)

func TestNewController_ReadsSessionNameOnce(t *testing.T) {
	t.Parallel()

	session := &fakeSession{name: "Ada"}
	c := newTestController(session, &stubCreator{}, nil, PolicyNotify)
	if got := c.Name(); got != "Ada" {
		t.Fatalf("Name() = %q, want Ada", got)
	}

	session.name = "Grace"
	if got := c.Name(); got != "Ada" {
		t.Errorf("Name() = %q after session change, want Ada", got)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", c.Phase())
	}
}

func TestController_SubmitDisabledAndShowInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		input           string
		blur            bool
		wantDisabled    bool
		wantShowInvalid bool
	}{
		{"valid untouched", "Ada", false, false, false},
		{"valid blurred", "Ada", true, false, false},
		{"empty untouched", "", false, true, false},
		{"empty blurred", "", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestController(&fakeSession{}, &stubCreator{}, nil, PolicyNotify)
			c.SetName(tt.input)
			if tt.blur {
				c.Blur()
			}
			if got := c.SubmitDisabled(); got != tt.wantDisabled {
				t.Errorf("SubmitDisabled() = %v, want %v", got, tt.wantDisabled)
			}
			if got := c.SubmitDisabled(); got != !c.Valid() {
				t.Errorf("SubmitDisabled() = %v, Valid() = %v; want opposites", got, c.Valid())
			}
			if got := c.ShowInvalid(); got != tt.wantShowInvalid {
				t.Errorf("ShowInvalid() = %v, want %v", got, tt.wantShowInvalid)
			}
		})
	}
}

func TestController_SetNameClamps(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeSession{}, &stubCreator{}, nil, PolicyNotify)
	long := ""
	for range MaxNameLength + 10 {
		long += "n"
	}
	c.SetName(long)
	if got := len(c.Name()); got != MaxNameLength {
		t.Errorf("len(Name()) = %d, want %d", got, MaxNameLength)
	}
}

func TestBootstrap_RunsOnce(t *testing.T) {
	t.Parallel()

	boot := &countingBootstrapper{err: errors.New("permission denied")}
	c := NewController(Deps{
		Session: &fakeSession{name: "Ada"},
		Devices: boot,
		Spaces:  &stubCreator{},
	})

	var wg sync.WaitGroup
	var ran atomic.Int32
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Bootstrap(context.Background()) {
				ran.Add(1)
			}
		}()
	}
	wg.Wait()
	c.Bootstrap(context.Background())

	if got := boot.calls.Load(); got != 1 {
		t.Errorf("bootstrapper called %d times, want 1", got)
	}
	if got := ran.Load(); got != 1 {
		t.Errorf("Bootstrap() returned true %d times, want 1", got)
	}
	if c.Phase() != PhaseIdle {
		t.Errorf("bootstrap failure changed phase to %v", c.Phase())
	}
}

func TestSubmit_SuccessNavigates(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Method != http.MethodPost || r.URL.Path != spaces.CreatePath {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"room-42"}`))
	}))
	defer srv.Close()

	session := identity.NewMemory(identity.Default())
	if err := session.SetParticipantName("Ada"); err != nil {
		t.Fatal(err)
	}
	nav := &recordingNavigator{}
	c := NewController(Deps{
		Session:   session,
		Spaces:    spaces.NewClient(srv.URL),
		Navigator: nav,
	})
	c.SetName("Ada Lovelace")

	out, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if out.Phase != PhaseSucceeded {
		t.Errorf("Phase = %v, want succeeded", out.Phase)
	}
	if out.Route != "/space/room-42" {
		t.Errorf("Route = %q, want /space/room-42", out.Route)
	}
	if routes := nav.Routes(); len(routes) != 1 || routes[0] != "/space/room-42" {
		t.Errorf("navigator routes = %v", routes)
	}
	if got := session.ParticipantName(); got != "Ada Lovelace" {
		t.Errorf("session name = %q, want committed name", got)
	}
	if session.InteractionRequired() {
		t.Error("interaction-required flag should be cleared on submit")
	}
	if out.Display.IsOpen {
		t.Error("error display opened on success")
	}
	if hits.Load() != 1 {
		t.Errorf("backend hit %d times, want 1", hits.Load())
	}

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrNavigated) {
		t.Errorf("Submit() after success error = %v, want ErrNavigated", err)
	}
	if hits.Load() != 1 {
		t.Errorf("backend hit again after navigation")
	}
}

func TestSubmit_ClassifiedFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		wantTitle string
	}{
		{"unauthorized", http.StatusUnauthorized, "Not authorized to create a new space"},
		{"capacity", spaces.StatusCapacityLimit, "Maximum active space limit reached"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			session := &fakeSession{name: "Ada"}
			nav := &recordingNavigator{}
			c := newTestController(session, spaces.NewClient(srv.URL), nav, PolicyNotify)

			out, err := c.Submit(context.Background())
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if out.Phase != PhaseFailed {
				t.Errorf("Phase = %v, want failed", out.Phase)
			}
			if !out.Display.IsOpen || out.Display.Title != tt.wantTitle {
				t.Errorf("Display = %+v, want open with %q", out.Display, tt.wantTitle)
			}
			if c.Loading() {
				t.Error("Loading() still true after failure")
			}
			if len(nav.Routes()) != 0 {
				t.Errorf("navigated on failure: %v", nav.Routes())
			}
			if out.Err == nil || c.LastFailure() == nil {
				t.Error("failure not recorded")
			}

			// The same name can be submitted again without editing.
			if _, err := c.Submit(context.Background()); err != nil {
				t.Errorf("resubmit error = %v", err)
			}
			if hits.Load() != 2 {
				t.Errorf("backend hit %d times, want 2", hits.Load())
			}
		})
	}
}

func TestSubmit_UnclassifiedPolicy(t *testing.T) {
	t.Parallel()

	cause := &spaces.CreationError{Kind: spaces.KindGeneric, Status: 500}

	t.Run("notify", func(t *testing.T) {
		t.Parallel()
		c := newTestController(&fakeSession{name: "Ada"}, &stubCreator{err: cause}, nil, PolicyNotify)
		out, err := c.Submit(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if out.Phase != PhaseFailed {
			t.Errorf("Phase = %v, want failed", out.Phase)
		}
		if !out.Display.IsOpen || out.Display.Title != GenericPresentation.Title {
			t.Errorf("Display = %+v, want generic presentation", out.Display)
		}
	})

	t.Run("silent", func(t *testing.T) {
		t.Parallel()
		c := newTestController(&fakeSession{name: "Ada"}, &stubCreator{err: cause}, nil, PolicySilent)
		out, err := c.Submit(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if out.Phase != PhaseIdle {
			t.Errorf("Phase = %v, want idle", out.Phase)
		}
		if out.Display.IsOpen {
			t.Errorf("Display opened under silent policy: %+v", out.Display)
		}
		if !errors.Is(c.LastFailure(), cause) {
			t.Errorf("LastFailure() = %v, want %v", c.LastFailure(), cause)
		}
		if c.SubmitDisabled() {
			t.Error("submit should be enabled after a silent failure")
		}
	})
}

func TestSubmit_EmptySpaceIDIsGenericFailure(t *testing.T) {
	t.Parallel()

	nav := &recordingNavigator{}
	c := newTestController(&fakeSession{name: "Ada"}, &stubCreator{}, nav, PolicyNotify)
	out, err := c.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Phase != PhaseFailed || len(nav.Routes()) != 0 {
		t.Errorf("out = %+v routes = %v, want failure without navigation", out, nav.Routes())
	}
}

func TestSubmit_InvalidNameSendsNothing(t *testing.T) {
	t.Parallel()

	creator := &stubCreator{space: spaces.Space{ID: "x"}}
	session := &fakeSession{}
	c := newTestController(session, creator, nil, PolicyNotify)

	if _, err := c.Submit(context.Background()); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Submit() error = %v, want ErrInvalidName", err)
	}
	if creator.calls.Load() != 0 {
		t.Error("creation request sent for an empty name")
	}
	if session.nameWrites != 0 {
		t.Error("session written for an empty name")
	}
}
