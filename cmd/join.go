package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/arvrtise/haus/internal/config"
	"github.com/arvrtise/haus/internal/devices"
	"github.com/arvrtise/haus/internal/history"
	"github.com/arvrtise/haus/internal/identity"
	"github.com/arvrtise/haus/internal/join"
	"github.com/arvrtise/haus/internal/spaces"
	"github.com/arvrtise/haus/internal/telemetry"
	"github.com/arvrtise/haus/internal/tui"
	"github.com/arvrtise/haus/internal/ui"
)

// joinCmd runs the join flow: create a space and navigate into it.
var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Create a space and join it",
	Long: `Opens the join screen with your saved participant name. Submitting the
name creates a space on the backend and joins it.

With --headless (or when stderr is not a terminal) the flow runs once
without the full-screen UI and prints the route of the joined space.`,
	Args: cobra.NoArgs,
	RunE: runJoin,
}

func init() {
	addJoinFlags(rootCmd)
	addJoinFlags(joinCmd)
	rootCmd.AddCommand(joinCmd)
}

func addJoinFlags(c *cobra.Command) {
	c.Flags().String("name", "", "participant name to save before joining")
	c.Flags().Bool("headless", false, "run without the full-screen UI")
}

// joinSession bundles the collaborators opened for one join run.
type joinSession struct {
	cfg     config.Config
	store   *identity.FileStore
	history *history.Store
	emitter *telemetry.Emitter
	devices *devices.Enumerator
	router  *spaceRouter
	ctrl    *join.Controller
}

func (s *joinSession) Close() {
	if s.history != nil {
		s.history.Close()
	}
	s.emitter.Close()
}

func runJoin(cmd *cobra.Command, _ []string) error {
	printer := ui.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	sess, err := openJoinSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	if name, _ := cmd.Flags().GetString("name"); name != "" {
		if err := sess.store.SetParticipantName(name); err != nil {
			return fmt.Errorf("failed to save participant name: %w", err)
		}
		// The controller reads the name once, so rebuild it after the change.
		sess.ctrl = newController(sess, cfg)
	}

	headless, _ := cmd.Flags().GetBool("headless")
	if headless || !isStderrTTY() {
		return runHeadless(ctx, cmd, sess, printer)
	}

	joined, err := tui.Run(ctx, sess.ctrl, sess.devices)
	if err != nil {
		return err
	}
	if !joined {
		return nil
	}
	printer.Joined(sess.store.ParticipantName(), sess.ctrl.Route())
	fmt.Fprintln(cmd.OutOrStdout(), sess.ctrl.Route())
	if sess.router.err != nil {
		printer.Error(fmt.Sprintf("failed to record history: %v", sess.router.err))
	}
	return nil
}

func openJoinSession(ctx context.Context, cfg config.Config) (*joinSession, error) {
	store, err := identity.OpenFileStore(cfg.IdentityFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open identity: %w", err)
	}

	hist, err := history.Open(ctx, cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	em, err := telemetry.NewSessionEmitter(cfg.TelemetryDir, uuid.NewString())
	if err != nil {
		hist.Close()
		return nil, fmt.Errorf("failed to open telemetry: %w", err)
	}

	sess := &joinSession{
		cfg:     cfg,
		store:   store,
		history: hist,
		emitter: em,
		devices: devices.NewEnumerator(),
	}
	sess.router = &spaceRouter{ctx: ctx, history: hist, participant: store.ParticipantName}
	sess.ctrl = newController(sess, cfg)
	return sess, nil
}

func newController(sess *joinSession, cfg config.Config) *join.Controller {
	// Load already validated the policy value.
	policy, _ := join.ParsePolicy(cfg.UnclassifiedErrors)
	return join.NewController(join.Deps{
		Session:   sess.store,
		Devices:   sess.devices,
		Spaces:    spaces.NewClient(cfg.BackendURL, spaces.WithTimeout(cfg.RequestTimeout)),
		Navigator: sess.router,
		Telemetry: sess.emitter,
		Policy:    policy,
	})
}

// runHeadless runs one attempt synchronously. The bootstrap runs alongside
// the creation request and is awaited before returning.
func runHeadless(ctx context.Context, cmd *cobra.Command, sess *joinSession, printer *ui.Printer) error {
	if sess.cfg.Verbose {
		printer.Banner()
		printer.Info("backend: " + sess.cfg.BackendURL)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.ctrl.Bootstrap(ctx)
	}()
	defer wg.Wait()

	out, err := sess.ctrl.Submit(ctx)
	if errors.Is(err, join.ErrInvalidName) {
		return fmt.Errorf("%w; pass --name or run 'haus identity set <name>'", err)
	}
	if err != nil {
		return err
	}

	if out.Phase != join.PhaseSucceeded {
		printer.Presentation(out.Display)
		return fmt.Errorf("join failed: %w", out.Err)
	}

	printer.Joined(sess.store.ParticipantName(), out.Route)
	fmt.Fprintln(cmd.OutOrStdout(), out.Route)
	if sess.router.err != nil {
		printer.Error(fmt.Sprintf("failed to record history: %v", sess.router.err))
	}
	return nil
}

// spaceRouter is the navigation boundary for the CLI: it records each
// navigated space in the history store.
type spaceRouter struct {
	ctx         context.Context
	history     *history.Store
	participant func() string

	mu    sync.Mutex
	route string
	err   error
}

// Navigate records route. History failures are kept for the caller to report.
func (r *spaceRouter) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.route = route
	if r.history == nil {
		return
	}
	_, err := r.history.Record(r.ctx, history.Entry{
		SpaceID:     spaceIDFromRoute(route),
		Participant: r.participant(),
		Route:       route,
	})
	r.err = err
}

// spaceIDFromRoute inverts join.RoomPath.
func spaceIDFromRoute(route string) string {
	seg := strings.TrimPrefix(route, join.RoomPath(""))
	if id, err := url.PathUnescape(seg); err == nil {
		return id
	}
	return seg
}

// signalContext returns the command's context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// isStderrTTY reports whether stderr is attached to a terminal.
func isStderrTTY() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
