package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/arvrtise/haus/internal/config"
	"github.com/arvrtise/haus/internal/ui"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "View JSONL telemetry events for a join session",
	Long: `Reads and formats the JSONL telemetry file for a join session.

Without --session, discovers the most recent telemetry file.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().String("session", "", "session ID to view (default: most recent)")
	eventsCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	follow, _ := cmd.Flags().GetBool("follow")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.TelemetryDir == "" {
		return fmt.Errorf("events: telemetry is disabled (telemetry_dir is empty)")
	}

	path, err := resolveTelemetryPath(cfg.TelemetryDir, sessionID)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("events: open %s: %w", path, err)
	}
	defer f.Close()

	printer := ui.NewWithWriter(cmd.OutOrStdout(), false)
	reader := bufio.NewReader(f)
	printLines(printer, reader)

	if !follow {
		return nil
	}

	ctx, stop := signalContext(cmd)
	defer stop()
	return tailFollow(ctx, printer, reader, path)
}

// printLines prints every complete line available from r.
func printLines(p *ui.Printer, r *bufio.Reader) {
	for {
		line, err := r.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			p.EventLine(trimmed)
		}
		if err != nil {
			return
		}
	}
}

// tailFollow watches the file for new data using fsnotify and prints new
// events until ctx is cancelled.
func tailFollow(ctx context.Context, p *ui.Printer, r *bufio.Reader, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("events: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("events: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == 0 {
				continue
			}
			printLines(p, r)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("events: watch %s: %w", path, err)
		}
	}
}

// resolveTelemetryPath finds the JSONL file for the given session in dir, or
// discovers the most recent one if sessionID is empty.
func resolveTelemetryPath(dir, sessionID string) (string, error) {
	if sessionID != "" {
		path := filepath.Join(dir, sessionID+".jsonl")
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("events: no file for session %q: %w", sessionID, err)
		}
		return path, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("events: cannot read %s: %w", dir, err)
	}

	name, ok := latestJSONL(entries)
	if !ok {
		return "", fmt.Errorf("events: no JSONL files in %s", dir)
	}
	return filepath.Join(dir, name), nil
}

// latestJSONL returns the name of the most recently modified .jsonl entry.
// Entries whose info cannot be read, such as files removed after the
// directory listing, are skipped.
func latestJSONL(entries []os.DirEntry) (string, bool) {
	type candidate struct {
		name    string
		modTime time.Time
	}
	var files []candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{name: e.Name(), modTime: info.ModTime()})
	}
	if len(files) == 0 {
		return "", false
	}

	// Most recent last.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})
	return files[len(files)-1].name, true
}
