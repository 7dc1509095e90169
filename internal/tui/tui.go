// Package tui renders the full-screen join screen with Bubble Tea.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arvrtise/haus/internal/join"
)

// Program is an alias for tea.Program, exposed so callers don't need
// to import bubbletea directly.
type Program = tea.Program

// NewProgram creates the join-screen program on the alternate screen.
// Extra options are appended after tea.WithAltScreen.
func NewProgram(ctx context.Context, ctrl *join.Controller, lister DeviceLister, opts ...tea.ProgramOption) *Program {
	allOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	}
	allOpts = append(allOpts, opts...)
	return tea.NewProgram(NewJoinModel(ctx, ctrl, lister), allOpts...)
}

// Run shows the join screen until the user joins a space or quits. It
// reports whether a space was joined.
func Run(ctx context.Context, ctrl *join.Controller, lister DeviceLister, opts ...tea.ProgramOption) (bool, error) {
	final, err := NewProgram(ctx, ctrl, lister, opts...).Run()
	if err != nil {
		return false, fmt.Errorf("TUI error: %w", err)
	}
	m, ok := final.(JoinModel)
	return ok && m.Joined(), nil
}
