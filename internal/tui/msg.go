package tui

import (
	"github.com/arvrtise/haus/internal/join"
	"github.com/arvrtise/haus/internal/spaces"
)

// msgBootstrapped reports that a bootstrap command finished. Ran is false
// when the controller had already bootstrapped.
type msgBootstrapped struct {
	Ran bool
}

// msgSpaceResolved carries the creation result for an attempt back to Update.
type msgSpaceResolved struct {
	Attempt join.Attempt
	Space   spaces.Space
	Err     error
}
