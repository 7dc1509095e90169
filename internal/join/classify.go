package join

import (
	"errors"

	"github.com/arvrtise/haus/internal/spaces"
)

// Presentation is the title and message shown in the error display.
type Presentation struct {
	Title   string
	Message string
}

// Presentations for classified creation failures.
var (
	AuthorizationPresentation = Presentation{
		Title: "Not authorized to create a new space",
		Message: "Make sure MUX_TOKEN_ID and MUX_TOKEN_SECRET are set on the backend. " +
			"Refer to the backend README for more details.",
	}
	CapacityLimitPresentation = Presentation{
		Title: "Maximum active space limit reached",
		Message: "This server has reached the maximum number of active spaces, " +
			"please try again later when things settle down.",
	}
	// GenericPresentation is shown for unclassified failures under
	// PolicyNotify.
	GenericPresentation = Presentation{
		Title:   "Could not create a new space",
		Message: "Something went wrong while creating the space. Please try again.",
	}
)

// Classify maps a creation failure to its presentation. It reports false for
// failures that have no dedicated presentation.
func Classify(err error) (Presentation, bool) {
	var ce *spaces.CreationError
	if !errors.As(err, &ce) {
		return Presentation{}, false
	}
	switch ce.Kind {
	case spaces.KindAuthorization:
		return AuthorizationPresentation, true
	case spaces.KindCapacityLimit:
		return CapacityLimitPresentation, true
	case spaces.KindGeneric:
		return Presentation{}, false
	}
	return Presentation{}, false
}
