// Package media defines the boundary to the external image-generation
// provider and the typed result payloads jobs persist.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamlet-bot/hamlet/internal/config"
)

// GenerateRequest carries everything the provider needs for one call.
type GenerateRequest struct {
	Kind      config.JobKind
	Prompt    string
	OwnerID   string
	Reference []string // URLs of baseline images for visual continuity
}

// Artifact is an opaque reference to a generated image.
type Artifact struct {
	URL string `json:"url"`
}

// Generator is the external image-generation provider. Implementations
// live outside this module; tests use mocks.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Artifact, error)
}

// Unconfigured stands in when no provider client has been wired up.
// Every call fails permanently so jobs do not burn their retry budget
// waiting for credentials that will never appear.
type Unconfigured struct{}

func (Unconfigured) Generate(ctx context.Context, req GenerateRequest) (Artifact, error) {
	return Artifact{}, Permanent("no generation provider configured")
}

// PermanentError marks a failure that retrying cannot fix, such as a
// deleted reference image. The scheduler fails the job immediately
// instead of spending the remaining retry budget.
type PermanentError struct {
	Reason string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("permanent generation failure: %s", e.Reason)
}

// Permanent wraps reason into a PermanentError.
func Permanent(format string, args ...any) error {
	return &PermanentError{Reason: fmt.Sprintf(format, args...)}
}

// IsPermanent reports whether err carries a PermanentError anywhere in
// its chain.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
