package artifact

import (
	"errors"
	"strings"
)

// ErrArtifactNotFound is returned when every resolver tier was exhausted.
var ErrArtifactNotFound = errors.New("artifact not found")

// ResolutionError reports an exhausted resolution and the tiers it attempted.
type ResolutionError struct {
	Path      string
	Attempted []TierResult
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString(ErrArtifactNotFound.Error())
	b.WriteString(" at ")
	b.WriteString(e.Path)
	b.WriteString(" (tried ")
	for i, r := range e.Attempted {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.Tier)
		if r.Err != nil {
			b.WriteString(": ")
			b.WriteString(r.Err.Error())
		}
	}
	b.WriteString(")")

	return b.String()
}

// Unwrap makes errors.Is(err, ErrArtifactNotFound) hold.
func (e *ResolutionError) Unwrap() error {
	return ErrArtifactNotFound
}
