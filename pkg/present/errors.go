package present

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-cipherview/pkg/render"
)

// ErrStale is returned by Run.Err when the area moved to a newer generation
// before the sequence finished.
var ErrStale = errors.New("present: result area generation advanced")

var errNoTable = errors.New("present: table task without table")

func errUnknownTask(kind render.BlockKind) error {
	return fmt.Errorf("present: unknown task kind %q", kind)
}
