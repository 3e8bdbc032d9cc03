package render

import "github.com/goliatone/go-cipherview/pkg/model"

// BlockRenderer turns presentation data into blocks for a particular view
// (HTML fragments, terminal text). Implementations escape every service or
// user supplied string exactly once.
type BlockRenderer interface {
	Name() string
	ContentType() string
	Step(text string) (Block, error)
	Table(table model.CharTable) (Block, error)
	Result(result string) (Block, error)
	Error(message string) (Block, error)
	Loading() (Block, error)
	// Compose joins the blocks currently held by a result area into one
	// document for a full refresh of the view.
	Compose(blocks []Block) string
}
