package render

import (
	"strings"

	"github.com/goliatone/go-cipherview/pkg/model"
)

// TableRowLimit caps the number of character rows a table renders. The decoded
// payload keeps every entry; only the presentation is truncated.
const TableRowLimit = 256

// TableTitle is the heading shown above the character table.
const TableTitle = "Character Breakdown"

// ResultTitle is the heading of the final result block.
const ResultTitle = "Final Result:"

// BlockKind identifies what a rendered block represents.
type BlockKind string

const (
	BlockStep    BlockKind = "step"
	BlockTable   BlockKind = "table"
	BlockResult  BlockKind = "result"
	BlockError   BlockKind = "error"
	BlockLoading BlockKind = "loading"
)

// ScrollHint tells the view how to bring a freshly inserted block into view.
// The zero value means "do not scroll".
type ScrollHint struct {
	Behavior string `json:"behavior,omitempty"`
	Block    string `json:"block,omitempty"`
}

// RevealScroll is applied to every revealed block: smooth, bottom anchored.
var RevealScroll = ScrollHint{Behavior: "smooth", Block: "end"}

// IsZero reports whether the hint asks for no scrolling.
func (h ScrollHint) IsZero() bool {
	return h.Behavior == "" && h.Block == ""
}

// Block is one unit of rendered output placed into a result area.
type Block struct {
	Kind   BlockKind  `json:"kind"`
	Markup string     `json:"markup"`
	Scroll ScrollHint `json:"scroll,omitempty"`
}

// SplitStep separates the lead of a narrative step (everything up to and
// including the first colon) from the remainder. ok is false when the step has
// no colon or the colon is the first character.
func SplitStep(step string) (lead, rest string, ok bool) {
	idx := strings.IndexByte(step, ':')
	if idx <= 0 {
		return "", step, false
	}
	return step[:idx+1], step[idx+1:], true
}

// VisibleDetails returns the rows a table should render, bounded by
// TableRowLimit.
func VisibleDetails(details []model.CharDetail) []model.CharDetail {
	if len(details) > TableRowLimit {
		return details[:TableRowLimit]
	}
	return details
}
