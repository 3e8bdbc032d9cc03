package render

import "strings"

// markupEscaper replaces the five reserved markup characters. strings.Replacer
// scans the input once, so the entities it emits are never re-escaped.
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// Escape returns s with &, <, >, " and ' replaced by their entities. Apply it
// exactly once per untrusted string: escaping an escaped string escapes the
// ampersands again.
func Escape(s string) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}
	return markupEscaper.Replace(s)
}
