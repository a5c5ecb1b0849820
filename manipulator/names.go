package manipulator

import (
	"strings"
	"unicode"

	"github.com/goliatone/go-tba-cache/model"
)

// Task names are derived from the kind so several manipulators can share a queue.
func clearCacheTaskName(kind model.Kind) string { return "clear_cache." + snakeKind(kind) }
func postUpdateTaskName(kind model.Kind) string { return "post_update." + snakeKind(kind) }
func postDeleteTaskName(kind model.Kind) string { return "post_delete." + snakeKind(kind) }

// snakeKind renders a CamelCase kind as snake_case ("EventTeam" -> "event_team").
// Runs of capitals stay together unless followed by a lower case letter.
func snakeKind(kind model.Kind) string {
	runes := []rune(string(kind))
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		}
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) &&
				!strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.Trim(b.String(), "_")
}
