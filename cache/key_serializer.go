package cache

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "_"

// defaultKeySerializer renders query arguments as plain text so keys survive
// process restarts and can be shared between workers through a remote cache.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey joins the name and each rendered argument with KeySeparator.
func (s *defaultKeySerializer) SerializeKey(name string, args ...any) string {
	if len(args) == 0 {
		return name
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}
	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "none"
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case []string:
		return strings.Join(val, ",")
	case []int:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ",")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
