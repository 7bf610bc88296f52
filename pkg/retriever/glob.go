package retriever

import (
	"path"
	"strings"
)

// shapeMatches reports whether a glob pattern matches a compute shape.
// Matching is case-insensitive and anchored to the whole string; the
// literal patterns "*" and "all" match any shape. Pattern syntax is
// path.Match's `*`, `?`, and character classes — `.` is literal, so
// "VM.*" matches "VM.Standard.E4.Flex" and "t3.*" matches "t3.medium".
func shapeMatches(pattern, shape string) bool {
	p := strings.ToLower(pattern)
	if p == "*" || p == "all" {
		return true
	}
	ok, err := path.Match(p, strings.ToLower(shape))
	return err == nil && ok
}
