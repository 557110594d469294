package extract

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*\\n?(.*?)\\n?\\s*```$")

// Sanitize repairs a model answer before JSON parsing: it strips a surrounding
// code fence and then trims to the span between the first '{' and the last '}'.
//
// This is best effort. A '{' or '}' inside prose that precedes the real object
// makes the trimmed span start in the wrong place and parsing then fails.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(s); m != nil && m[1] != "" {
		s = strings.TrimSpace(m[1])
	}
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first != -1 && last != -1 && last > first {
		s = s[first : last+1]
	}
	return s
}
