package mapping

import (
	"regexp"
	"strings"
	"sync"
)

// compiled caches regex compilation per pattern. A nil entry records a
// pattern that failed to compile.
var compiled sync.Map // map[string]*regexp.Regexp

func compile(pattern string) *regexp.Regexp {
	if re, ok := compiled.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = nil
	}
	compiled.Store(pattern, re)
	return re
}

// MatchesPattern reports whether message matches the mapping.
//
// Regex mappings are compiled case-insensitively and tested against the raw
// message; an invalid expression degrades to a case-insensitive substring
// test. Plain mappings must equal the whole message, ignoring case.
func MatchesPattern(message string, m ErrorMapping) bool {
	if m.IsRegex {
		if re := compile(m.Pattern); re != nil {
			return re.MatchString(message)
		}
		return strings.Contains(strings.ToLower(message), strings.ToLower(m.Pattern))
	}
	return strings.EqualFold(strings.TrimSpace(message), strings.TrimSpace(m.Pattern))
}

// FindBestMatch returns the first mapping, in list order, that matches message.
func FindBestMatch(message string, mappings []ErrorMapping) (*ErrorMapping, bool) {
	for i := range mappings {
		if MatchesPattern(message, mappings[i]) {
			m := mappings[i]
			return &m, true
		}
	}
	return nil, false
}
