package planguard

import (
	"encoding/json"
	"sort"
	"strings"
)

// ExtractFirstJSON recovers a JSON object from model output that may carry
// prose around it. The span from the first '{' to the last '}' is tried first.
// When that does not parse, the balanced brace spans are tried in order of
// their opening brace, so a stray brace in trailing prose does not hide a
// valid object. Spans nested inside one that failed to parse are skipped. It
// never fails loudly: ok is false when nothing usable is found.
func ExtractFirstJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start == -1 || end == -1 || end <= start {
		return "", false
	}

	candidate := text[start : end+1]
	if json.Valid([]byte(candidate)) {
		return candidate, true
	}

	spans := braceSpans(candidate)
	sort.Slice(spans, func(i, j int) bool { return spans[i].open < spans[j].open })

	rejectedUntil := -1
	for _, sp := range spans {
		if sp.open < rejectedUntil {
			continue
		}
		obj := text[start+sp.open : start+sp.close+1]
		if json.Valid([]byte(obj)) {
			return obj, true
		}
		rejectedUntil = sp.close
	}
	return "", false
}

type span struct {
	open, close int
}

// braceSpans pairs every '{' with its closing '}' in one pass. Braces inside
// JSON strings are ignored once an object is open; quotes in surrounding prose
// are not tracked. Unclosed '{' yield no span.
func braceSpans(s string) []span {
	var (
		spans    []span
		open     []int
		inString bool
		escaped  bool
	)

	for i := 0; i < len(s); i++ {
		c := s[i]

		if len(open) > 0 {
			if escaped {
				escaped = false
				continue
			}
			if inString {
				switch c {
				case '\\':
					escaped = true
				case '"':
					inString = false
				}
				continue
			}
			if c == '"' {
				inString = true
				continue
			}
		}

		switch c {
		case '{':
			open = append(open, i)
		case '}':
			if n := len(open); n > 0 {
				spans = append(spans, span{open: open[n-1], close: i})
				open = open[:n-1]
			}
		}
	}
	return spans
}
