package probe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultVersionPattern matches the first dotted version in tool output,
// e.g. "v20.10.0", "Docker version 24.0.7, build afdd53b" or
// "WSL version: 2.0.9.0".
const DefaultVersionPattern = `v?(\d+(?:\.\d+){1,3})`

// ParseResult is either Ok with a detail or Unparsable with the raw text.
type ParseResult struct {
	ok     bool
	Detail string
	Raw    string
}

// Ok returns a successful parse.
func Ok(detail string) ParseResult {
	return ParseResult{ok: true, Detail: detail}
}

// Unparsable returns a failed parse that keeps the raw output.
func Unparsable(raw string) ParseResult {
	return ParseResult{Raw: raw}
}

// IsOk reports whether the output was understood.
func (r ParseResult) IsOk() bool {
	return r.ok
}

// Parser extracts a detail from normalized tool output.
type Parser func(output string) ParseResult

// VersionParser returns a parser that extracts the first submatch of
// pattern (or the whole match if it has no groups). An empty pattern
// uses DefaultVersionPattern.
func VersionParser(pattern string) Parser {
	if pattern == "" {
		pattern = DefaultVersionPattern
	}
	return regexParser(regexp.MustCompile(pattern))
}

// ContainsParser returns a parser that succeeds when pattern matches
// anywhere in the output. Matching is case-insensitive.
func ContainsParser(pattern string) Parser {
	return regexParser(regexp.MustCompile("(?i)" + pattern))
}

func regexParser(re *regexp.Regexp) Parser {
	return func(output string) ParseResult {
		m := re.FindStringSubmatch(output)
		if m == nil {
			return Unparsable(output)
		}
		if len(m) > 1 && m[1] != "" {
			return Ok(m[1])
		}
		return Ok(strings.TrimSpace(m[0]))
	}
}

// JSONFieldParser returns a parser that decodes JSON output and reads the
// value at a dotted path such as "user.name". Numeric segments index
// arrays.
func JSONFieldParser(path string) Parser {
	segments := strings.Split(path, ".")
	return func(output string) ParseResult {
		var doc any
		if err := json.Unmarshal([]byte(output), &doc); err != nil {
			return Unparsable(output)
		}
		v, ok := lookup(doc, segments)
		if !ok {
			return Unparsable(output)
		}
		switch val := v.(type) {
		case string:
			if val == "" {
				return Unparsable(output)
			}
			return Ok(val)
		case nil, map[string]any, []any:
			return Unparsable(output)
		default:
			return Ok(fmt.Sprint(val))
		}
	}
}

func lookup(v any, segments []string) (any, bool) {
	for _, seg := range segments {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			v = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			v = node[i]
		default:
			return nil, false
		}
	}
	return v, true
}
