package probe

import (
	"fmt"
	"strconv"
	"strings"
)

// CompareVersions compares two dotted numeric versions of up to four
// components ("10.0.22631", "2.0.9.0", "v18.19.1"). Missing components
// count as zero. It returns -1, 0 or 1.
func CompareVersions(a, b string) (int, error) {
	pa, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	pb, err := parseVersion(b)
	if err != nil {
		return 0, err
	}
	for i := range pa {
		switch {
		case pa[i] < pb[i]:
			return -1, nil
		case pa[i] > pb[i]:
			return 1, nil
		}
	}
	return 0, nil
}

func parseVersion(v string) ([4]int, error) {
	var out [4]int
	s := strings.TrimPrefix(strings.TrimSpace(v), "v")
	// Drop pre-release and build suffixes: 1.2.3-beta, 1.2.3+abc.
	if i := strings.IndexAny(s, "-+ "); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if s == "" || len(parts) > len(out) {
		return out, fmt.Errorf("invalid version %q", v)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return out, fmt.Errorf("invalid version %q", v)
		}
		out[i] = n
	}
	return out, nil
}

// ValidVersion reports whether v can be compared.
func ValidVersion(v string) bool {
	_, err := parseVersion(v)
	return err == nil
}
