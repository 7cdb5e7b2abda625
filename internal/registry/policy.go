package registry

import (
	"sort"
	"strings"

	"github.com/Aman-CERP/envcheck/internal/probe"
)

// Policy adjusts a registry without touching probe declarations. Severity
// assignment is site policy: the same missing tool can block one team
// and merely warn another.
type Policy struct {
	// Severity overrides SeverityIfFailed per probe id.
	Severity map[string]probe.Severity
	// Disabled probe ids are removed.
	Disabled []string
}

// IsZero reports whether the policy changes nothing.
func (p Policy) IsZero() bool {
	return len(p.Severity) == 0 && len(p.Disabled) == 0
}

// Without returns a copy of p with no entries for ids.
func (p Policy) Without(ids ...string) Policy {
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		skip[id] = true
	}

	out := Policy{Severity: make(map[string]probe.Severity, len(p.Severity))}
	for id, sev := range p.Severity {
		if !skip[id] {
			out.Severity[id] = sev
		}
	}
	for _, id := range p.Disabled {
		if !skip[strings.TrimSpace(id)] {
			out.Disabled = append(out.Disabled, id)
		}
	}
	return out
}

// ApplyPolicy returns a new registry with the policy applied. Referring
// to an unknown probe id is a misconfiguration, so typos do not silently
// leave a probe at its default severity.
func (r *Registry) ApplyPolicy(p Policy) (*Registry, error) {
	disabled := make(map[string]bool, len(p.Disabled))
	for _, id := range p.Disabled {
		id = strings.TrimSpace(id)
		if _, ok := r.Lookup(id); !ok {
			return nil, misconfigured(id, "cannot disable unknown probe %q", id)
		}
		disabled[id] = true
	}

	ids := make([]string, 0, len(p.Severity))
	for id := range p.Severity {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := r.Lookup(id); !ok {
			return nil, misconfigured(id, "severity override for unknown probe %q", id)
		}
		if !p.Severity[id].Valid() {
			return nil, misconfigured(id, "severity override for %q must be critical or warning", id)
		}
	}

	out := New()
	for _, pr := range r.probes {
		if disabled[pr.ID] {
			continue
		}
		if sev, ok := p.Severity[pr.ID]; ok {
			pr.SeverityIfFailed = sev
		}
		if err := out.Register(pr.Section, pr); err != nil {
			return nil, err
		}
	}
	return out, nil
}
