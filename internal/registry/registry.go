// Package registry holds the ordered, immutable-once-built set of probes
// grouped by section.
//
// Registration fails fast: a registry with duplicate ids, missing checks
// or a probe without remediation is rejected before any probe runs.
package registry

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/probe"
)

// Registry is an ordered collection of probes. Order of registration is
// the order of execution results and of the report.
type Registry struct {
	probes   []probe.Probe
	index    map[string]int
	sections []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds p under section. The probe is copied; later changes to
// the caller's value do not affect the registry.
func (r *Registry) Register(section string, p probe.Probe) error {
	section = strings.TrimSpace(section)
	id := strings.TrimSpace(p.ID)

	switch {
	case section == "":
		return misconfigured(id, "probe %q has no section", id)
	case id == "":
		return misconfigured(id, "probe in section %q has an empty id", section)
	case p.Check == nil:
		return misconfigured(id, "probe %q has no check", id)
	case !p.SeverityIfFailed.Valid():
		return misconfigured(id, "probe %q: severity must be critical or warning, got %q", id, string(p.SeverityIfFailed))
	case strings.TrimSpace(p.Remediation) == "":
		// Indeterminate outcomes make any probe a warning, and warnings
		// carry a fix too.
		return misconfigured(id, "probe %q has no remediation", id)
	case p.Timeout < 0:
		return misconfigured(id, "probe %q has a negative timeout", id)
	}
	if _, dup := r.index[id]; dup {
		return misconfigured(id, "duplicate probe id %q", id)
	}

	p.ID = id
	p.Section = section
	if !r.hasSection(section) {
		r.sections = append(r.sections, section)
	}
	r.index[id] = len(r.probes)
	r.probes = append(r.probes, p)
	return nil
}

// MustRegister is Register for static declarations; it panics on error.
func (r *Registry) MustRegister(section string, p probe.Probe) {
	if err := r.Register(section, p); err != nil {
		panic(err)
	}
}

// AllProbes returns the probes in registration order.
func (r *Registry) AllProbes() []probe.Probe {
	out := make([]probe.Probe, len(r.probes))
	copy(out, r.probes)
	return out
}

// Len returns the number of probes.
func (r *Registry) Len() int {
	return len(r.probes)
}

// Sections returns section names in first-registered order.
func (r *Registry) Sections() []string {
	out := make([]string, len(r.sections))
	copy(out, r.sections)
	return out
}

// Lookup returns the probe with the given id.
func (r *Registry) Lookup(id string) (probe.Probe, bool) {
	i, ok := r.index[id]
	if !ok {
		return probe.Probe{}, false
	}
	return r.probes[i], true
}

// Filter returns a registry holding only the probes of section, matched
// case-insensitively. An unknown section is an error.
func (r *Registry) Filter(section string) (*Registry, error) {
	name, ok := r.resolveSection(section)
	if !ok {
		return nil, errors.UnknownSectionError(section, r.sections)
	}
	out := New()
	for _, p := range r.probes {
		if p.Section == name {
			if err := out.Register(p.Section, p); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Merge returns a registry with the probes of r followed by those of
// other. Ids must stay unique across both.
func (r *Registry) Merge(other *Registry) (*Registry, error) {
	out := New()
	for _, reg := range []*Registry{r, other} {
		if reg == nil {
			continue
		}
		for _, p := range reg.probes {
			if err := out.Register(p.Section, p); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (r *Registry) hasSection(name string) bool {
	for _, s := range r.sections {
		if s == name {
			return true
		}
	}
	return false
}

func (r *Registry) resolveSection(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, s := range r.sections {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

func misconfigured(id, format string, args ...any) error {
	e := errors.RegistryError(fmt.Sprintf(format, args...), nil)
	if id != "" {
		e.WithDetail("probe_id", id)
	}
	return e
}
