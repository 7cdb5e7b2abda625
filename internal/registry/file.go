package registry

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/envcheck/internal/errors"
	"github.com/Aman-CERP/envcheck/internal/probe"
)

// FileVersion is the only registry file schema version understood.
const FileVersion = 1

// Parse modes accepted in a registry file.
const (
	ParseVersion  = "version"
	ParseJSON     = "json"
	ParseContains = "contains"
	ParseExit     = "exit"
)

// File is the declarative registry format.
type File struct {
	Version  int           `yaml:"version" validate:"required,eq=1"`
	Sections []FileSection `yaml:"sections" validate:"required,min=1,dive"`
}

// FileSection groups probes under a display name.
type FileSection struct {
	Name   string      `yaml:"name" validate:"required"`
	Probes []FileProbe `yaml:"probes" validate:"required,min=1,dive"`
}

// FileProbe declares one command probe.
type FileProbe struct {
	ID          string   `yaml:"id" validate:"required,probe_id"`
	Description string   `yaml:"description" validate:"required"`
	Command     []string `yaml:"command" validate:"required,min=1,dive,required"`
	Parse       string   `yaml:"parse" validate:"omitempty,oneof=version json contains exit"`
	Pattern     string   `yaml:"pattern" validate:"omitempty,regex_pattern"`
	JSONPath    string   `yaml:"json_path" validate:"required_if=Parse json"`
	Want        string   `yaml:"want"`
	MinVersion  string   `yaml:"min_version" validate:"omitempty,dotted_version"`
	Severity    string   `yaml:"severity" validate:"required,oneof=critical warning"`
	Optional    bool     `yaml:"optional"`
	Timeout     string   `yaml:"timeout" validate:"omitempty,duration"`
	Remediation string   `yaml:"remediation"`
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	probeIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("probe_id", func(fl validator.FieldLevel) bool {
			return probeIDPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
			d, err := time.ParseDuration(fl.Field().String())
			return err == nil && d > 0
		})

		_ = v.RegisterValidation("regex_pattern", func(fl validator.FieldLevel) bool {
			_, err := regexp.Compile(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("dotted_version", func(fl validator.FieldLevel) bool {
			return probe.ValidVersion(fl.Field().String())
		})

		validateInst = v
	})
	return validateInst
}

// LoadFile reads and builds a registry from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New(errors.ErrCodeConfigNotFound,
				fmt.Sprintf("registry file not found: %s", path), err)
		}
		return nil, errors.RegistryError(fmt.Sprintf("failed to read registry file %s", path), err)
	}
	reg, err := Parse(data)
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) {
			e.WithDetail("file", path)
		}
		return nil, err
	}
	return reg, nil
}

// Parse builds a registry from YAML. Unknown fields are rejected so a
// misspelled key does not silently change behavior.
func Parse(data []byte) (*Registry, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.RegistryError("registry file is not valid YAML", err).
			WithSuggestion("Check indentation and field names against the documented schema")
	}

	if err := validatorInstance().Struct(f); err != nil {
		return nil, convertValidationError(err)
	}

	reg := New()
	for _, s := range f.Sections {
		for _, fp := range s.Probes {
			p, err := fp.toProbe()
			if err != nil {
				return nil, err
			}
			if err := reg.Register(s.Name, p); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}

func (fp FileProbe) toProbe() (probe.Probe, error) {
	spec := probe.CommandSpec{
		Name:       fp.Command[0],
		Args:       fp.Command[1:],
		MinVersion: fp.MinVersion,
		Want:       fp.Want,
	}

	parse := fp.Parse
	if parse == "" {
		parse = ParseExit
		if fp.MinVersion != "" {
			parse = ParseVersion
		}
	}
	switch parse {
	case ParseVersion:
		spec.Parse = probe.VersionParser(fp.Pattern)
	case ParseJSON:
		spec.Parse = probe.JSONFieldParser(fp.JSONPath)
	case ParseContains:
		if fp.Pattern == "" {
			return probe.Probe{}, misconfigured(fp.ID, "probe %q: parse contains needs a pattern", fp.ID)
		}
		spec.Parse = probe.ContainsParser(fp.Pattern)
	}
	if parse == ParseExit && (fp.MinVersion != "" || fp.Want != "") {
		return probe.Probe{}, misconfigured(fp.ID, "probe %q: min_version and want need a parse mode other than exit", fp.ID)
	}

	var timeout time.Duration
	if fp.Timeout != "" {
		timeout, _ = time.ParseDuration(fp.Timeout)
	}

	return probe.Probe{
		ID:               fp.ID,
		Description:      fp.Description,
		Check:            probe.CommandProbe(spec),
		SeverityIfFailed: probe.Severity(fp.Severity),
		Optional:         fp.Optional,
		Remediation:      strings.TrimSpace(fp.Remediation),
		Timeout:          timeout,
		Command:          spec.String(),
	}, nil
}

func convertValidationError(err error) error {
	var ves validator.ValidationErrors
	if stderrors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		return errors.RegistryError(
			fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag()), err).
			WithDetail("field", field)
	}
	return errors.RegistryError(err.Error(), err)
}

// yamlishFieldName turns File.Sections[0].Probes[1].MinVersion into
// sections[0].probes[1].minversion.
func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	return strings.Join(parts, ".")
}
