// Package config loads run parameters from YAML and storage/telemetry
// settings from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"biomassoutput/internal/output"
)

// Pool selections.
const (
	PoolsNone     = ""
	PoolsWoody    = "woody"
	PoolsNonWoody = "non-woody"
	PoolsBoth     = "both"
)

// AllSpecies selects every species of the host.
const AllSpecies = "all"

const (
	// DefaultSpeciesMapNames is used when species_map_names is empty.
	DefaultSpeciesMapNames = "biomass/{species}-{timestep}.asc"
	// DefaultPoolMapNames is used when pool_map_names is empty.
	DefaultPoolMapNames = "biomass/{pool}-{timestep}.asc"
)

// Parameters are the run parameters of the extension.
type Parameters struct {
	Timestep int `yaml:"timestep"`
	// Species lists the species to map; a single "all" selects every species.
	Species                   []string `yaml:"species"`
	SpeciesMapNames           string   `yaml:"species_map_names"`
	Pools                     string   `yaml:"pools"`
	PoolMapNames              string   `yaml:"pool_map_names"`
	MakeTableByEcoregion      bool     `yaml:"make_table_by_ecoregion"`
	MakeTableByManagementArea bool     `yaml:"make_table_by_management_area"`
	RefreshManagementAreas    bool     `yaml:"refresh_management_areas"`
}

// ValidationError lists every invalid parameter.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid parameters: " + strings.Join(e.Problems, "; ")
}

// LoadParameters reads and validates a YAML parameter file.
func LoadParameters(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Parameters{}, fmt.Errorf("parameter file %s not found", path)
		}
		return Parameters{}, fmt.Errorf("read parameters: %w", err)
	}
	return ParseParameters(data)
}

// ParseParameters decodes YAML, applies defaults and validates the result.
// Unknown keys are rejected.
func ParseParameters(data []byte) (Parameters, error) {
	var p Parameters
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Parameters{}, fmt.Errorf("parse parameters: %w", err)
	}
	p.ApplyDefaults()
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// ApplyDefaults fills empty map name templates.
func (p *Parameters) ApplyDefaults() {
	if strings.TrimSpace(p.SpeciesMapNames) == "" {
		p.SpeciesMapNames = DefaultSpeciesMapNames
	}
	if strings.TrimSpace(p.PoolMapNames) == "" {
		p.PoolMapNames = DefaultPoolMapNames
	}
}

// Validate checks every field and reports all problems at once.
func (p Parameters) Validate() error {
	var problems []string
	if p.Timestep < 0 {
		problems = append(problems, fmt.Sprintf("timestep must be >= 0, got %d", p.Timestep))
	}
	switch p.Pools {
	case PoolsNone, PoolsWoody, PoolsNonWoody, PoolsBoth:
	default:
		problems = append(problems, fmt.Sprintf("pools must be one of woody, non-woody, both; got %q", p.Pools))
	}
	problems = append(problems, checkTemplate("species_map_names", p.SpeciesMapNames, "species", "timestep")...)
	if p.Pools != PoolsNone {
		problems = append(problems, checkTemplate("pool_map_names", p.PoolMapNames, "pool", "timestep")...)
	}
	seen := make(map[string]bool, len(p.Species))
	for _, name := range p.Species {
		if name == AllSpecies && len(p.Species) > 1 {
			problems = append(problems, `species "all" cannot be combined with other names`)
		}
		if seen[name] {
			problems = append(problems, fmt.Sprintf("species %q listed twice", name))
		}
		seen[name] = true
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// checkTemplate requires the variable named required and allows only the listed others.
func checkTemplate(field, template, required string, allowed ...string) []string {
	var problems []string
	vars := output.TemplateVars(template)
	found := false
	for _, v := range vars {
		if v == required {
			found = true
			continue
		}
		ok := false
		for _, a := range allowed {
			if v == a {
				ok = true
			}
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: unknown variable {%s}", field, v))
		}
	}
	if !found {
		problems = append(problems, fmt.Sprintf("%s: missing variable {%s}", field, required))
	}
	return problems
}

// SelectedPools expands the pools selection into pool names.
func (p Parameters) SelectedPools() []string {
	switch p.Pools {
	case PoolsWoody:
		return []string{PoolsWoody}
	case PoolsNonWoody:
		return []string{PoolsNonWoody}
	case PoolsBoth:
		return []string{PoolsWoody, PoolsNonWoody}
	}
	return nil
}

// ResolveSpecies maps the species selection onto the host species names,
// preserving host order for "all" and parameter order otherwise.
func (p Parameters) ResolveSpecies(available []string) ([]string, error) {
	if len(p.Species) == 1 && p.Species[0] == AllSpecies {
		return append([]string(nil), available...), nil
	}
	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}
	var problems []string
	for _, name := range p.Species {
		if !known[name] {
			problems = append(problems, fmt.Sprintf("species %q is not a species of the landscape", name))
		}
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return append([]string(nil), p.Species...), nil
}
