// Package output renders biomass maps and summary logs for one timestep.
package output

import (
	"fmt"
	"strconv"
	"strings"
)

// Template variable names.
const (
	VarSpecies  = "species"
	VarPool     = "pool"
	VarTimestep = "timestep"
)

// TotalBiomassToken stands in for the species name in the total biomass map.
const TotalBiomassToken = "TotalBiomass"

// UnknownVarError reports a template variable with no value.
type UnknownVarError struct {
	Template string
	Var      string
}

func (e UnknownVarError) Error() string {
	return fmt.Sprintf("template %q: unknown variable {%s}", e.Template, e.Var)
}

// ReplaceTemplateVars substitutes every {name} in template with vars[name].
// An unclosed brace is kept literally.
func ReplaceTemplateVars(template string, vars map[string]string) (string, error) {
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open == -1 {
			b.WriteString(rest)
			break
		}
		closeIdx := strings.IndexByte(rest[open:], '}')
		if closeIdx == -1 {
			b.WriteString(rest)
			break
		}
		name := rest[open+1 : open+closeIdx]
		value, ok := vars[name]
		if !ok {
			return "", UnknownVarError{Template: template, Var: name}
		}
		b.WriteString(rest[:open])
		b.WriteString(value)
		rest = rest[open+closeIdx+1:]
	}
	return b.String(), nil
}

// TemplateVars lists the variables referenced by template, in order.
func TemplateVars(template string) []string {
	var out []string
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open == -1 {
			return out
		}
		closeIdx := strings.IndexByte(rest[open:], '}')
		if closeIdx == -1 {
			return out
		}
		out = append(out, rest[open+1:open+closeIdx])
		rest = rest[open+closeIdx+1:]
	}
}

// SpeciesMapName names the map of one species (or TotalBiomassToken).
func SpeciesMapName(template, species string, timestep int) (string, error) {
	return ReplaceTemplateVars(template, map[string]string{
		VarSpecies:  species,
		VarTimestep: strconv.Itoa(timestep),
	})
}

// PoolMapName names the map of one dead-biomass pool.
func PoolMapName(template, pool string, timestep int) (string, error) {
	return ReplaceTemplateVars(template, map[string]string{
		VarPool:     pool,
		VarTimestep: strconv.Itoa(timestep),
	})
}
