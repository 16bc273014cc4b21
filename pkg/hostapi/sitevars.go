package hostapi

import "fmt"

// Well-known site variable names published by succession and harvest
// extensions.
const (
	VarBiomassCohorts = "Succession.BiomassCohorts"
	VarWoodyDebris    = "Succession.WoodyDebris"
	VarLitter         = "Succession.Litter"
	VarManagementArea = "BiomassHarvest.ManagementArea"
)

// SiteVar is a typed per-site value accessor.
type SiteVar[T any] interface {
	Get(site Site) T
}

// SiteVarFunc adapts a function to SiteVar.
type SiteVarFunc[T any] func(site Site) T

// Get implements SiteVar.
func (f SiteVarFunc[T]) Get(site Site) T { return f(site) }

// Registry resolves site variables by name. Lookup returns the registered
// value (a SiteVar[T] for some T) and whether the name is known.
type Registry interface {
	Lookup(name string) (any, bool)
}

// TypeMismatchError reports a site variable registered under a different
// value type than the one requested.
type TypeMismatchError struct {
	Name string
	Got  any
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("site variable %s has unexpected type %T", e.Name, e.Got)
}

// Lookup resolves a typed site variable. It returns (nil, false, nil) when the
// name is not registered and an error when it is registered with another type.
func Lookup[T any](reg Registry, name string) (SiteVar[T], bool, error) {
	if reg == nil {
		return nil, false, nil
	}
	raw, ok := reg.Lookup(name)
	if !ok || raw == nil {
		return nil, false, nil
	}
	sv, ok := raw.(SiteVar[T])
	if !ok {
		return nil, false, TypeMismatchError{Name: name, Got: raw}
	}
	return sv, true, nil
}
