// Package memory implements an in-memory landscape host for tests and for
// the command-line driver. It is not safe for concurrent mutation.
package memory

import (
	"fmt"
	"sort"

	"biomassoutput/pkg/hostapi"
)

// Host implements hostapi.Core over process memory.
type Host struct {
	dims       hostapi.Dimensions
	sites      []*Site
	species    []*Species
	ecoregions []*Ecoregion
	siteEco    []*Ecoregion
	cohorts    []map[int][]hostapi.Cohort
	pools      map[string][]float64
	areas      map[uint32]*ManagementArea
	siteArea   []*ManagementArea
	vars       map[string]any
	time       int
}

var _ hostapi.Core = (*Host)(nil)

// New constructs a host with rows*columns inactive sites. The cohort site
// variable is registered immediately; pool and management area variables are
// registered on first use.
func New(rows, columns int) *Host {
	if rows < 0 {
		rows = 0
	}
	if columns < 0 {
		columns = 0
	}
	dims := hostapi.Dimensions{Rows: rows, Columns: columns}
	h := &Host{
		dims:     dims,
		sites:    make([]*Site, 0, dims.Cells()),
		siteEco:  make([]*Ecoregion, dims.Cells()),
		cohorts:  make([]map[int][]hostapi.Cohort, dims.Cells()),
		pools:    make(map[string][]float64),
		areas:    make(map[uint32]*ManagementArea),
		siteArea: make([]*ManagementArea, dims.Cells()),
		vars:     make(map[string]any),
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < columns; c++ {
			h.sites = append(h.sites, &Site{index: len(h.sites), row: r, column: c})
		}
	}
	h.vars[hostapi.VarBiomassCohorts] = hostapi.SiteVar[hostapi.SiteCohorts](hostapi.SiteVarFunc[hostapi.SiteCohorts](h.siteCohorts))
	return h
}

// AddSpecies appends a species with the next index.
func (h *Host) AddSpecies(name string) *Species {
	sp := &Species{index: len(h.species), name: name}
	h.species = append(h.species, sp)
	return sp
}

// AddEcoregion appends an ecoregion with the next index.
func (h *Host) AddEcoregion(name string) *Ecoregion {
	eco := &Ecoregion{index: len(h.ecoregions), name: name}
	h.ecoregions = append(h.ecoregions, eco)
	return eco
}

// SpeciesByName returns the species with the given name.
func (h *Host) SpeciesByName(name string) (*Species, bool) {
	for _, sp := range h.species {
		if sp.name == name {
			return sp, true
		}
	}
	return nil, false
}

// EcoregionByName returns the ecoregion with the given name.
func (h *Host) EcoregionByName(name string) (*Ecoregion, bool) {
	for _, eco := range h.ecoregions {
		if eco.name == name {
			return eco, true
		}
	}
	return nil, false
}

// Site returns the site at row/column.
func (h *Host) Site(row, column int) (*Site, error) {
	if row < 0 || row >= h.dims.Rows || column < 0 || column >= h.dims.Columns {
		return nil, fmt.Errorf("site (%d,%d) outside %dx%d landscape", row, column, h.dims.Rows, h.dims.Columns)
	}
	return h.sites[row*h.dims.Columns+column], nil
}

// MustSite is Site for fixtures with known-good coordinates.
func (h *Host) MustSite(row, column int) *Site {
	site, err := h.Site(row, column)
	if err != nil {
		panic(err)
	}
	return site
}

// Activate marks a site active and assigns its ecoregion.
func (h *Host) Activate(site *Site, eco *Ecoregion) {
	site.active = true
	h.siteEco[site.index] = eco
}

// Deactivate marks a site inactive. Cohorts and pools are left untouched so
// that stale data remains observable to readers that ignore the flag.
func (h *Host) Deactivate(site *Site) {
	site.active = false
}

// AddCohort appends a cohort of species to a site.
func (h *Host) AddCohort(site *Site, species *Species, age, biomass int) {
	if h.cohorts[site.index] == nil {
		h.cohorts[site.index] = make(map[int][]hostapi.Cohort)
	}
	h.cohorts[site.index][species.index] = append(h.cohorts[site.index][species.index], cohort{age: age, biomass: biomass})
}

// ClearCohorts removes every cohort at a site.
func (h *Host) ClearCohorts(site *Site) {
	h.cohorts[site.index] = nil
}

// SetPool sets the dead-biomass mass of a pool variable (VarWoodyDebris or
// VarLitter) at a site, registering the variable when first used.
func (h *Host) SetPool(name string, site *Site, mass float64) {
	values, ok := h.pools[name]
	if !ok {
		values = make([]float64, h.dims.Cells())
		h.pools[name] = values
		h.vars[name] = hostapi.SiteVar[hostapi.Pool](hostapi.SiteVarFunc[hostapi.Pool](func(s hostapi.Site) hostapi.Pool {
			return pool{mass: h.pools[name][s.Index()]}
		}))
	}
	values[site.index] = mass
}

// AddManagementArea returns the area with the map code, creating it and
// registering the management area variable when needed.
func (h *Host) AddManagementArea(mapCode uint32) *ManagementArea {
	if ma, ok := h.areas[mapCode]; ok {
		return ma
	}
	ma := &ManagementArea{mapCode: mapCode}
	h.areas[mapCode] = ma
	if _, ok := h.vars[hostapi.VarManagementArea]; !ok {
		h.vars[hostapi.VarManagementArea] = hostapi.SiteVar[hostapi.ManagementArea](hostapi.SiteVarFunc[hostapi.ManagementArea](h.siteManagementArea))
	}
	return ma
}

// AddStand attaches a stand with the given sites to a management area. A
// site moves to the new area if it already belonged to another one.
func (h *Host) AddStand(area *ManagementArea, mapCode uint32, sites ...*Site) *Stand {
	stand := &Stand{mapCode: mapCode}
	for _, site := range sites {
		if prev := h.siteArea[site.index]; prev != nil && prev != area {
			prev.removeSite(site)
		}
		h.siteArea[site.index] = area
		stand.sites = append(stand.sites, site)
	}
	area.stands = append(area.stands, stand)
	return stand
}

func (m *ManagementArea) removeSite(site *Site) {
	for _, stand := range m.stands {
		kept := stand.sites[:0]
		for _, s := range stand.sites {
			if s.Index() != site.index {
				kept = append(kept, s)
			}
		}
		stand.sites = kept
	}
}

// ManagementAreas returns known areas ordered by map code.
func (h *Host) ManagementAreas() []*ManagementArea {
	out := make([]*ManagementArea, 0, len(h.areas))
	for _, ma := range h.areas {
		out = append(out, ma)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].mapCode < out[j].mapCode })
	return out
}

// Register publishes an arbitrary site variable.
func (h *Host) Register(name string, value any) { h.vars[name] = value }

// Unregister removes a site variable.
func (h *Host) Unregister(name string) { delete(h.vars, name) }

// SetTime sets the current simulation year.
func (h *Host) SetTime(t int) { h.time = t }

// Landscape implements hostapi.Core.
func (h *Host) Landscape() hostapi.Landscape { return landscape{h: h} }

// Species implements hostapi.Core.
func (h *Host) Species() []hostapi.Species {
	out := make([]hostapi.Species, len(h.species))
	for i, sp := range h.species {
		out[i] = sp
	}
	return out
}

// Ecoregions implements hostapi.Core.
func (h *Host) Ecoregions() []hostapi.Ecoregion {
	out := make([]hostapi.Ecoregion, len(h.ecoregions))
	for i, eco := range h.ecoregions {
		out[i] = eco
	}
	return out
}

// Ecoregion implements hostapi.Core. Active sites without an explicit
// assignment fall back to the first ecoregion.
func (h *Host) Ecoregion(site hostapi.Site) hostapi.Ecoregion {
	if site == nil || site.Index() < 0 || site.Index() >= len(h.siteEco) {
		return nil
	}
	if eco := h.siteEco[site.Index()]; eco != nil {
		return eco
	}
	if len(h.ecoregions) > 0 {
		return h.ecoregions[0]
	}
	return nil
}

// CurrentTime implements hostapi.Core.
func (h *Host) CurrentTime() int { return h.time }

// SiteVars implements hostapi.Core.
func (h *Host) SiteVars() hostapi.Registry { return registry{h: h} }

func (h *Host) siteCohorts(site hostapi.Site) hostapi.SiteCohorts {
	bySpecies := h.cohorts[site.Index()]
	if len(bySpecies) == 0 {
		return nil
	}
	sc := &siteCohorts{}
	for _, sp := range h.species {
		cohorts, ok := bySpecies[sp.index]
		if !ok || len(cohorts) == 0 {
			continue
		}
		sc.entries = append(sc.entries, &speciesCohorts{species: sp, cohorts: cohorts})
	}
	if len(sc.entries) == 0 {
		return nil
	}
	return sc
}

func (h *Host) siteManagementArea(site hostapi.Site) hostapi.ManagementArea {
	if ma := h.siteArea[site.Index()]; ma != nil {
		return ma
	}
	return nil
}

type registry struct{ h *Host }

func (r registry) Lookup(name string) (any, bool) {
	v, ok := r.h.vars[name]
	return v, ok
}

type landscape struct{ h *Host }

func (l landscape) Dimensions() hostapi.Dimensions { return l.h.dims }

func (l landscape) AllSites() []hostapi.Site {
	out := make([]hostapi.Site, len(l.h.sites))
	for i, site := range l.h.sites {
		out[i] = site
	}
	return out
}

func (l landscape) ActiveSites() []hostapi.Site {
	out := make([]hostapi.Site, 0, len(l.h.sites))
	for _, site := range l.h.sites {
		if site.active {
			out = append(out, site)
		}
	}
	return out
}
