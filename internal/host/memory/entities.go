package memory

import "biomassoutput/pkg/hostapi"

// Species is an in-memory hostapi.Species.
type Species struct {
	index int
	name  string
}

func (s *Species) Index() int   { return s.index }
func (s *Species) Name() string { return s.name }

// Ecoregion is an in-memory hostapi.Ecoregion.
type Ecoregion struct {
	index int
	name  string
}

func (e *Ecoregion) Index() int   { return e.index }
func (e *Ecoregion) Name() string { return e.name }

// Site is an in-memory hostapi.Site.
type Site struct {
	index  int
	row    int
	column int
	active bool
}

func (s *Site) Index() int     { return s.index }
func (s *Site) Row() int       { return s.row }
func (s *Site) Column() int    { return s.column }
func (s *Site) IsActive() bool { return s.active }

type cohort struct {
	age     int
	biomass int
}

func (c cohort) Age() int     { return c.age }
func (c cohort) Biomass() int { return c.biomass }

type speciesCohorts struct {
	species hostapi.Species
	cohorts []hostapi.Cohort
}

func (sc *speciesCohorts) Species() hostapi.Species { return sc.species }

func (sc *speciesCohorts) Cohorts() []hostapi.Cohort {
	out := make([]hostapi.Cohort, len(sc.cohorts))
	copy(out, sc.cohorts)
	return out
}

// siteCohorts keeps species cohorts in species index order.
type siteCohorts struct {
	entries []*speciesCohorts
}

func (s *siteCohorts) BySpecies(species hostapi.Species) hostapi.SpeciesCohorts {
	if species == nil {
		return nil
	}
	for _, entry := range s.entries {
		if entry.species.Index() == species.Index() {
			return entry
		}
	}
	return nil
}

func (s *siteCohorts) All() []hostapi.SpeciesCohorts {
	out := make([]hostapi.SpeciesCohorts, len(s.entries))
	for i, entry := range s.entries {
		out[i] = entry
	}
	return out
}

type pool struct{ mass float64 }

func (p pool) Mass() float64 { return p.mass }

// Stand is an in-memory hostapi.Stand.
type Stand struct {
	mapCode uint32
	sites   []hostapi.Site
}

func (s *Stand) MapCode() uint32 { return s.mapCode }

func (s *Stand) Sites() []hostapi.Site {
	out := make([]hostapi.Site, len(s.sites))
	copy(out, s.sites)
	return out
}

// ManagementArea is an in-memory hostapi.ManagementArea.
type ManagementArea struct {
	mapCode uint32
	stands  []*Stand
}

func (m *ManagementArea) MapCode() uint32 { return m.mapCode }

func (m *ManagementArea) Stands() []hostapi.Stand {
	out := make([]hostapi.Stand, len(m.stands))
	for i, stand := range m.stands {
		out[i] = stand
	}
	return out
}
