package hostapi

// Species identifies one tree species. The species list is fixed for a run.
type Species interface {
	Index() int
	Name() string
}

// Ecoregion is a host-defined partition of the landscape. Every active site
// belongs to exactly one ecoregion.
type Ecoregion interface {
	Index() int
	Name() string
}

// Site is a single landscape cell.
type Site interface {
	// Index is the zero-based position in row-major traversal order.
	Index() int
	Row() int
	Column() int
	IsActive() bool
}

// Cohort is a single age/biomass record for one species at one site.
type Cohort interface {
	Age() int
	Biomass() int
}

// SpeciesCohorts is the ordered set of cohorts of one species at one site.
// A nil SpeciesCohorts means the species is absent from the site.
type SpeciesCohorts interface {
	Species() Species
	Cohorts() []Cohort
}

// SiteCohorts groups the species cohorts present at a site. A nil SiteCohorts
// means the site carries no vegetation.
type SiteCohorts interface {
	// BySpecies returns nil when the species is not present.
	BySpecies(species Species) SpeciesCohorts
	// All returns the cohorts of every species present at the site.
	All() []SpeciesCohorts
}

// Pool is a dead-biomass pool (woody debris or litter) at a site.
type Pool interface {
	Mass() float64
}

// Stand is a group of sites inside a management area.
type Stand interface {
	MapCode() uint32
	Sites() []Site
}

// ManagementArea is an optional harvest partition identified by map code.
type ManagementArea interface {
	MapCode() uint32
	Stands() []Stand
}

// Dimensions describes the raster extent of the landscape.
type Dimensions struct {
	Rows    int
	Columns int
}

// Cells returns the total number of cells.
func (d Dimensions) Cells() int { return d.Rows * d.Columns }

// Landscape exposes the site grid.
type Landscape interface {
	Dimensions() Dimensions
	// AllSites enumerates every site, active or not, in row-major order.
	AllSites() []Site
	// ActiveSites enumerates active sites in row-major order.
	ActiveSites() []Site
}

// Core is the host surface available to an extension.
type Core interface {
	Landscape() Landscape
	Species() []Species
	Ecoregions() []Ecoregion
	// Ecoregion returns the ecoregion of a site.
	Ecoregion(site Site) Ecoregion
	CurrentTime() int
	SiteVars() Registry
}
