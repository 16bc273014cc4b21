package memory

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"biomassoutput/pkg/hostapi"
)

// Fixture models a landscape file used by the command-line driver:
//
//	rows: 2
//	columns: 2
//	species: [acersacc, pinubank]
//	ecoregions: [eco1]
//	sites:
//	  - {row: 0, column: 0, ecoregion: eco1, cohorts: {acersacc: [{age: 10, biomass: 400}]}}
//	management_areas:
//	  - {map_code: 5, stands: [{map_code: 1, sites: [[0, 0]]}]}
//
// Sites that are not listed remain inactive.
type Fixture struct {
	Rows            int                     `yaml:"rows"`
	Columns         int                     `yaml:"columns"`
	Time            int                     `yaml:"time"`
	Species         []string                `yaml:"species"`
	Ecoregions      []string                `yaml:"ecoregions"`
	Sites           []FixtureSite           `yaml:"sites"`
	ManagementAreas []FixtureManagementArea `yaml:"management_areas"`
}

// FixtureSite describes one active site.
type FixtureSite struct {
	Row         int                        `yaml:"row"`
	Column      int                        `yaml:"column"`
	Active      *bool                      `yaml:"active,omitempty"`
	Ecoregion   string                     `yaml:"ecoregion"`
	Cohorts     map[string][]FixtureCohort `yaml:"cohorts"`
	WoodyDebris *float64                   `yaml:"woody_debris,omitempty"`
	Litter      *float64                   `yaml:"litter,omitempty"`
}

// FixtureCohort describes one cohort.
type FixtureCohort struct {
	Age     int `yaml:"age"`
	Biomass int `yaml:"biomass"`
}

// FixtureManagementArea describes one management area and its stands.
type FixtureManagementArea struct {
	MapCode uint32         `yaml:"map_code"`
	Stands  []FixtureStand `yaml:"stands"`
}

// FixtureStand lists stand sites as [row, column] pairs.
type FixtureStand struct {
	MapCode uint32   `yaml:"map_code"`
	Sites   [][2]int `yaml:"sites"`
}

// LoadFile reads a YAML fixture from disk and builds a host.
func LoadFile(path string) (*Host, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path supplied by operator
	if err != nil {
		return nil, fmt.Errorf("read landscape %s: %w", path, err)
	}
	return Load(data)
}

// Load decodes a YAML fixture and builds a host.
func Load(data []byte) (*Host, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("decode landscape: %w", err)
	}
	return fx.Build()
}

// Build materializes the fixture.
func (fx Fixture) Build() (*Host, error) {
	if fx.Rows <= 0 || fx.Columns <= 0 {
		return nil, fmt.Errorf("landscape dimensions must be positive, got %dx%d", fx.Rows, fx.Columns)
	}
	if len(fx.Ecoregions) == 0 {
		return nil, errors.New("landscape requires at least one ecoregion")
	}
	h := New(fx.Rows, fx.Columns)
	h.SetTime(fx.Time)
	for _, name := range fx.Species {
		if _, dup := h.SpeciesByName(name); dup {
			return nil, fmt.Errorf("duplicate species %q", name)
		}
		h.AddSpecies(name)
	}
	for _, name := range fx.Ecoregions {
		if _, dup := h.EcoregionByName(name); dup {
			return nil, fmt.Errorf("duplicate ecoregion %q", name)
		}
		h.AddEcoregion(name)
	}
	for i, fs := range fx.Sites {
		site, err := h.Site(fs.Row, fs.Column)
		if err != nil {
			return nil, fmt.Errorf("sites[%d]: %w", i, err)
		}
		ecoName := fs.Ecoregion
		if ecoName == "" {
			ecoName = fx.Ecoregions[0]
		}
		eco, ok := h.EcoregionByName(ecoName)
		if !ok {
			return nil, fmt.Errorf("sites[%d]: unknown ecoregion %q", i, ecoName)
		}
		h.Activate(site, eco)
		if fs.Active != nil && !*fs.Active {
			h.Deactivate(site)
		}
		for spName, cohorts := range fs.Cohorts {
			sp, ok := h.SpeciesByName(spName)
			if !ok {
				return nil, fmt.Errorf("sites[%d]: unknown species %q", i, spName)
			}
			for _, c := range cohorts {
				if c.Biomass < 0 {
					return nil, fmt.Errorf("sites[%d]: negative biomass for %s", i, spName)
				}
				h.AddCohort(site, sp, c.Age, c.Biomass)
			}
		}
		if fs.WoodyDebris != nil {
			h.SetPool(hostapi.VarWoodyDebris, site, *fs.WoodyDebris)
		}
		if fs.Litter != nil {
			h.SetPool(hostapi.VarLitter, site, *fs.Litter)
		}
	}
	for i, fma := range fx.ManagementAreas {
		area := h.AddManagementArea(fma.MapCode)
		for j, fst := range fma.Stands {
			sites := make([]*Site, 0, len(fst.Sites))
			for _, rc := range fst.Sites {
				site, err := h.Site(rc[0], rc[1])
				if err != nil {
					return nil, fmt.Errorf("management_areas[%d].stands[%d]: %w", i, j, err)
				}
				sites = append(sites, site)
			}
			h.AddStand(area, fst.MapCode, sites...)
		}
	}
	return h, nil
}
