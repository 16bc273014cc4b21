// Package core runs the biomass output extension: it resolves the host site
// variables once, then at every timestep writes the total biomass map, the
// region summary logs, the dead-biomass pool maps and the species maps.
package core

import (
	"context"
	"fmt"
	"time"

	"biomassoutput/internal/biomass"
	"biomassoutput/internal/blob"
	"biomassoutput/internal/config"
	"biomassoutput/internal/output"
	"biomassoutput/internal/persistence"
	"biomassoutput/pkg/hostapi"
)

const (
	// ExtensionName is the name the host registers the extension under.
	ExtensionName = "Output Biomass"
	// ExtensionVersion follows the output format, not the module version.
	ExtensionVersion = "3.0"
)

// poolVars maps pool names to the site variables carrying them.
var poolVars = map[string]string{
	output.PoolWoody:    hostapi.VarWoodyDebris,
	output.PoolNonWoody: hostapi.VarLitter,
}

type siteVars struct {
	cohorts    hostapi.SiteVar[hostapi.SiteCohorts]
	pools      map[string]hostapi.SiteVar[hostapi.Pool]
	membership hostapi.SiteVar[hostapi.ManagementArea]
}

// Extension is the biomass output extension. It is not safe for concurrent
// use; the host calls Initialize once and Run once per timestep.
type Extension struct {
	params config.Parameters
	blobs  blob.Store
	tables persistence.Store

	logger  Logger
	clock   Clock
	metrics MetricsRecorder
	tracer  Tracer

	host    hostapi.Core
	vars    siteVars
	species []hostapi.Species
	maps    *output.MapWriter
	ecoLog  *output.SummaryWriter
	maLog   *output.SummaryWriter
	areas   biomass.AreaCache
}

// NewExtension builds an extension writing maps to blobs and summary logs to
// tables.
func NewExtension(params config.Parameters, blobs blob.Store, tables persistence.Store, opts ...Option) *Extension {
	e := &Extension{
		params:  params,
		blobs:   blobs,
		tables:  tables,
		logger:  noopLogger{},
		clock:   ClockFunc(time.Now),
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Timestep returns the reporting interval in years.
func (e *Extension) Timestep() int { return e.params.Timestep }

// Parameters returns the validated run parameters.
func (e *Extension) Parameters() config.Parameters { return e.params }

// SelectedSpecies returns the species that get an individual map.
func (e *Extension) SelectedSpecies() []hostapi.Species {
	return append([]hostapi.Species(nil), e.species...)
}

// ManagementAreaBuilds reports how many times the management-area list was
// collected during the run.
func (e *Extension) ManagementAreaBuilds() int { return e.areas.Builds() }

// Initialize resolves the host site variables and opens the summary logs.
// It fails when the cohort variable is missing or when the management-area
// table is requested without management-area data.
func (e *Extension) Initialize(ctx context.Context, host hostapi.Core) error {
	err := e.observe(ctx, "initialize", func(ctx context.Context) error {
		return e.initialize(ctx, host)
	})
	if err != nil {
		e.logger.Error("initialize failed", "error", err)
	}
	return err
}

func (e *Extension) initialize(ctx context.Context, host hostapi.Core) error {
	if host == nil {
		return fmt.Errorf("initialize: nil host")
	}
	if err := e.params.Validate(); err != nil {
		return err
	}
	if e.blobs == nil {
		return fmt.Errorf("initialize: no blob store")
	}
	reg := host.SiteVars()

	cohorts, ok, err := hostapi.Lookup[hostapi.SiteCohorts](reg, hostapi.VarBiomassCohorts)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", hostapi.VarBiomassCohorts, err)
	}
	if !ok {
		return fmt.Errorf("%w (%s)", ErrCohortsUnavailable, hostapi.VarBiomassCohorts)
	}
	vars := siteVars{cohorts: cohorts, pools: make(map[string]hostapi.SiteVar[hostapi.Pool])}
	for _, pool := range e.params.SelectedPools() {
		name := poolVars[pool]
		v, ok, err := hostapi.Lookup[hostapi.Pool](reg, name)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", name, err)
		}
		if !ok {
			e.logger.Warn("pool variable not published, map will be skipped", "pool", pool, "var", name)
			continue
		}
		vars.pools[pool] = v
	}
	membership, ok, err := hostapi.Lookup[hostapi.ManagementArea](reg, hostapi.VarManagementArea)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", hostapi.VarManagementArea, err)
	}
	if ok {
		vars.membership = membership
	}
	if e.params.MakeTableByManagementArea && vars.membership == nil {
		return fmt.Errorf("%w (%s)", ErrManagementAreasUnavailable, hostapi.VarManagementArea)
	}

	all := host.Species()
	names := make([]string, len(all))
	byName := make(map[string]hostapi.Species, len(all))
	for i, sp := range all {
		names[i] = sp.Name()
		byName[sp.Name()] = sp
	}
	selected, err := e.params.ResolveSpecies(names)
	if err != nil {
		return err
	}
	species := make([]hostapi.Species, 0, len(selected))
	for _, name := range selected {
		species = append(species, byName[name])
	}

	if (e.params.MakeTableByEcoregion || e.params.MakeTableByManagementArea) && e.tables == nil {
		return fmt.Errorf("initialize: summary tables requested but no table store configured")
	}
	manifest := output.Manifest{Extension: ExtensionName, Timestep: e.params.Timestep}
	manifest.AddSpeciesMaps(e.params.SpeciesMapNames, selected)
	for _, pool := range e.params.SelectedPools() {
		manifest.AddPoolMap(e.params.PoolMapNames, pool)
	}
	var ecoLog, maLog *output.SummaryWriter
	if e.params.MakeTableByEcoregion {
		schema := output.EcoregionSchema(names)
		if ecoLog, err = output.NewSummaryWriter(ctx, e.tables, schema); err != nil {
			return err
		}
		manifest.AddTable(schema)
	}
	if e.params.MakeTableByManagementArea {
		schema := output.ManagementAreaSchema(names)
		if maLog, err = output.NewSummaryWriter(ctx, e.tables, schema); err != nil {
			return err
		}
		manifest.AddTable(schema)
	}
	if err := manifest.Write(ctx, e.blobs); err != nil {
		return err
	}

	e.host = host
	e.vars = vars
	e.species = species
	e.maps = output.NewMapWriter(e.blobs, host.Landscape(), cohorts)
	e.ecoLog = ecoLog
	e.maLog = maLog
	e.areas.Invalidate()
	e.logger.Info("initialized", "species_maps", len(species), "pools", len(vars.pools),
		"ecoregion_table", ecoLog != nil, "management_area_table", maLog != nil)
	return nil
}

// Run writes every configured output for the host's current time. Outputs
// are produced sequentially and the first failure aborts the timestep.
func (e *Extension) Run(ctx context.Context) error {
	if e.host == nil {
		return ErrNotInitialized
	}
	t := e.host.CurrentTime()
	ctx = WithTimestep(ctx, t)
	err := e.observe(ctx, "run", func(ctx context.Context) error {
		return e.run(ctx, t)
	})
	if err != nil {
		e.logger.Error("timestep failed", "time", t, "error", err)
	}
	return err
}

func (e *Extension) run(ctx context.Context, t int) error {
	if e.params.RefreshManagementAreas {
		e.areas.Invalidate()
	}

	path, err := output.SpeciesMapName(e.params.SpeciesMapNames, output.TotalBiomassToken, t)
	if err != nil {
		return err
	}
	e.logger.Info("writing total biomass map", "path", path, "time", t)
	if err := e.observe(ctx, "map.total", func(ctx context.Context) error {
		return e.maps.WriteTotal(ctx, path)
	}); err != nil {
		return fmt.Errorf("total biomass map: %w", err)
	}

	if e.ecoLog != nil {
		if err := e.observe(ctx, "table.ecoregion", func(ctx context.Context) error {
			return e.ecoLog.Write(ctx, t, biomass.ByEcoregion(e.host, e.vars.cohorts))
		}); err != nil {
			return err
		}
	}
	if e.maLog != nil {
		if err := e.observe(ctx, "table.management_area", func(ctx context.Context) error {
			areas := e.areas.Areas(e.host.Landscape(), e.vars.membership)
			return e.maLog.Write(ctx, t, biomass.ByManagementArea(e.host, e.vars.cohorts, e.vars.membership, areas))
		}); err != nil {
			return err
		}
	}

	for _, pool := range e.params.SelectedPools() {
		v, ok := e.vars.pools[pool]
		if !ok {
			continue
		}
		path, err := output.PoolMapName(e.params.PoolMapNames, pool, t)
		if err != nil {
			return err
		}
		e.logger.Info("writing dead biomass map", "pool", pool, "path", path, "time", t)
		if err := e.observe(ctx, "map.pool", func(ctx context.Context) error {
			return e.maps.WritePool(ctx, path, v)
		}); err != nil {
			return fmt.Errorf("%s pool map: %w", pool, err)
		}
	}

	for _, sp := range e.species {
		path, err := output.SpeciesMapName(e.params.SpeciesMapNames, sp.Name(), t)
		if err != nil {
			return err
		}
		e.logger.Info("writing species biomass map", "species", sp.Name(), "path", path, "time", t)
		if err := e.observe(ctx, "map.species", func(ctx context.Context) error {
			return e.maps.WriteSpecies(ctx, path, sp)
		}); err != nil {
			return fmt.Errorf("%s biomass map: %w", sp.Name(), err)
		}
	}
	return nil
}

func (e *Extension) observe(ctx context.Context, op string, fn func(context.Context) error) (err error) {
	start := e.clock.Now()
	ctx, span := e.tracer.Start(ctx, op)
	defer func() {
		span.End(err)
		e.metrics.Observe(ctx, op, err == nil, e.clock.Now().Sub(start))
	}()
	return fn(ctx)
}
