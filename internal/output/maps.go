package output

import (
	"context"
	"fmt"
	"math"

	"biomassoutput/internal/biomass"
	"biomassoutput/internal/blob"
	"biomassoutput/pkg/hostapi"
)

// Pool names accepted in map templates and parameters.
const (
	PoolWoody    = "woody"
	PoolNonWoody = "non-woody"
)

// MapWriter renders per-site biomass maps of one landscape into a blob store.
// Active sites carry the rounded value, inactive sites 0.
type MapWriter struct {
	store     blob.Store
	landscape hostapi.Landscape
	cohorts   hostapi.SiteVar[hostapi.SiteCohorts]
}

// NewMapWriter binds a writer to the landscape and the cohort variable.
func NewMapWriter(store blob.Store, landscape hostapi.Landscape, cohorts hostapi.SiteVar[hostapi.SiteCohorts]) *MapWriter {
	return &MapWriter{store: store, landscape: landscape, cohorts: cohorts}
}

// WriteTotal writes total live biomass per site to path.
func (w *MapWriter) WriteTotal(ctx context.Context, path string) error {
	return w.write(ctx, path, func(site hostapi.Site) float64 {
		return float64(biomass.TotalBiomass(w.cohorts.Get(site)))
	})
}

// WriteSpecies writes the biomass of one species per site to path.
func (w *MapWriter) WriteSpecies(ctx context.Context, path string, species hostapi.Species) error {
	return w.write(ctx, path, func(site hostapi.Site) float64 {
		return float64(biomass.SiteSpeciesBiomass(w.cohorts, site, species))
	})
}

// WritePool writes the mass of a dead-biomass pool per site to path. Sites
// without a pool value get 0.
func (w *MapWriter) WritePool(ctx context.Context, path string, pool hostapi.SiteVar[hostapi.Pool]) error {
	return w.write(ctx, path, func(site hostapi.Site) float64 {
		p := pool.Get(site)
		if p == nil {
			return 0
		}
		return p.Mass()
	})
}

func (w *MapWriter) write(ctx context.Context, path string, value func(hostapi.Site) float64) (err error) {
	raster, err := NewRaster(w.store, path, w.landscape.Dimensions())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			raster.Discard()
			return
		}
		err = raster.Close(ctx)
	}()
	for _, site := range w.landscape.AllSites() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var px int32
		if site.IsActive() {
			px = Pixel(value(site))
		}
		if err := raster.Set(site.Index(), px); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// Pixel rounds half away from zero and saturates at the int32 range.
func Pixel(v float64) int32 {
	r := math.Round(v)
	switch {
	case math.IsNaN(r):
		return 0
	case r > math.MaxInt32:
		return math.MaxInt32
	case r < math.MinInt32:
		return math.MinInt32
	}
	return int32(r)
}
