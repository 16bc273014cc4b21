package output

import (
	"context"
	"fmt"

	"biomassoutput/internal/biomass"
	"biomassoutput/internal/persistence"
)

// Summary log names and region columns.
const (
	EcoregionLogName         = "spp-biomass-log.csv"
	ManagementAreaLogName    = "spp-biomass-by-ma-log.csv"
	EcoregionColumn          = "EcoName"
	ManagementAreaColumn     = "ManagementAreaMapCode"
	ecoregionLogDescription  = "Mean aboveground biomass per species by ecoregion"
	managementLogDescription = "Mean aboveground biomass per species by management area"
)

// EcoregionSchema describes the ecoregion log for the given species.
func EcoregionSchema(species []string) persistence.Schema {
	return persistence.Schema{Name: EcoregionLogName, Description: ecoregionLogDescription, RegionColumn: EcoregionColumn, Species: species}
}

// ManagementAreaSchema describes the management-area log for the given species.
func ManagementAreaSchema(species []string) persistence.Schema {
	return persistence.Schema{Name: ManagementAreaLogName, Description: managementLogDescription, RegionColumn: ManagementAreaColumn, Species: species}
}

// SummaryWriter appends region summaries to one log.
type SummaryWriter struct {
	table persistence.Table
}

// NewSummaryWriter opens the log described by schema.
func NewSummaryWriter(ctx context.Context, store persistence.Store, schema persistence.Schema) (*SummaryWriter, error) {
	table, err := store.Open(ctx, schema)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", schema.Name, err)
	}
	return &SummaryWriter{table: table}, nil
}

// Name returns the log name.
func (w *SummaryWriter) Name() string { return w.table.Schema().Name }

// Table exposes the underlying log.
func (w *SummaryWriter) Table() persistence.Table { return w.table }

// Write appends one row per summary, keeping the summary order.
func (w *SummaryWriter) Write(ctx context.Context, timestep int, summaries []biomass.RegionSummary) error {
	rows := make([]persistence.Row, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, persistence.Row{
			Time:               timestep,
			Region:             s.Label,
			NumActiveSites:     s.ActiveSites,
			AboveGroundBiomass: append([]float64(nil), s.Means...),
		})
	}
	if err := w.table.Append(ctx, rows); err != nil {
		return fmt.Errorf("write %s: %w", w.Name(), err)
	}
	return nil
}
