package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"biomassoutput/internal/blob"
	"biomassoutput/internal/persistence"
)

// ManifestKey is where the metadata manifest is stored.
const ManifestKey = "metadata/output-biomass.json"

// MapEntry describes one family of maps.
type MapEntry struct {
	Name     string `json:"name"`
	Template string `json:"template"`
	Units    string `json:"units"`
	Kind     string `json:"kind"`
}

// ColumnEntry describes one summary log column.
type ColumnEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Units       string `json:"units,omitempty"`
}

// TableEntry describes one summary log.
type TableEntry struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Columns     []ColumnEntry `json:"columns"`
}

// Manifest lists every output the extension produces.
type Manifest struct {
	Extension string       `json:"extension"`
	Timestep  int          `json:"timestep"`
	Maps      []MapEntry   `json:"maps"`
	Tables    []TableEntry `json:"tables"`
}

const biomassUnits = "g/m2"

// AddSpeciesMaps records the total biomass map and, when species is not
// empty, one map per species.
func (m *Manifest) AddSpeciesMaps(template string, species []string) {
	total, err := ReplaceTemplateVars(template, map[string]string{VarSpecies: TotalBiomassToken, VarTimestep: "{" + VarTimestep + "}"})
	if err == nil {
		m.Maps = append(m.Maps, MapEntry{Name: TotalBiomassToken, Template: total, Units: biomassUnits, Kind: "total"})
	}
	for _, sp := range species {
		m.Maps = append(m.Maps, MapEntry{Name: sp, Template: template, Units: biomassUnits, Kind: "species"})
	}
}

// AddPoolMap records a dead-biomass pool map family.
func (m *Manifest) AddPoolMap(template, pool string) {
	m.Maps = append(m.Maps, MapEntry{Name: pool, Template: template, Units: biomassUnits, Kind: "pool"})
}

// AddTable records a summary log and derives its column descriptions.
func (m *Manifest) AddTable(schema persistence.Schema) {
	header := schema.Header()
	cols := make([]ColumnEntry, 0, len(header))
	cols = append(cols,
		ColumnEntry{Name: header[0], Description: "Simulation year"},
		ColumnEntry{Name: header[1], Description: "Region identifier"},
		ColumnEntry{Name: header[2], Description: "Number of active sites in the region"},
	)
	for i, sp := range schema.Species {
		cols = append(cols, ColumnEntry{Name: header[3+i], Description: "Mean aboveground biomass of " + sp, Units: biomassUnits})
	}
	m.Tables = append(m.Tables, TableEntry{Name: schema.Name, Description: schema.Description, Columns: cols})
}

// Write stores the manifest as indented JSON.
func (m *Manifest) Write(ctx context.Context, store blob.Store) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if _, err := store.Put(ctx, ManifestKey, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("store manifest: %w", err)
	}
	return nil
}
