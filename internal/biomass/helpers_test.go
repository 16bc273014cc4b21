package biomass

import (
	"testing"

	"biomassoutput/internal/host/memory"
	"biomassoutput/pkg/hostapi"
)

type fakeCohort int

func (c fakeCohort) Age() int     { return 1 }
func (c fakeCohort) Biomass() int { return int(c) }

type fakeSpeciesCohorts []int

func (f fakeSpeciesCohorts) Species() hostapi.Species { return nil }

func (f fakeSpeciesCohorts) Cohorts() []hostapi.Cohort {
	out := make([]hostapi.Cohort, len(f))
	for i, v := range f {
		out[i] = fakeCohort(v)
	}
	return out
}

type fakeSiteCohorts []fakeSpeciesCohorts

func (f fakeSiteCohorts) BySpecies(hostapi.Species) hostapi.SpeciesCohorts { return nil }

func (f fakeSiteCohorts) All() []hostapi.SpeciesCohorts {
	out := make([]hostapi.SpeciesCohorts, len(f))
	for i, sc := range f {
		out[i] = sc
	}
	return out
}

func cohortVar(t *testing.T, h *memory.Host) hostapi.SiteVar[hostapi.SiteCohorts] {
	t.Helper()
	sv, ok, err := hostapi.Lookup[hostapi.SiteCohorts](h.SiteVars(), hostapi.VarBiomassCohorts)
	if err != nil || !ok {
		t.Fatalf("cohort var: ok=%v err=%v", ok, err)
	}
	return sv
}

func areaVar(t *testing.T, h *memory.Host) hostapi.SiteVar[hostapi.ManagementArea] {
	t.Helper()
	sv, ok, err := hostapi.Lookup[hostapi.ManagementArea](h.SiteVars(), hostapi.VarManagementArea)
	if err != nil || !ok {
		t.Fatalf("management area var: ok=%v err=%v", ok, err)
	}
	return sv
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
