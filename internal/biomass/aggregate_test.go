package biomass

import (
	"testing"

	"biomassoutput/internal/host/memory"
	"biomassoutput/pkg/hostapi"
)

func TestSpeciesBiomass(t *testing.T) {
	cases := []struct {
		name    string
		cohorts hostapi.SpeciesCohorts
		want    int
	}{
		{name: "absent", cohorts: nil, want: 0},
		{name: "empty", cohorts: fakeSpeciesCohorts{}, want: 0},
		{name: "three cohorts", cohorts: fakeSpeciesCohorts{3, 5, 2}, want: 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SpeciesBiomass(tc.cohorts); got != tc.want {
				t.Fatalf("SpeciesBiomass = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestTotalBiomass(t *testing.T) {
	if got := TotalBiomass(nil); got != 0 {
		t.Fatalf("TotalBiomass(nil) = %d", got)
	}
	site := fakeSiteCohorts{{3, 5, 2}, {4}}
	if got := TotalBiomass(site); got != 14 {
		t.Fatalf("TotalBiomass = %d, want 14", got)
	}
}

func TestSiteSpeciesBiomassThroughHost(t *testing.T) {
	h := memory.New(1, 2)
	eco := h.AddEcoregion("eco")
	acer := h.AddSpecies("acersacc")
	pinu := h.AddSpecies("pinubank")
	site := h.MustSite(0, 0)
	bare := h.MustSite(0, 1)
	h.Activate(site, eco)
	h.Activate(bare, eco)
	h.AddCohort(site, acer, 10, 3)
	h.AddCohort(site, acer, 20, 7)

	cohorts := cohortVar(t, h)
	if got := SiteSpeciesBiomass(cohorts, site, acer); got != 10 {
		t.Fatalf("acer biomass = %d, want 10", got)
	}
	if got := SiteSpeciesBiomass(cohorts, site, pinu); got != 0 {
		t.Fatalf("absent species biomass = %d, want 0", got)
	}
	if got := SiteSpeciesBiomass(cohorts, bare, acer); got != 0 {
		t.Fatalf("bare site biomass = %d, want 0", got)
	}
	if got := SiteSpeciesBiomass(nil, site, acer); got != 0 {
		t.Fatalf("nil var biomass = %d, want 0", got)
	}
	if got := TotalBiomass(cohorts.Get(site)); got != 10 {
		t.Fatalf("total = %d, want 10", got)
	}
}
