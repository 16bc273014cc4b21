package memory

import (
	"errors"
	"testing"

	"biomassoutput/pkg/hostapi"
)

func TestSitesAreRowMajor(t *testing.T) {
	h := New(2, 3)
	if got := h.Landscape().Dimensions().Cells(); got != 6 {
		t.Fatalf("expected 6 cells, got %d", got)
	}
	site := h.MustSite(1, 2)
	if site.Index() != 5 || site.Row() != 1 || site.Column() != 2 {
		t.Fatalf("unexpected site %+v", site)
	}
	if _, err := h.Site(2, 0); err == nil {
		t.Fatalf("expected out-of-range error")
	}
	if len(h.Landscape().ActiveSites()) != 0 {
		t.Fatalf("new sites must be inactive")
	}
	h.Activate(site, h.AddEcoregion("eco1"))
	active := h.Landscape().ActiveSites()
	if len(active) != 1 || active[0].Index() != 5 {
		t.Fatalf("active sites %+v", active)
	}
	h.Deactivate(site)
	if site.IsActive() {
		t.Fatalf("expected inactive after Deactivate")
	}
}

func TestNegativeDimensionsAreClamped(t *testing.T) {
	h := New(-1, 4)
	if got := h.Landscape().Dimensions(); got.Rows != 0 || got.Columns != 4 {
		t.Fatalf("dims %+v", got)
	}
	if len(h.Landscape().AllSites()) != 0 {
		t.Fatalf("expected no sites")
	}
}

func TestCohortVariableGroupsBySpeciesOrder(t *testing.T) {
	h := New(1, 2)
	a := h.AddSpecies("a")
	b := h.AddSpecies("b")
	site := h.MustSite(0, 0)
	h.AddCohort(site, b, 5, 20)
	h.AddCohort(site, a, 10, 30)
	h.AddCohort(site, a, 20, 40)

	cohorts, ok, err := hostapi.Lookup[hostapi.SiteCohorts](h.SiteVars(), hostapi.VarBiomassCohorts)
	if err != nil || !ok {
		t.Fatalf("lookup cohorts: ok=%v err=%v", ok, err)
	}
	sc := cohorts.Get(site)
	all := sc.All()
	if len(all) != 2 || all[0].Species().Name() != "a" || all[1].Species().Name() != "b" {
		t.Fatalf("expected species in index order, got %d entries", len(all))
	}
	if got := sc.BySpecies(a).Cohorts(); len(got) != 2 || got[1].Biomass() != 40 || got[1].Age() != 20 {
		t.Fatalf("cohorts of a %+v", got)
	}
	if cohorts.Get(h.MustSite(0, 1)) != nil {
		t.Fatalf("empty site must have no cohorts")
	}
	h.ClearCohorts(site)
	if cohorts.Get(site) != nil {
		t.Fatalf("expected cleared site")
	}
}

func TestPoolAndManagementAreaVariablesRegisterOnFirstUse(t *testing.T) {
	h := New(1, 2)
	reg := h.SiteVars()
	if _, ok, _ := hostapi.Lookup[hostapi.Pool](reg, hostapi.VarLitter); ok {
		t.Fatalf("litter must be absent until set")
	}
	if _, ok, _ := hostapi.Lookup[hostapi.ManagementArea](reg, hostapi.VarManagementArea); ok {
		t.Fatalf("management areas must be absent until added")
	}
	site := h.MustSite(0, 1)
	h.SetPool(hostapi.VarLitter, site, 7.5)
	litter, ok, err := hostapi.Lookup[hostapi.Pool](reg, hostapi.VarLitter)
	if err != nil || !ok {
		t.Fatalf("lookup litter: ok=%v err=%v", ok, err)
	}
	if litter.Get(site).Mass() != 7.5 || litter.Get(h.MustSite(0, 0)).Mass() != 0 {
		t.Fatalf("unexpected litter values")
	}

	area := h.AddManagementArea(3)
	if h.AddManagementArea(3) != area {
		t.Fatalf("expected AddManagementArea to return the existing area")
	}
	h.AddStand(area, 1, site)
	membership, ok, err := hostapi.Lookup[hostapi.ManagementArea](reg, hostapi.VarManagementArea)
	if err != nil || !ok {
		t.Fatalf("lookup membership: ok=%v err=%v", ok, err)
	}
	if got := membership.Get(site); got == nil || got.MapCode() != 3 {
		t.Fatalf("unexpected membership %v", got)
	}
	if membership.Get(h.MustSite(0, 0)) != nil {
		t.Fatalf("site outside any area must report nil")
	}
}

func TestAddStandMovesSiteBetweenAreas(t *testing.T) {
	h := New(1, 1)
	site := h.MustSite(0, 0)
	first := h.AddManagementArea(9)
	second := h.AddManagementArea(4)
	h.AddStand(first, 1, site)
	h.AddStand(second, 2, site)
	if n := len(first.Stands()[0].Sites()); n != 0 {
		t.Fatalf("expected site removed from first area, %d left", n)
	}
	areas := h.ManagementAreas()
	if len(areas) != 2 || areas[0].MapCode() != 4 || areas[1].MapCode() != 9 {
		t.Fatalf("expected areas ordered by map code")
	}
}

func TestRegisterWithWrongTypeFailsLookup(t *testing.T) {
	h := New(1, 1)
	h.Register(hostapi.VarWoodyDebris, "not a site var")
	_, _, err := hostapi.Lookup[hostapi.Pool](h.SiteVars(), hostapi.VarWoodyDebris)
	var mismatch hostapi.TypeMismatchError
	if !errors.As(err, &mismatch) || mismatch.Name != hostapi.VarWoodyDebris {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	h.Unregister(hostapi.VarWoodyDebris)
	if _, ok, err := hostapi.Lookup[hostapi.Pool](h.SiteVars(), hostapi.VarWoodyDebris); ok || err != nil {
		t.Fatalf("expected variable removed")
	}
}

func TestEcoregionFallsBackToFirst(t *testing.T) {
	h := New(1, 2)
	first := h.AddEcoregion("first")
	second := h.AddEcoregion("second")
	h.Activate(h.MustSite(0, 1), second)
	if got := h.Ecoregion(h.MustSite(0, 0)); got != first {
		t.Fatalf("expected fallback ecoregion, got %v", got)
	}
	if got := h.Ecoregion(h.MustSite(0, 1)); got.Name() != "second" {
		t.Fatalf("expected assigned ecoregion, got %v", got.Name())
	}
	if h.Ecoregion(nil) != nil {
		t.Fatalf("nil site has no ecoregion")
	}
	if len(h.Ecoregions()) != 2 {
		t.Fatalf("expected two ecoregions")
	}
}
