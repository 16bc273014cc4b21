package biomass

import (
	"reflect"
	"testing"

	"biomassoutput/internal/host/memory"
)

func TestCollectManagementAreasSortedDistinct(t *testing.T) {
	h := memory.New(1, 6)
	eco := h.AddEcoregion("eco")
	codes := []uint32{5, 2, 5, 8, 2}
	for i, code := range codes {
		site := h.MustSite(0, i)
		h.Activate(site, eco)
		h.AddStand(h.AddManagementArea(code), uint32(i), site)
	}
	// site without an area
	h.Activate(h.MustSite(0, 5), eco)

	got := MapCodes(CollectManagementAreas(h.Landscape().AllSites(), areaVar(t, h)))
	if !reflect.DeepEqual(got, []uint32{2, 5, 8}) {
		t.Fatalf("collected %v, want [2 5 8]", got)
	}
}

func TestCollectManagementAreasIgnoresInactiveSites(t *testing.T) {
	h := memory.New(1, 2)
	eco := h.AddEcoregion("eco")
	active := h.MustSite(0, 0)
	h.Activate(active, eco)
	h.AddStand(h.AddManagementArea(3), 1, active)
	h.AddStand(h.AddManagementArea(1), 2, h.MustSite(0, 1))

	got := MapCodes(CollectManagementAreas(h.Landscape().AllSites(), areaVar(t, h)))
	if !reflect.DeepEqual(got, []uint32{3}) {
		t.Fatalf("collected %v, want [3]", got)
	}
	if CollectManagementAreas(h.Landscape().AllSites(), nil) != nil {
		t.Fatalf("nil membership should collect nothing")
	}
}

func TestAreaCacheBuildsOnceUntilInvalidated(t *testing.T) {
	h := memory.New(1, 3)
	eco := h.AddEcoregion("eco")
	for i := 0; i < 3; i++ {
		h.Activate(h.MustSite(0, i), eco)
	}
	h.AddStand(h.AddManagementArea(4), 1, h.MustSite(0, 0))
	membership := areaVar(t, h)

	var cache AreaCache
	first := MapCodes(cache.Areas(h.Landscape(), membership))
	if !reflect.DeepEqual(first, []uint32{4}) {
		t.Fatalf("first build %v", first)
	}

	// A new area appearing later stays invisible while the cache is warm.
	h.AddStand(h.AddManagementArea(1), 2, h.MustSite(0, 1))
	stale := MapCodes(cache.Areas(h.Landscape(), membership))
	if !reflect.DeepEqual(stale, []uint32{4}) {
		t.Fatalf("cached list changed without invalidation: %v", stale)
	}
	if cache.Builds() != 1 {
		t.Fatalf("builds = %d, want 1", cache.Builds())
	}

	cache.Invalidate()
	fresh := MapCodes(cache.Areas(h.Landscape(), membership))
	if !reflect.DeepEqual(fresh, []uint32{1, 4}) {
		t.Fatalf("refreshed list %v, want [1 4]", fresh)
	}
	if cache.Builds() != 2 {
		t.Fatalf("builds = %d, want 2", cache.Builds())
	}
}
