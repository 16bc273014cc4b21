package biomass

import (
	"sort"
	"sync"

	"biomassoutput/pkg/hostapi"
)

// CollectManagementAreas scans sites once and returns the distinct management
// areas found on active sites, sorted ascending by map code. Sites without an
// area are ignored. When two area values share a map code the first one seen
// wins.
func CollectManagementAreas(sites []hostapi.Site, membership hostapi.SiteVar[hostapi.ManagementArea]) []hostapi.ManagementArea {
	if membership == nil {
		return nil
	}
	seen := make(map[uint32]hostapi.ManagementArea)
	for _, site := range sites {
		if site == nil || !site.IsActive() {
			continue
		}
		area := membership.Get(site)
		if area == nil {
			continue
		}
		if _, dup := seen[area.MapCode()]; dup {
			continue
		}
		seen[area.MapCode()] = area
	}
	out := make([]hostapi.ManagementArea, 0, len(seen))
	for _, area := range seen {
		out = append(out, area)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MapCode() < out[j].MapCode() })
	return out
}

// MapCodes projects areas onto their map codes.
func MapCodes(areas []hostapi.ManagementArea) []uint32 {
	out := make([]uint32, len(areas))
	for i, area := range areas {
		out[i] = area.MapCode()
	}
	return out
}

// AreaCache holds the management-area list for the lifetime of a run. The
// list is built on first use and reused afterwards, so areas that appear
// later are not reported until Invalidate is called.
type AreaCache struct {
	mu     sync.Mutex
	areas  []hostapi.ManagementArea
	built  bool
	builds int
}

// Areas returns the cached list, collecting it from the landscape on first use.
func (c *AreaCache) Areas(landscape hostapi.Landscape, membership hostapi.SiteVar[hostapi.ManagementArea]) []hostapi.ManagementArea {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.built {
		c.areas = CollectManagementAreas(landscape.ActiveSites(), membership)
		c.built = true
		c.builds++
	}
	out := make([]hostapi.ManagementArea, len(c.areas))
	copy(out, c.areas)
	return out
}

// Invalidate drops the cached list; the next Areas call rescans.
func (c *AreaCache) Invalidate() {
	c.mu.Lock()
	c.areas = nil
	c.built = false
	c.mu.Unlock()
}

// Builds reports how many times the list has been collected.
func (c *AreaCache) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}
