package biomass

import (
	"strconv"

	"biomassoutput/pkg/hostapi"
)

// Classifier assigns a site to a region slot in [0, len(labels)). Returning
// false leaves the site out of every region.
type Classifier func(site hostapi.Site) (slot int, ok bool)

// RegionSummary is the per-region aggregate produced by Group.
type RegionSummary struct {
	Label       string
	ActiveSites int
	// Totals holds the biomass sum per species, indexed like the species list.
	Totals []int64
	// Means holds Totals divided by ActiveSites, or zero for empty regions.
	Means []float64
}

// Group accumulates per-species biomass sums and active-site counts for
// each labelled region and derives the per-species means. Every label yields
// exactly one summary, in label order, even when no site maps to it.
// Inactive sites are ignored.
func Group(sites []hostapi.Site, species []hostapi.Species, labels []string, classify Classifier, cohorts hostapi.SiteVar[hostapi.SiteCohorts]) []RegionSummary {
	out := make([]RegionSummary, len(labels))
	for i, label := range labels {
		out[i] = RegionSummary{
			Label:  label,
			Totals: make([]int64, len(species)),
			Means:  make([]float64, len(species)),
		}
	}
	if classify == nil {
		return out
	}
	for _, site := range sites {
		if site == nil || !site.IsActive() {
			continue
		}
		slot, ok := classify(site)
		if !ok || slot < 0 || slot >= len(out) {
			continue
		}
		region := &out[slot]
		var sc hostapi.SiteCohorts
		if cohorts != nil {
			sc = cohorts.Get(site)
		}
		if sc != nil {
			for i, sp := range species {
				region.Totals[i] += int64(SpeciesBiomass(sc.BySpecies(sp)))
			}
		}
		region.ActiveSites++
	}
	for i := range out {
		region := &out[i]
		if region.ActiveSites == 0 {
			continue
		}
		for j, total := range region.Totals {
			region.Means[j] = float64(total) / float64(region.ActiveSites)
		}
	}
	return out
}

// ByEcoregion groups the active sites of the host landscape by ecoregion.
// Every ecoregion is reported, in index order.
func ByEcoregion(core hostapi.Core, cohorts hostapi.SiteVar[hostapi.SiteCohorts]) []RegionSummary {
	ecoregions := core.Ecoregions()
	labels := make([]string, len(ecoregions))
	slots := make(map[int]int, len(ecoregions))
	for i, eco := range ecoregions {
		labels[i] = eco.Name()
		slots[eco.Index()] = i
	}
	classify := func(site hostapi.Site) (int, bool) {
		eco := core.Ecoregion(site)
		if eco == nil {
			return 0, false
		}
		slot, ok := slots[eco.Index()]
		return slot, ok
	}
	return Group(core.Landscape().ActiveSites(), core.Species(), labels, classify, cohorts)
}

// ByManagementArea groups active sites by their current management area,
// reporting only the supplied areas (normally the cached, sorted list from
// AreaCache). Sites in areas missing from the list are skipped; listed areas
// with no remaining member sites report zero.
func ByManagementArea(core hostapi.Core, cohorts hostapi.SiteVar[hostapi.SiteCohorts], membership hostapi.SiteVar[hostapi.ManagementArea], areas []hostapi.ManagementArea) []RegionSummary {
	labels := make([]string, len(areas))
	slots := make(map[uint32]int, len(areas))
	for i, area := range areas {
		labels[i] = strconv.FormatUint(uint64(area.MapCode()), 10)
		slots[area.MapCode()] = i
	}
	classify := func(site hostapi.Site) (int, bool) {
		if membership == nil {
			return 0, false
		}
		area := membership.Get(site)
		if area == nil {
			return 0, false
		}
		slot, ok := slots[area.MapCode()]
		return slot, ok
	}
	return Group(core.Landscape().ActiveSites(), core.Species(), labels, classify, cohorts)
}
