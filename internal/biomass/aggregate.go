// Package biomass aggregates live cohort biomass per site and per region.
// Everything here is a pure read over host views; no function retains or
// mutates its inputs.
package biomass

import "biomassoutput/pkg/hostapi"

// SpeciesBiomass sums the biomass of every cohort of one species at a site.
// Absent cohorts contribute zero.
func SpeciesBiomass(cohorts hostapi.SpeciesCohorts) int {
	if cohorts == nil {
		return 0
	}
	total := 0
	for _, cohort := range cohorts.Cohorts() {
		total += cohort.Biomass()
	}
	return total
}

// TotalBiomass sums SpeciesBiomass over the species present at a site.
func TotalBiomass(cohorts hostapi.SiteCohorts) int {
	if cohorts == nil {
		return 0
	}
	total := 0
	for _, sc := range cohorts.All() {
		total += SpeciesBiomass(sc)
	}
	return total
}

// SiteSpeciesBiomass resolves the cohorts of species at site through the
// cohort site variable and sums them.
func SiteSpeciesBiomass(cohorts hostapi.SiteVar[hostapi.SiteCohorts], site hostapi.Site, species hostapi.Species) int {
	if cohorts == nil {
		return 0
	}
	sc := cohorts.Get(site)
	if sc == nil {
		return 0
	}
	return SpeciesBiomass(sc.BySpecies(species))
}
