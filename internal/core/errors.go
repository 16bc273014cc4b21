package core

import "errors"

var (
	// ErrCohortsUnavailable is returned by Initialize when the host does not
	// publish the biomass cohort site variable.
	ErrCohortsUnavailable = errors.New("cohorts are empty; the succession extension must publish biomass cohorts")
	// ErrManagementAreasUnavailable is returned by Initialize when the
	// management-area table is requested but no harvest extension publishes
	// management areas.
	ErrManagementAreasUnavailable = errors.New("management area table requested but management areas are not available")
	// ErrNotInitialized is returned by Run before a successful Initialize.
	ErrNotInitialized = errors.New("extension not initialized")
)
