// Package hostapi declares the read-only contract between the landscape
// simulation host and reporting extensions. The host owns every value
// reachable through these interfaces; extensions must treat them as views and
// never retain them beyond a single timestep, with the exception of
// management areas cached for the run.
package hostapi
