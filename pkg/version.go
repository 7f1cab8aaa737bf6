// Package gnviews keeps declared PostgreSQL views and materialized views
// synchronized with their definitions.
package gnviews

var (
	// Version of gnviews, set by build flags.
	Version = "v0.1.0"
	// Build timestamp, set by build flags.
	Build = "n/a"
)
