package model

// ObservationRow is one cleaned long-format observation produced by the
// Normalizer: a single (neighbourhood, crime type, year) count.
//
// Invariants maintained by the Normalizer:
//   - exactly one row per (entity key, crime type, year) combination
//   - Count >= 0, with absent source cells recorded as 0
//   - Year within the configured [MinYear, MaxYear] range
type ObservationRow struct {
	// Scope tags which aggregation the entity key belongs to. The Normalizer
	// always emits ScopeNeighbourhood rows; the SeriesStore derives the
	// city-wide aggregation from them.
	Scope Scope `json:"scope"`

	// EntityKey identifies the entity, e.g. the neighbourhood name.
	EntityKey string `json:"entity_key"`

	// CrimeType is the crime-type token parsed from the wide column name,
	// e.g. "ASSAULT". Never the population marker.
	CrimeType string `json:"crime_type"`

	// Year of the observation.
	Year int `json:"year"`

	// Count is the number of reported incidents. Absent source cells are 0.
	Count int `json:"count"`
}

// ObservationPoint is one year of an entity's assembled series, recorded on
// the run report so the output table can carry actual values alongside
// forecasts.
type ObservationPoint struct {
	Scope     Scope  `json:"scope"`
	EntityKey string `json:"entity_key"`
	CrimeType string `json:"crime_type"`
	Year      int    `json:"year"`
	Count     int    `json:"count"`
}
