// Package main provides the entry point for the crimecast CLI.
//
// Crimecast forecasts Toronto neighbourhood crime counts. It reshapes the
// wide open-data table into per-entity annual series, selects an ARIMA
// model per series, validates it against a held-out year, and forecasts
// the next unobserved year.
//
// Usage:
//
//	crimecast forecast -i neighbourhood-crime-rates.csv
//	crimecast normalize -i neighbourhood-crime-rates.csv
//	crimecast runs --last
//
// See --help for all available options.
package main

// main is the entry point for crimecast.
func main() {
	Execute()
}
