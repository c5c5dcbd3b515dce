// Command riskctl trains the climate risk model locally, scores readings from
// JSON files and writes seeded synthetic fixtures.
//
// Usage:
//
//	riskctl train --samples 8000
//	riskctl predict data/mock/climate_readings.json
//	riskctl synth --n 50 --readings > readings.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
