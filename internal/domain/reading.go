package domain

import (
	"encoding/json"
	"time"
)

// ClimateReading is the environmental snapshot for one location. Ranges are
// enforced at the boundary by ValidateReading; Month is optional and resolved
// against the current calendar month when zero.
type ClimateReading struct {
	Temperature float64 `json:"temperature" validate:"gte=-10,lte=60"`
	Humidity    float64 `json:"humidity" validate:"gte=0,lte=100"`
	Rainfall    float64 `json:"rainfall" validate:"gte=0,lte=1000"`
	AQI         float64 `json:"aqi" validate:"gte=0,lte=500"`
	UVIndex     float64 `json:"uv_index" validate:"gte=0,lte=15"`
	Region      string  `json:"region,omitempty" validate:"max=128"`
	Month       int     `json:"month,omitempty" validate:"omitempty,gte=1,lte=12"`
}

// readingFields is the wire form of ClimateReading. The measurements are
// pointers so a missing field is rejected instead of decoding as zero.
type readingFields struct {
	Temperature *float64 `json:"temperature" validate:"required"`
	Humidity    *float64 `json:"humidity" validate:"required"`
	Rainfall    *float64 `json:"rainfall" validate:"required"`
	AQI         *float64 `json:"aqi" validate:"required"`
	UVIndex     *float64 `json:"uv_index" validate:"required"`
	Region      string   `json:"region"`
	Month       int      `json:"month"`
}

// UnmarshalJSON decodes a reading and requires all five measurements. A
// missing or null measurement yields an error wrapping ErrInvalidReading.
// Ranges are still checked separately by ValidateReading.
func (r *ClimateReading) UnmarshalJSON(b []byte) error {
	var w readingFields
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if err := readingValidator().Struct(w); err != nil {
		return validationError(err)
	}
	*r = ClimateReading{
		Temperature: *w.Temperature,
		Humidity:    *w.Humidity,
		Rainfall:    *w.Rainfall,
		AQI:         *w.AQI,
		UVIndex:     *w.UVIndex,
		Region:      w.Region,
		Month:       w.Month,
	}
	return nil
}

// Feature order shared by training and inference.
const (
	FeatureTemperature = iota
	FeatureHumidity
	FeatureRainfall
	FeatureAQI
	FeatureUVIndex
	FeatureMonth
	FeatureSeason

	NumFeatures
)

// FeatureNames lists the model inputs in vector order.
var FeatureNames = [NumFeatures]string{
	"temperature",
	"humidity",
	"rainfall",
	"aqi",
	"uv_index",
	"month",
	"season",
}

// ResolveMonth returns the reading's month, or now's calendar month when the
// reading has none. The result is always within 1..12.
func (r ClimateReading) ResolveMonth(now time.Time) int {
	m := r.Month
	if m == 0 {
		m = int(now.Month())
	}
	return clampInt(m, 1, 12)
}

// SeasonOf maps a month to 0 (Dec-Feb), 1 (Mar-May), 2 (Jun-Aug) or 3 (Sep-Nov).
func SeasonOf(month int) int {
	return clampInt((month%12)/3, 0, 3)
}

// Features builds the raw model input vector for a reading whose month has
// already been resolved.
func Features(r ClimateReading, month int) []float64 {
	x := make([]float64, NumFeatures)
	x[FeatureTemperature] = r.Temperature
	x[FeatureHumidity] = r.Humidity
	x[FeatureRainfall] = r.Rainfall
	x[FeatureAQI] = r.AQI
	x[FeatureUVIndex] = r.UVIndex
	x[FeatureMonth] = float64(month)
	x[FeatureSeason] = float64(SeasonOf(month))
	return x
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
