// Package domain models climate readings and the disease risk assessments
// derived from them.
//
// # Inputs
//
// A [ClimateReading] carries five environmental measurements for a location
// plus an optional month:
//
//	temperature  °C, -10..60
//	humidity     %, 0..100
//	rainfall     mm accumulated over the last 7 days, 0..1000
//	aqi          air quality index, 0..500
//	uv_index     0..15
//	month        1..12, defaults to the current calendar month
//
// The region name is informational. Ranges are checked once at the boundary by
// [ValidateReading]; everything downstream clamps derived values instead of
// failing.
//
// Month maps to a season index with [SeasonOf]:
//
//	0  Dec, Jan, Feb
//	1  Mar, Apr, May
//	2  Jun, Jul, Aug
//	3  Sep, Oct, Nov
//
// The same function derives season during training and inference.
//
// # Disease Categories
//
// Seven categories form a closed enumeration ([Disease]). Each has one row in
// the rule table ([DiseaseProfile]) holding its display metadata, its weight
// in the overall blend, the closed-form heuristic used to label synthetic
// training data, its contributing-factor rules and its action catalog.
//
//	category       weight  factors that can fire
//	vector-borne   0.25    humidity>75, temperature>28, rainfall>120
//	water-borne    0.20    rainfall>150, temperature>30
//	respiratory    0.18    aqi>100, uv>7
//	heat-related   0.15    temperature>35, uv>8
//	nutritional    0.10    (none)
//	mental health  0.07    (none)
//	skin & eye     0.05    uv>7, temperature>32
//
// The overall blend ([OverallBlend]) is the weighted sum of the unit-interval
// category scores, clamped to [0,1]. The weights are uncalibrated.
//
// # Risk Bands
//
// [ScoreToLabel] is the only place a score becomes a [RiskLevel]:
//
//	score < 25  Low
//	score < 50  Moderate
//	score < 75  High
//	otherwise   Critical
//
// Training labels apply the same cut points to the unit-interval blend via
// [LevelForUnitScore].
//
// # Errors
//
// Every failure wraps one of [ErrNotTrained], [ErrInvalidReading],
// [ErrFitFailed], [ErrTrainingInProgress] or [ErrPrediction]. Per-estimator
// training failures are reported as [*FitError] values joined together.
package domain
