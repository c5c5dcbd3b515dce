package domain

import (
	"fmt"
	"math"
	"strconv"
)

// DiseaseProfile is one row of the category rule table: display metadata, the
// weight in the overall blend, the closed-form heuristic that labels synthetic
// training data, the contributing-factor rules and the action catalog.
type DiseaseProfile struct {
	Key        string
	Name       string
	Icon       string
	Conditions []string

	// OverallWeight is the category's share of the overall risk blend.
	OverallWeight float64

	// Heuristic scores a reading (Month must be resolved) given one Beta(2,5)
	// noise draw. The result is not clamped.
	Heuristic func(r ClimateReading, noise float64) float64

	// Factors fire in order; a category with none firing falls back to
	// FallbackFactor.
	Factors []FactorRule

	// Actions in priority order. Recommendations surface at most four.
	Actions []Action
}

// FactorRule is a threshold rule that explains a category's score.
type FactorRule struct {
	Applies  func(ClimateReading) bool
	Describe func(ClimateReading) string
}

// Action renders one recommended action for a reading.
type Action func(ClimateReading) string

// FallbackFactor is reported when no factor rule fires for a category.
const FallbackFactor = "Multiple moderate climate stressors present"

// catalog is indexed by Disease. Adding a category means adding a constant and
// one entry here.
var catalog = [NumDiseases]DiseaseProfile{
	VectorBorne: {
		Key:           "vector_score",
		Name:          "Vector-Borne",
		Icon:          "🦟",
		Conditions:    []string{"Dengue", "Malaria", "Chikungunya"},
		OverallWeight: 0.25,
		Heuristic: func(r ClimateReading, b float64) float64 {
			season := 0.2
			if r.Month >= 7 && r.Month <= 11 {
				season = 1
			}
			return 0.35*math.Max(0, r.Humidity-55)/45 +
				0.25*math.Max(0, r.Temperature-22)/18 +
				0.20*math.Min(1, r.Rainfall/200) +
				0.10*season +
				0.10*b
		},
		Factors: []FactorRule{
			{
				Applies: func(r ClimateReading) bool { return r.Humidity > 75 },
				Describe: func(r ClimateReading) string {
					return fmt.Sprintf("High humidity (%s%%) promotes mosquito breeding", num(r.Humidity))
				},
			},
			{
				Applies: func(r ClimateReading) bool { return r.Temperature > 28 },
				Describe: func(r ClimateReading) string {
					return fmt.Sprintf("Warm temperature (%s°C) accelerates pathogen lifecycle", num(r.Temperature))
				},
			},
			{
				Applies: func(r ClimateReading) bool { return r.Rainfall > 120 },
				Describe: func(r ClimateReading) string {
					return fmt.Sprintf("Heavy rainfall (%smm) creates stagnant water pools", num(r.Rainfall))
				},
			},
		},
		Actions: []Action{
			text("Eliminate standing water in containers, tyres, flowerpots"),
			text("Use DEET-based mosquito repellent (apply every 4 hours)"),
			text("Sleep under permethrin-treated insecticide nets"),
			func(r ClimateReading) string {
				care := "fever screening"
				if r.Rainfall > 150 {
					care = "malaria prophylaxis"
				}
				return "Visit nearest PHC for " + care + " if symptomatic"
			},
			text("Wear full-sleeve clothing during dawn and dusk"),
		},
	},
	WaterBorne: {
		Key:           "water_score",
		Name:          "Water-Borne",
		Icon:          "💧",
		Conditions:    []string{"Cholera", "Typhoid", "Hepatitis A"},
		OverallWeight: 0.20,
		Heuristic: func(r ClimateReading, b float64) float64 {
			return 0.40*math.Min(1, r.Rainfall/250) +
				0.25*math.Max(0, r.Temperature-25)/15 +
				0.20*math.Max(0, r.Humidity-60)/40 +
				0.15*b
		},
		Factors: []FactorRule{
			{
				Applies: func(r ClimateReading) bool { return r.Rainfall > 150 },
				Describe: func(r ClimateReading) string {
					return fmt.Sprintf("Excessive rainfall (%smm) may cause flooding & contamination", num(r.Rainfall))
				},
			},
			{
				Applies:  func(r ClimateReading) bool { return r.Temperature > 30 },
				Describe: text("High temperature promotes bacterial growth in water"),
			},
		},
		Actions: []Action{
			text("Boil drinking water for minimum 1 minute or use ORS"),
			text("Avoid raw street food, salads, and cut fruits"),
			text("Wash hands with soap for 20 seconds before meals"),
			text("Report contaminated water sources to municipal corporation"),
			text("Oral Rehydration Solution (ORS) ready for diarrheal illnesses"),
		},
	},
	Respiratory: {
		Key:           "respiratory_score",
		Name:          "Respiratory",
		Icon:          "🫁",
		Conditions:    []string{"Asthma", "COPD", "Influenza"},
		OverallWeight: 0.18,
		Heuristic: func(r ClimateReading, b float64) float64 {
			season := 0.2
			switch r.Month {
			case 11, 12, 1, 2:
				season = 1
			}
			return 0.45*math.Min(1, r.AQI/200) +
				0.25*math.Max(0, 25-r.Temperature)/20 +
				0.15*season +
				0.15*b
		},
		Factors: []FactorRule{
			{
				Applies: func(r ClimateReading) bool { return r.AQI > 100 },
				Describe: func(r ClimateReading) string {
					return fmt.Sprintf("Poor air quality (AQI %s) irritates respiratory tract", num(r.AQI))
				},
			},
			{
				Applies:  func(r ClimateReading) bool { return r.UVIndex > 7 },
				Describe: text("High UV promotes ground-level ozone formation"),
			},
		},
		Actions: []Action{
			func(r ClimateReading) string {
				return fmt.Sprintf("Wear N95 mask outdoors (AQI = %s)", num(r.AQI))
			},
			text("Avoid outdoor exercise during 6–9 AM peak pollution"),
			text("Keep bronchodilator inhalers accessible if asthmatic"),
			text("Use indoor air purifiers if available"),
			text("Monitor AQI via SAFAR or AQI India app before outings"),
		},
	},
	HeatRelated: {
		Key:           "heat_score",
		Name:          "Heat-Related",
		Icon:          "🌡️",
		Conditions:    []string{"Heatstroke", "Dehydration"},
		OverallWeight: 0.15,
		Heuristic: func(r ClimateReading, b float64) float64 {
			season := 0.2
			if r.Month >= 4 && r.Month <= 6 {
				season = 1
			}
			return 0.50*math.Max(0, r.Temperature-28)/17 +
				0.25*math.Min(1, r.UVIndex/10) +
				0.15*season +
				0.10*b
		},
		Factors: []FactorRule{
			{
				Applies: func(r ClimateReading) bool { return r.Temperature > 35 },
				Describe: func(r ClimateReading) string {
					return fmt.Sprintf("Extreme temperature (%s°C) causes thermal stress", num(r.Temperature))
				},
			},
			{
				Applies: func(r ClimateReading) bool { return r.UVIndex > 8 },
				Describe: func(r ClimateReading) string {
					return fmt.Sprintf("Intense UV (%s) increases radiant heat load", num(r.UVIndex))
				},
			},
		},
		Actions: []Action{
			text("Drink 3–4 litres of water per day; add ORS or electrolytes"),
			func(r ClimateReading) string {
				return fmt.Sprintf("Avoid outdoor exposure 11 AM – 4 PM (temperature: %s°C)", num(r.Temperature))
			},
			text("Wear light-coloured loose cotton clothing"),
			text("Know heatstroke signs: hot dry skin, confusion, >40°C body temp"),
			text("Set up cooling centres for vulnerable community members"),
		},
	},
	Nutritional: {
		Key:           "nutrition_score",
		Name:          "Nutritional",
		Icon:          "🥗",
		Conditions:    []string{"Malnutrition", "Vitamin deficiency"},
		OverallWeight: 0.10,
		Heuristic: func(r ClimateReading, b float64) float64 {
			season := 0.2
			if r.Month >= 3 && r.Month <= 5 {
				season = 1
			}
			return 0.35*math.Max(0, 1-r.Rainfall/100) +
				0.30*math.Max(0, r.Temperature-30)/15 +
				0.20*season +
				0.15*b
		},
		Actions: []Action{
			text("Ensure diversified diet with seasonal local vegetables"),
			text("Monitor weight and growth parameters in children under 5"),
			text("Consult ICDS Anganwadi for nutritional supplements if needed"),
			text("Store food safely to prevent spoilage in heat"),
		},
	},
	MentalHealth: {
		Key:           "mental_score",
		Name:          "Mental Health",
		Icon:          "🧠",
		Conditions:    []string{"Climate anxiety", "Depression"},
		OverallWeight: 0.07,
		Heuristic: func(r ClimateReading, b float64) float64 {
			return 0.35*math.Max(0, r.Temperature-30)/15 +
				0.30*math.Min(1, r.AQI/200) +
				0.20*math.Max(0, r.Humidity-70)/30 +
				0.15*b
		},
		Actions: []Action{
			text("Maintain social connections; check on elderly neighbours"),
			text("Limit news consumption about climate disasters"),
			text("Ensure adequate sleep in cool, dark environment"),
			text("Contact iCall (9152987821) for mental health support"),
		},
	},
	SkinEye: {
		Key:           "skin_score",
		Name:          "Skin & Eye",
		Icon:          "👁️",
		Conditions:    []string{"Conjunctivitis", "UV Damage"},
		OverallWeight: 0.05,
		Heuristic: func(r ClimateReading, b float64) float64 {
			return 0.55*math.Min(1, r.UVIndex/11) +
				0.25*math.Max(0, r.Temperature-28)/17 +
				0.20*b
		},
		Factors: []FactorRule{
			{
				Applies: func(r ClimateReading) bool { return r.UVIndex > 7 },
				Describe: func(r ClimateReading) string {
					return fmt.Sprintf("High UV index (%s) increases skin cancer & eye damage risk", num(r.UVIndex))
				},
			},
			{
				Applies:  func(r ClimateReading) bool { return r.Temperature > 32 },
				Describe: text("Heat promotes inflammatory skin conditions"),
			},
		},
		Actions: []Action{
			func(r ClimateReading) string {
				return fmt.Sprintf("Apply SPF 50+ broad-spectrum sunscreen (UV index: %s)", num(r.UVIndex))
			},
			text("Wear UV-blocking sunglasses (UV400 rated)"),
			text("Use umbrella or wide-brim hat outdoors"),
			text("Schedule annual eye check-up with ophthalmologist"),
		},
	},
}

// OverallBlend combines unit-interval category scores with the catalog
// weights and clamps the result to [0,1].
func OverallBlend(scores DiseaseScores) float64 {
	var total float64
	for _, d := range Diseases {
		total += catalog[d].OverallWeight * scores[d]
	}
	return Clamp(total, 0, 1)
}

func text(s string) func(ClimateReading) string {
	return func(ClimateReading) string { return s }
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
