package domain

import (
	"encoding/json"
	"fmt"
)

// Disease is a closed enumeration of the modelled disease categories. The
// enumeration order is the tie-break order wherever categories are ranked.
type Disease int

const (
	VectorBorne Disease = iota
	WaterBorne
	Respiratory
	HeatRelated
	Nutritional
	MentalHealth
	SkinEye

	NumDiseases = 7
)

// Diseases lists every category in enumeration order.
var Diseases = [NumDiseases]Disease{
	VectorBorne,
	WaterBorne,
	Respiratory,
	HeatRelated,
	Nutritional,
	MentalHealth,
	SkinEye,
}

// Valid reports whether d is a defined category.
func (d Disease) Valid() bool {
	return d >= VectorBorne && d < NumDiseases
}

// Profile returns the category's rule table entry.
func (d Disease) Profile() *DiseaseProfile {
	if !d.Valid() {
		return nil
	}
	return &catalog[d]
}

// Key is the stable machine identifier, e.g. "vector_score".
func (d Disease) Key() string {
	if !d.Valid() {
		return fmt.Sprintf("disease_%d", int(d))
	}
	return catalog[d].Key
}

// Name is the display name, e.g. "Vector-Borne".
func (d Disease) Name() string {
	if !d.Valid() {
		return fmt.Sprintf("Disease(%d)", int(d))
	}
	return catalog[d].Name
}

func (d Disease) String() string { return d.Name() }

// ParseDisease resolves a machine key back to its category.
func ParseDisease(key string) (Disease, bool) {
	for _, d := range Diseases {
		if catalog[d].Key == key {
			return d, true
		}
	}
	return 0, false
}

// TargetNames lists the regressor target keys in enumeration order.
func TargetNames() []string {
	names := make([]string, NumDiseases)
	for i, d := range Diseases {
		names[i] = d.Key()
	}
	return names
}

// DiseaseScores holds one score per category, indexed by Disease. The scale
// (unit interval or 0-100) depends on the producer. It encodes to JSON as an
// object keyed by Disease.Key.
type DiseaseScores [NumDiseases]float64

// Of returns the score for d.
func (s DiseaseScores) Of(d Disease) float64 { return s[d] }

func (s DiseaseScores) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, NumDiseases)
	for _, d := range Diseases {
		m[d.Key()] = s[d]
	}
	return json.Marshal(m)
}

func (s *DiseaseScores) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out DiseaseScores
	for key, v := range m {
		d, ok := ParseDisease(key)
		if !ok {
			return fmt.Errorf("unknown disease key %q", key)
		}
		out[d] = v
	}
	*s = out
	return nil
}
