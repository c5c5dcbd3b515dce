package risk

import (
	"slices"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Typical monthly risk (0-100) for the categories with a strong seasonal
// signal, January first. Static reference data for charting.
var (
	seasonalMonths      = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	seasonalVector      = []int{12, 10, 15, 25, 40, 60, 80, 85, 72, 55, 30, 15}
	seasonalWater       = []int{10, 8, 12, 22, 45, 65, 75, 78, 68, 40, 20, 12}
	seasonalRespiratory = []int{60, 55, 40, 25, 18, 12, 10, 10, 15, 25, 45, 58}
	seasonalHeat        = []int{8, 10, 22, 45, 70, 85, 90, 88, 65, 35, 15, 8}
	seasonalSkin        = []int{10, 15, 35, 55, 78, 88, 90, 85, 65, 40, 20, 12}
)

// SeasonalProfile returns a copy of the monthly risk pattern table.
func SeasonalProfile() domain.SeasonalProfile {
	return domain.SeasonalProfile{
		Months:      slices.Clone(seasonalMonths),
		VectorBorne: slices.Clone(seasonalVector),
		WaterBorne:  slices.Clone(seasonalWater),
		Respiratory: slices.Clone(seasonalRespiratory),
		HeatRelated: slices.Clone(seasonalHeat),
		SkinEye:     slices.Clone(seasonalSkin),
	}
}
