package views

import "github.com/hxlyu/safegain/internal/models"

// Distribution holds the categorical stomach-feeling counts.
type Distribution struct {
	Comfortable int `json:"comfortable"`
	Bloating    int `json:"bloating"`
	Reflux      int `json:"reflux"`
}

// TallyStomach counts meals by stomach feeling over the full history.
// Values outside the three known categories (legacy or malformed rows)
// are ignored, not counted and not an error.
func TallyStomach(meals []*models.MealRecord) Distribution {
	var d Distribution
	for _, m := range meals {
		switch m.StomachFeeling {
		case models.FeelingComfortable:
			d.Comfortable++
		case models.FeelingBloating:
			d.Bloating++
		case models.FeelingReflux:
			d.Reflux++
		}
	}
	return d
}
