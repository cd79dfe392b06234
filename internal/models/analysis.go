package models

// AnalysisResult is the validated outcome of one food-photo analysis.
// Missing upstream fields are already defaulted to ""/0 by the decode step;
// none of these are ever null.
type AnalysisResult struct {
	FoodName  string  `json:"food_name"`
	Calories  float64 `json:"calories"`
	RiskCheck string  `json:"risk_check"`
	Advice    string  `json:"advice"`

	// HighRisk is derived by trigger-substring matching on RiskCheck,
	// not part of the wire payload.
	HighRisk bool `json:"high_risk"`
}
