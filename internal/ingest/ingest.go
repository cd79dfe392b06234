// Package ingest turns raw vision-model responses into validated
// meal-analysis records and performs risk-flag detection.
package ingest

import (
	"encoding/json"
	"strings"

	apperrors "github.com/hxlyu/safegain/internal/errors"
	"github.com/hxlyu/safegain/internal/models"
)

// DefaultRiskTriggers is the trigger-substring list for the high-risk flag.
// The match is a plain substring check, not NLP; a trigger inside an
// unrelated word still flags. The list is data, so the taxonomy can grow
// without touching control flow.
var DefaultRiskTriggers = []string{"高", "不宜", "注意"}

// analysisPayload is the wire shape the model is instructed to emit.
type analysisPayload struct {
	FoodName  string  `json:"food_name"`
	Calories  float64 `json:"calories"`
	RiskCheck string  `json:"risk_check"`
	Advice    string  `json:"advice"`
}

// Decoder validates raw model output into AnalysisResult values.
type Decoder struct {
	triggers    []string
	onRiskAlert func(riskCheck string)
}

// NewDecoder creates a Decoder with the given trigger list; nil selects
// DefaultRiskTriggers.
func NewDecoder(triggers []string) *Decoder {
	if triggers == nil {
		triggers = DefaultRiskTriggers
	}
	return &Decoder{triggers: triggers}
}

// OnRiskAlert registers the advisory side-channel fired when a decoded
// result is flagged high-risk. The alert never blocks or fails decoding.
func (d *Decoder) OnRiskAlert(fn func(riskCheck string)) {
	d.onRiskAlert = fn
}

// Decode strips any code-fence markup the model may have wrapped the JSON
// in, then parses the structured payload. Missing fields default to
// empty-string/zero; undecodable text fails with a ParseError and nothing
// may be persisted from it.
func Decode(raw string) (*models.AnalysisResult, error) {
	return NewDecoder(nil).Decode(raw)
}

// Decode implements the ingestion contract for this Decoder's trigger list.
func (d *Decoder) Decode(raw string) (*models.AnalysisResult, error) {
	clean := stripFences(raw)

	var payload analysisPayload
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrParse, "analysis response is not valid JSON", err)
	}

	if payload.Calories < 0 {
		payload.Calories = 0
	}

	result := &models.AnalysisResult{
		FoodName:  payload.FoodName,
		Calories:  payload.Calories,
		RiskCheck: payload.RiskCheck,
		Advice:    payload.Advice,
	}
	result.HighRisk = containsTrigger(result.RiskCheck, d.triggers)

	if result.HighRisk && d.onRiskAlert != nil {
		d.onRiskAlert(result.RiskCheck)
	}

	return result, nil
}

// stripFences removes markdown code-fence markup, which non-conforming
// model output wraps the JSON in despite the prompt forbidding it.
func stripFences(raw string) string {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	return strings.TrimSpace(clean)
}

func containsTrigger(riskCheck string, triggers []string) bool {
	if riskCheck == "" {
		return false
	}
	for _, trigger := range triggers {
		if strings.Contains(riskCheck, trigger) {
			return true
		}
	}
	return false
}
