// Package ingest tests for response decoding and risk-flag detection.
package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hxlyu/safegain/internal/errors"
)

const sampleJSON = `{"food_name":"红烧肉","calories":650,"risk_check":"油脂较高，不宜多食","advice":"建议搭配蔬菜，少量食用"}`

// TestDecodeFenceRoundTrip verifies fenced and unfenced input decode
// identically.
func TestDecodeFenceRoundTrip(t *testing.T) {
	wrapped := "```json\n" + sampleJSON + "\n```"

	plain, err := Decode(sampleJSON)
	require.NoError(t, err)
	fenced, err := Decode(wrapped)
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
	assert.Equal(t, "红烧肉", plain.FoodName)
	assert.Equal(t, float64(650), plain.Calories)
}

// TestDecodeDefaultsMissingFields verifies absent fields become ""/0.
func TestDecodeDefaultsMissingFields(t *testing.T) {
	result, err := Decode(`{"food_name":"清蒸鱼"}`)
	require.NoError(t, err)

	assert.Equal(t, "清蒸鱼", result.FoodName)
	assert.Zero(t, result.Calories)
	assert.Empty(t, result.RiskCheck)
	assert.Empty(t, result.Advice)
	assert.False(t, result.HighRisk)
}

// TestDecodeClampsNegativeCalories verifies calories never go negative.
func TestDecodeClampsNegativeCalories(t *testing.T) {
	result, err := Decode(`{"calories":-120}`)
	require.NoError(t, err)
	assert.Zero(t, result.Calories)
}

// TestDecodeRejectsGarbage verifies undecodable text is a ParseError.
func TestDecodeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"抱歉，我无法识别这张图片。",
		"```json\nnot json at all\n```",
		`["a","b"]`,
	} {
		_, err := Decode(raw)
		require.Error(t, err, "input %q", raw)
		assert.True(t, apperrors.Is(err, apperrors.ErrParse), "input %q classified as %v", raw, err)
	}
}

// TestRiskFlag verifies the trigger-substring policy, including the
// deliberate false positives on substrings inside unrelated words.
func TestRiskFlag(t *testing.T) {
	tests := []struct {
		name      string
		riskCheck string
		want      bool
	}{
		{"explicit high risk", "风险较高，不宜多食", true},
		{"no obvious risk", "无明显风险", false},
		{"caution marker", "注意不要吃太快", true},
		{"unsuitable marker", "胃酸患者不宜食用", true},
		{"substring false positive", "热量高于平均水平", true},
		{"empty", "", false},
		{"benign text", "清淡易消化", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Decode(`{"risk_check":"` + tt.riskCheck + `"}`)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.HighRisk)
		})
	}
}

// TestRiskAlertSideChannel verifies the advisory callback carries the
// risk text and only fires on flagged results.
func TestRiskAlertSideChannel(t *testing.T) {
	var alerts []string
	d := NewDecoder(nil)
	d.OnRiskAlert(func(riskCheck string) { alerts = append(alerts, riskCheck) })

	_, err := d.Decode(`{"risk_check":"油脂过高，注意控制"}`)
	require.NoError(t, err)
	_, err = d.Decode(`{"risk_check":"无明显风险"}`)
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "油脂过高，注意控制", alerts[0])
}

// TestCustomTriggerList verifies the trigger list is configuration.
func TestCustomTriggerList(t *testing.T) {
	d := NewDecoder([]string{"辛辣"})

	result, err := d.Decode(`{"risk_check":"风险较高"}`)
	require.NoError(t, err)
	assert.False(t, result.HighRisk, "default trigger must not apply")

	result, err = d.Decode(`{"risk_check":"过于辛辣"}`)
	require.NoError(t, err)
	assert.True(t, result.HighRisk)
}
