package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/handoff"
)

var fixedNow = time.Date(2025, 3, 4, 15, 6, 7, 0, time.UTC)

func freshInput() Input {
	return FromHandoff(handoff.Result{
		Prediction: api.PredictionResult{
			RiskLevel:   api.RiskHigh,
			RiskScore:   72.5,
			Probability: 0.72468,
			TopFactors: []api.Factor{
				{Factor: "Hemoglobin Level", Importance: 45.2},
				{Factor: "Diet Quality", Importance: 20},
			},
			Recommendations: []string{"Consult a doctor", "Increase iron intake"},
		},
		Request: api.PredictionRequest{
			Age:       30,
			Gender:    api.GenderFemale,
			Diet:      api.DietPoor,
			Symptoms:  []api.Symptom{api.SymptomFatigue, api.SymptomShortnessBreath},
			RuralMode: true,
		},
	})
}

func TestGenerate_Fresh(t *testing.T) {
	want := `HEMOSCAN AI - RISK ASSESSMENT REPORT
====================================

Risk Level: High
Risk Score: 72.5%
Probability: 72.47%

TOP CONTRIBUTING FACTORS:
1. Hemoglobin Level: 45.2%
2. Diet Quality: 20%

RECOMMENDATIONS:
1. Consult a doctor
2. Increase iron intake

PATIENT INFORMATION:
- Age: 30
- Gender: Female
- Hemoglobin: Not provided
- Diet: Poor

SYMPTOMS:
- Fatigue
- Shortness breath

Generated on: 3/4/2025, 3:06:07 PM
`
	assert.Equal(t, want, Generate(freshInput(), fixedNow))
}

func TestGenerate_Historical(t *testing.T) {
	h := 13.2
	in := FromRecord(api.HistoricalRecord{
		ID:         "65f0c0ffee112233",
		Timestamp:  "2024-03-01T10:00:00.123456",
		Age:        41,
		Gender:     api.GenderMale,
		Hemoglobin: &h,
		Diet:       api.DietGood,
		PredictionResult: api.PredictionResult{
			RiskLevel:   api.RiskLow,
			RiskScore:   12,
			Probability: 0.12,
		},
	})

	got := Generate(in, fixedNow)

	assert.True(t, strings.HasPrefix(got, "HEMOSCAN AI - TEST RESULT REPORT\n"))
	assert.Contains(t, got, "Test Date: Mar 1, 2024, 10:00 AM\n")
	assert.Contains(t, got, "Risk Score: 12%\n")
	assert.Contains(t, got, "Probability: 12.00%\n")
	assert.Contains(t, got, "- Hemoglobin: 13.2 g/dL\n")
	assert.Contains(t, got, "- Diet: Good\n")
	assert.Contains(t, got, "SYMPTOMS:\nNone reported\n")
	assert.NotContains(t, got, "TOP CONTRIBUTING FACTORS")
}

func TestGenerate_UnparseableTimestampShownAsIs(t *testing.T) {
	in := Input{RecordID: "abc", Timestamp: "yesterday"}
	assert.Contains(t, Generate(in, fixedNow), "Test Date: yesterday\n")
}

func TestGenerate_DeterministicExceptTimestamp(t *testing.T) {
	a := Generate(freshInput(), fixedNow)
	b := Generate(freshInput(), fixedNow.Add(26*time.Hour))
	require.NotEqual(t, a, b)

	strip := func(s string) string {
		i := strings.LastIndex(s, GeneratedPrefix)
		require.GreaterOrEqual(t, i, 0)
		return s[:i]
	}
	assert.Equal(t, strip(a), strip(b))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "hemoscan-report-65f0c0ff.txt", Filename(Input{RecordID: "65f0c0ffee112233"}, fixedNow))
	assert.Equal(t, "hemoscan-report-abc.txt", Filename(Input{RecordID: "abc"}, fixedNow))
	assert.Equal(t, "hemoscan-report-1741100767000.txt", Filename(freshInput(), fixedNow))
}

func TestSave_NeverOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	in := Input{RecordID: "65f0c0ffee112233"}

	first, err := Save(dir, in, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hemoscan-report-65f0c0ff.txt"), first)

	second, err := Save(dir, in, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hemoscan-report-65f0c0ff-1.txt"), second)

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, Generate(in, fixedNow), string(data))

	info, err := os.Stat(second)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm()&0o644)
}
