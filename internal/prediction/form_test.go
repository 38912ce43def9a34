package prediction

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hemoscan/internal/api"
)

func validForm() Form {
	return Form{
		Age:        "30",
		Gender:     "Female",
		Hemoglobin: "11.5",
		Diet:       "poor",
		Symptoms:   []string{"fatigue"},
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, Validate(validForm()))
}

func TestValidate_AgeOutOfRange(t *testing.T) {
	for _, age := range []string{"", "abc", "17", "101", "-5", "0", "30.5", "1000"} {
		t.Run(strconv.Quote(age), func(t *testing.T) {
			f := validForm()
			f.Age = age
			errs := Validate(f)
			assert.Equal(t, MsgAge, errs[FieldAge])
			assert.Len(t, errs, 1)
		})
	}
}

func TestValidate_AgeBoundaries(t *testing.T) {
	for _, age := range []string{"18", "100", " 45 "} {
		f := validForm()
		f.Age = age
		assert.NotContains(t, Validate(f), FieldAge, "age %q", age)
	}
}

func TestValidate_Hemoglobin(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"5", true},
		{"18", true},
		{"12.3", true},
		{"4.99", false},
		{"18.01", false},
		{"", false},
		{"NaN", false},
		{"high", false},
	}
	for _, tt := range tests {
		t.Run(strconv.Quote(tt.value), func(t *testing.T) {
			f := validForm()
			f.Hemoglobin = tt.value
			errs := Validate(f)
			if tt.ok {
				assert.NotContains(t, errs, FieldHemoglobin)
			} else {
				assert.Equal(t, MsgHemoglobin, errs[FieldHemoglobin])
			}
		})
	}
}

func TestValidate_RuralModeIgnoresHemoglobin(t *testing.T) {
	for _, h := range []string{"", "2", "99", "garbage"} {
		f := validForm()
		f.RuralMode = true
		f.Hemoglobin = h
		assert.Empty(t, Validate(f), "hemoglobin %q", h)
	}
}

func TestValidate_MissingSelections(t *testing.T) {
	f := validForm()
	f.Gender = ""
	f.Diet = "vegan"

	errs := Validate(f)
	assert.Equal(t, Errors{FieldGender: MsgGender, FieldDiet: MsgDiet}, errs)
	assert.Equal(t, MsgGender+"; "+MsgDiet, errs.Error())
}

func TestErrors_Clear(t *testing.T) {
	errs := Validate(Form{})
	require.Contains(t, errs, FieldAge)

	errs.Clear(FieldAge)
	assert.NotContains(t, errs, FieldAge)
	assert.Contains(t, errs, FieldGender)
}

func TestRequest_RuralModeHemoglobinIsNull(t *testing.T) {
	f := validForm()
	f.RuralMode = true
	f.Hemoglobin = "13"

	req, err := f.Request()
	require.NoError(t, err)
	assert.Nil(t, req.Hemoglobin)

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Contains(t, body, "hemoglobin")
	assert.Nil(t, body["hemoglobin"])
	assert.Equal(t, true, body["rural_mode"])
}

func TestRequest_Fields(t *testing.T) {
	req, err := validForm().Request()
	require.NoError(t, err)

	require.NotNil(t, req.Hemoglobin)
	assert.InDelta(t, 11.5, *req.Hemoglobin, 1e-9)
	assert.Equal(t, 30, req.Age)
	assert.Equal(t, api.GenderFemale, req.Gender)
	assert.Equal(t, api.DietPoor, req.Diet)
	assert.False(t, req.RuralMode)
}

func TestRequest_InvalidFormReturnsErrors(t *testing.T) {
	_, err := Form{}.Request()
	var errs Errors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 4)
}

func TestRequest_SymptomsNormalized(t *testing.T) {
	f := validForm()
	f.Symptoms = []string{"weakness", "fatigue", "hair_loss", "weakness"}

	req, err := f.Request()
	require.NoError(t, err)
	assert.Equal(t, []api.Symptom{api.SymptomFatigue, api.SymptomWeakness}, req.Symptoms)
}

func TestToggleSymptom(t *testing.T) {
	var f Form
	f.ToggleSymptom(api.SymptomDizziness)
	assert.True(t, f.HasSymptom(api.SymptomDizziness))
	f.ToggleSymptom(api.SymptomDizziness)
	assert.False(t, f.HasSymptom(api.SymptomDizziness))
}
