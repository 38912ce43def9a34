// Package prediction validates the anemia risk questionnaire and submits
// it for scoring.
package prediction

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/abhisek/hemoscan/internal/api"
)

// Field names a questionnaire input that can carry a validation error.
type Field string

const (
	FieldAge        Field = "age"
	FieldGender     Field = "gender"
	FieldHemoglobin Field = "hemoglobin"
	FieldDiet       Field = "diet"
)

// Fields lists the validated fields in form order.
var Fields = []Field{FieldAge, FieldGender, FieldHemoglobin, FieldDiet}

// Validation messages.
const (
	MsgAge        = "Age must be between 18 and 100"
	MsgGender     = "Please select gender"
	MsgHemoglobin = "Hemoglobin must be between 5 and 18 g/dL"
	MsgDiet       = "Please select diet type"
)

const (
	minAge        = 18
	maxAge        = 100
	minHemoglobin = 5.0
	maxHemoglobin = 18.0
)

// Form is the raw questionnaire state. Numeric fields hold the text as
// typed; enum fields hold the selected value or "".
type Form struct {
	Age        string
	Gender     string
	Hemoglobin string
	Diet       string
	Symptoms   []string
	RuralMode  bool
}

// Errors maps a field to its message. Empty means the form is valid.
type Errors map[Field]string

// Clear drops the error for f, as when the user edits that field.
func (e Errors) Clear(f Field) {
	delete(e, f)
}

// Error joins the messages in form order so Errors can travel as an error.
func (e Errors) Error() string {
	var msgs []string
	for _, f := range Fields {
		if msg, ok := e[f]; ok {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, "; ")
}

// Validate checks f without side effects. Symptoms never fail validation.
func Validate(f Form) Errors {
	errs := Errors{}

	if _, ok := parseAge(f.Age); !ok {
		errs[FieldAge] = MsgAge
	}
	if !api.Gender(f.Gender).Valid() {
		errs[FieldGender] = MsgGender
	}
	if !f.RuralMode {
		if _, ok := parseHemoglobin(f.Hemoglobin); !ok {
			errs[FieldHemoglobin] = MsgHemoglobin
		}
	}
	if !api.Diet(f.Diet).Valid() {
		errs[FieldDiet] = MsgDiet
	}
	return errs
}

func parseAge(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < minAge || n > maxAge {
		return 0, false
	}
	return n, true
}

func parseHemoglobin(s string) (float64, bool) {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(h) || h < minHemoglobin || h > maxHemoglobin {
		return 0, false
	}
	return h, true
}

// Request builds the wire request from a valid form. It returns the
// validation Errors when the form is not valid. In rural mode hemoglobin
// is always nil, whatever was typed.
func (f Form) Request() (api.PredictionRequest, error) {
	if errs := Validate(f); len(errs) > 0 {
		return api.PredictionRequest{}, errs
	}

	age, _ := parseAge(f.Age)
	req := api.PredictionRequest{
		Age:       age,
		Gender:    api.Gender(f.Gender),
		Diet:      api.Diet(f.Diet),
		Symptoms:  normalizeSymptoms(f.Symptoms),
		RuralMode: f.RuralMode,
	}
	if !f.RuralMode {
		h, _ := parseHemoglobin(f.Hemoglobin)
		req.Hemoglobin = &h
	}
	return req, nil
}

// normalizeSymptoms drops unknown names and duplicates and returns the
// rest in canonical order.
func normalizeSymptoms(in []string) []api.Symptom {
	out := make([]api.Symptom, 0, len(in))
	for _, s := range api.Symptoms {
		if slices.Contains(in, string(s)) {
			out = append(out, s)
		}
	}
	return out
}

// HasSymptom reports whether s is selected.
func (f Form) HasSymptom(s api.Symptom) bool {
	return slices.Contains(f.Symptoms, string(s))
}

// ToggleSymptom selects s if unselected and unselects it otherwise.
func (f *Form) ToggleSymptom(s api.Symptom) {
	if i := slices.Index(f.Symptoms, string(s)); i >= 0 {
		f.Symptoms = slices.Delete(f.Symptoms, i, i+1)
		return
	}
	f.Symptoms = append(f.Symptoms, string(s))
}
