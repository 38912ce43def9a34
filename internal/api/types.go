package api

import "encoding/json"

// Role values carried on User.Role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the account record returned by the auth endpoints.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthResponse is the success payload of /auth/login and /auth/signup.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Gender is the questionnaire gender field.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Genders lists the accepted values in display order.
var Genders = []Gender{GenderMale, GenderFemale}

// Valid reports whether g is one of the accepted values.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Diet is the self-reported diet quality.
type Diet string

const (
	DietPoor     Diet = "poor"
	DietModerate Diet = "moderate"
	DietGood     Diet = "good"
)

// Diets lists the accepted values in display order.
var Diets = []Diet{DietPoor, DietModerate, DietGood}

// Valid reports whether d is one of the accepted values.
func (d Diet) Valid() bool {
	switch d {
	case DietPoor, DietModerate, DietGood:
		return true
	}
	return false
}

// Symptom is one of the reportable symptoms.
type Symptom string

const (
	SymptomFatigue         Symptom = "fatigue"
	SymptomDizziness       Symptom = "dizziness"
	SymptomPaleSkin        Symptom = "pale_skin"
	SymptomWeakness        Symptom = "weakness"
	SymptomShortnessBreath Symptom = "shortness_breath"
)

// Symptoms lists every symptom in canonical order.
var Symptoms = []Symptom{
	SymptomFatigue,
	SymptomDizziness,
	SymptomPaleSkin,
	SymptomWeakness,
	SymptomShortnessBreath,
}

// Valid reports whether s is a known symptom.
func (s Symptom) Valid() bool {
	for _, known := range Symptoms {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable symptom name.
func (s Symptom) Label() string {
	switch s {
	case SymptomFatigue:
		return "Fatigue"
	case SymptomDizziness:
		return "Dizziness"
	case SymptomPaleSkin:
		return "Pale Skin"
	case SymptomWeakness:
		return "Weakness"
	case SymptomShortnessBreath:
		return "Shortness of Breath"
	}
	return string(s)
}

// RiskLevel is the categorical output of the scoring service.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// PredictionRequest is the body of POST /predict.
//
// Hemoglobin has no omitempty: rural mode must serialize it as null.
type PredictionRequest struct {
	Age        int       `json:"age"`
	Gender     Gender    `json:"gender"`
	Hemoglobin *float64  `json:"hemoglobin"`
	Diet       Diet      `json:"diet"`
	Symptoms   []Symptom `json:"symptoms"`
	RuralMode  bool      `json:"rural_mode"`
}

// MarshalJSON guarantees symptoms encode as [] rather than null.
func (r PredictionRequest) MarshalJSON() ([]byte, error) {
	type plain PredictionRequest
	p := plain(r)
	if p.Symptoms == nil {
		p.Symptoms = []Symptom{}
	}
	return json.Marshal(p)
}

// Factor is one entry of PredictionResult.TopFactors.
type Factor struct {
	Factor     string  `json:"factor"`
	Importance float64 `json:"importance"` // percent
}

// PredictionResult is the scoring service response. Immutable once received.
type PredictionResult struct {
	RiskLevel       RiskLevel `json:"risk_level"`
	RiskScore       float64   `json:"risk_score"`  // percent [0,100]
	Probability     float64   `json:"probability"` // [0,1]
	TopFactors      []Factor  `json:"top_factors"`
	Recommendations []string  `json:"recommendations"`
}

// HistoricalRecord is a server-persisted past prediction with its echoed
// request fields.
type HistoricalRecord struct {
	ID         string    `json:"id"`
	Timestamp  string    `json:"timestamp"`
	Age        int       `json:"age"`
	Gender     Gender    `json:"gender"`
	Hemoglobin *float64  `json:"hemoglobin"`
	Diet       Diet      `json:"diet"`
	Symptoms   []Symptom `json:"symptoms"`

	PredictionResult
}

// HistoryResponse is the payload of GET /user/predictions.
type HistoryResponse struct {
	Predictions []HistoricalRecord `json:"predictions"`
	Total       int                `json:"total"`
}

// RecentPrediction is one row of Stats.RecentPredictions. Probability is
// already expressed as a percentage by the server.
type RecentPrediction struct {
	Age         int       `json:"age"`
	Gender      Gender    `json:"gender"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Probability float64   `json:"probability"`
	Timestamp   string    `json:"timestamp"`
}

// Stats is the admin dashboard payload of GET /stats.
type Stats struct {
	TotalScreenings   int                `json:"total_screenings"`
	RiskDistribution  map[string]int     `json:"risk_distribution"`
	AgeDistribution   map[string]int     `json:"age_distribution"`
	RecentPredictions []RecentPrediction `json:"recent_predictions"`
}

// AgeBins lists the server's age distribution keys in display order.
var AgeBins = []string{"18-30", "31-45", "46-60", "61+"}

// Health is the payload of GET /health.
type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}
