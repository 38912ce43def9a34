package api

import (
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema used to validate response bodies. It is
// compiled on first use; use it only through a pointer.
type Schema struct {
	Name       string
	Definition map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

var userDefinition = map[string]any{
	"type":     "object",
	"required": []any{"id", "username", "email", "role"},
	"properties": map[string]any{
		"id":       map[string]any{"type": "string", "minLength": 1},
		"username": map[string]any{"type": "string"},
		"email":    map[string]any{"type": "string"},
		"role":     map[string]any{"type": "string"},
	},
}

var riskLevelDefinition = map[string]any{
	"type": "string",
	"enum": []any{string(RiskLow), string(RiskModerate), string(RiskHigh)},
}

var (
	// UserSchema validates GET /auth/me.
	UserSchema = &Schema{Name: "user", Definition: userDefinition}

	// AuthSchema validates login and signup responses.
	AuthSchema = &Schema{
		Name: "auth-response",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"access_token", "user"},
			"properties": map[string]any{
				"access_token": map[string]any{"type": "string", "minLength": 1},
				"user":         userDefinition,
			},
		},
	}

	// PredictionSchema validates POST /predict.
	PredictionSchema = &Schema{
		Name: "prediction-result",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"risk_level", "risk_score", "probability", "top_factors", "recommendations"},
			"properties": map[string]any{
				"risk_level":  riskLevelDefinition,
				"risk_score":  map[string]any{"type": "number", "minimum": 0, "maximum": 100},
				"probability": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
				"top_factors": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []any{"factor", "importance"},
						"properties": map[string]any{
							"factor":     map[string]any{"type": "string"},
							"importance": map[string]any{"type": "number"},
						},
					},
				},
				"recommendations": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
	}

	// HistorySchema validates GET /user/predictions.
	HistorySchema = &Schema{
		Name: "prediction-history",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"predictions"},
			"properties": map[string]any{
				"predictions": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []any{"id", "risk_level", "probability"},
						"properties": map[string]any{
							"id":          map[string]any{"type": "string", "minLength": 1},
							"risk_level":  riskLevelDefinition,
							"probability": map[string]any{"type": "number"},
							"hemoglobin":  map[string]any{"type": []any{"number", "null"}},
							"symptoms":    map[string]any{"type": []any{"array", "null"}},
						},
					},
				},
				"total": map[string]any{"type": "integer"},
			},
		},
	}

	// StatsSchema validates GET /stats.
	StatsSchema = &Schema{
		Name: "admin-stats",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"total_screenings", "risk_distribution", "age_distribution", "recent_predictions"},
			"properties": map[string]any{
				"total_screenings":   map[string]any{"type": "integer", "minimum": 0},
				"risk_distribution":  map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "integer"}},
				"age_distribution":   map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "integer"}},
				"recent_predictions": map[string]any{"type": "array"},
			},
		},
	}

	// HealthSchema validates GET /health.
	HealthSchema = &Schema{
		Name: "health",
		Definition: map[string]any{
			"type":     "object",
			"required": []any{"status"},
			"properties": map[string]any{
				"status":       map[string]any{"type": "string"},
				"model_loaded": map[string]any{"type": "boolean"},
			},
		},
	}
)
