// Package report renders prediction results as plain-text reports and
// saves them to disk.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/handoff"
)

const (
	freshTitle      = "HEMOSCAN AI - RISK ASSESSMENT REPORT"
	historicalTitle = "HEMOSCAN AI - TEST RESULT REPORT"
	rule            = "===================================="

	// GeneratedPrefix starts the only line that varies between runs.
	GeneratedPrefix = "Generated on: "

	dateLayout      = "Jan 2, 2006, 03:04 PM"
	generatedLayout = "1/2/2006, 3:04:05 PM"
)

// Patient holds the questionnaire answers echoed into a report.
type Patient struct {
	Age        int
	Gender     api.Gender
	Hemoglobin *float64
	Diet       api.Diet
	Symptoms   []api.Symptom
}

// Input is everything a report is built from. RecordID is set for
// server-stored records and empty for a fresh result.
type Input struct {
	Result    api.PredictionResult
	Patient   *Patient
	RecordID  string
	Timestamp string
}

// Historical reports whether the input is a stored record.
func (in Input) Historical() bool {
	return in.RecordID != ""
}

// FromHandoff builds an Input for a fresh result.
func FromHandoff(r handoff.Result) Input {
	return Input{
		Result: r.Prediction,
		Patient: &Patient{
			Age:        r.Request.Age,
			Gender:     r.Request.Gender,
			Hemoglobin: r.Request.Hemoglobin,
			Diet:       r.Request.Diet,
			Symptoms:   r.Request.Symptoms,
		},
	}
}

// FromRecord builds an Input for a stored history record.
func FromRecord(rec api.HistoricalRecord) Input {
	return Input{
		Result: rec.PredictionResult,
		Patient: &Patient{
			Age:        rec.Age,
			Gender:     rec.Gender,
			Hemoglobin: rec.Hemoglobin,
			Diet:       rec.Diet,
			Symptoms:   rec.Symptoms,
		},
		RecordID:  rec.ID,
		Timestamp: rec.Timestamp,
	}
}

// Generate renders the report. Output depends only on in, except for the
// final "Generated on:" line which uses now.
func Generate(in Input, now time.Time) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	if in.Historical() {
		line(historicalTitle)
	} else {
		line(freshTitle)
	}
	line(rule)
	line("")

	if in.Historical() {
		line("Test Date: %s", FormatDate(in.Timestamp))
	}
	r := in.Result
	line("Risk Level: %s", r.RiskLevel)
	line("Risk Score: %s%%", num(r.RiskScore))
	line("Probability: %.2f%%", r.Probability*100)

	if len(r.TopFactors) > 0 {
		line("")
		line("TOP CONTRIBUTING FACTORS:")
		for i, f := range r.TopFactors {
			line("%d. %s: %s%%", i+1, f.Factor, num(f.Importance))
		}
	}

	if len(r.Recommendations) > 0 {
		line("")
		line("RECOMMENDATIONS:")
		for i, rec := range r.Recommendations {
			line("%d. %s", i+1, rec)
		}
	}

	if p := in.Patient; p != nil {
		line("")
		line("PATIENT INFORMATION:")
		line("- Age: %d", p.Age)
		line("- Gender: %s", p.Gender)
		if p.Hemoglobin != nil {
			line("- Hemoglobin: %s g/dL", num(*p.Hemoglobin))
		} else {
			line("- Hemoglobin: Not provided")
		}
		if p.Diet != "" {
			line("- Diet: %s", capitalize(string(p.Diet)))
		} else {
			line("- Diet: N/A")
		}

		line("")
		line("SYMPTOMS:")
		if len(p.Symptoms) == 0 {
			line("None reported")
		}
		for _, s := range p.Symptoms {
			line("- %s", capitalize(strings.ReplaceAll(string(s), "_", " ")))
		}
	}

	line("")
	line("%s%s", GeneratedPrefix, now.Format(generatedLayout))
	return b.String()
}

// num prints a float the shortest way that round-trips: 48.2, 12, 0.5.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// timestampLayouts are the forms the server has been seen to send.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a server timestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a server timestamp for display, or returns it as-is
// when it can't be parsed.
func FormatDate(s string) string {
	if t, ok := ParseTimestamp(s); ok {
		return t.Format(dateLayout)
	}
	return s
}
