package planguard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"tripmate/internal/models/response_models"
)

// Reason names why a response has to be sent back for repair.
type Reason string

const (
	ReasonNotJSON          Reason = "not-json"
	ReasonSchemaMismatch   Reason = "schema-mismatch"
	ReasonMissingPrecheck  Reason = "missing-precheck"
	ReasonMissingTripDates Reason = "missing-trip-dates"
	ReasonBadTripDates     Reason = "bad-trip-dates"
	ReasonWrongItinCount   Reason = "wrong-itin-count"
	ReasonMissingDayCard   Reason = "missing-day-card"
)

// Check is the outcome of one validation. TargetDays is set only for the
// itinerary reasons.
type Check struct {
	OK         bool   `json:"ok"`
	Reason     Reason `json:"reason,omitempty"`
	TargetDays int    `json:"target_days,omitempty"`
}

func (c Check) String() string {
	if c.OK {
		return "ok"
	}
	if c.TargetDays > 0 {
		return fmt.Sprintf("%s (%d days)", c.Reason, c.TargetDays)
	}
	return string(c.Reason)
}

// Policy holds the tunable limits of validation and repair.
type Policy struct {
	MaxTripDays int
	MaxRepairs  int
}

func DefaultPolicy() Policy {
	return Policy{MaxTripDays: 30, MaxRepairs: 2}
}

type Validator struct {
	policy Policy
}

func NewValidator(policy Policy) *Validator {
	if policy.MaxTripDays < 1 {
		policy.MaxTripDays = DefaultPolicy().MaxTripDays
	}
	return &Validator{policy: policy}
}

func (v *Validator) Policy() Policy { return v.policy }

var defaultValidator = NewValidator(DefaultPolicy())

// NeedsRepair validates jsonText with the default policy.
func NeedsRepair(jsonText string) Check {
	return defaultValidator.NeedsRepair(jsonText)
}

// NeedsRepair decides whether a response can be accepted as-is.
func (v *Validator) NeedsRepair(jsonText string) Check {
	if !json.Valid([]byte(jsonText)) {
		return Check{Reason: ReasonNotJSON}
	}

	resp, ok := Parse(jsonText)
	if !ok {
		return Check{Reason: ReasonSchemaMismatch}
	}

	if resp.IntentValue() != response_models.IntentTripPlan {
		return Check{OK: true}
	}

	pre := resp.Precheck
	if pre == nil {
		return Check{Reason: ReasonMissingPrecheck}
	}
	if pre.TripDates == nil || isBlank(pre.TripDates.Start) || isBlank(pre.TripDates.End) {
		return Check{Reason: ReasonMissingTripDates}
	}

	n, err := InclusiveDayCount(*pre.TripDates.Start, *pre.TripDates.End)
	if err != nil || n < 1 || n > v.policy.MaxTripDays {
		return Check{Reason: ReasonBadTripDates}
	}

	if !*pre.OKToPlan {
		return Check{OK: true}
	}

	itin := resp.ItineraryCards()
	if len(itin) != n {
		return Check{Reason: ReasonWrongItinCount, TargetDays: n}
	}
	for day := 1; day <= n; day++ {
		if dayCardCount(itin, day) != 1 {
			return Check{Reason: ReasonMissingDayCard, TargetDays: n}
		}
	}
	return Check{OK: true}
}

// Parse decodes jsonText and applies the structural schema. It reports false
// on any missing required field or mistyped value. Keys must match exactly;
// encoding/json alone would accept "Markdown" for "markdown".
func Parse(jsonText string) (*response_models.TripPlanResponse, bool) {
	canonical, ok := canonicalResponse([]byte(jsonText))
	if !ok {
		return nil, false
	}

	var resp response_models.TripPlanResponse
	if err := json.Unmarshal(canonical, &resp); err != nil {
		return nil, false
	}
	if resp.Intent == nil || !knownIntent(*resp.Intent) || resp.Markdown == nil {
		return nil, false
	}
	if pre := resp.Precheck; pre != nil {
		if pre.Timezone == nil || len(pre.Destinations) == 0 || pre.OKToPlan == nil {
			return nil, false
		}
	}
	return &resp, true
}

var (
	responseKeys = []string{"intent", "markdown", "precheck", "cards", "cta", "citations"}
	precheckKeys = []string{"timezone", "trip_dates", "destinations", "ok_to_plan", "notes", "derived_dates", "assumptions"}
	datesKeys    = []string{"start", "end"}
)

// canonicalResponse re-encodes the response keeping only exactly named keys
// at each schema level. An explicit null precheck is rejected; a null
// trip_dates is left for the date checks to report.
func canonicalResponse(data []byte) ([]byte, bool) {
	top, ok := exactFields(data, responseKeys)
	if !ok {
		return nil, false
	}

	if raw, present := top["precheck"]; present {
		if isNull(raw) {
			return nil, false
		}
		pre, ok := exactFields(raw, precheckKeys)
		if !ok {
			return nil, false
		}
		if dates, present := pre["trip_dates"]; present && !isNull(dates) {
			fields, ok := exactFields(dates, datesKeys)
			if !ok {
				return nil, false
			}
			if pre["trip_dates"], ok = encode(fields); !ok {
				return nil, false
			}
		}
		if top["precheck"], ok = encode(pre); !ok {
			return nil, false
		}
	}
	return encode(top)
}

// exactFields decodes a JSON object and keeps the keys in allowed, compared
// case-sensitively. It reports false when data is not an object.
func exactFields(data []byte, allowed []string) (map[string]json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, false
	}
	out := make(map[string]json.RawMessage, len(allowed))
	for _, key := range allowed {
		if raw, ok := obj[key]; ok {
			out[key] = raw
		}
	}
	return out, true
}

func encode(fields map[string]json.RawMessage) (json.RawMessage, bool) {
	b, err := json.Marshal(fields)
	return b, err == nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func knownIntent(intent string) bool {
	for _, known := range response_models.KnownIntents {
		if intent == known {
			return true
		}
	}
	return false
}

// dayCardCount counts cards titled "Day <day>" followed by a non-digit or
// nothing, so "Day 10" is not counted as day 1.
func dayCardCount(cards []*response_models.ItineraryCard, day int) int {
	prefix := fmt.Sprintf("Day %d", day)
	count := 0
	for _, c := range cards {
		if !c.HasTitle || !strings.HasPrefix(c.Title, prefix) {
			continue
		}
		if rest := c.Title[len(prefix):]; rest != "" && rest[0] >= '0' && rest[0] <= '9' {
			continue
		}
		count++
	}
	return count
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
