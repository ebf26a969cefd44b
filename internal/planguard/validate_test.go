package planguard

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

type testCard struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Fields map[string]string `json:"fields"`
}

func tripPlanJSON(start, end string, okToPlan bool, cards []testCard) string {
	payload := map[string]interface{}{
		"intent":   "trip_plan",
		"markdown": "plan",
		"precheck": map[string]interface{}{
			"timezone":     "Asia/Kolkata",
			"trip_dates":   map[string]string{"start": start, "end": end},
			"destinations": []interface{}{map[string]string{"name": "Paris"}},
			"ok_to_plan":   okToPlan,
		},
		"cards": cards,
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func dayCards(days ...int) []testCard {
	cards := make([]testCard, 0, len(days))
	for _, d := range days {
		cards = append(cards, testCard{
			Type:  "itinerary",
			Title: fmt.Sprintf("Day %d - Explore", d),
			Fields: map[string]string{
				"morning":   "museum",
				"afternoon": "walk",
				"evening":   "dinner",
			},
		})
	}
	return cards
}

func titledCards(titles ...string) []testCard {
	cards := make([]testCard, 0, len(titles))
	for _, title := range titles {
		cards = append(cards, testCard{Type: "itinerary", Title: title, Fields: map[string]string{}})
	}
	return cards
}

func TestNeedsRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Check
	}{
		{
			name:  "not json",
			input: "Sure, here is your plan!",
			want:  Check{Reason: ReasonNotJSON},
		},
		{
			name:  "missing markdown",
			input: `{"intent":"general_help"}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "unknown intent",
			input: `{"intent":"weather","markdown":"x"}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "mistyped markdown",
			input: `{"intent":"general_help","markdown":42}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "array at top level",
			input: `[{"intent":"general_help","markdown":"x"}]`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "cards not an array",
			input: `{"intent":"general_help","markdown":"x","cards":"none"}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "precheck without destinations",
			input: `{"intent":"trip_plan","markdown":"x","precheck":{"timezone":"UTC","trip_dates":{"start":"2025-12-10","end":"2025-12-12"},"destinations":[],"ok_to_plan":true}}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "precheck without ok_to_plan",
			input: `{"intent":"trip_plan","markdown":"x","precheck":{"timezone":"UTC","trip_dates":{"start":"2025-12-10","end":"2025-12-12"},"destinations":[{}]}}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "non trip intent",
			input: `{"intent":"flight_search","markdown":"Here are flights","cards":[{"type":"flight_option"}]}`,
			want:  Check{OK: true},
		},
		{
			name:  "trip plan without precheck",
			input: `{"intent":"trip_plan","markdown":"Which city?"}`,
			want:  Check{Reason: ReasonMissingPrecheck},
		},
		{
			name:  "trip dates absent",
			input: `{"intent":"trip_plan","markdown":"x","precheck":{"timezone":"UTC","destinations":[{}],"ok_to_plan":true}}`,
			want:  Check{Reason: ReasonMissingTripDates},
		},
		{
			name:  "trip end empty",
			input: tripPlanJSON("2025-12-10", "", true, nil),
			want:  Check{Reason: ReasonMissingTripDates},
		},
		{
			name:  "reversed dates",
			input: tripPlanJSON("2025-12-14", "2025-12-10", true, nil),
			want:  Check{Reason: ReasonBadTripDates},
		},
		{
			name:  "too long",
			input: tripPlanJSON("2025-01-01", "2025-01-31", true, nil),
			want:  Check{Reason: ReasonBadTripDates},
		},
		{
			name:  "unparseable dates",
			input: tripPlanJSON("Dec 10", "Dec 14", false, nil),
			want:  Check{Reason: ReasonBadTripDates},
		},
		{
			name:  "withheld itinerary",
			input: tripPlanJSON("2025-12-10", "2025-12-14", false, nil),
			want:  Check{OK: true},
		},
		{
			name:  "one card short",
			input: tripPlanJSON("2025-12-10", "2025-12-14", true, dayCards(1, 2, 3, 4)),
			want:  Check{Reason: ReasonWrongItinCount, TargetDays: 5},
		},
		{
			name:  "day three missing",
			input: tripPlanJSON("2025-12-10", "2025-12-14", true, dayCards(1, 2, 4, 5, 5)),
			want:  Check{Reason: ReasonMissingDayCard, TargetDays: 5},
		},
		{
			name:  "complete out of order",
			input: tripPlanJSON("2025-12-10", "2025-12-14", true, dayCards(5, 3, 1, 2, 4)),
			want:  Check{OK: true},
		},
		{
			name:  "day ten does not stand in for day one",
			input: tripPlanJSON("2025-12-01", "2025-12-10", true, dayCards(2, 3, 4, 5, 6, 7, 8, 9, 10, 10)),
			want:  Check{Reason: ReasonMissingDayCard, TargetDays: 10},
		},
		{
			name:  "duplicate day",
			input: tripPlanJSON("2025-12-10", "2025-12-12", true, titledCards("Day 1", "Day 1: again", "Day 3")),
			want:  Check{Reason: ReasonMissingDayCard, TargetDays: 3},
		},
		{
			name:  "bare and suffixed titles",
			input: tripPlanJSON("2025-12-01", "2025-12-11", true, titledCards("Day 1", "Day 2:", "Day 3 Lisbon", "Day 4", "Day 5", "Day 6", "Day 7", "Day 8", "Day 9", "Day 10", "Day 11")),
			want:  Check{OK: true},
		},
		{
			name:  "markdown key in wrong case",
			input: `{"intent":"general_help","Markdown":"x"}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "intent key in wrong case",
			input: `{"INTENT":"trip_plan","markdown":"x"}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "precheck key in wrong case",
			input: `{"intent":"trip_plan","markdown":"x","precheck":{"Timezone":"UTC","trip_dates":{"start":"2025-12-10","end":"2025-12-10"},"destinations":[{}],"ok_to_plan":false}}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "trip date key in wrong case",
			input: `{"intent":"trip_plan","markdown":"x","precheck":{"timezone":"UTC","trip_dates":{"Start":"2025-12-10","end":"2025-12-10"},"destinations":[{}],"ok_to_plan":false}}`,
			want:  Check{Reason: ReasonMissingTripDates},
		},
		{
			name:  "wrong-case duplicate key is ignored",
			input: `{"intent":"general_help","markdown":"x","MARKDOWN":7}`,
			want:  Check{OK: true},
		},
		{
			name:  "null precheck",
			input: `{"intent":"general_help","markdown":"x","precheck":null}`,
			want:  Check{Reason: ReasonSchemaMismatch},
		},
		{
			name:  "thirty days is allowed",
			input: tripPlanJSON("2025-01-01", "2025-01-30", false, nil),
			want:  Check{OK: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsRepair(tt.input))
		})
	}
}

func TestNeedsRepairIgnoresNonItineraryCards(t *testing.T) {
	input := `{"intent":"trip_plan","markdown":"x",
		"precheck":{"timezone":"UTC","trip_dates":{"start":"2025-12-10","end":"2025-12-11"},"destinations":[{}],"ok_to_plan":true},
		"cards":[
			{"type":"destination_option","name":"Nice"},
			{"type":"itinerary","title":"Day 1","fields":{}},
			"loose string",
			null,
			{"type":"itinerary","title":"Day 2 - Old town","fields":{"morning":"market","tips":"cash"}}
		]}`

	assert.Equal(t, Check{OK: true}, NeedsRepair(input))
}

func TestNeedsRepairUntitledItineraryCard(t *testing.T) {
	input := `{"intent":"trip_plan","markdown":"x",
		"precheck":{"timezone":"UTC","trip_dates":{"start":"2025-12-10","end":"2025-12-11"},"destinations":[{}],"ok_to_plan":true},
		"cards":[{"type":"itinerary","title":"Day 1"},{"type":"itinerary","title":2}]}`

	assert.Equal(t, Check{Reason: ReasonMissingDayCard, TargetDays: 2}, NeedsRepair(input))
}

func TestValidatorPolicyMaxTripDays(t *testing.T) {
	v := NewValidator(Policy{MaxTripDays: 7, MaxRepairs: 1})

	assert.Equal(t, Check{Reason: ReasonBadTripDates}, v.NeedsRepair(tripPlanJSON("2025-12-01", "2025-12-08", false, nil)))
	assert.Equal(t, Check{OK: true}, v.NeedsRepair(tripPlanJSON("2025-12-01", "2025-12-07", false, nil)))
}

func TestEndToEndScenario(t *testing.T) {
	raw := `Sure! {"intent":"trip_plan","markdown":"ok","precheck":{"timezone":"Asia/Kolkata","trip_dates":{"start":"2025-12-10","end":"2025-12-12"},"destinations":[{}],"ok_to_plan":true},"cards":[{"type":"itinerary","title":"Day 1","fields":{}}]} Thanks!`

	candidate, ok := ExtractFirstJSON(raw)
	assert.True(t, ok)
	assert.True(t, strings.HasPrefix(candidate, `{"intent":"trip_plan"`))
	assert.True(t, strings.HasSuffix(candidate, `]}`))

	check := NeedsRepair(candidate)
	assert.Equal(t, Check{Reason: ReasonWrongItinCount, TargetDays: 3}, check)

	instruction := RepairInstruction(check.Reason, check.TargetDays)
	assert.Contains(t, instruction, "exactly 3 itinerary cards")
	assert.Contains(t, instruction, "'Day 1'")
	assert.Contains(t, instruction, "'Day 3'")
}

func TestProperty_NonTripIntentsAlwaysAccepted(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genIntent := gen.OneConstOf("flight_search", "hotel_search", "car_search", "policy_help", "general_help")

	prechecks := []map[string]interface{}{
		nil,
		{"timezone": "UTC", "trip_dates": map[string]string{"start": "2025-12-14", "end": "2025-12-01"}, "destinations": []int{1}, "ok_to_plan": true},
		{"timezone": "UTC", "trip_dates": map[string]string{"start": "", "end": ""}, "destinations": []int{1}, "ok_to_plan": false},
	}
	cardVariants := []interface{}{
		map[string]interface{}{"type": "itinerary", "title": "Day 9"},
		map[string]interface{}{"type": "hotel_option", "name": "Riviera Central"},
		"opaque",
		7,
	}

	properties.Property("needsRepair accepts well-formed non trip_plan responses", prop.ForAll(
		func(intent string, markdown string, precheckIdx int, cardIdx []int) bool {
			cards := make([]interface{}, 0, len(cardIdx))
			for _, i := range cardIdx {
				cards = append(cards, cardVariants[i])
			}
			payload := map[string]interface{}{"intent": intent, "markdown": markdown, "cards": cards}
			if pre := prechecks[precheckIdx]; pre != nil {
				payload["precheck"] = pre
			}
			b, err := json.Marshal(payload)
			if err != nil {
				return false
			}
			return NeedsRepair(string(b)).OK
		},
		genIntent,
		gen.AnyString(),
		gen.IntRange(0, len(prechecks)-1),
		gen.SliceOf(gen.IntRange(0, len(cardVariants)-1)),
	))

	properties.TestingRun(t)
}
