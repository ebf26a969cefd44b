package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmate/internal/agent"
	"tripmate/internal/models/response_models"
)

func newGuardrails(runner agent.Runner, logs *memoryGuardrailLog) *GuardrailService {
	return NewGuardrailService(true, runner, &agent.Agent{Name: "Safety Validator", JSONOutput: true}, logs, nil)
}

func TestGuardrailCheckInput(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		wantBlocked bool
		wantLogged  bool
	}{
		{
			name:       "travel question",
			output:     `{"isValid":true,"category":"travel","severity":"safe","reason":"travel"}`,
			wantLogged: true,
		},
		{
			name:       "harmless off topic",
			output:     `{"isValid":true,"category":"out-of-domain","severity":"warning","reason":"joke"}`,
			wantLogged: true,
		},
		{
			name:        "severity block",
			output:      `{"isValid":true,"category":"unclear","severity":"block","reason":"odd"}`,
			wantBlocked: true,
			wantLogged:  true,
		},
		{
			name:        "invalid",
			output:      `{"isValid":false,"category":"travel","severity":"warning","reason":"fraud"}`,
			wantBlocked: true,
			wantLogged:  true,
		},
		{
			name:        "injection",
			output:      `Verdict: {"isValid":true,"category":"injection-attempt","severity":"safe","reason":"ignore previous"}`,
			wantBlocked: true,
			wantLogged:  true,
		},
		{
			name:        "harmful",
			output:      `{"isValid":true,"category":"harmful","severity":"warning","reason":"violence"}`,
			wantBlocked: true,
			wantLogged:  true,
		},
		{
			name:   "unparseable verdict",
			output: `I think this is fine`,
		},
		{
			name:   "verdict missing fields",
			output: `{"reason":"no decision"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := &memoryGuardrailLog{}
			g := newGuardrails(&scriptedRunner{outputs: []string{tt.output}}, logs)

			check, err := g.CheckInput(context.Background(), "s1", "message")
			require.NoError(t, err)
			assert.Equal(t, tt.wantBlocked, check.Blocked)

			entries, _ := logs.List(context.Background())
			if !tt.wantLogged {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			assert.Equal(t, "message", entries[0].Input)
			assert.Equal(t, "s1", entries[0].SessionKey)
			assert.Equal(t, tt.wantBlocked, entries[0].Validation.TripwireTriggered)
		})
	}
}

func TestGuardrailDisabledSkipsClassifier(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{`{"isValid":false,"category":"harmful","severity":"block","reason":"x"}`}}
	g := NewGuardrailService(false, runner, &agent.Agent{}, &memoryGuardrailLog{}, nil)

	check, err := g.CheckInput(context.Background(), "", "anything")
	require.NoError(t, err)
	assert.False(t, check.Blocked)
	assert.Equal(t, 0, runner.calls())
}

func TestGuardrailClassifierErrorFailsOpen(t *testing.T) {
	runner := &scriptedRunner{outputs: []string{""}, errs: []error{errors.New("timeout")}}
	g := newGuardrails(runner, &memoryGuardrailLog{})

	check, err := g.CheckInput(context.Background(), "", "hotels in Goa")
	require.NoError(t, err)
	assert.False(t, check.Blocked)
}

func TestGuardrailCheckOutput(t *testing.T) {
	g := newGuardrails(&scriptedRunner{outputs: []string{""}}, nil)

	assert.True(t, g.CheckOutput(`{"markdown":"My System Prompt says..."}`))
	assert.True(t, g.CheckOutput("here is the API KEY"))
	assert.True(t, g.CheckOutput("the secret is out"))
	assert.True(t, g.CheckOutput("Password: hunter2"))
	assert.False(t, g.CheckOutput(`{"intent":"trip_plan","markdown":"Day 1 in Paris"}`))
}

func TestGuardrailStats(t *testing.T) {
	logs := &memoryGuardrailLog{}
	for i := 0; i < 5; i++ {
		logs.entries = append(logs.entries, response_models.GuardrailLogEntry{
			Input:      fmt.Sprintf("bad %d", i),
			Validation: response_models.SafetyVerdict{Severity: "block", Reason: "injection"},
		})
	}
	logs.entries = append(logs.entries,
		response_models.GuardrailLogEntry{Input: "tripwire", Validation: response_models.SafetyVerdict{Severity: "warning", TripwireTriggered: true}},
		response_models.GuardrailLogEntry{Input: "fine", Validation: response_models.SafetyVerdict{IsValid: true, Severity: "safe"}},
	)
	g := newGuardrails(&scriptedRunner{outputs: []string{""}}, logs)

	stats, err := g.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Total)
	assert.Equal(t, 6, stats.Blocked)
	assert.Equal(t, 1, stats.Passed)
	require.Len(t, stats.RecentBlocks, 3)
	assert.Equal(t, "bad 3", stats.RecentBlocks[0].Input)
	assert.Equal(t, "tripwire", stats.RecentBlocks[2].Input)

	require.NoError(t, g.ClearLog(context.Background()))
	stats, err = g.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
}
