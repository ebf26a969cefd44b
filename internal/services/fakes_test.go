package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"tripmate/internal/agent"
	"tripmate/internal/models/response_models"
	"tripmate/pkg/utils"
)

// scriptedRunner answers run i with outputs[i], repeating the last output
// once the script runs out. A non-nil errs[i] makes run i fail instead.
type scriptedRunner struct {
	mu      sync.Mutex
	outputs []string
	errs    []error
	inputs  [][]agent.Item
}

func (r *scriptedRunner) Run(_ context.Context, a *agent.Agent, input []agent.Item) (*agent.RunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call := len(r.inputs)
	snapshot := make([]agent.Item, len(input))
	copy(snapshot, input)
	r.inputs = append(r.inputs, snapshot)

	history := append([]agent.Item{}, input...)
	if call < len(r.errs) && r.errs[call] != nil {
		return &agent.RunResult{History: history, LastAgent: a.Name}, r.errs[call]
	}

	out := r.outputs[len(r.outputs)-1]
	if call < len(r.outputs) {
		out = r.outputs[call]
	}
	reply := agent.AssistantMessage(out)
	return &agent.RunResult{
		History:     append(history, reply),
		FinalOutput: out,
		NewItems:    []agent.Item{reply},
		LastAgent:   a.Name,
	}, nil
}

func (r *scriptedRunner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inputs)
}

type memoryHistoryRepository struct {
	mu      sync.Mutex
	data    map[string][]agent.Item
	loadErr error
	saveErr error
}

func newMemoryHistoryRepository() *memoryHistoryRepository {
	return &memoryHistoryRepository{data: make(map[string][]agent.Item)}
}

func (m *memoryHistoryRepository) Load(_ context.Context, key string) ([]agent.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	items, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", utils.ErrSessionNotFound, key)
	}
	return append([]agent.Item{}, items...), nil
}

func (m *memoryHistoryRepository) Save(_ context.Context, key string, items []agent.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]agent.Item{}, items...)
	return nil
}

func (m *memoryHistoryRepository) Describe(key string) string { return "memory:" + key }

type memoryGuardrailLog struct {
	mu      sync.Mutex
	entries []response_models.GuardrailLogEntry
}

func (m *memoryGuardrailLog) Append(_ context.Context, entries ...response_models.GuardrailLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *memoryGuardrailLog) List(_ context.Context) ([]response_models.GuardrailLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]response_models.GuardrailLogEntry{}, m.entries...), nil
}

func (m *memoryGuardrailLog) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

func tripPlan(start, end string, days ...int) string {
	cards := make([]map[string]interface{}, 0, len(days))
	for _, d := range days {
		cards = append(cards, map[string]interface{}{
			"type":   "itinerary",
			"title":  fmt.Sprintf("Day %d", d),
			"fields": map[string]string{"morning": "a", "afternoon": "b", "evening": "c"},
		})
	}
	b, _ := json.Marshal(map[string]interface{}{
		"intent":   "trip_plan",
		"markdown": "Here is your plan.",
		"precheck": map[string]interface{}{
			"timezone":     "Asia/Kolkata",
			"trip_dates":   map[string]string{"start": start, "end": end},
			"destinations": []map[string]string{{"name": "Paris, France"}},
			"ok_to_plan":   true,
		},
		"cards":     cards,
		"citations": []interface{}{"https://example.org/a", map[string]string{"title": "Advisory", "url": "https://example.org/b"}},
	})
	return string(b)
}
