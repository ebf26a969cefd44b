package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripmate/internal/tools"
)

type fakeCompletions struct {
	mu        sync.Mutex
	requests  []map[string]interface{}
	responses []string
}

func (f *fakeCompletions) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		f.mu.Lock()
		f.requests = append(f.requests, body)
		idx := len(f.requests) - 1
		if idx >= len(f.responses) {
			idx = len(f.responses) - 1
		}
		resp := f.responses[idx]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(resp))
	}
}

const toolCallCompletion = `{
  "id": "cmpl-1", "object": "chat.completion", "created": 1, "model": "test-model",
  "choices": [{
    "index": 0, "finish_reason": "tool_calls",
    "message": {
      "role": "assistant", "content": "",
      "tool_calls": [{
        "id": "call_1", "type": "function",
        "function": {"name": "search_cars_cheapoair", "arguments": "{\"city\":\"Nice\",\"pickup_date\":\"2025-12-10\",\"dropoff_date\":\"2025-12-12\"}"}
      }]
    }
  }]
}`

const finalCompletion = `{
  "id": "cmpl-2", "object": "chat.completion", "created": 2, "model": "test-model",
  "choices": [{
    "index": 0, "finish_reason": "stop",
    "message": {"role": "assistant", "content": "{\"intent\":\"car_search\",\"markdown\":\"Two cars\"}"}
  }]
}`

func newTestRunner(t *testing.T, fake *fakeCompletions) *OpenAIRunner {
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewOpenAIRunner(NewOpenAIClient("test-key", srv.URL+"/v1"), nil)
}

func testAgent() *Agent {
	return &Agent{
		Name:         "Travel Assistant",
		Instructions: "Reply in JSON.",
		Model:        "test-model",
		Tools:        tools.DefaultRegistry(),
		JSONOutput:   true,
	}
}

func TestOpenAIRunnerToolRoundTrip(t *testing.T) {
	fake := &fakeCompletions{responses: []string{toolCallCompletion, finalCompletion}}
	runner := newTestRunner(t, fake)

	input := []Item{UserMessage("earlier"), AssistantMessage("{}"), UserMessage("car in Nice please")}
	result, err := runner.Run(context.Background(), testAgent(), input)
	require.NoError(t, err)

	assert.Equal(t, `{"intent":"car_search","markdown":"Two cars"}`, result.FinalOutput)
	assert.Equal(t, "Travel Assistant", result.LastAgent)
	require.Len(t, result.History, 6)
	assert.Equal(t, input, result.History[:3])
	require.Len(t, result.NewItems, 3)

	call := result.NewItems[0]
	assert.Equal(t, RoleAssistant, call.Role)
	require.Len(t, call.ToolCalls, 1)
	assert.Equal(t, "search_cars_cheapoair", call.ToolCalls[0].Name)

	toolItem := result.NewItems[1]
	assert.Equal(t, RoleTool, toolItem.Role)
	assert.Equal(t, "call_1", toolItem.ToolCallID)
	assert.Contains(t, toolItem.Content, "CAR-ECON")

	require.Len(t, fake.requests, 2)
	first := fake.requests[0]
	assert.Equal(t, "test-model", first["model"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, first["response_format"])
	assert.Len(t, first["tools"], 3)

	msgs := first["messages"].([]interface{})
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]interface{})["role"])

	second := fake.requests[1]["messages"].([]interface{})
	require.Len(t, second, 6)
	last := second[5].(map[string]interface{})
	assert.Equal(t, "tool", last["role"])
	assert.Equal(t, "call_1", last["tool_call_id"])
}

func TestOpenAIRunnerInvalidToolArgumentsGoBackToModel(t *testing.T) {
	badCall := `{"id":"c","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"tool_calls",
	  "message":{"role":"assistant","content":"","tool_calls":[{"id":"call_x","type":"function","function":{"name":"search_cars_cheapoair","arguments":"{\"city\":\"N\"}"}}]}}]}`
	fake := &fakeCompletions{responses: []string{badCall, finalCompletion}}
	runner := newTestRunner(t, fake)

	result, err := runner.Run(context.Background(), testAgent(), []Item{UserMessage("car")})
	require.NoError(t, err)

	assert.Contains(t, result.NewItems[1].Content, `"error"`)
	assert.NotEmpty(t, result.FinalOutput)
}

func TestOpenAIRunnerMaxTurns(t *testing.T) {
	fake := &fakeCompletions{responses: []string{toolCallCompletion}}
	runner := newTestRunner(t, fake)

	a := testAgent()
	a.MaxTurns = 2
	result, err := runner.Run(context.Background(), a, []Item{UserMessage("loop")})

	assert.ErrorIs(t, err, ErrMaxTurnsExceeded)
	require.NotNil(t, result)
	assert.Len(t, result.History, 5)
	assert.Empty(t, result.FinalOutput)
}

func TestOpenAIRunnerEmptyChoices(t *testing.T) {
	fake := &fakeCompletions{responses: []string{`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`}}
	runner := newTestRunner(t, fake)

	_, err := runner.Run(context.Background(), testAgent(), []Item{UserMessage("hi")})
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestOpenAIRunnerWithoutJSONMode(t *testing.T) {
	fake := &fakeCompletions{responses: []string{finalCompletion}}
	runner := newTestRunner(t, fake)

	a := testAgent()
	a.JSONOutput = false
	a.Tools = nil
	_, err := runner.Run(context.Background(), a, []Item{UserMessage("hi")})
	require.NoError(t, err)

	_, hasFormat := fake.requests[0]["response_format"]
	assert.False(t, hasFormat)
	_, hasTools := fake.requests[0]["tools"]
	assert.False(t, hasTools)
}

func TestRunResultOutputFallsBackToNewItems(t *testing.T) {
	r := &RunResult{NewItems: []Item{
		{Role: RoleAssistant, Content: "part one"},
		{Role: RoleTool, Content: "{}"},
		{Role: RoleAssistant, Content: "part two"},
	}}
	assert.Equal(t, "part one\npart two", r.Output())

	r.FinalOutput = "final"
	assert.Equal(t, "final", r.Output())
}
