// Package tools holds the travel search functions the assistant may call.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var ErrUnknownTool = errors.New("unknown tool")

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
)

type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Nullable    bool
	Default     interface{}
}

// Tool is a function exposed to the model.
type Tool interface {
	Name() string
	Description() string
	Params() []Param
	Execute(ctx context.Context, args json.RawMessage) (interface{}, error)
}

// JSONSchema renders a tool's parameters as a JSON Schema object.
func JSONSchema(t Tool) map[string]interface{} {
	props := make(map[string]interface{})
	required := []string{}
	for _, p := range t.Params() {
		prop := map[string]interface{}{"type": string(p.Type)}
		if p.Nullable {
			prop["type"] = []string{string(p.Type), "null"}
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if p.Type == TypeInteger {
			prop["minimum"] = 1
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

var validate = validator.New()

// decodeArgs fills dst from the raw arguments and validates it. dst should
// already carry its defaults.
func decodeArgs(args json.RawMessage, dst interface{}) error {
	if len(args) > 0 {
		if err := json.Unmarshal(args, dst); err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// Registry looks tools up by name, keeping registration order.
type Registry struct {
	byName map[string]Tool
	order  []Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, dup := r.byName[t.Name()]; dup {
			continue
		}
		r.byName[t.Name()] = t
		r.order = append(r.order, t)
	}
	return r
}

// DefaultRegistry holds the three travel search tools.
func DefaultRegistry() *Registry {
	return NewRegistry(NewFlightSearchTool(), NewHotelSearchTool(), NewCarSearchTool())
}

func (r *Registry) Get(name string) (Tool, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := r.byName[name]
	return t, ok
}

func (r *Registry) All() []Tool {
	if r == nil {
		return nil
	}
	return r.order
}

// Call runs the named tool and always returns JSON suitable as tool output.
// On failure the output is {"error": "..."} and err carries the cause.
func (r *Registry) Call(ctx context.Context, name string, args string) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownTool, name)
		return errorOutput(err), err
	}
	result, err := t.Execute(ctx, json.RawMessage(args))
	if err != nil {
		return errorOutput(err), err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return errorOutput(err), err
	}
	return string(b), nil
}

func errorOutput(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}
