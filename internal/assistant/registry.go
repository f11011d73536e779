// Package assistant exposes library operations as named tools for a
// natural-language agent. The agent itself lives outside this service; it
// lists the tools, calls them with JSON arguments and narrates the Result.
package assistant

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/knjiznica/internal/store"
)

// Error kinds reported to the agent.
const (
	KindNotFound         = "not_found"
	KindConflict         = "conflict"
	KindInvalidArguments = "invalid_arguments"
	KindUnknownTool      = "unknown_tool"
	KindInternal         = "internal"
)

// Parameter describes one tool argument.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Tool is a named operation the agent may call.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`

	call func(ctx context.Context, args json.RawMessage) (any, error)
}

// ToolError is the structured failure an agent narrates to the user.
type ToolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Entity  string `json:"entity,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

// Result is the outcome of one tool call.
type Result struct {
	Tool  string     `json:"tool"`
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ToolError `json:"error,omitempty"`
}

// Registry holds the tools bound to a database.
type Registry struct {
	db    *sql.DB
	tools map[string]*Tool
	order []string
}

// NewRegistry creates a registry with every library tool registered.
func NewRegistry(db *sql.DB) *Registry {
	r := &Registry{db: db, tools: make(map[string]*Tool)}
	registerTools(r)
	return r
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, *r.tools[name])
	}
	return tools
}

// Invoke runs the named tool. Failures are reported in the Result, never
// as a Go error, so the agent always has something to narrate.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) Result {
	tool, ok := r.tools[name]
	if !ok {
		return Result{Tool: name, Error: &ToolError{Kind: KindUnknownTool, Message: fmt.Sprintf("unknown tool %q", name)}}
	}

	data, err := tool.call(ctx, args)
	if err != nil {
		return Result{Tool: name, Error: toolError(name, err)}
	}
	return Result{Tool: name, OK: true, Data: data}
}

type argumentError struct{ msg string }

func (e *argumentError) Error() string { return e.msg }

func invalidArgs(format string, a ...any) error {
	return &argumentError{msg: fmt.Sprintf(format, a...)}
}

func toolError(name string, err error) *ToolError {
	var nf *store.NotFoundError
	var ce *store.ConflictError
	var ae *argumentError

	switch {
	case errors.As(err, &nf):
		return &ToolError{Kind: KindNotFound, Message: nf.Error(), Entity: nf.Entity, ID: nf.ID}
	case errors.As(err, &ce):
		return &ToolError{Kind: KindConflict, Message: ce.Reason, ID: ce.ID}
	case errors.As(err, &ae):
		return &ToolError{Kind: KindInvalidArguments, Message: ae.msg}
	default:
		slog.Error("assistant tool failed", "tool", name, "error", err)
		return &ToolError{Kind: KindInternal, Message: "the library database could not complete the request"}
	}
}

type validator interface {
	validate() error
}

// register adds a tool whose JSON arguments decode into A.
func register[A any](r *Registry, name, description string, params []Parameter, fn func(ctx context.Context, db *sql.DB, args A) (any, error)) {
	if params == nil {
		params = []Parameter{}
	}
	r.tools[name] = &Tool{
		Name:        name,
		Description: description,
		Parameters:  params,
		call: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args A
			if len(bytes.TrimSpace(raw)) > 0 {
				dec := json.NewDecoder(bytes.NewReader(raw))
				dec.DisallowUnknownFields()
				if err := dec.Decode(&args); err != nil {
					return nil, invalidArgs("invalid arguments: %v", err)
				}
			}
			if v, ok := any(&args).(validator); ok {
				if err := v.validate(); err != nil {
					return nil, err
				}
			}
			return fn(ctx, r.db, args)
		},
	}
	r.order = append(r.order, name)
}
