package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Registry holds the tools exposed to the agent and dispatches invocations
// by name. Registration order is preserved for the model declarations.
type Registry struct {
	order  []string
	byName map[string]Tool
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, tool := range tools {
		r.Register(tool)
	}
	return r
}

// Register adds a tool, replacing any previous tool with the same name.
func (r *Registry) Register(tool Tool) {
	name := tool.Name()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = tool
}

func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.byName[name]
	return tool, ok
}

// Invoke dispatches a tool call. An unknown tool name returns an error
// envelope rather than failing the stream, so the model can recover.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) string {
	tool, ok := r.byName[name]
	if !ok {
		return errorEnvelope(fmt.Errorf("unknown tool: %s", name))
	}
	return tool.Invoke(ctx, args)
}

// Declarations returns the function declarations advertised to the model.
func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.order))
	for _, name := range r.order {
		tool := r.byName[name]
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return decls
}
