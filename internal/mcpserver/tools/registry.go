// crimewatch-mcp: MCP server for a municipal crime-incident dataset
// SPDX-License-Identifier: MIT
//
// Explicit tool-descriptor registry. Tools register themselves at startup;
// list_tools reads this list instead of poking at SDK internals.

package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Descriptor names one registered tool.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry is a statically maintained list of tool descriptors. Population
// happens once during Register; reads after that are lock-free.
type Registry struct {
	descriptors []Descriptor
}

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Add(d Descriptor) {
	if d.Name == "" {
		return
	}
	r.descriptors = append(r.descriptors, d)
}

func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// ListTools tool

type ListToolsInput struct{}

type ListToolsOutput struct {
	Count int          `json:"count"`
	Tools []Descriptor `json:"tools"`
}

func ListTools(ctx context.Context, reg *Registry) (*mcp.CallToolResult, ListToolsOutput, error) {
	ds := reg.List()
	var b strings.Builder
	for _, d := range ds {
		fmt.Fprintf(&b, "- %s • %s\n", d.Name, d.Description)
	}
	text := fmt.Sprintf("Available tools (%d):\n%s", len(ds), strings.TrimRight(b.String(), "\n"))
	return textResult(text), ListToolsOutput{Count: len(ds), Tools: ds}, nil
}
