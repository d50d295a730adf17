package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/internal/providers/gateway"
	"github.com/sandevgo/sazed/pkg/log"
	"github.com/xeipuuv/gojsonschema"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

type entry struct {
	def    Definition
	schema *gojsonschema.Schema
}

// Registry holds the validated tool catalog and dispatches calls to the
// gateway or to in-process handlers.
type Registry struct {
	entries  []*entry
	index    map[string]*entry
	schemas  []core.Tool
	internal map[string]internalHandler

	gateway *gateway.Client
	memory  core.MemoryRepository
	timeout time.Duration
}

func NewRegistry(defs []Definition, gw *gateway.Client, memory core.MemoryRepository, timeout time.Duration) (*Registry, error) {
	r := &Registry{
		index:   make(map[string]*entry, len(defs)),
		gateway: gw,
		memory:  memory,
		timeout: timeout,
	}
	r.internal = r.internalHandlers()

	for _, def := range defs {
		e, err := r.compile(def)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", def.Name, err)
		}
		r.entries = append(r.entries, e)
		r.index[def.Name] = e
	}

	r.schemas = make([]core.Tool, len(r.entries))
	for i, e := range r.entries {
		r.schemas[i] = core.Tool{
			Name:        e.def.Name,
			Description: e.def.Description,
			InputSchema: json.RawMessage(strings.TrimSpace(e.def.Schema)),
		}
	}
	if n := len(r.schemas); n > 0 {
		r.schemas[n-1].CacheControl = &core.CacheControl{Type: "ephemeral"}
	}

	return r, nil
}

func (r *Registry) compile(def Definition) (*entry, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("empty name")
	}
	if _, dup := r.index[def.Name]; dup {
		return nil, fmt.Errorf("duplicate name")
	}
	if !supportedMethods[def.Method] {
		return nil, fmt.Errorf("unsupported method %q", def.Method)
	}

	if def.Method == MethodInternal {
		if _, ok := r.internal[def.Name]; !ok {
			return nil, fmt.Errorf("no internal handler")
		}
	} else if !strings.HasPrefix(def.Endpoint, "/") {
		return nil, fmt.Errorf("endpoint %q must start with /", def.Endpoint)
	}

	var placeholders []string
	for _, m := range placeholderRe.FindAllStringSubmatch(def.Endpoint, -1) {
		placeholders = append(placeholders, m[1])
	}
	for _, p := range placeholders {
		if !slices.Contains(def.PathParams, p) {
			return nil, fmt.Errorf("placeholder {%s} is not a declared path param", p)
		}
	}
	for _, p := range def.PathParams {
		if !slices.Contains(placeholders, p) {
			return nil, fmt.Errorf("path param %s has no placeholder", p)
		}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(def.Schema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	return &entry{def: def, schema: schema}, nil
}

// Schemas returns the tool list in the shape the model provider expects.
// The last entry carries the prompt-cache hint.
func (r *Registry) Schemas() []core.Tool {
	return slices.Clone(r.schemas)
}

type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Info describes a tool for listings.
type Info struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Method      string      `json:"method"`
	Endpoint    string      `json:"endpoint"`
	Parameters  []Parameter `json:"parameters"`
}

func (r *Registry) Catalog() []Info {
	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, Info{
			Name:        e.def.Name,
			Description: e.def.Description,
			Category:    category(e.def),
			Method:      e.def.Method,
			Endpoint:    e.def.Endpoint,
			Parameters:  parameters(e.def.Schema),
		})
	}
	return infos
}

func category(def Definition) string {
	if def.Method == MethodInternal {
		return "memory"
	}
	prefix, _, _ := strings.Cut(strings.TrimPrefix(def.Endpoint, "/"), "/")
	if prefix == "" {
		return "other"
	}
	return prefix
}

// parameters lists schema properties in declaration order.
func parameters(schema string) []Parameter {
	var parsed struct {
		Properties orderedProperties `json:"properties"`
		Required   []string          `json:"required"`
	}
	if err := json.Unmarshal([]byte(schema), &parsed); err != nil {
		return nil
	}

	params := make([]Parameter, 0, len(parsed.Properties))
	for _, p := range parsed.Properties {
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		params = append(params, Parameter{
			Name:        p.Name,
			Type:        typ,
			Description: p.Description,
			Required:    slices.Contains(parsed.Required, p.Name),
		})
	}
	return params
}

type property struct {
	Name        string
	Type        string `json:"type"`
	Description string `json:"description"`
}

// orderedProperties decodes a JSON object of properties keeping key order.
type orderedProperties []property

func (o *orderedProperties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected property key %v", tok)
		}
		var p property
		if err := dec.Decode(&p); err != nil {
			return err
		}
		p.Name = name
		*o = append(*o, p)
	}
	_, err := dec.Token()
	return err
}

// Dispatch executes a tool call. Failures of any kind are rendered as text
// so the model can react to them.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) string {
	e, ok := r.index[name]
	if !ok {
		return "Unknown tool: " + name
	}
	if args == nil {
		args = map[string]any{}
	}

	logger := log.FromCtx(ctx).With().Str("tool", name).Logger()
	start := time.Now()

	var result string
	if e.def.Method == MethodInternal {
		if msg := e.validate(args); msg != "" {
			result = msg
		} else {
			result = r.internal[name](ctx, args)
		}
	} else {
		result = r.dispatchGateway(ctx, e, args)
	}

	logger.Debug().Dur("took", time.Since(start)).Int("chars", len(result)).Msg("tool completed")
	return result
}

func (e *entry) validate(args map[string]any) string {
	res, err := e.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Sprintf("Invalid arguments for %s: %v", e.def.Name, err)
	}
	if res.Valid() {
		return ""
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, re := range res.Errors() {
		msgs = append(msgs, re.String())
	}
	return fmt.Sprintf("Invalid arguments for %s: %s", e.def.Name, strings.Join(msgs, "; "))
}
