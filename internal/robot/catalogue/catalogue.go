// Package catalogue holds the fixed set of primitive actions the planner may call.
package catalogue

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cloudwego/eino/schema"
	"gopkg.in/yaml.v3"

	"github.com/cafebot-sim/server/internal/robot/model"
)

//go:embed catalogue.yaml
var rawCatalogue []byte

// Catalogue is immutable once loaded and safe to share between sessions.
type Catalogue struct {
	specs  []model.ActionSpec
	byName map[string]int
}

type document struct {
	Actions []model.ActionSpec `yaml:"actions"`
}

var loadDefault = sync.OnceValues(func() (*Catalogue, error) {
	return Load(rawCatalogue)
})

// Default returns the embedded catalogue, parsed once per process.
func Default() (*Catalogue, error) {
	return loadDefault()
}

// MustDefault is Default for callers that cannot continue without a catalogue.
func MustDefault() *Catalogue {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load parses and checks a catalogue document.
func Load(data []byte) (*Catalogue, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalogue: empty document")
		}
		return nil, fmt.Errorf("catalogue: decode: %w", err)
	}

	c := &Catalogue{
		specs:  make([]model.ActionSpec, 0, len(doc.Actions)),
		byName: make(map[string]int, len(doc.Actions)),
	}
	for _, spec := range doc.Actions {
		if err := checkSpec(spec); err != nil {
			return nil, fmt.Errorf("catalogue: %w", err)
		}
		if _, dup := c.byName[spec.Name]; dup {
			return nil, fmt.Errorf("catalogue: duplicate action %q", spec.Name)
		}
		c.byName[spec.Name] = len(c.specs)
		c.specs = append(c.specs, spec)
	}
	for _, k := range model.Kinds {
		if _, ok := c.byName[string(k)]; !ok {
			return nil, fmt.Errorf("catalogue: action %q is not declared", k)
		}
	}
	return c, nil
}

func checkSpec(spec model.ActionSpec) error {
	kind, ok := model.ParseKind(spec.Name)
	if !ok {
		return fmt.Errorf("action %q has no executor", spec.Name)
	}
	seen := make(map[string]bool, len(spec.Params))
	sample := make(map[string]any, len(spec.Params))
	for _, p := range spec.Params {
		if p.Name == "" {
			return fmt.Errorf("action %q: parameter without a name", spec.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("action %q: duplicate parameter %q", spec.Name, p.Name)
		}
		seen[p.Name] = true
		switch p.Type {
		case model.ParamNumber:
			sample[p.Name] = 0.0
		case model.ParamString:
			sample[p.Name] = ""
		default:
			return fmt.Errorf("action %q: parameter %q has unsupported type %q", spec.Name, p.Name, p.Type)
		}
	}
	// the declared schema must be able to build the typed variant
	if _, err := model.NewAction(kind, sample); err != nil {
		return fmt.Errorf("action %q: schema does not match its variant: %w", spec.Name, err)
	}
	return nil
}

// Specs returns the action specs in declaration order.
func (c *Catalogue) Specs() []model.ActionSpec {
	out := make([]model.ActionSpec, len(c.specs))
	copy(out, c.specs)
	return out
}

// Names returns the action names in declaration order.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.specs))
	for i, s := range c.specs {
		names[i] = s.Name
	}
	return names
}

// Lookup finds a spec by action name.
func (c *Catalogue) Lookup(name string) (model.ActionSpec, bool) {
	i, ok := c.byName[name]
	if !ok {
		return model.ActionSpec{}, false
	}
	return c.specs[i], true
}

// ToolInfos advertises the catalogue to a tool-calling chat model.
func (c *Catalogue) ToolInfos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(c.specs))
	for _, spec := range c.specs {
		params := make(map[string]*schema.ParameterInfo, len(spec.Params))
		for _, p := range spec.Params {
			params[p.Name] = &schema.ParameterInfo{
				Type:     dataType(p.Type),
				Desc:     p.Description,
				Required: p.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        spec.Name,
			Desc:        spec.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

func dataType(t model.ParamType) schema.DataType {
	if t == model.ParamNumber {
		return schema.Number
	}
	return schema.String
}
