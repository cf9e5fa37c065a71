// Package persona holds the fixed system prompts that shape each analysis.
package persona

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Name string

const (
	Describe        Name = "describe"
	Critique        Name = "critique"
	ArtistStatement Name = "artist_statement"
	NewPrompt       Name = "new_prompt"
)

// Persona is a system prompt plus the user instruction sent with it.
type Persona struct {
	System      string `yaml:"system"`
	Instruction string `yaml:"instruction"`
}

type Catalog map[Name]Persona

//go:embed personas.yaml
var defaultPersonas []byte

// Default returns the built-in catalog.
func Default() Catalog {
	c, err := parse(defaultPersonas)
	if err != nil {
		panic(fmt.Sprintf("persona: embedded catalog: %v", err))
	}
	return c
}

// Load returns the built-in catalog with entries from path layered on top.
// Fields left empty in the file keep their built-in text. An empty path
// returns the defaults.
func Load(path string) (Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading personas file: %w", err)
	}

	overrides, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing personas file %s: %w", path, err)
	}

	for name, o := range overrides {
		base, ok := c[name]
		if !ok {
			return nil, fmt.Errorf("unknown persona %q in %s", name, path)
		}
		if o.System != "" {
			base.System = o.System
		}
		if o.Instruction != "" {
			base.Instruction = o.Instruction
		}
		c[name] = base
	}
	return c, nil
}

// Get returns the persona or an error naming the missing entry.
func (c Catalog) Get(name Name) (Persona, error) {
	p, ok := c[name]
	if !ok || p.System == "" {
		return Persona{}, fmt.Errorf("persona %q is not defined", name)
	}
	return p, nil
}

func parse(data []byte) (Catalog, error) {
	c := Catalog{}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c, nil
}
