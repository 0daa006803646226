// Package prompts holds the LLM prompt templates.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed prompts.toml
var defaultPrompts []byte

type ContactPrompts struct {
	Extract string `toml:"extract"`
}

type PetitionPrompts struct {
	Categorize string `toml:"categorize"`
	Draft      string `toml:"draft"`
}

type Catalogue struct {
	Contact  ContactPrompts  `toml:"contact"`
	Petition PetitionPrompts `toml:"petition"`
}

// Default returns the built-in catalogue.
func Default() *Catalogue {
	var c Catalogue
	if err := toml.Unmarshal(defaultPrompts, &c); err != nil {
		panic(fmt.Sprintf("prompts: embedded catalogue is invalid: %v", err))
	}
	return &c
}

// Load overlays the prompts in path on the built-in catalogue. An empty path
// returns the defaults.
func Load(path string) (*Catalogue, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return c, nil
}

// Render substitutes {{key}} placeholders. Unknown placeholders are left as is.
func Render(tmpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
