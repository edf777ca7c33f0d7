// Package strategy generates the ordered search-query variants used to
// find sources for a person. Variants widen progressively: the first
// query is the most specific, later ones trade precision for recall.
package strategy

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Template is a single query pattern. {name} and {company} are
// substituted per lead.
type Template string

// Strategy is an ordered list of query templates for one persona.
type Strategy struct {
	Persona   string     `yaml:"persona"`
	Templates []Template `yaml:"queries"`
}

// File is the on-disk shape of strategies.yaml.
type File struct {
	Strategies []Strategy `yaml:"strategies"`
}

// Default returns the built-in widening sequence used when no strategy
// file is configured.
func Default() Strategy {
	return Strategy{
		Persona: "default",
		Templates: []Template{
			"{name} {company}",
			"{name} {company} LinkedIn",
			`"{name}"`,
			"{name}",
		},
	}
}

// Load reads strategies from a YAML file. A missing path returns only
// the default strategy rather than an error.
func Load(path string) ([]Strategy, error) {
	if path == "" {
		return []Strategy{Default()}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Strategy{Default()}, nil
		}
		return nil, eris.Wrapf(err, "strategy: read %s", path)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "strategy: parse %s", path)
	}
	if len(f.Strategies) == 0 {
		return []Strategy{Default()}, nil
	}
	return f.Strategies, nil
}

// ForPersona picks the strategy matching the persona, falling back to
// one named "default", then to the built-in default.
func ForPersona(strategies []Strategy, persona string) Strategy {
	for _, s := range strategies {
		if s.Persona == persona {
			return s
		}
	}
	for _, s := range strategies {
		if s.Persona == "default" {
			return s
		}
	}
	return Default()
}

// Queries expands the strategy's templates for a lead, dropping
// variants that come out empty or identical to an earlier one.
func (s Strategy) Queries(name, company string) []string {
	name = strings.TrimSpace(name)
	company = strings.TrimSpace(company)

	seen := make(map[string]struct{}, len(s.Templates))
	out := make([]string, 0, len(s.Templates))
	for _, tmpl := range s.Templates {
		q := strings.NewReplacer("{name}", name, "{company}", company).Replace(string(tmpl))
		q = strings.Join(strings.Fields(q), " ")
		if q == "" || q == `""` {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	if len(out) == 0 && name != "" {
		out = append(out, fmt.Sprintf("%s %s", name, company))
	}
	return out
}
