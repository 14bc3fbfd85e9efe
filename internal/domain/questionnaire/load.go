package questionnaire

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDefinition is returned when a loaded questionnaire cannot drive
// the wizard.
var ErrInvalidDefinition = errors.New("invalid questionnaire definition")

// Load decodes a YAML questionnaire of the form
//
//	steps:
//	  - id: service
//	    question: What can we help you with?
//	    options:
//	      - {value: seo, label: SEO & content}
func Load(r io.Reader) (Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("decode questionnaire: %w", err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// LoadFile reads a YAML questionnaire from path.
func LoadFile(path string) (Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return Definition{}, err
	}
	defer f.Close()
	return Load(f)
}

// Validate checks that steps and option values are present and unique.
func (d Definition) Validate() error {
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidDefinition)
	}
	seen := make(map[string]struct{}, len(d.Steps))
	for i, step := range d.Steps {
		id := strings.TrimSpace(step.ID)
		if id == "" {
			return fmt.Errorf("%w: step %d has no id", ErrInvalidDefinition, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate step %q", ErrInvalidDefinition, id)
		}
		seen[id] = struct{}{}

		if len(step.Options) == 0 {
			return fmt.Errorf("%w: step %q has no options", ErrInvalidDefinition, id)
		}
		values := make(map[string]struct{}, len(step.Options))
		for _, opt := range step.Options {
			if opt.Value == "" {
				return fmt.Errorf("%w: step %q has an option without a value", ErrInvalidDefinition, id)
			}
			if _, dup := values[opt.Value]; dup {
				return fmt.Errorf("%w: step %q repeats option %q", ErrInvalidDefinition, id, opt.Value)
			}
			values[opt.Value] = struct{}{}
		}
	}
	return nil
}
