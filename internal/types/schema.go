package types

import (
	"fmt"
)

// Schema describes the declared argument shape of a tool. Schemas are
// hand-declared at tool registration time and never derived by reflection;
// the same schema object is rendered into the reasoning-provider prompt and
// used to validate incoming arguments.
type Schema struct {
	// Type specifies the JSON type (object, array, string, number, integer, boolean)
	Type string `json:"type,omitempty"`

	// Properties defines object properties (for type: object)
	Properties map[string]*Schema `json:"properties,omitempty"`

	// Required lists required property names (for type: object)
	Required []string `json:"required,omitempty"`

	// Items defines array item schema (for type: array)
	Items *Schema `json:"items,omitempty"`

	// Description provides human-readable schema documentation
	Description string `json:"description,omitempty"`

	// Enum constrains string values to a specific set
	Enum []string `json:"enum,omitempty"`
}

// Object builds an object schema from named property schemas and a required list.
func Object(props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Properties: props, Required: required}
}

// String builds a string property schema with a description.
func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// Number builds a number property schema with a description.
func Number(description string) *Schema {
	return &Schema{Type: "number", Description: description}
}

// Integer builds an integer property schema with a description.
func Integer(description string) *Schema {
	return &Schema{Type: "integer", Description: description}
}

// Boolean builds a boolean property schema with a description.
func Boolean(description string) *Schema {
	return &Schema{Type: "boolean", Description: description}
}

// Enum builds a string property schema constrained to the given values.
func Enum(description string, values ...string) *Schema {
	return &Schema{Type: "string", Description: description, Enum: values}
}

// Validate checks the given arguments against the schema. It verifies that
// all required properties are present, that no undeclared properties are
// supplied, and that values match their declared types.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil {
		return nil
	}
	if s.Type != "object" {
		return fmt.Errorf("top-level schema must be an object, got %q", s.Type)
	}

	for _, name := range s.Required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}

	for name, value := range args {
		prop, ok := s.Properties[name]
		if !ok {
			return fmt.Errorf("unknown argument %q", name)
		}
		if err := prop.validateValue(name, value); err != nil {
			return err
		}
	}

	return nil
}

func (s *Schema) validateValue(name string, value any) error {
	if value == nil {
		return fmt.Errorf("argument %q is null", name)
	}

	switch s.Type {
	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("argument %q must be a string", name)
		}
		if len(s.Enum) > 0 {
			for _, allowed := range s.Enum {
				if str == allowed {
					return nil
				}
			}
			return fmt.Errorf("argument %q must be one of %v, got %q", name, s.Enum, str)
		}

	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
		default:
			return fmt.Errorf("argument %q must be a number", name)
		}

	case "integer":
		switch v := value.(type) {
		case int, int64:
		case float64:
			if v != float64(int64(v)) {
				return fmt.Errorf("argument %q must be an integer", name)
			}
		default:
			return fmt.Errorf("argument %q must be an integer", name)
		}

	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument %q must be a boolean", name)
		}

	case "array":
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("argument %q must be an array", name)
		}
		if s.Items != nil {
			for i, item := range items {
				if err := s.Items.validateValue(fmt.Sprintf("%s[%d]", name, i), item); err != nil {
					return err
				}
			}
		}

	case "object":
		nested, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("argument %q must be an object", name)
		}
		if err := s.Validate(nested); err != nil {
			return fmt.Errorf("argument %q: %w", name, err)
		}
	}

	return nil
}
