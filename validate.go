package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	tagType    = "type"
	tagUnique  = "unique"
	tagNodeRef = "noderef"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so clients can map errors back to the payload.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Decode parses a JSON request body and validates its structure.
// A body that is not JSON yields ErrMalformedBody; a field of the wrong type
// or a missing required field yields ValidationErrors.
func Decode(body []byte) (*Pipeline, error) {
	var p Pipeline
	if err := json.Unmarshal(body, &p); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ValidationErrors{{
				Field:   typeErr.Field,
				Tag:     tagType,
				Message: "expected " + jsonKind(typeErr.Type) + ", got " + typeErr.Value,
			}}
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	for i := range p.Nodes {
		if p.Nodes[i].Data == nil {
			p.Nodes[i].Data = map[string]any{}
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that every required field is present and non-empty.
func (p *Pipeline) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("pipeline: validate: %w", err)
	}

	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

// CheckReferences rejects duplicate node ids and edges whose source or target
// names no declared node. Analyze tolerates both; this is the strict policy.
func (p *Pipeline) CheckReferences() error {
	var out ValidationErrors

	seen := make(map[string]bool, len(p.Nodes))
	for i, n := range p.Nodes {
		if seen[n.ID] {
			out = append(out, FieldError{
				Field:   fmt.Sprintf("nodes[%d].id", i),
				Tag:     tagUnique,
				Message: fmt.Sprintf("duplicate node id %q", n.ID),
			})
			continue
		}
		seen[n.ID] = true
	}

	for i, e := range p.Edges {
		if !seen[e.Source] {
			out = append(out, FieldError{
				Field:   fmt.Sprintf("edges[%d].source", i),
				Tag:     tagNodeRef,
				Message: fmt.Sprintf("unknown node %q", e.Source),
			})
		}
		if !seen[e.Target] {
			out = append(out, FieldError{
				Field:   fmt.Sprintf("edges[%d].target", i),
				Tag:     tagNodeRef,
				Message: fmt.Sprintf("unknown node %q", e.Target),
			})
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// fieldPath drops the root struct name: "Pipeline.nodes[0].id" -> "nodes[0].id".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	case reflect.Bool:
		return "boolean"
	case reflect.Pointer:
		return jsonKind(t.Elem()) + " or null"
	default:
		return t.Kind().String()
	}
}
