package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/payment-verifier/internal/common"
)

// FieldError is one entry of a 422 response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationFailure is returned when a request body does not match its schema.
type ValidationFailure struct {
	Details []FieldError
	Cause   error
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("request validation failed: %v", e.Cause)
}

func (e *ValidationFailure) Unwrap() error { return common.ErrValidation }

func stringProp(minLength int) map[string]any {
	p := map[string]any{"type": "string"}
	if minLength > 0 {
		p["minLength"] = minLength
	}
	return p
}

func objectSchema(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

var (
	telebirrRequestSchema = mustCompile("telebirr_request.json", objectSchema(
		[]string{"transaction_id"},
		map[string]any{"transaction_id": stringProp(1)},
	))
	boaRequestSchema = mustCompile("boa_request.json", objectSchema(
		[]string{"transaction_id", "sender_account"},
		map[string]any{"transaction_id": stringProp(1), "sender_account": stringProp(0)},
	))
	cbeRequestSchema = mustCompile("cbe_request.json", objectSchema(
		[]string{"transaction_id", "account_number"},
		map[string]any{"transaction_id": stringProp(1), "account_number": stringProp(0)},
	))
)

func mustCompile(name string, schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(string(b))); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// decodeAndValidate checks raw against schema, then decodes it into out.
func decodeAndValidate(schema *jsonschema.Schema, raw []byte, out any) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationFailure{
			Details: []FieldError{{Field: "body", Message: "body is not valid JSON", Type: "json_invalid"}},
			Cause:   err,
		}
	}
	if err := schema.Validate(doc); err != nil {
		return &ValidationFailure{Details: fieldErrors(err), Cause: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ValidationFailure{
			Details: []FieldError{{Field: "body", Message: err.Error(), Type: "json_invalid"}},
			Cause:   err,
		}
	}
	return nil
}

var reQuoted = regexp.MustCompile(`'([^']+)'`)

// fieldErrors flattens a schema validation error into its leaf causes.
func fieldErrors(err error) []FieldError {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "body", Message: err.Error(), Type: "value_error"}}
	}
	var out []FieldError
	var walk func(v *jsonschema.ValidationError)
	walk = func(v *jsonschema.ValidationError) {
		if len(v.Causes) > 0 {
			for _, c := range v.Causes {
				walk(c)
			}
			return
		}
		kind := v.KeywordLocation[strings.LastIndex(v.KeywordLocation, "/")+1:]
		field := strings.TrimPrefix(v.InstanceLocation, "/")
		if kind == "required" {
			for _, m := range reQuoted.FindAllStringSubmatch(v.Message, -1) {
				out = append(out, FieldError{Field: joinField(field, m[1]), Message: "field required", Type: "missing"})
			}
			return
		}
		if field == "" {
			field = "body"
		}
		out = append(out, FieldError{Field: field, Message: v.Message, Type: kind})
	}
	walk(ve)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func joinField(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}
