package reportschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/rules"
)

// Validator holds the compiled input schemas. It is safe for concurrent use.
type Validator struct {
	report     *jsonschema.Schema
	violations *jsonschema.Schema
}

// NewValidator compiles the report and violation schemas. A nil catalog uses rules.Default().
func NewValidator(catalog *rules.Catalog) (*Validator, error) {
	if catalog == nil {
		catalog = rules.Default()
	}
	report, err := compile("report.json", ReportSchema())
	if err != nil {
		return nil, err
	}
	violations, err := compile("violations.json", ViolationsSchema(catalog))
	if err != nil {
		return nil, err
	}
	return &Validator{report: report, violations: violations}, nil
}

// ValidateReport checks a StructuredReport document.
func (v *Validator) ValidateReport(data []byte) error {
	return validate(v.report, data)
}

// ValidateViolations checks a JSON array of violations.
func (v *Validator) ValidateViolations(data []byte) error {
	return validate(v.violations, data)
}

func compile(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return common.NewAppError("VALIDATION_ERROR", "input is not valid JSON", errors.Join(err, common.ErrValidation))
	}
	if err := schema.Validate(v); err != nil {
		msg := err.Error()
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			msg = describe(ve)
		}
		return common.NewAppError("VALIDATION_ERROR", msg, errors.Join(err, common.ErrValidation))
	}
	return nil
}

// describe reports the deepest failing location, which is the useful one for callers.
func describe(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, ve.Message)
}
