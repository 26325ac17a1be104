package analyses

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const resultSchemaName = "analysis_result.schema.json"

//go:embed schema/analysis_result.schema.json
var resultSchemaJSON []byte

var (
	resultSchemaOnce sync.Once
	resultSchema     *jsonschema.Schema
	resultSchemaErr  error
)

func compiledResultSchema() (*jsonschema.Schema, error) {
	resultSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(resultSchemaName, bytes.NewReader(resultSchemaJSON)); err != nil {
			resultSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		resultSchema, resultSchemaErr = compiler.Compile(resultSchemaName)
		if resultSchemaErr != nil {
			resultSchemaErr = fmt.Errorf("compile schema: %w", resultSchemaErr)
		}
	})
	return resultSchema, resultSchemaErr
}

// ValidateRecord checks a full record against the stored-analysis JSON Schema.
func ValidateRecord(r AnalysisResult) error {
	schema, err := compiledResultSchema()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		path := ""
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			path = leafLocation(verr)
		}
		return &ValidationError{Path: path, Reason: "record does not match schema: " + err.Error()}
	}
	return nil
}

// leafLocation follows the first cause chain down to the most specific failure.
func leafLocation(verr *jsonschema.ValidationError) string {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	return verr.InstanceLocation
}
