package agent

import (
	"encoding/json"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateFunc validates data against a JSON schema (bytes) and returns error on failure.
type ValidateFunc func(schema []byte, data any) error

// JSONSchemaValidator is a ValidateFunc using jsonschema/v6.
// An empty schema accepts anything.
func JSONSchemaValidator(schema []byte, data any) error {
	if len(schema) == 0 {
		return nil
	}
	c := jsonschema.NewCompiler()
	// anonymous in-memory schema from parsed JSON
	var doc any
	if err := json.Unmarshal(schema, &doc); err != nil {
		return err
	}
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return err
	}
	sch, err := c.Compile("mem://schema.json")
	if err != nil {
		return err
	}
	// Round-trip through JSON so struct-typed args validate the same as maps.
	b, _ := json.Marshal(data)
	var v any
	_ = json.Unmarshal(b, &v)
	return sch.Validate(v)
}

// CompileJSONSchema compiles the provided JSON schema and returns error only
// if the schema itself is invalid. Used at catalog assembly time to fail fast
// on a malformed tool schema.
func CompileJSONSchema(schema []byte) error {
	if len(schema) == 0 {
		return nil
	}
	c := jsonschema.NewCompiler()
	var doc any
	if err := json.Unmarshal(schema, &doc); err != nil {
		return err
	}
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return err
	}
	_, err := c.Compile("mem://schema.json")
	return err
}
