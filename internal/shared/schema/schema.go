// Package schema validates imported configuration documents against embedded
// JSON schemas before they are committed, instead of accepting any non-null
// object.
package schema

import (
	_ "embed"
	"encoding/json"
	"strings"

	"warmap-server/internal/shared/errors"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed alliance_config.schema.json
var allianceConfigSource string

//go:embed rewards_config.schema.json
var rewardsConfigSource string

//go:embed buildings.schema.json
var buildingsSource string

var (
	AllianceConfig = mustCompile("alliance_config.schema.json", allianceConfigSource)
	RewardsConfig  = mustCompile("rewards_config.schema.json", rewardsConfigSource)
	Buildings      = mustCompile("buildings.schema.json", buildingsSource)
)

func mustCompile(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		panic(err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(err)
	}
	return schema
}

// Validate checks a raw JSON document against the given schema. Both parse
// failures and structural mismatches come back as validation errors so the
// caller can abort the import with no partial state change.
func Validate(s *jsonschema.Schema, doc []byte) error {
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return errors.WrapValidation("imported document is not valid JSON", err)
	}
	if err := s.Validate(v); err != nil {
		return errors.WrapValidation("imported document does not match the expected shape", err)
	}
	return nil
}
