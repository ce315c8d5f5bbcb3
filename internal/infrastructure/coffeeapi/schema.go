package coffeeapi

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const shopDefinition = `{
	"type": "object",
	"required": ["id", "name"],
	"properties": {
		"id": {"type": ["string", "integer"]},
		"name": {"type": "string"},
		"address": {"type": ["string", "null"]},
		"lat": {"type": ["number", "null"]},
		"lng": {"type": ["number", "null"]},
		"rating": {"type": ["number", "null"], "minimum": 0, "maximum": 5},
		"review_count": {"type": ["integer", "null"]},
		"reviews": {
			"type": ["array", "null"],
			"items": {
				"type": "object",
				"properties": {
					"user": {"type": ["string", "null"]},
					"rating": {"type": ["integer", "null"]},
					"comment": {"type": ["string", "null"]}
				}
			}
		}
	}
}`

var (
	searchSchema = mustSchema(`{
		"type": "object",
		"required": ["coffee_shops"],
		"definitions": {"shop": ` + shopDefinition + `},
		"properties": {
			"coffee_shops": {"type": "array", "items": {"$ref": "#/definitions/shop"}},
			"top_shops": {"type": ["array", "null"], "items": {"$ref": "#/definitions/shop"}},
			"all_shops_count": {"type": ["integer", "null"], "minimum": 0},
			"lat": {"type": ["number", "null"]},
			"lng": {"type": ["number", "null"]}
		}
	}`)

	detailSchema = mustSchema(shopDefinition)
)

func mustSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("coffeeapi: invalid schema: %v", err))
	}
	return schema
}

// validate checks body against schema and joins every violation into one error.
func validate(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	return fmt.Errorf("payload validation failed: %s", strings.Join(errs, "; "))
}
