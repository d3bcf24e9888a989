package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "invoice.schema.json"

// invoiceSchema is the contract sanitized model output must satisfy.
const invoiceSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["line_items"],
  "properties": {
    "invoice_number": {"type": "string"},
    "store_name": {"type": "string"},
    "invoice_date": {"type": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
    "total_amount": {"$ref": "#/definitions/money"},
    "tax_amount": {"$ref": "#/definitions/money"},
    "discount_amount": {"$ref": "#/definitions/money"},
    "final_price": {"$ref": "#/definitions/money"},
    "category": {"type": "string"},
    "promotion_mechanism": {"type": "string"},
    "original_text": {"type": "string"},
    "line_items": {
      "type": "array",
      "items": {"$ref": "#/definitions/line_item"}
    }
  },
  "definitions": {
    "money": {"type": "string", "pattern": "^-?\\d+(\\.\\d+)?$"},
    "line_item": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "description": {"type": "string"},
        "product_name": {"type": "string"},
        "product_id": {"type": "string"},
        "quantity": {"$ref": "#/definitions/money"},
        "unit_price": {"$ref": "#/definitions/money"},
        "amount": {"$ref": "#/definitions/money"},
        "discount": {"$ref": "#/definitions/money"},
        "net_price": {"$ref": "#/definitions/money"},
        "promotion_price": {"$ref": "#/definitions/money"}
      }
    }
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(schemaURL, strings.NewReader(invoiceSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validateAgainst(schema *jsonschema.Schema, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
