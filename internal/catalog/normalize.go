package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// unknownName marks placeholder records in the source data.
const unknownName = "Unknown"

const recordSchemaURL = "balltd://catalog/record.schema.json"

const recordSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "value_min": {"$ref": "#/definitions/value"},
    "value_max": {"$ref": "#/definitions/value"},
    "demand": {"type": ["string", "null"]},
    "status": {"type": ["string", "null"]},
    "image": {"type": ["string", "null"]}
  },
  "definitions": {
    "value": {
      "oneOf": [
        {"type": "number", "minimum": 0},
        {"type": "string"},
        {"type": "null"}
      ]
    }
  }
}`

var (
	errPlaceholderName = errors.New("placeholder name")
	nonAlphanumeric    = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// rawRecord is the on-disk shape of a catalog entry.
type rawRecord struct {
	Name     string `json:"name"`
	ValueMin Value  `json:"value_min"`
	ValueMax Value  `json:"value_max"`
	Demand   string `json:"demand"`
	Status   string `json:"status"`
	Image    string `json:"image"`
}

// compileRecordSchema compiles the record schema used on ingestion.
func compileRecordSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(recordSchemaURL, strings.NewReader(recordSchema)); err != nil {
		return nil, fmt.Errorf("add record schema: %w", err)
	}
	s, err := c.Compile(recordSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return s, nil
}

// normalizeRecord validates one raw JSON record and converts it into an Item.
func normalizeRecord(schema *jsonschema.Schema, category Category, raw json.RawMessage) (Item, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Item{}, fmt.Errorf("decode record: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Item{}, fmt.Errorf("validate record: %w", err)
	}

	var rec rawRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Item{}, fmt.Errorf("coerce record: %w", err)
	}
	if rec.Name == unknownName {
		return Item{}, errPlaceholderName
	}

	return Item{
		ID:       ItemID(category, rec.Name),
		Name:     rec.Name,
		Category: category,
		ValueMin: rec.ValueMin,
		ValueMax: rec.ValueMax,
		ValueAvg: AverageValue(rec.ValueMin, rec.ValueMax),
		Demand:   firstToken(rec.Demand),
		Status:   firstToken(rec.Status),
		Image:    rec.Image,
	}, nil
}

// ItemID builds the catalog id for a name within a category.
func ItemID(category Category, name string) string {
	slug := strings.ToLower(nonAlphanumeric.ReplaceAllString(name, ""))
	return string(category) + "-" + slug
}

// firstToken keeps only the first whitespace-delimited word of a tag.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
