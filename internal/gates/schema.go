package gates

import (
	"fmt"
	"strings"

	"github.com/ovachev/planproof/internal/model"
	"github.com/xeipuuv/gojsonschema"
)

// scheduleSchema is the canonical structural contract for a schedule.
// Additional properties stay allowed everywhere so validation metadata
// attached mid-pipeline survives the final structural check.
const scheduleSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "origin", "confidence"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string"},
          "origin": {"enum": ["explicit", "inferred"]},
          "confidence": {"type": "number", "minimum": 0, "maximum": 1},
          "duration": {"$ref": "#/definitions/fieldClaim"},
          "start_date": {"$ref": "#/definitions/fieldClaim"},
          "dependencies": {
            "type": "object",
            "required": ["task_ids", "origin", "confidence"],
            "properties": {
              "task_ids": {"type": "array", "items": {"type": "string"}},
              "origin": {"enum": ["explicit", "inferred"]},
              "confidence": {"type": "number", "minimum": 0, "maximum": 1}
            }
          },
          "regulatory_requirement": {
            "type": "object",
            "required": ["is_required", "origin", "confidence"],
            "properties": {
              "is_required": {"type": "boolean"},
              "regulation": {"type": "string"},
              "origin": {"enum": ["explicit", "inferred"]},
              "confidence": {"type": "number", "minimum": 0, "maximum": 1}
            }
          }
        }
      }
    }
  },
  "definitions": {
    "fieldClaim": {
      "type": "object",
      "required": ["value", "origin", "confidence"],
      "properties": {
        "value": {"type": "string"},
        "origin": {"enum": ["explicit", "inferred"]},
        "confidence": {"type": "number", "minimum": 0, "maximum": 1}
      }
    }
  }
}`

// SchemaComplianceGate re-validates the schedule against the canonical
// schema. It never returns an error: marshal or schema problems come
// back as a failed outcome with detail.
type SchemaComplianceGate struct{}

// NewSchemaComplianceGate creates the gate
func NewSchemaComplianceGate() *SchemaComplianceGate {
	return &SchemaComplianceGate{}
}

// Name returns the gate identifier
func (g *SchemaComplianceGate) Name() string { return model.GateSchemaCompliance }

// Blocking reports that structural violations block the schedule
func (g *SchemaComplianceGate) Blocking() bool { return true }

// Evaluate validates the schedule structure
func (g *SchemaComplianceGate) Evaluate(schedule *model.Schedule, _ *model.LedgerSnapshot) Outcome {
	errs := ValidateStructure(schedule)
	if len(errs) == 0 {
		return Outcome{Passed: true, Detail: "schema valid"}
	}
	return Outcome{
		Passed: false,
		Score:  float64(len(errs)),
		Detail: fmt.Sprintf("%d schema violations: %s", len(errs), strings.Join(errs, "; ")),
	}
}

// ValidateStructure checks a schedule against the canonical schema and
// returns the violation messages, empty when the schedule conforms.
// The schedule is validated through its Go representation, not a lossy
// re-parse, so unknown-to-schema metadata fields are preserved and
// tolerated.
func ValidateStructure(schedule *model.Schedule) []string {
	schemaLoader := gojsonschema.NewStringLoader(scheduleSchema)
	documentLoader := gojsonschema.NewGoLoader(schedule)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return []string{fmt.Sprintf("schema validation error: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs
}
