package extraction

import "github.com/santhosh-tekuri/jsonschema/v5"

// fieldContractSchema is the required shape of a completion response: an
// array of column results. Out-of-range confidences pass the schema and are
// clamped afterward; structural violations are treated as malformed.
const fieldContractSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["column_id", "value", "confidence"],
		"properties": {
			"column_id": {"type": "string"},
			"value": {"type": "string"},
			"confidence": {"type": "number"}
		}
	}
}`

var fieldContract = jsonschema.MustCompileString("field-contract.json", fieldContractSchema)

func validateFieldContract(doc any) error {
	return fieldContract.Validate(doc)
}
