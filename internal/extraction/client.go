package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/pkg/formatting"
)

// Completer issues one completion call against the AI service. Implemented
// by the agent adapter in production and faked in tests.
type Completer interface {
	Chat(ctx context.Context, prompt string) (string, error)
	Vision(ctx context.Context, prompt string, images []string) (string, error)
}

// Column is the per-field request payload sent to the completion service.
type Column struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Prompt string    `json:"prompt"`
	Type   string    `json:"type"`
}

// FieldResult is one column's extracted value with its clamped confidence.
type FieldResult struct {
	ColumnID   uuid.UUID `json:"column_id"`
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
}

// Result is the outcome of one batched extraction call. Malformed marks a
// response that returned but did not parse; its fields are all zeroed and
// the document still completes.
type Result struct {
	Fields    []FieldResult `json:"fields"`
	Malformed bool          `json:"malformed"`
	Truncated bool          `json:"truncated"`
}

// Provenance method and version markers stamped onto extracted values.
const (
	MethodAI = "ai"

	VersionText       = "text-v1"
	VersionVision     = "vision-v1"
	VersionBestEffort = "vision-best-effort-v1"
)

// ProvenanceVersion maps a routed content kind to the version marker its
// results carry. Unknown-kind documents ride the vision path best-effort and
// get a distinct marker so downstream confidence interpretation can differ.
func ProvenanceVersion(kind ContentKind) string {
	switch kind {
	case KindPDF:
		return VersionText
	case KindImage:
		return VersionVision
	default:
		return VersionBestEffort
	}
}

const truncationMarker = "\n\n[document text truncated at extraction budget]"

// Client issues one batched field-extraction completion per processing
// attempt: all enabled columns, one call.
type Client struct {
	completer    Completer
	maxTextChars int
	logger       *slog.Logger
}

// NewClient creates a field-extraction client over the given completer.
func NewClient(completer Completer, maxTextChars int, logger *slog.Logger) *Client {
	return &Client{
		completer:    completer,
		maxTextChars: maxTextChars,
		logger:       logger.With("system", "extraction"),
	}
}

// ExtractFromText requests values for every column against the document's
// raw text. Text beyond the character budget is cut with an explicit
// truncation marker. Only a transport failure returns an error; a response
// that fails to parse yields zeroed fields with Malformed set.
func (c *Client) ExtractFromText(ctx context.Context, text string, cols []Column) (*Result, error) {
	text, truncated := c.truncate(text)

	prompt := composeTextPrompt(text, cols)

	content, err := c.completer.Chat(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	result := c.parseResponse(ctx, content, cols)
	result.Truncated = truncated
	return result, nil
}

// ExtractFromImage requests values for every column against the document's
// visual content, passed as a data URI.
func (c *Client) ExtractFromImage(ctx context.Context, dataURI string, cols []Column) (*Result, error) {
	prompt := composeVisionPrompt(cols)

	content, err := c.completer.Vision(ctx, prompt, []string{dataURI})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, err)
	}

	return c.parseResponse(ctx, content, cols), nil
}

func (c *Client) truncate(text string) (string, bool) {
	if c.maxTextChars <= 0 || len(text) <= c.maxTextChars {
		return text, false
	}
	return text[:c.maxTextChars] + truncationMarker, true
}

type fieldEntry struct {
	ColumnID   string  `json:"column_id"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// parseResponse maps the completion content onto the requested columns.
// Results come back in request order, one per column: matched entries are
// clamped into [0,1], absent columns become empty zero-confidence values,
// and an unparseable response zeroes every column without erroring.
func (c *Client) parseResponse(ctx context.Context, content string, cols []Column) *Result {
	entries, err := parseEntries(content)
	if err != nil {
		c.logger.WarnContext(ctx, "completion response malformed",
			"error", err,
			"columns", len(cols),
		)
		return &Result{Fields: zeroFields(cols), Malformed: true}
	}

	byID := make(map[string]fieldEntry, len(entries))
	for _, e := range entries {
		byID[strings.TrimSpace(e.ColumnID)] = e
	}

	fields := make([]FieldResult, len(cols))
	for i, col := range cols {
		fields[i] = FieldResult{ColumnID: col.ID}

		e, ok := byID[col.ID.String()]
		if !ok {
			continue
		}

		fields[i].Value = e.Value
		fields[i].Confidence = clampConfidence(e.Confidence)
	}

	return &Result{Fields: fields}
}

func parseEntries(content string) ([]fieldEntry, error) {
	raw, err := formatting.Parse[json.RawMessage](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	if err := validateFieldContract(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	var entries []fieldEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return entries, nil
}

func zeroFields(cols []Column) []FieldResult {
	fields := make([]FieldResult, len(cols))
	for i, col := range cols {
		fields[i] = FieldResult{ColumnID: col.ID}
	}
	return fields
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func composeTextPrompt(text string, cols []Column) string {
	var sb strings.Builder
	sb.WriteString("Extract a value for each field below from the document text.\n\n")
	writeFieldList(&sb, cols)
	writeContract(&sb)
	sb.WriteString("\nDocument text:\n")
	sb.WriteString(text)
	return sb.String()
}

func composeVisionPrompt(cols []Column) string {
	var sb strings.Builder
	sb.WriteString("Extract a value for each field below from the attached document image.\n\n")
	writeFieldList(&sb, cols)
	writeContract(&sb)
	return sb.String()
}

func writeFieldList(sb *strings.Builder, cols []Column) {
	sb.WriteString("Fields:\n")
	for _, col := range cols {
		fmt.Fprintf(sb, "- column_id: %s | name: %s | type: %s\n  instruction: %s\n",
			col.ID, col.Name, col.Type, col.Prompt)
	}
}

func writeContract(sb *strings.Builder) {
	sb.WriteString(`
Respond with only a JSON array, one entry per field:
[{"column_id": "<column_id>", "value": "<extracted value>", "confidence": <number between 0 and 1>}]
Use an empty value with confidence 0 for any field that cannot be determined.
`)
}
