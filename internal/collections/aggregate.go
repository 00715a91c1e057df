package collections

import (
	"slices"

	"github.com/google/uuid"

	"github.com/docgrid/docgrid/internal/documents"
)

// Compute merges per-document extracted values for one column into a single
// aggregated value. docs is the collection's full ordered document list,
// values holds each document's value for the target column (absent means no
// value). The computation is pure and deterministic: identical inputs
// produce identical output, including timestamps, which carry the latest
// contributing extraction time rather than the aggregation time.
func Compute(
	docs []uuid.UUID,
	settings Settings,
	values map[uuid.UUID]documents.ExtractedValue,
	columnType string,
) AggregatedValue {
	visible := visibleOrder(docs, settings)
	if len(visible) == 0 {
		return emptyPlaceholder(columnType)
	}

	contributing := make([]uuid.UUID, 0, len(visible))
	for _, id := range visible {
		v, ok := values[id]
		if !ok || v.Value == "" {
			continue
		}
		contributing = append(contributing, id)
	}

	if len(contributing) == 0 {
		return emptyPlaceholder(columnType)
	}

	if len(contributing) == 1 {
		single := values[contributing[0]]
		return AggregatedValue{
			ExtractedValue:  single,
			AggregationType: AggregationSingle,
			SourceDocuments: contributing,
		}
	}

	return concatenate(contributing, values)
}

// visibleOrder computes the visible document set (documents minus hidden)
// ordered by the aggregation order, with visible documents absent from that
// order appended at the end in document list order.
func visibleOrder(docs []uuid.UUID, settings Settings) []uuid.UUID {
	hidden := make(map[uuid.UUID]bool, len(settings.HiddenDocuments))
	for _, id := range settings.HiddenDocuments {
		hidden[id] = true
	}

	member := make(map[uuid.UUID]bool, len(docs))
	for _, id := range docs {
		member[id] = true
	}

	ordered := make([]uuid.UUID, 0, len(docs))
	for _, id := range settings.AggregationOrder {
		if member[id] && !hidden[id] {
			ordered = append(ordered, id)
		}
	}

	for _, id := range docs {
		if hidden[id] || slices.Contains(ordered, id) {
			continue
		}
		ordered = append(ordered, id)
	}

	return ordered
}

func concatenate(
	contributing []uuid.UUID,
	values map[uuid.UUID]documents.ExtractedValue,
) AggregatedValue {
	first := values[contributing[0]]

	merged := documents.ExtractedValue{
		Type:        first.Type,
		Method:      first.Method,
		ExtractedAt: first.ExtractedAt,
	}

	var sum float64
	allYes := true
	anyNo := false
	hasStatus := false

	for i, id := range contributing {
		v := values[id]

		if i > 0 {
			merged.Value += concatDelimiter
		}
		merged.Value += v.Value

		sum += v.Confidence

		if v.ExtractedAt.After(merged.ExtractedAt) {
			merged.ExtractedAt = v.ExtractedAt
		}

		if v.Status != nil {
			hasStatus = true
			if *v.Status != documents.ValueYes {
				allYes = false
			}
			if *v.Status == documents.ValueNo {
				anyNo = true
			}
		} else {
			allYes = false
		}
	}

	merged.Confidence = sum / float64(len(contributing))
	merged.Status = mergedStatus(hasStatus, allYes, anyNo)

	return AggregatedValue{
		ExtractedValue:  merged,
		AggregationType: AggregationConcatenated,
		SourceDocuments: contributing,
	}
}

// mergedStatus applies the aggregation status rule: yes only when every
// contributor is yes, no when any contributor is no, otherwise pending.
func mergedStatus(hasStatus, allYes, anyNo bool) *documents.ValueStatus {
	if !hasStatus {
		return nil
	}

	status := documents.ValuePending
	if allYes {
		status = documents.ValueYes
	} else if anyNo {
		status = documents.ValueNo
	}
	return &status
}

func emptyPlaceholder(columnType string) AggregatedValue {
	return AggregatedValue{
		ExtractedValue: documents.ExtractedValue{
			Type: columnType,
		},
		AggregationType: AggregationSingle,
		SourceDocuments: []uuid.UUID{},
	}
}
