package annotation

import (
	"encoding/json"
	"log/slog"
)

// Records navigates one result document under the given variant and decodes
// its raw annotation list in source order.
//
// A short or null payload is a legitimate zero-annotation item, not an
// error. A present payload missing the variant's annotation key is reported
// as a warning because it usually means the wrong variant was configured.
func Records(doc *ResultDocument, variant Variant) []Record {
	if doc == nil || len(doc.Results) <= variant.ResultIndex {
		return nil
	}

	var payload []json.RawMessage
	if err := json.Unmarshal(doc.Results[variant.ResultIndex], &payload); err != nil {
		return nil
	}
	if len(payload) == 0 || string(payload[0]) == "null" {
		return nil
	}

	var cell map[string]json.RawMessage
	if err := json.Unmarshal(payload[0], &cell); err != nil {
		return nil
	}

	rawList, ok := cell[variant.AnnotationKey]
	if !ok {
		slog.Warn("annotation key not found in result payload",
			"key", variant.AnnotationKey)
		return nil
	}

	var records []Record
	if err := json.Unmarshal(rawList, &records); err != nil {
		slog.Warn("annotation list is malformed", "key", variant.AnnotationKey, "err", err)
		return nil
	}

	return records
}

// Extract yields the canonical annotations of one result document, in
// source order. Records without usable geometry are dropped; the caller
// derives z_order from the returned slice positions, so dropped records
// never leave gaps.
func Extract(doc *ResultDocument, variant Variant) []Canonical {
	var annotations []Canonical
	records := Records(doc, variant)
	for i := range records {
		points := NormalizePoints(&records[i])
		if len(points) == 0 {
			continue
		}

		label, text := NormalizeText(records[i].Text(variant.TextKey))
		annotations = append(annotations, Canonical{
			Points: points,
			Label:  label,
			Text:   text,
		})
	}

	return annotations
}
