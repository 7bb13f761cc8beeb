package annotation

import "strings"

// Labels assigned by transcription classification.
const (
	LabelText  = "text"
	LabelEmpty = "empty"
)

// NormalizeText strips every space from the transcription and classifies
// the record. Transcriptions carry no internal spaces in canonical form, so
// all spaces are removed, not just the ends.
//
// Two classification rules shipped historically: the first treated exactly
// the literal "empty" as empty, the later tier-aware one also treats values
// that are blank after trimming as empty. This follows the later rule; the
// divergence is pinned down in the tests.
func NormalizeText(raw string) (label, text string) {
	stripped := strings.ReplaceAll(raw, " ", "")

	if strings.TrimSpace(stripped) == "" || stripped == LabelEmpty {
		return LabelEmpty, ""
	}

	return LabelText, stripped
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes the five reserved characters for embedding in element
// text or attribute values.
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
