// Package decode extracts JSON payloads from free-form model replies.
//
// Model output is untrusted text. Decode tries, in order: fenced code block
// extraction, splitting concatenated arrays, a strict parse, and a parse after
// undoing one level of over-escaping. A sub-document that survives none of
// these becomes a Failure unit instead of an error, so one bad document never
// hides the others.
package decode

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

const (
	// FailureMessage is the error text of a Failure unit.
	FailureMessage = "Failed to parse AI response after multiple attempts"
	// FailureSuggestion is the remediation hint of a Failure unit.
	FailureSuggestion = "Ensure AI returns valid JSON or adjust prompt formatting."
)

// fencedBlock matches the first ``` or ```json fenced block.
var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// Failure stands in for a document that could not be parsed.
type Failure struct {
	Error      string `json:"error"`
	Raw        string `json:"raw"`
	Suggestion string `json:"suggestion"`
}

// Unit is one decoded element: either a JSON value or a Failure.
type Unit struct {
	Value   json.RawMessage
	Failure *Failure
}

// IsFailure reports whether the unit records a parse failure.
func (u Unit) IsFailure() bool {
	return u.Failure != nil
}

// MarshalJSON renders the value verbatim, or the failure record.
func (u Unit) MarshalJSON() ([]byte, error) {
	if u.Failure != nil {
		return json.Marshal(u.Failure)
	}
	if len(u.Value) == 0 {
		return []byte("null"), nil
	}
	return u.Value, nil
}

// UnmarshalJSON stores the document as a value. Failure records read back
// from the wire stay plain values.
func (u *Unit) UnmarshalJSON(data []byte) error {
	u.Value = append(json.RawMessage(nil), data...)
	u.Failure = nil
	return nil
}

// Decode turns a raw reply into units. Arrays are flattened into one unit per
// element; any other JSON value is a single unit. The result is never empty
// for non-empty input: an unparseable reply yields exactly one Failure.
func Decode(text string) []Unit {
	var units []Unit
	for _, doc := range SplitDocuments(ExtractFenced(text)) {
		units = append(units, decodeDocument(doc)...)
	}
	return units
}

// ExtractFenced returns the interior of the first fenced code block, or the
// trimmed text when there is none.
func ExtractFenced(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// SplitDocuments splits text before every newline that is immediately
// followed by '['. The newline itself is dropped. Models routinely emit
// several arrays back to back; each part is decoded on its own.
func SplitDocuments(text string) []string {
	var parts []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\n' && text[i+1] == '[' {
			parts = append(parts, text[start:i])
			start = i + 1
		}
	}
	return append(parts, text[start:])
}

// Unescape undoes one level of over-escaping: \" becomes " and literal \n
// sequences are removed.
func Unescape(text string) string {
	text = strings.ReplaceAll(text, `\"`, `"`)
	return strings.ReplaceAll(text, `\n`, "")
}

func decodeDocument(doc string) []Unit {
	if units, ok := parse(strings.TrimSpace(doc)); ok {
		return units
	}
	if units, ok := parse(strings.TrimSpace(Unescape(doc))); ok {
		return units
	}
	return []Unit{{Failure: &Failure{
		Error:      FailureMessage,
		Raw:        doc,
		Suggestion: FailureSuggestion,
	}}}
}

func parse(doc string) ([]Unit, bool) {
	data := []byte(doc)
	if !json.Valid(data) {
		return nil, false
	}
	if bytes.HasPrefix(data, []byte("[")) {
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil, false
		}
		units := make([]Unit, 0, len(elems))
		for _, e := range elems {
			units = append(units, Unit{Value: e})
		}
		return units, true
	}
	return []Unit{{Value: json.RawMessage(data)}}, true
}
