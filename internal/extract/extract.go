package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

var (
	// ErrNoObject is returned when no JSON object can be recovered from the text.
	ErrNoObject = errors.New("no JSON object found")
	// ErrNoSchemaKeys is returned when an object was recovered but carries none of the slide keys.
	ErrNoSchemaKeys = errors.New("object has no slide fields")
)

var (
	reFencedBlock   = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n?(.*?)```")
	reFenceMarker   = regexp.MustCompile("```[A-Za-z0-9_-]*")
	reTrailingComma = regexp.MustCompile(`,\s*([\]}])`)
)

var schemaKeys = []string{"title", "bullets", "notes", "diagram_type", "diagram_text", "mermaid"}

// ParseObject recovers a JSON object from noisy model output. Strategies run in order and
// the first one that yields an object wins:
//
//  1. the whole text
//  2. the first fenced block
//  3. the text with every fence marker removed
//  4. the span from the first '{' to the last '}'
//  5. that span with commas before closing brackets removed
func ParseObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoObject
	}

	if obj, ok := decode(text); ok {
		return obj, nil
	}

	if strings.Contains(text, "```") {
		if m := reFencedBlock.FindStringSubmatch(text); m != nil {
			if obj, ok := decode(m[1]); ok {
				return obj, nil
			}
		}
	}

	stripped := strings.TrimSpace(reFenceMarker.ReplaceAllString(text, ""))
	if obj, ok := decode(stripped); ok {
		return obj, nil
	}

	candidate := stripped
	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start >= 0 && end > start {
		candidate = stripped[start : end+1]
		if obj, ok := decode(candidate); ok {
			return obj, nil
		}
	}

	if obj, ok := decode(reTrailingComma.ReplaceAllString(candidate, "$1")); ok {
		return obj, nil
	}

	return nil, ErrNoObject
}

// Fields recovers SlideFields from model output. Missing keys get empty defaults,
// unknown diagram types become none, and diagram text is cleared when the type is none.
// The legacy "mermaid" key is read when "diagram_text" is absent.
func Fields(text string) (models.SlideFields, error) {
	obj, err := ParseObject(text)
	if err != nil {
		return models.SlideFields{}, err
	}

	if !hasSchemaKey(obj) {
		return models.SlideFields{}, ErrNoSchemaKeys
	}

	f := models.SlideFields{
		Title:       asString(obj["title"]),
		Bullets:     asStrings(obj["bullets"]),
		Notes:       asString(obj["notes"]),
		DiagramType: models.ParseDiagramType(asString(obj["diagram_type"])),
	}

	if v, ok := obj["diagram_text"]; ok && v != nil {
		f.DiagramText = asString(v)
	} else {
		f.DiagramText = asString(obj["mermaid"])
	}

	if f.DiagramType == models.DiagramNone {
		f.DiagramText = ""
	}

	return f, nil
}

func decode(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

func hasSchemaKey(obj map[string]any) bool {
	for _, k := range schemaKeys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func asStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, line := range strings.Split(t, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
			if line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}
