package diagram

import (
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

type directive struct {
	line    string
	keyword string
}

// Mermaid has no timeline primitive usable inside a slide, so timelines render as flowcharts.
var directives = map[models.DiagramType]directive{
	models.DiagramMindmap:   {line: "mindmap", keyword: "mindmap"},
	models.DiagramFlowchart: {line: "flowchart TD", keyword: "flowchart"},
	models.DiagramHierarchy: {line: "graph TD", keyword: "graph"},
	models.DiagramTimeline:  {line: "flowchart TD", keyword: "flowchart"},
}

// Directive returns the canonical first line for a diagram type.
func Directive(t models.DiagramType) (string, bool) {
	d, ok := directives[t]
	return d.line, ok
}

// Normalize returns a diagram whose text starts with the directive for its type, or nil when
// the type is none or unknown or the text is blank once fences are removed.
func Normalize(t models.DiagramType, text string) *models.DiagramSpec {
	d, ok := directives[t]
	if !ok {
		return nil
	}

	body := stripFences(text)
	if body == "" {
		return nil
	}

	if strings.EqualFold(strings.Fields(body)[0], d.keyword) {
		return &models.DiagramSpec{Type: t, Text: body}
	}

	return &models.DiagramSpec{Type: t, Text: d.line + "\n  " + body}
}

// stripFences trims the text and drops a leading ```lang line and a trailing ``` marker.
func stripFences(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimLeft(s, "`")
		}
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	return strings.Trim(s, "`")
}
