package models

import "strings"

// DiagramType is the diagram family requested for a slide.
type DiagramType string

const (
	DiagramNone      DiagramType = "none"
	DiagramMindmap   DiagramType = "mindmap"
	DiagramFlowchart DiagramType = "flowchart"
	DiagramHierarchy DiagramType = "hierarchy"
	DiagramTimeline  DiagramType = "timeline"
)

// ParseDiagramType maps free text to a known DiagramType. Unknown values become DiagramNone.
func ParseDiagramType(s string) DiagramType {
	switch t := DiagramType(strings.ToLower(strings.TrimSpace(s))); t {
	case DiagramMindmap, DiagramFlowchart, DiagramHierarchy, DiagramTimeline:
		return t
	default:
		return DiagramNone
	}
}

// TranscriptChunk is a contiguous span of transcript words.
type TranscriptChunk struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	VideoID string `json:"video_id"`
}

// SlideFields is the structured object recovered from a generation attempt.
type SlideFields struct {
	Title       string      `json:"title"`
	Bullets     []string    `json:"bullets"`
	Notes       string      `json:"notes"`
	DiagramType DiagramType `json:"diagram_type"`
	DiagramText string      `json:"diagram_text"`
}

// Empty reports whether none of the textual fields carry content.
func (f SlideFields) Empty() bool {
	if strings.TrimSpace(f.Title) != "" || strings.TrimSpace(f.Notes) != "" || strings.TrimSpace(f.DiagramText) != "" {
		return false
	}
	for _, b := range f.Bullets {
		if strings.TrimSpace(b) != "" {
			return false
		}
	}
	return true
}

// DiagramSpec is a diagram whose text starts with its directive token.
type DiagramSpec struct {
	Type DiagramType `json:"type"`
	Text string      `json:"text"`
}

// CaptionSegment is one timed caption cue.
type CaptionSegment struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

// FrameSample is a captured still image and its capture time.
type FrameSample struct {
	Time float64 `json:"time"`
	Path string  `json:"path"`
}

// ChunkStatus is the synthesis outcome for one chunk.
type ChunkStatus string

const (
	StatusOK     ChunkStatus = "ok"
	StatusFailed ChunkStatus = "failed"
)

// SlideRecord is one slide derived from one chunk.
type SlideRecord struct {
	ChunkIndex int          `json:"chunk_index"`
	VideoID    string       `json:"video_id"`
	Fields     SlideFields  `json:"fields"`
	Diagram    *DiagramSpec `json:"diagram,omitempty"`
	Timestamp  float64      `json:"timestamp"`
	Frame      *FrameSample `json:"frame,omitempty"`
	Status     ChunkStatus  `json:"status"`
	Model      string       `json:"model,omitempty"`
}

// SlideDeck is the ordered slide sequence for one video.
type SlideDeck struct {
	VideoID string        `json:"video_id"`
	Title   string        `json:"title"`
	Slides  []SlideRecord `json:"slides"`
}

// HasContent reports whether at least one slide carries non-empty fields.
func (d SlideDeck) HasContent() bool {
	for _, s := range d.Slides {
		if !s.Fields.Empty() {
			return true
		}
	}
	return false
}

// Failed counts slides whose synthesis failed.
func (d SlideDeck) Failed() int {
	n := 0
	for _, s := range d.Slides {
		if s.Status == StatusFailed {
			n++
		}
	}
	return n
}
