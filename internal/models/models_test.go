package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDiagramType(t *testing.T) {
	tests := []struct {
		in   string
		want DiagramType
	}{
		{"mindmap", DiagramMindmap},
		{" Flowchart ", DiagramFlowchart},
		{"HIERARCHY", DiagramHierarchy},
		{"timeline", DiagramTimeline},
		{"none", DiagramNone},
		{"sequence", DiagramNone},
		{"", DiagramNone},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDiagramType(tt.in))
		})
	}
}

func TestDeckHasContent(t *testing.T) {
	empty := SlideDeck{Slides: []SlideRecord{
		{ChunkIndex: 0, Status: StatusFailed},
		{ChunkIndex: 1, Status: StatusFailed, Fields: SlideFields{Bullets: []string{"  "}}},
	}}
	assert.False(t, empty.HasContent())
	assert.Equal(t, 2, empty.Failed())

	full := SlideDeck{Slides: append(empty.Slides, SlideRecord{
		ChunkIndex: 2,
		Status:     StatusOK,
		Fields:     SlideFields{Bullets: []string{"point"}},
	})}
	assert.True(t, full.HasContent())
	assert.Equal(t, 2, full.Failed())
}
