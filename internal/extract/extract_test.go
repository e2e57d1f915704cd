package extract

import (
	"testing"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"direct", `{"title":"T"}`, map[string]any{"title": "T"}},
		{"json fence", "```json\n{\"title\":\"T\"}\n```", map[string]any{"title": "T"}},
		{"bare fence with prose", "Here you go:\n```\n{\"title\":\"T\"}\n```\nEnjoy", map[string]any{"title": "T"}},
		{"trailing commas", `{"a":[1,2,],}`, map[string]any{"a": []any{float64(1), float64(2)}}},
		{"surrounding prose", `Sure! {"title":"T","notes":"n"} hope this helps`, map[string]any{"title": "T", "notes": "n"}},
		{"broken first fence then stripped", "```json\n{\"title\":\"T\",}\n```", map[string]any{"title": "T"}},
		{"unterminated fence", "```json\n{\"title\":\"T\"}", map[string]any{"title": "T"}},
		{"nested braces", `x {"title":"T","meta":{"k":"v"}} y`, map[string]any{"title": "T", "meta": map[string]any{"k": "v"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObject(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseObjectFailures(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"whitespace", "  \n "},
		{"no braces", "I cannot produce a slide for this."},
		{"braces reversed", "} nothing {"},
		{"array only", `[1,2,3]`},
		{"unrepairable", `{"title": "T" "notes": }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseObject(tt.in)
			assert.ErrorIs(t, err, ErrNoObject)
			assert.Nil(t, got)
		})
	}
}

func TestFields(t *testing.T) {
	t.Run("full object", func(t *testing.T) {
		f, err := Fields(`{"title":" Intro ","bullets":["a"," b "],"notes":"n","diagram_type":"Mindmap","diagram_text":"mindmap\n  root"}`)
		require.NoError(t, err)
		assert.Equal(t, models.SlideFields{
			Title:       "Intro",
			Bullets:     []string{"a", "b"},
			Notes:       "n",
			DiagramType: models.DiagramMindmap,
			DiagramText: "mindmap\n  root",
		}, f)
	})

	t.Run("missing fields default", func(t *testing.T) {
		f, err := Fields(`{"title":"T"}`)
		require.NoError(t, err)
		assert.Equal(t, "T", f.Title)
		assert.Equal(t, []string{}, f.Bullets)
		assert.Empty(t, f.Notes)
		assert.Equal(t, models.DiagramNone, f.DiagramType)
		assert.Empty(t, f.DiagramText)
	})

	t.Run("unknown diagram type coerced to none", func(t *testing.T) {
		f, err := Fields(`{"title":"T","diagram_type":"sequence","diagram_text":"A->B"}`)
		require.NoError(t, err)
		assert.Equal(t, models.DiagramNone, f.DiagramType)
		assert.Empty(t, f.DiagramText)
	})

	t.Run("legacy mermaid key", func(t *testing.T) {
		f, err := Fields(`{"title":"T","diagram_type":"flowchart","mermaid":"A-->B"}`)
		require.NoError(t, err)
		assert.Equal(t, "A-->B", f.DiagramText)
	})

	t.Run("bullets as a string", func(t *testing.T) {
		f, err := Fields(`{"bullets":"- one\n- two"}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two"}, f.Bullets)
	})

	t.Run("no schema keys", func(t *testing.T) {
		_, err := Fields(`{"a":[1,2,],}`)
		assert.ErrorIs(t, err, ErrNoSchemaKeys)
	})

	t.Run("no object", func(t *testing.T) {
		_, err := Fields("nothing here")
		assert.ErrorIs(t, err, ErrNoObject)
	})
}
