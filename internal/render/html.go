package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
	"github.com/yuin/goldmark"
)

const deckTemplate = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/reveal.js@4/dist/reveal.css">
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/reveal.js@4/dist/theme/{{.RevealTheme}}.css">
  <style>
    .two-col { display: flex; gap: 20px; align-items: flex-start; }
    .two-col .left { flex: 0 0 40%; text-align: left; }
    .two-col .right { flex: 0 0 60%; }
    .mermaid { font-size: 0.9rem; }
    .timestamp a { color: #aaa; font-size: 0.8rem; text-decoration: none; }
    .timestamp a:hover { text-decoration: underline; }
    .screenshot img { max-width: 100%; border-radius: 8px; box-shadow: 0 4px 10px rgba(0,0,0,0.5); margin-bottom: 20px; }
    .empty-slide { opacity: 0.5; }
  </style>
</head>
<body>
  <div class="reveal">
    <div class="slides">
{{- range .Slides}}
      <section data-chunk="{{.Index}}"{{if .Failed}} class="empty-slide"{{end}}>
        <div class="two-col">
          <div class="left">
            <h2>{{.Title}}</h2>
            {{- if .YouTube}}
            <div class="timestamp"><a href="{{.YouTube}}" target="_blank">View at {{.Clock}}</a></div>
            {{- else}}
            <div class="timestamp">{{.Clock}}</div>
            {{- end}}
            <ul>
            {{- range .Bullets}}
              <li>{{.}}</li>
            {{- end}}
            </ul>
            {{- if .Notes}}
            <aside class="notes">{{.Notes}}</aside>
            {{- end}}
          </div>
          <div class="right">
            {{- if .Screenshot}}
            <div class="screenshot"><img src="{{.Screenshot}}" alt="Slide screenshot"></div>
            {{- end}}
            {{- if .Diagram}}
            <pre class="mermaid">
{{.Diagram}}
            </pre>
            {{- else}}
            <div>No diagram</div>
            {{- end}}
          </div>
        </div>
      </section>
{{- end}}
    </div>
  </div>
  <script src="https://cdn.jsdelivr.net/npm/reveal.js@4/dist/reveal.js"></script>
  <script src="https://cdn.jsdelivr.net/npm/reveal.js@4/plugin/notes/notes.js"></script>
  <script>
    Reveal.initialize({ hash: true, plugins: [ RevealNotes ] });
  </script>
  <script type="module">
    import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs";
    mermaid.initialize({ startOnLoad: true, theme: "{{.MermaidTheme}}" });
  </script>
</body>
</html>
`

var deckTmpl = template.Must(template.New("deck").Parse(deckTemplate))

type pageData struct {
	Title        string
	RevealTheme  string
	MermaidTheme string
	Slides       []slideView
}

type slideView struct {
	Index      int
	Title      string
	Bullets    []template.HTML
	Notes      template.HTML
	Diagram    string
	Screenshot string
	YouTube    string
	Clock      string
	Failed     bool
}

func (r *implRenderer) writeHTML(deck models.SlideDeck, outDir, path string) error {
	data := pageData{
		Title:        deckTitle(deck),
		RevealTheme:  r.opts.RevealTheme,
		MermaidTheme: r.opts.MermaidTheme,
	}
	for _, s := range deck.Slides {
		data.Slides = append(data.Slides, newSlideView(s, outDir))
	}

	var buf bytes.Buffer
	if err := deckTmpl.Execute(&buf, data); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

func newSlideView(s models.SlideRecord, outDir string) slideView {
	v := slideView{
		Index:  s.ChunkIndex,
		Title:  s.Fields.Title,
		Notes:  renderMarkdown(s.Fields.Notes),
		Clock:  formatClock(s.Timestamp),
		Failed: s.Status == models.StatusFailed,
	}

	if v.Title == "" {
		if v.Failed {
			v.Title = fmt.Sprintf("Chunk %d: no slide generated", s.ChunkIndex+1)
		} else {
			v.Title = fmt.Sprintf("Part %d", s.ChunkIndex+1)
		}
	}

	for _, b := range s.Fields.Bullets {
		v.Bullets = append(v.Bullets, renderInline(b))
	}
	if s.Diagram != nil {
		v.Diagram = s.Diagram.Text
	}
	if s.Frame != nil {
		v.Screenshot = relativeTo(outDir, s.Frame.Path)
	}
	v.YouTube = youTubeLink(s.VideoID, s.Timestamp)

	return v
}

func deckTitle(deck models.SlideDeck) string {
	if deck.Title != "" {
		return deck.Title
	}
	return "Lecture " + deck.VideoID
}

// youTubeLink returns a timestamped link when videoID looks like a YouTube id.
func youTubeLink(videoID string, seconds float64) string {
	if len(videoID) != 11 {
		return ""
	}
	return fmt.Sprintf("https://youtu.be/%s?t=%d", videoID, int(seconds))
}

func formatClock(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func relativeTo(base, target string) string {
	absBase, err1 := filepath.Abs(base)
	absTarget, err2 := filepath.Abs(target)
	if err1 != nil || err2 != nil {
		return filepath.ToSlash(target)
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// renderInline renders a single line of markdown without the surrounding paragraph.
func renderInline(md string) template.HTML {
	out := strings.TrimSpace(string(renderMarkdown(md)))
	out = strings.TrimPrefix(out, "<p>")
	out = strings.TrimSuffix(out, "</p>")
	return template.HTML(out)
}
