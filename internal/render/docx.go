package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

const (
	fontName = "Times New Roman"
	fontSize = 13
)

var reBold = regexp.MustCompile(`\*\*(.+?)\*\*`)

// writeDocx writes a printable handout: one heading per slide, then its time, bullets,
// notes and diagram source.
func writeDocx(deck models.SlideDeck, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), deckTitle(deck), true, 16)

	for _, s := range deck.Slides {
		view := newSlideView(s, "")
		doc.AddParagraph("")
		addStyledRun(doc.AddParagraph(""), fmt.Sprintf("%d. %s", s.ChunkIndex+1, view.Title), true, 15)
		addStyledRun(doc.AddParagraph(""), "Starts at "+view.Clock, false, 11)

		for _, b := range s.Fields.Bullets {
			addRichText(doc.AddParagraph(""), "• "+b)
		}

		if notes := strings.TrimSpace(s.Fields.Notes); notes != "" {
			addStyledRun(doc.AddParagraph(""), "Notes", true, fontSize)
			for _, line := range strings.Split(notes, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					addRichText(doc.AddParagraph(""), line)
				}
			}
		}

		if s.Diagram != nil {
			addStyledRun(doc.AddParagraph(""), "Diagram ("+string(s.Diagram.Type)+")", true, fontSize)
			for _, line := range strings.Split(s.Diagram.Text, "\n") {
				doc.AddParagraph("").AddText(line).Font("Courier New").Size(10).Color("000000")
			}
		}
	}

	return doc.SaveTo(path)
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	text = cleanMarkdownInline(text)
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			clean := cleanMarkdownInline(part)
			p.AddText(clean).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			clean := cleanMarkdownInline(matches[i][1])
			p.AddText(clean).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
