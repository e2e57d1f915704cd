package media

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// ParseCaptionsFile reads a .vtt or .srt file.
func ParseCaptionsFile(path string) ([]models.CaptionSegment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}
	return ParseCaptions(string(data)), nil
}

// ParseCaptions parses WebVTT or SRT text into cues ordered by start time.
//
//	1                                   sequence number (SRT, optional in VTT)
//	00:00:00,000 --> 00:00:01,830       start --> end
//	I'm happy to                        text lines up to the next blank line
//	have you here today.
//
// Cues with an unreadable start time are skipped.
func ParseCaptions(text string) []models.CaptionSegment {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var segments []models.CaptionSegment
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.Contains(line, "-->") {
			continue
		}

		start, ok := parseTimestamp(strings.TrimSpace(strings.SplitN(line, "-->", 2)[0]))

		var cue []string
		for i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next == "" || strings.Contains(next, "-->") {
				break
			}
			cue = append(cue, next)
			i++
		}

		if !ok {
			continue
		}
		segments = append(segments, models.CaptionSegment{
			Start: start,
			Text:  strings.Join(cue, " "),
		})
	}

	sort.SliceStable(segments, func(a, b int) bool { return segments[a].Start < segments[b].Start })
	return segments
}

// parseTimestamp reads HH:MM:SS.mmm, MM:SS.mmm or either with a comma separator.
func parseTimestamp(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, false
	}
	mins, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || mins < 0 || mins >= 60 {
		return 0, false
	}
	hours := 0
	if len(parts) == 3 {
		hours, err = strconv.Atoi(parts[0])
		if err != nil || hours < 0 {
			return 0, false
		}
	}

	return float64(hours*3600+mins*60) + secs, true
}
