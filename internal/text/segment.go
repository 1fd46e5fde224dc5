package text

import (
	"regexp"
	"strings"
)

var sentenceTerminator = regexp.MustCompile(`[.!?]+`)

// Segment splits text on runs of sentence-terminal punctuation and returns
// the trimmed, non-empty pieces in their original order.
func Segment(text string) []string {
	if text == "" {
		return []string{}
	}

	pieces := sentenceTerminator.Split(text, -1)
	units := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		unit := strings.TrimSpace(piece)
		if unit == "" {
			continue
		}
		units = append(units, unit)
	}
	return units
}
