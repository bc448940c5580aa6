// Package evaluation extracts structured scores from the interview engine's
// free-text evaluations.
package evaluation

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const (
	LabelTechnical     = "Technical Score"
	LabelCommunication = "Communication Score"
	LabelConfidence    = "Confidence Score"
)

// Scores holds the three sub-scores; nil means the label was not found.
type Scores struct {
	Technical     *int `json:"technical_score"`
	Communication *int `json:"communication_score"`
	Confidence    *int `json:"confidence_score"`
}

var patterns sync.Map // label -> *regexp.Regexp

// Only horizontal whitespace is allowed around the colon so a match never spans lines.
func patternFor(label string) *regexp.Regexp {
	if re, ok := patterns.Load(label); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `[ \t]*:[ \t]*(\d{1,3})`)
	actual, _ := patterns.LoadOrStore(label, re)
	return actual.(*regexp.Regexp)
}

// ExtractScore returns the first "<label>: <n>" value in text, clamped to [0,100].
func ExtractScore(text, label string) (int, bool) {
	if text == "" || label == "" {
		return 0, false
	}
	m := patternFor(label).FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return clamp(n), true
}

func ExtractScores(text string) Scores {
	return Scores{
		Technical:     extractPtr(text, LabelTechnical),
		Communication: extractPtr(text, LabelCommunication),
		Confidence:    extractPtr(text, LabelConfidence),
	}
}

func extractPtr(text, label string) *int {
	if n, ok := ExtractScore(text, label); ok {
		return &n
	}
	return nil
}

// Merge keeps prev when next is unset.
func Merge(prev, next *int) *int {
	if next != nil {
		return next
	}
	return prev
}

var scorePrefixes = []string{
	"technical score:",
	"communication score:",
	"confidence score:",
}

// StripScoreLines removes the score lines from an evaluation before it is shown to users.
func StripScoreLines(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isScoreLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isScoreLine(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	for _, p := range scorePrefixes {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
