package text

import (
	"time"

	"threat-sentinel/internal/metrics"
)

// Match is one sentence flagged as an instruction
type Match struct {
	Sentence string `json:"sentence"`
	Group    string `json:"group"`
}

// Result is the outcome of analysing one piece of text
type Result struct {
	Sentences int     `json:"sentences"`
	Matches   []Match `json:"matches"`
}

// Instructions returns the matched sentences in original order
func (r Result) Instructions() []string {
	out := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Sentence
	}
	return out
}

// Analyzer runs the segment then classify flow for the synchronous text path.
// It shares no mutable state with the streaming path.
type Analyzer struct {
	classifier *Classifier
	metrics    *metrics.PrometheusMetrics
}

func NewAnalyzer(classifier *Classifier, m *metrics.PrometheusMetrics) *Analyzer {
	return &Analyzer{
		classifier: classifier,
		metrics:    m,
	}
}

// Analyze segments text and keeps every sentence the classifier flags.
// No deduplication and no cap is applied.
func (a *Analyzer) Analyze(text string) Result {
	start := time.Now()

	units := Segment(text)
	result := Result{
		Sentences: len(units),
		Matches:   make([]Match, 0),
	}
	for _, unit := range units {
		if group, ok := a.classifier.Match(unit); ok {
			result.Matches = append(result.Matches, Match{Sentence: unit, Group: group})
		}
	}

	if a.metrics != nil {
		a.metrics.RecordTextAnalysis(len(units), len(result.Matches), time.Since(start).Seconds())
	}
	return result
}

// AnalyzeText is the plain form of Analyze: only the matched sentences
func (a *Analyzer) AnalyzeText(text string) []string {
	return a.Analyze(text).Instructions()
}
