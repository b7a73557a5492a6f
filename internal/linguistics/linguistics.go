// Package linguistics computes keyword-frequency scores over the scammer's
// side of a conversation. Every function is a pure function of the message
// list and the lexicon it was constructed with.
package linguistics

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"persona-service/internal/lexicon"
	"persona-service/internal/models"
)

// DefaultTopWords is the word-frequency table size used by the dashboard.
const DefaultTopWords = 8

const (
	scriptPrefixLen  = 50
	maxPatternSample = 3
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Analyzer scores message lists against a lexicon.
type Analyzer struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *Analyzer {
	return &Analyzer{lex: lex}
}

// WordFrequency returns the topN most frequent scammer words longer than
// three characters. Ties keep first-seen order.
func (a *Analyzer) WordFrequency(messages []models.Message, topN int) []models.WordCount {
	counts := make(map[string]int)
	var order []string

	for _, m := range models.ScammerMessages(messages) {
		cleaned := nonWord.ReplaceAllString(strings.ToLower(m.Text), " ")
		for _, w := range whitespace.Split(cleaned, -1) {
			if len(w) <= 3 {
				continue
			}
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	out := make([]models.WordCount, 0, len(order))
	for _, w := range order {
		out = append(out, models.WordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })

	if topN >= 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// PersuasionTactics returns the weighted hit score for each persuasion
// tactic, clamped to 100, in lexicon order.
func (a *Analyzer) PersuasionTactics(messages []models.Message) []models.TacticScore {
	lower := strings.ToLower(joinScammer(messages))

	out := make([]models.TacticScore, 0, len(a.lex.Persuasion))
	for _, set := range a.lex.Persuasion {
		out = append(out, models.TacticScore{Tactic: set.Name, Score: clamp(set.Score(lower))})
	}
	return out
}

// PressureEscalation returns one reading per scammer message, in order.
func (a *Analyzer) PressureEscalation(messages []models.Message) []models.EscalationPoint {
	scammer := models.ScammerMessages(messages)
	out := make([]models.EscalationPoint, 0, len(scammer))

	for i, m := range scammer {
		lower := strings.ToLower(m.Text)
		urgency := a.lex.Hits(lower, lexicon.Urgency)
		manipulation := a.lex.Hits(lower, lexicon.Authority, lexicon.SocialProof, lexicon.Scarcity)
		out = append(out, models.EscalationPoint{
			Message:      i + 1,
			Urgency:      clamp(urgency * 15),
			Manipulation: clamp(manipulation * 10),
		})
	}
	return out
}

// Scores computes the aggregate urgency, manipulation, grammar-error and
// script-reuse scores over all scammer text.
func (a *Analyzer) Scores(messages []models.Message) models.LinguisticScores {
	scammer := models.ScammerMessages(messages)
	text := joinTexts(scammer)
	lower := strings.ToLower(text)

	urgency := a.lex.Hits(lower, lexicon.Urgency)
	manipulation := a.lex.Hits(lower, lexicon.Authority, lexicon.SocialProof, lexicon.Scarcity, lexicon.Reciprocity)

	grammarErrors := a.lex.Scores.CapsRun.Count(text) +
		a.lex.Scores.ExclamationRun.Count(text) +
		a.lex.Scores.SubjectVerb.Count(text)

	return models.LinguisticScores{
		UrgencyScore:      clamp(urgency * 8),
		ManipulationScore: clamp(manipulation * 5),
		GrammarErrors:     grammarErrors,
		ScriptScore:       scriptScore(scammer),
	}
}

// LanguagePatterns reports each configured pattern family that occurs in the
// scammer's text, with up to three quoted examples.
func (a *Analyzer) LanguagePatterns(messages []models.Message) []models.LanguagePattern {
	lower := strings.ToLower(joinScammer(messages))

	var out []models.LanguagePattern
	for _, np := range a.lex.LanguagePatterns {
		if np.Pattern.Regexp == nil {
			continue
		}
		matches := np.Pattern.FindAllString(lower, -1)
		if len(matches) == 0 {
			continue
		}
		examples := make([]string, 0, maxPatternSample)
		for _, m := range matches[:min(len(matches), maxPatternSample)] {
			examples = append(examples, `"`+m+`"`)
		}
		out = append(out, models.LanguagePattern{
			Pattern:  np.Name,
			Examples: examples,
			Count:    len(matches),
		})
	}
	return out
}

// scriptScore is the share of scammer messages whose opening duplicates an
// earlier message's opening.
func scriptScore(scammer []models.Message) float64 {
	if len(scammer) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(scammer))
	for _, m := range scammer {
		unique[Prefix(strings.ToLower(m.Text), scriptPrefixLen)] = struct{}{}
	}
	score := 100 * float64(len(scammer)-len(unique)) / float64(len(scammer))
	return math.Min(100, score)
}

// Prefix returns the first n runes of s.
func Prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func joinScammer(messages []models.Message) string {
	return joinTexts(models.ScammerMessages(messages))
}

func joinTexts(messages []models.Message) string {
	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.Text
	}
	return strings.Join(texts, " ")
}

func clamp(v int) int {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}
