// Package grammar flags surface grammar errors, regional English markers and
// behavioural patterns in the scammer's side of a conversation.
package grammar

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"

	"persona-service/internal/lexicon"
	"persona-service/internal/linguistics"
	"persona-service/internal/models"
)

const (
	maxErrors        = 3
	maxExampleLen    = 50
	earlyMoneyWindow = 5
	openingLen       = 30
	minLanguageRunes = 20
)

// Finding labels.
const (
	ErrExcessiveCaps   = "Excessive Capitalization"
	ErrMissingArticles = "Missing Articles"
	ErrTenseMismatch   = "Verb Tense Inconsistency"
	ErrUnusualPhrasing = "Unusual Phrasing"

	RegionWestAfrican   = "Non-native English speaker (likely West African origin)"
	RegionNonNative     = "Possible non-native English speaker"
	RegionMixedRegister = "Formal register mixed with colloquialisms"
	RegionTranslation   = "Possible translation artifacts detected"
	RegionStandard      = "Standard English patterns detected"

	BehaviorAuthoritySwitch = "Authority switching when faced with resistance"
	BehaviorScripted        = "Scripted responses with personalization gaps"
	BehaviorNone            = "No specific behavioral patterns detected"
)

type Analyzer struct {
	rules lexicon.GrammarRules
}

func New(lex *lexicon.Lexicon) *Analyzer {
	return &Analyzer{rules: lex.Grammar}
}

// Analyze runs every heuristic over the scammer messages.
func (a *Analyzer) Analyze(messages []models.Message) models.GrammarAnalysis {
	scammer := models.ScammerMessages(messages)
	texts := make([]string, len(scammer))
	for i, m := range scammer {
		texts[i] = m.Text
	}
	text := strings.Join(texts, " ")

	return models.GrammarAnalysis{
		Errors:                a.errors(text),
		RegionalIndicators:    a.regional(text),
		BehavioralLinguistics: a.behavioral(scammer, text),
		Language:              DetectLanguage(text),
	}
}

func (a *Analyzer) errors(text string) []models.GrammarError {
	var out []models.GrammarError
	add := func(kind string, patterns ...lexicon.Pattern) {
		for _, p := range patterns {
			if p.Regexp == nil {
				continue
			}
			if m := p.FindString(text); m != "" {
				out = append(out, models.GrammarError{Type: kind, Example: example(m)})
				return
			}
		}
	}

	add(ErrExcessiveCaps, a.rules.CapsRun)
	add(ErrMissingArticles, a.rules.MissingArticles...)
	add(ErrTenseMismatch, a.rules.TenseMismatch)
	add(ErrUnusualPhrasing, a.rules.UnusualPhrasing...)

	if len(out) > maxErrors {
		out = out[:maxErrors]
	}
	if out == nil {
		out = []models.GrammarError{}
	}
	return out
}

func (a *Analyzer) regional(text string) []string {
	var out []string

	westAfrican := 0
	for _, p := range a.rules.WestAfrican {
		westAfrican += p.Count(text)
	}
	switch {
	case westAfrican > 2:
		out = append(out, RegionWestAfrican)
	case westAfrican > 0:
		out = append(out, RegionNonNative)
	}

	if a.rules.Formal.Count(text) > 2 && a.rules.Colloquial.Count(text) > 1 {
		out = append(out, RegionMixedRegister)
	}

	for _, p := range a.rules.Translation {
		if p.Count(text) > 0 {
			out = append(out, RegionTranslation)
			break
		}
	}

	if len(out) == 0 {
		return []string{RegionStandard}
	}
	return out
}

func (a *Analyzer) behavioral(scammer []models.Message, text string) []string {
	var out []string

	if a.rules.MoneyRequest.Regexp != nil {
		for i, m := range scammer {
			if i >= earlyMoneyWindow {
				break
			}
			if a.rules.MoneyRequest.MatchString(m.Text) {
				out = append(out, fmt.Sprintf("Rapid escalation to financial request (%d messages)", i+1))
				break
			}
		}
	}

	if a.rules.AuthoritySwitch.Count(text) > 2 {
		out = append(out, BehaviorAuthoritySwitch)
	}

	openings := make(map[string]struct{}, len(scammer))
	for _, m := range scammer {
		openings[linguistics.Prefix(strings.ToLower(m.Text), openingLen)] = struct{}{}
	}
	if float64(len(scammer)) > float64(len(openings))*1.5 {
		out = append(out, BehaviorScripted)
	}

	if len(out) == 0 {
		return []string{BehaviorNone}
	}
	return out
}

// DetectLanguage guesses the language of text. Short or undetectable input
// yields nil.
func DetectLanguage(text string) *models.LanguageGuess {
	if len([]rune(strings.TrimSpace(text))) < minLanguageRunes {
		return nil
	}
	info := whatlanggo.Detect(text)
	if info.Script == nil || info.Lang.String() == "" {
		return nil
	}
	return &models.LanguageGuess{
		Language:   info.Lang.String(),
		Code:       info.Lang.Iso6393(),
		Script:     whatlanggo.Scripts[info.Script],
		Confidence: info.Confidence,
	}
}

func example(match string) string {
	return `"` + linguistics.Prefix(match, maxExampleLen) + `..."`
}
