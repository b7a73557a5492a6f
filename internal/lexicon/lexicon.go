// Package lexicon holds the keyword tables, weights and rules used by every
// scorer. A Lexicon is parsed once at startup and passed to the scorers
// explicitly; it is never mutated afterwards.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Persuasion tactic names. Scorers look these up by name.
const (
	Urgency     = "Urgency"
	Authority   = "Authority"
	SocialProof = "Social Proof"
	Scarcity    = "Scarcity"
	Reciprocity = "Reciprocity"
)

//go:embed lexicon.yml
var defaultTables []byte

// TermSet is a named keyword list with a per-hit weight.
type TermSet struct {
	Name   string   `yaml:"name"`
	Weight int      `yaml:"weight"`
	Terms  []string `yaml:"terms"`
}

// Hits counts non-overlapping occurrences of every term in lower. Each term
// is counted independently, so "act now" also contributes to "now".
func (s TermSet) Hits(lower string) int {
	total := 0
	for _, term := range s.Terms {
		total += strings.Count(lower, term)
	}
	return total
}

// Score is Hits multiplied by the set's weight.
func (s TermSet) Score(lower string) int {
	return s.Hits(lower) * s.Weight
}

// Clause is a conjunction: every All term present and no None term present.
type Clause struct {
	All  []string `yaml:"all"`
	None []string `yaml:"none"`
}

func (c Clause) matches(lower string) bool {
	for _, t := range c.All {
		if !strings.Contains(lower, t) {
			return false
		}
	}
	for _, t := range c.None {
		if strings.Contains(lower, t) {
			return false
		}
	}
	return true
}

// Rule yields Label when any single term or any clause matches.
type Rule struct {
	Label   string   `yaml:"label"`
	Any     []string `yaml:"any"`
	Clauses []Clause `yaml:"clauses"`
}

// Matches reports whether the lowercase text satisfies the rule.
func (r Rule) Matches(lower string) bool {
	for _, t := range r.Any {
		if strings.Contains(lower, t) {
			return true
		}
	}
	for _, c := range r.Clauses {
		if c.matches(lower) {
			return true
		}
	}
	return false
}

// Pattern is a compiled regular expression decoded from a YAML string.
type Pattern struct {
	*regexp.Regexp
}

func (p *Pattern) UnmarshalYAML(node *yaml.Node) error {
	var expr string
	if err := node.Decode(&expr); err != nil {
		return err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("line %d: invalid pattern %q: %w", node.Line, expr, err)
	}
	p.Regexp = re
	return nil
}

// Count returns the number of non-overlapping matches in text.
func (p Pattern) Count(text string) int {
	if p.Regexp == nil {
		return 0
	}
	return len(p.FindAllStringIndex(text, -1))
}

// NamedPattern labels a pattern for reporting.
type NamedPattern struct {
	Name    string  `yaml:"name"`
	Pattern Pattern `yaml:"pattern"`
}

// ScoreRules are the surface-error patterns counted by the aggregate scores.
type ScoreRules struct {
	CapsRun        Pattern `yaml:"caps_run"`
	ExclamationRun Pattern `yaml:"exclamation_run"`
	SubjectVerb    Pattern `yaml:"subject_verb"`
}

// GrammarRules are the patterns used by the grammar and regional heuristics.
type GrammarRules struct {
	CapsRun         Pattern   `yaml:"caps_run"`
	MissingArticles []Pattern `yaml:"missing_articles"`
	TenseMismatch   Pattern   `yaml:"tense_mismatch"`
	UnusualPhrasing []Pattern `yaml:"unusual_phrasing"`
	WestAfrican     []Pattern `yaml:"west_african"`
	Formal          Pattern   `yaml:"formal"`
	Colloquial      Pattern   `yaml:"colloquial"`
	Translation     []Pattern `yaml:"translation"`
	MoneyRequest    Pattern   `yaml:"money_request"`
	AuthoritySwitch Pattern   `yaml:"authority_switch"`
}

// Lexicon is the complete rule configuration.
type Lexicon struct {
	Persuasion       []TermSet      `yaml:"persuasion"`
	Trust            TermSet        `yaml:"trust"`
	ScamTypes        []TermSet      `yaml:"scam_types"`
	ClassifierRules  []Rule         `yaml:"classifier_rules"`
	FallbackLabel    string         `yaml:"fallback_label"`
	Scores           ScoreRules     `yaml:"scores"`
	LanguagePatterns []NamedPattern `yaml:"language_patterns"`
	Grammar          GrammarRules   `yaml:"grammar"`

	tactics map[string]TermSet
}

// Tactic returns the persuasion term set with the given name.
func (l *Lexicon) Tactic(name string) TermSet {
	return l.tactics[name]
}

// Hits sums the hits of the named persuasion tactics.
func (l *Lexicon) Hits(lower string, tactics ...string) int {
	total := 0
	for _, name := range tactics {
		total += l.tactics[name].Hits(lower)
	}
	return total
}

// Parse decodes and validates a lexicon document.
func Parse(data []byte) (*Lexicon, error) {
	lex := &Lexicon{}
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("failed to decode lexicon: %w", err)
	}
	if err := lex.validate(); err != nil {
		return nil, err
	}
	return lex, nil
}

// Load reads a lexicon from a YAML file.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}
	return Parse(data)
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
	defaultErr  error
)

// Default returns the embedded lexicon. It is parsed on first use.
func Default() (*Lexicon, error) {
	defaultOnce.Do(func() {
		defaultLex, defaultErr = Parse(defaultTables)
	})
	return defaultLex, defaultErr
}

// MustDefault is Default for callers that cannot continue without it.
func MustDefault() *Lexicon {
	lex, err := Default()
	if err != nil {
		panic(err)
	}
	return lex
}

func (l *Lexicon) validate() error {
	l.tactics = make(map[string]TermSet, len(l.Persuasion))
	for _, set := range l.Persuasion {
		l.tactics[set.Name] = set
	}
	for _, name := range []string{Urgency, Authority, SocialProof, Scarcity, Reciprocity} {
		if _, ok := l.tactics[name]; !ok {
			return fmt.Errorf("lexicon is missing persuasion tactic %q", name)
		}
	}

	sets := append([]TermSet{l.Trust}, l.Persuasion...)
	sets = append(sets, l.ScamTypes...)
	for _, set := range sets {
		for _, term := range set.Terms {
			if term == "" || term != strings.ToLower(term) {
				return fmt.Errorf("term set %q: terms must be non-empty lowercase, got %q", set.Name, term)
			}
		}
	}

	if len(l.ScamTypes) == 0 {
		return fmt.Errorf("lexicon has no scam types")
	}
	if len(l.ClassifierRules) == 0 {
		return fmt.Errorf("lexicon has no classifier rules")
	}
	for i, r := range l.ClassifierRules {
		if r.Label == "" {
			return fmt.Errorf("classifier rule %d has no label", i)
		}
		if len(r.Any) == 0 && len(r.Clauses) == 0 {
			return fmt.Errorf("classifier rule %q has no terms", r.Label)
		}
	}
	if l.FallbackLabel == "" {
		l.FallbackLabel = "Generic Scam"
	}
	return nil
}
