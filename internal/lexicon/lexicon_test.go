package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLexicon(t *testing.T) {
	lex, err := Default()
	require.NoError(t, err)

	assert.Len(t, lex.Persuasion, 5)
	assert.Len(t, lex.ScamTypes, 9)
	assert.Len(t, lex.ClassifierRules, 7)
	assert.Equal(t, "Generic Scam", lex.FallbackLabel)

	weights := map[string]int{}
	for _, set := range lex.Persuasion {
		weights[set.Name] = set.Weight
	}
	assert.Equal(t, map[string]int{
		Urgency: 10, Authority: 8, SocialProof: 7, Scarcity: 9, Reciprocity: 6,
	}, weights)

	assert.Len(t, lex.LanguagePatterns, 3)
	assert.Len(t, lex.Grammar.WestAfrican, 3)
	assert.NotNil(t, lex.Scores.CapsRun.Regexp)
}

func TestTermSetHits(t *testing.T) {
	set := TermSet{Name: "u", Weight: 8, Terms: []string{"now", "act now", "urgent"}}

	assert.Equal(t, 0, set.Hits(""))
	// "act now" also counts as "now"
	assert.Equal(t, 2, set.Hits("act now"))
	assert.Equal(t, 3, set.Hits("urgent! act now"))
	assert.Equal(t, 24, set.Score("urgent! act now"))
	// substring semantics: "know" contains "now"
	assert.Equal(t, 1, set.Hits("i know"))
}

func TestRuleMatches(t *testing.T) {
	rule := Rule{
		Label: "Product Scam",
		Any:   []string{"buy"},
		Clauses: []Clause{
			{All: []string{"deal"}, None: []string{"job"}},
		},
	}

	assert.True(t, rule.Matches("buy it"))
	assert.True(t, rule.Matches("great deal"))
	assert.False(t, rule.Matches("great deal on a job"))
	assert.False(t, rule.Matches("nothing here"))
}

func TestPatternCount(t *testing.T) {
	lex := MustDefault()
	assert.Equal(t, 2, lex.Scores.CapsRun.Count("URGENT and NOW but ok"))
	assert.Equal(t, 1, lex.Scores.ExclamationRun.Count("wow!!! yes!"))
	assert.Equal(t, 0, Pattern{}.Count("anything"))
}

func TestParseRejectsInvalid(t *testing.T) {
	t.Run("bad regex", func(t *testing.T) {
		_, err := Parse([]byte("scores:\n  caps_run: '[A-Z'\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid pattern")
	})

	t.Run("missing tactic", func(t *testing.T) {
		doc := `
persuasion:
  - name: Urgency
    weight: 10
    terms: [urgent]
`
		_, err := Parse([]byte(doc))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing persuasion tactic")
	})

	t.Run("uppercase term", func(t *testing.T) {
		base := MustDefault()
		lex := &Lexicon{
			Persuasion:      base.Persuasion,
			ScamTypes:       []TermSet{{Name: "Odd", Terms: []string{"Trust"}}},
			ClassifierRules: base.ClassifierRules,
		}
		err := lex.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lowercase")
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yml")
	require.NoError(t, os.WriteFile(path, defaultTables, 0o644))

	lex, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, lex.Tactic(Urgency).Weight)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
