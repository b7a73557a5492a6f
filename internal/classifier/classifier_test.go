package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-service/internal/lexicon"
	"persona-service/internal/models"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	return New(lex)
}

func scammer(texts ...string) []models.Message {
	out := make([]models.Message, 0, len(texts))
	for _, text := range texts {
		out = append(out, models.Message{Sender: models.SenderScammer, Text: text})
	}
	return out
}

func TestClassify(t *testing.T) {
	c := newClassifier(t)

	tests := []struct {
		name        string
		keywords    []string
		description string
		messages    []string
		want        string
	}{
		{"job keywords", []string{"job", "salary"}, "", nil, "Job Scam"},
		{"nigerian prince", []string{"nigerian", "prince", "million"}, "trapped fund", nil, "Nigerian Prince / Advance Fee Scam"},
		{"nigerian beats job", []string{"nigerian", "prince", "job"}, "", nil, "Nigerian Prince / Advance Fee Scam"},
		{"minister and government", nil, "a minister of the government", nil, "Nigerian Prince / Advance Fee Scam"},
		{"minister alone", nil, "the minister", nil, "Generic Scam"},
		{"romance", []string{"love"}, "", nil, "Romance Scam"},
		{"job beats romance", []string{"love", "position"}, "", nil, "Job Scam"},
		{"investment", nil, "", []string{"Buy BITCOIN now"}, "Investment Scam"},
		{"phishing", nil, "please verify", nil, "Phishing / Impersonation"},
		{"product deal", nil, "great deal today", nil, "Product Scam"},
		{"product", []string{"marketplace"}, "", nil, "Product Scam"},
		{"lottery", nil, "", []string{"You are the lottery winner"}, "Advance Fee Scam"},
		{"fund transfer", nil, "fund transfer", nil, "Advance Fee Scam"},
		{"fallback", []string{"hello"}, "nothing here", nil, "Generic Scam"},
		{"empty", nil, "", nil, "Generic Scam"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.keywords, tt.description, tt.messages...))
		})
	}
}

func TestBreakdownNoEvidence(t *testing.T) {
	c := newClassifier(t)
	want := []models.ScamTypeShare{{Type: "Generic Scam", Percentage: 100}}

	assert.Equal(t, want, c.Breakdown(nil))
	assert.Equal(t, want, c.Breakdown(scammer("hello there")))
	// victim text is ignored
	assert.Equal(t, want, c.Breakdown([]models.Message{{Sender: models.SenderVictim, Text: "bitcoin bitcoin"}}))
}

func TestBreakdownShares(t *testing.T) {
	c := newClassifier(t)

	// bitcoin x3 -> crypto 3; salary x1 -> job 1
	got := c.Breakdown(scammer("bitcoin bitcoin", "bitcoin salary"))
	assert.Equal(t, []models.ScamTypeShare{
		{Type: "Cryptocurrency Scam", Percentage: 75},
		{Type: "Job Scam", Percentage: 25},
	}, got)
}

func TestBreakdownInvariants(t *testing.T) {
	c := newClassifier(t)

	inputs := [][]models.Message{
		scammer("Kindly send the processing fee for your inheritance from the royal family in Lagos"),
		scammer("I love you, trust me, buy this bitcoin wallet with a discount"),
		scammer("URGENT: verify your account at the bank or it will be suspended"),
		scammer("donation for orphan children after the disaster, help the cause"),
	}

	for _, msgs := range inputs {
		shares := c.Breakdown(msgs)
		require.NotEmpty(t, shares)
		sum := 0
		for i, s := range shares {
			assert.GreaterOrEqual(t, s.Percentage, 1)
			assert.LessOrEqual(t, s.Percentage, 100)
			if i > 0 {
				assert.GreaterOrEqual(t, shares[i-1].Percentage, s.Percentage)
			}
			sum += s.Percentage
		}
		assert.InDelta(t, 100, sum, float64(len(shares)))
	}
}

func TestBreakdownTiesKeepTaxonomyOrder(t *testing.T) {
	c := newClassifier(t)

	got := c.Breakdown(scammer("charity salary"))
	require.Len(t, got, 2)
	assert.Equal(t, "Job Scam", got[0].Type)
	assert.Equal(t, "Charity Scam", got[1].Type)
}
