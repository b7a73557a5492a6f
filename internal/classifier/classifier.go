// Package classifier assigns scam-type labels. Classify picks a single label
// with fixed precedence; Breakdown spreads a conversation over the finer
// breakdown taxonomy.
package classifier

import (
	"math"
	"sort"
	"strings"

	"persona-service/internal/lexicon"
	"persona-service/internal/models"
)

// Classifier evaluates the lexicon's ordered rules.
type Classifier struct {
	lex *lexicon.Lexicon
}

func New(lex *lexicon.Lexicon) *Classifier {
	return &Classifier{lex: lex}
}

// Classify joins keywords, description and message texts, lowercases them and
// returns the label of the first rule that matches. More specific narratives
// are listed before broad buckets, so order is significant.
func (c *Classifier) Classify(keywords []string, description string, messageTexts ...string) string {
	parts := make([]string, 0, len(keywords)+1+len(messageTexts))
	parts = append(parts, keywords...)
	parts = append(parts, description)
	parts = append(parts, messageTexts...)
	lower := strings.ToLower(strings.Join(parts, " "))

	for _, rule := range c.lex.ClassifierRules {
		if rule.Matches(lower) {
			return rule.Label
		}
	}
	return c.lex.FallbackLabel
}

// Breakdown scores the scammer's text against every scam type and returns
// the non-zero shares, largest first. Shares are rounded independently and
// may not sum to exactly 100. With no evidence at all the result is a single
// Generic Scam entry at 100%.
func (c *Classifier) Breakdown(messages []models.Message) []models.ScamTypeShare {
	lower := strings.ToLower(scammerText(messages))

	scores := make([]int, len(c.lex.ScamTypes))
	total := 0
	for i, set := range c.lex.ScamTypes {
		scores[i] = set.Hits(lower)
		total += scores[i]
	}

	if total == 0 {
		return []models.ScamTypeShare{{Type: models.GenericScam, Percentage: 100}}
	}

	shares := make([]models.ScamTypeShare, 0, len(scores))
	for i, score := range scores {
		pct := roundHalfUp(100 * float64(score) / float64(total))
		if pct > 0 {
			shares = append(shares, models.ScamTypeShare{Type: c.lex.ScamTypes[i].Name, Percentage: pct})
		}
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Percentage > shares[j].Percentage
	})

	if len(shares) == 0 {
		return []models.ScamTypeShare{{Type: models.GenericScam, Percentage: 100}}
	}
	return shares
}

func scammerText(messages []models.Message) string {
	texts := make([]string, 0, len(messages))
	for _, m := range models.ScammerMessages(messages) {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, " ")
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
