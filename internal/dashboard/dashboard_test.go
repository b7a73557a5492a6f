package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"persona-service/internal/models"
)

func samplePersonas() []models.ScammerProfile {
	return []models.ScammerProfile{
		{ID: "C000", Name: "The Barrister", Type: "Advance Fee Scam", RiskScore: 92, Platform: []string{"Email"}, Conversations: 10, PeakHour: 1, Keywords: []string{"inheritance"}},
		{ID: "C001", Name: "Coach Mia", Type: "Investment Scam", RiskScore: 85, Platform: []string{"Telegram", "Email"}, Conversations: 5, PeakHour: 12, CommonPhrases: []string{"guaranteed returns"}},
		{ID: "C002", Name: "HR Daniel", Type: "Job Scam", RiskScore: 40, Platform: []string{"SMS"}, Conversations: 2, PeakHour: 23},
	}
}

func TestCompute(t *testing.T) {
	stats := Compute(samplePersonas())

	assert.Equal(t, 3, stats.Personas)
	assert.Equal(t, 17, stats.TotalConversations)
	assert.InDelta(t, 72.33, stats.AvgRiskScore, 0.01)
	assert.Equal(t, 2, stats.HighRiskPersonas)
	assert.Equal(t, []string{"Advance Fee Scam", "Investment Scam", "Job Scam"}, stats.Types)
	assert.Equal(t, []string{"Email", "Telegram", "SMS"}, stats.Platforms)
}

func TestComputeEmpty(t *testing.T) {
	stats := Compute(nil)

	assert.Zero(t, stats.AvgRiskScore)
	assert.Zero(t, stats.TotalConversations)
	assert.Empty(t, stats.Types)
	assert.Equal(t, [24]int{}, stats.Heatmap)
}

func TestHeatmap(t *testing.T) {
	h := Heatmap(samplePersonas())

	// Peak 1 covers hours 0..3, it does not wrap past midnight.
	assert.Equal(t, 10, h[0])
	assert.Equal(t, 10, h[3])
	assert.Equal(t, 0, h[4])
	assert.Equal(t, 5, h[10])
	assert.Equal(t, 5, h[14])
	assert.Equal(t, 0, h[15])
	assert.Equal(t, 2, h[21])
	assert.Equal(t, 2, h[23])
}

func TestFilterPersonas(t *testing.T) {
	personas := samplePersonas()

	tests := []struct {
		name   string
		filter PersonaFilter
		want   []string
	}{
		{"no filter", PersonaFilter{}, []string{"C000", "C001", "C002"}},
		{"query name", PersonaFilter{Query: "coach"}, []string{"C001"}},
		{"query keyword", PersonaFilter{Query: "INHERIT"}, []string{"C000"}},
		{"query phrase", PersonaFilter{Query: "returns"}, []string{"C001"}},
		{"query type", PersonaFilter{Query: "job"}, []string{"C002"}},
		{"type", PersonaFilter{Type: "Investment Scam"}, []string{"C001"}},
		{"type all", PersonaFilter{Type: "all"}, []string{"C000", "C001", "C002"}},
		{"platform", PersonaFilter{Platform: "Email"}, []string{"C000", "C001"}},
		{"risk range", PersonaFilter{MinRisk: 50, MaxRisk: 90}, []string{"C001"}},
		{"no match", PersonaFilter{Query: "nothing"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, p := range FilterPersonas(personas, tt.filter) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterConversations(t *testing.T) {
	logs := []models.ConversationLog{
		{ID: "a", Classification: "Romance Scam", Platform: "Facebook", Outcome: "ongoing", Messages: []models.Message{{Text: "I trust you"}}},
		{ID: "b", Classification: "Job Scam", Platform: "SMS", Outcome: "failed", Messages: []models.Message{{Text: "pay the training fee"}}},
	}

	tests := []struct {
		name   string
		filter ConversationFilter
		want   []string
	}{
		{"no filter", ConversationFilter{}, []string{"a", "b"}},
		{"query classification", ConversationFilter{Query: "romance"}, []string{"a"}},
		{"query platform", ConversationFilter{Query: "sms"}, []string{"b"}},
		{"query text", ConversationFilter{Query: "Training"}, []string{"b"}},
		{"platform", ConversationFilter{Platform: "Facebook"}, []string{"a"}},
		{"outcome", ConversationFilter{Outcome: "failed"}, []string{"b"}},
		{"outcome all", ConversationFilter{Outcome: "all"}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, c := range FilterConversations(logs, tt.filter) {
				got = append(got, c.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
