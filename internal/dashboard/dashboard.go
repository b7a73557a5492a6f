// Package dashboard computes the overview aggregates and applies the persona
// and conversation filters.
package dashboard

import (
	"strings"

	"persona-service/internal/models"
)

const (
	// HighRiskThreshold is the risk score at which a persona counts as high risk.
	HighRiskThreshold = 85
	heatmapSpread     = 2
	hoursPerDay       = 24
)

// Stats is the dashboard overview.
type Stats struct {
	Personas           int      `json:"personas"`
	TotalConversations int      `json:"totalConversations"`
	AvgRiskScore       float64  `json:"avgRiskScore"`
	HighRiskPersonas   int      `json:"highRiskPersonas"`
	Types              []string `json:"types"`
	Platforms          []string `json:"platforms"`
	Heatmap            [24]int  `json:"heatmap"`
}

// Compute aggregates the profile list.
func Compute(personas []models.ScammerProfile) Stats {
	stats := Stats{
		Personas:  len(personas),
		Types:     []string{},
		Platforms: []string{},
		Heatmap:   Heatmap(personas),
	}

	seenTypes := make(map[string]struct{})
	seenPlatforms := make(map[string]struct{})
	var riskSum float64
	for _, p := range personas {
		stats.TotalConversations += p.Conversations
		riskSum += p.RiskScore
		if p.RiskScore >= HighRiskThreshold {
			stats.HighRiskPersonas++
		}
		if _, ok := seenTypes[p.Type]; !ok {
			seenTypes[p.Type] = struct{}{}
			stats.Types = append(stats.Types, p.Type)
		}
		for _, platform := range p.Platform {
			if _, ok := seenPlatforms[platform]; !ok {
				seenPlatforms[platform] = struct{}{}
				stats.Platforms = append(stats.Platforms, platform)
			}
		}
	}
	if len(personas) > 0 {
		stats.AvgRiskScore = riskSum / float64(len(personas))
	}
	return stats
}

// Heatmap spreads each persona's conversation count over the hours within
// two of its peak hour.
func Heatmap(personas []models.ScammerProfile) [24]int {
	var buckets [hoursPerDay]int
	for hour := range buckets {
		for _, p := range personas {
			d := p.PeakHour - hour
			if d >= -heatmapSpread && d <= heatmapSpread {
				buckets[hour] += p.Conversations
			}
		}
	}
	return buckets
}

// PersonaFilter selects profiles. Zero values match everything except
// MaxRisk, which is ignored when zero.
type PersonaFilter struct {
	Query    string
	Type     string
	Platform string
	MinRisk  float64
	MaxRisk  float64
}

func (f PersonaFilter) Match(p models.ScammerProfile) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !containsFold(p.Name, q) && !containsFold(p.Type, q) &&
			!anyContainsFold(p.Keywords, q) && !anyContainsFold(p.CommonPhrases, q) {
			return false
		}
	}
	if isSet(f.Type) && p.Type != f.Type {
		return false
	}
	if isSet(f.Platform) && !contains(p.Platform, f.Platform) {
		return false
	}
	if p.RiskScore < f.MinRisk {
		return false
	}
	if f.MaxRisk > 0 && p.RiskScore > f.MaxRisk {
		return false
	}
	return true
}

func FilterPersonas(personas []models.ScammerProfile, f PersonaFilter) []models.ScammerProfile {
	out := make([]models.ScammerProfile, 0, len(personas))
	for _, p := range personas {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// ConversationFilter selects conversation logs.
type ConversationFilter struct {
	Query    string
	Platform string
	Outcome  string
}

func (f ConversationFilter) Match(c models.ConversationLog) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		matched := containsFold(c.Classification, q) || containsFold(c.Platform, q)
		for _, m := range c.Messages {
			if matched {
				break
			}
			matched = containsFold(m.Text, q)
		}
		if !matched {
			return false
		}
	}
	if isSet(f.Platform) && c.Platform != f.Platform {
		return false
	}
	if isSet(f.Outcome) && c.Outcome != f.Outcome {
		return false
	}
	return true
}

func FilterConversations(logs []models.ConversationLog, f ConversationFilter) []models.ConversationLog {
	out := make([]models.ConversationLog, 0, len(logs))
	for _, c := range logs {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// isSet treats "" and "all" as no filter.
func isSet(v string) bool {
	return v != "" && v != "all"
}

func containsFold(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

func anyContainsFold(values []string, lowerQuery string) bool {
	for _, v := range values {
		if containsFold(v, lowerQuery) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
