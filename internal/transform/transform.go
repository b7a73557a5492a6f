// Package transform turns the upstream cluster, persona and conversation
// documents into the canonical profile and conversation shapes.
package transform

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"persona-service/internal/classifier"
	"persona-service/internal/lexicon"
	"persona-service/internal/linguistics"
	"persona-service/internal/models"
	"persona-service/internal/personaid"
)

const (
	defaultPlatform    = "Email"
	defaultVictimID    = "victim_001"
	defaultTime        = "00:00"
	unknown            = "Unknown"
	defaultPeakHour    = 12
	commonPhraseCount  = 4
	scriptedPrefixLen  = 50
	urgencyMarkerScale = 8
	trustMarkerScale   = 5
	scriptedScale      = 20
)

var palette = []string{
	"#3b82f6", "#ec4899", "#8b5cf6", "#f59e0b", "#10b981",
	"#ef4444", "#06b6d4", "#a855f7", "#f97316", "#84cc16",
}

// Transformer joins and normalizes upstream documents.
type Transformer struct {
	lex        *lexicon.Lexicon
	classifier *classifier.Classifier
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*Transformer)

// WithClock overrides the clock used for missing dates.
func WithClock(now func() time.Time) Option {
	return func(t *Transformer) { t.now = now }
}

func New(lex *lexicon.Lexicon, logger *zap.Logger, opts ...Option) *Transformer {
	t := &Transformer{
		lex:        lex,
		classifier: classifier.New(lex),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TransformPersonas builds one profile per cluster, in cluster order.
func (t *Transformer) TransformPersonas(clusters []models.ClusterData, personas models.PersonaData) []models.ScammerProfile {
	today := t.now().UTC().Format("2006-01-02")
	out := make([]models.ScammerProfile, 0, len(clusters))

	for _, cluster := range clusters {
		raw := cluster.PersonaID.String()
		id := personaid.Normalize(raw)
		keywords := nonNil(cluster.Keywords)

		record, ok := t.lookupPersona(personas, id, raw)
		if !ok {
			out = append(out, models.ScammerProfile{
				ID:                  id,
				Name:                cluster.Name,
				Type:                orDefault(cluster.Archetype, models.GenericScam),
				RiskScore:           clampRisk(cluster.Risk),
				ActiveHours:         unknown,
				Platform:            []string{defaultPlatform},
				Tone:                unknown,
				CommonPhrases:       firstN(keywords, commonPhraseCount),
				PeakHour:            defaultPeakHour,
				Keywords:            keywords,
				Color:               Color(id),
				Tactics:             []string{},
				FirstSeen:           today,
				LastSeen:            today,
				AverageScamDuration: unknown,
			})
			continue
		}

		archetype := orDefault(record.Archetype, orDefault(cluster.Archetype, models.GenericScam))
		if archetype == models.GenericScam {
			archetype = t.classifier.Classify(cluster.Keywords, cluster.Description)
		}

		risk := record.RiskScore
		if risk == 0 {
			risk = cluster.Risk
		}

		platform := record.Traits.Platform
		if len(platform) == 0 {
			platform = []string{defaultPlatform}
		}
		phrases := record.Traits.CommonPhrases
		if len(phrases) == 0 {
			phrases = firstN(keywords, commonPhraseCount)
		}

		out = append(out, models.ScammerProfile{
			ID:                  id,
			Name:                orDefault(record.Name, cluster.Name),
			Type:                archetype,
			RiskScore:           clampRisk(risk),
			ActiveHours:         ActiveHoursLabel(record.ActiveHours),
			Platform:            platform,
			Tone:                orDefault(record.Traits.Tone, unknown),
			AvgMessageLength:    record.Traits.AvgMessageLength,
			CommonPhrases:       phrases,
			Conversations:       record.Conversations,
			PeakHour:            PeakHour(record.ActiveHours),
			Keywords:            keywords,
			Color:               orDefault(record.Color, Color(id)),
			Tactics:             nonNil(record.Traits.Tactics),
			CrewID:              record.CrewID,
			FirstSeen:           orDefault(record.FirstSeen, today),
			LastSeen:            orDefault(record.LastSeen, today),
			SuccessRate:         record.SuccessRate,
			AverageScamDuration: unknown,
		})
	}
	return out
}

// lookupPersona resolves a detail record by normalized key, then raw key.
func (t *Transformer) lookupPersona(personas models.PersonaData, id, raw string) (models.PersonaRecord, bool) {
	normalized, hasNormalized := personas[id]
	if raw == id {
		return normalized, hasNormalized
	}
	fallback, hasRaw := personas[raw]

	switch {
	case hasNormalized && hasRaw:
		if normalized.Name != fallback.Name || normalized.RiskScore != fallback.RiskScore || normalized.Archetype != fallback.Archetype {
			t.logger.Warn("Persona keys disagree, using normalized key",
				zap.String("normalized_id", id),
				zap.String("raw_id", raw))
		}
		return normalized, true
	case hasNormalized:
		return normalized, true
	case hasRaw:
		t.logger.Debug("Persona resolved by raw key",
			zap.String("normalized_id", id),
			zap.String("raw_id", raw))
		return fallback, true
	default:
		return models.PersonaRecord{}, false
	}
}

// TransformConversations canonicalizes every raw conversation, in order.
func (t *Transformer) TransformConversations(raw []models.ConversationData) []models.ConversationLog {
	now := t.now().UTC().Format(time.RFC3339)
	out := make([]models.ConversationLog, 0, len(raw))

	for i, conv := range raw {
		messages := canonicalMessages(conv.Messages)
		sortByTime(messages)

		texts := make([]string, len(messages))
		for j, m := range messages {
			texts[j] = m.Text
		}

		classification := conv.Classification
		if classification == "" || classification == models.GenericScam {
			classification = t.classifier.Classify(nil, "", strings.Join(texts, " "))
		}

		id := conv.ConversationID
		if id == "" {
			id = "conv_" + strconv.Itoa(i)
		}

		out = append(out, models.ConversationLog{
			ID:                id,
			ScammerID:         personaid.Normalize(conv.PersonaID.String()),
			VictimID:          defaultVictimID,
			Platform:          orDefault(conv.Platform, defaultPlatform),
			StartTime:         orDefault(conv.StartTime, now),
			EndTime:           orDefault(conv.EndTime, now),
			Messages:          messages,
			Classification:    classification,
			Outcome:           orDefault(conv.Outcome, models.OutcomeOngoing),
			AmountLost:        conv.AmountLost,
			Flags:             unionFlags(messages),
			LinguisticMarkers: t.markers(messages),
		})
	}
	return out
}

func (t *Transformer) markers(messages []models.Message) models.LinguisticMarkers {
	scammer := models.ScammerMessages(messages)
	texts := make([]string, len(scammer))
	openings := make(map[string]struct{}, len(scammer))
	for i, m := range scammer {
		texts[i] = m.Text
		openings[linguistics.Prefix(m.Text, scriptedPrefixLen)] = struct{}{}
	}
	text := strings.Join(texts, " ")
	lower := strings.ToLower(text)

	return models.LinguisticMarkers{
		UrgencyScore:          min(100, t.lex.Hits(lower, lexicon.Urgency)*urgencyMarkerScale),
		EmotionalManipulation: min(100, t.lex.Trust.Hits(lower)*trustMarkerScale),
		GrammarErrors:         t.lex.Scores.CapsRun.Count(text) / 2,
		ScriptedResponses:     min(100, (len(scammer)-len(openings))*scriptedScale),
	}
}

// GroupConversationsByPersona concatenates messages per scammer ID in
// conversation then message order.
func GroupConversationsByPersona(logs []models.ConversationLog) map[string][]models.Message {
	grouped := make(map[string][]models.Message)
	for _, log := range logs {
		grouped[log.ScammerID] = append(grouped[log.ScammerID], log.Messages...)
	}
	return grouped
}

// ActiveHoursLabel renders the span of active hours, e.g. "9am-3pm".
func ActiveHoursLabel(hours []int) string {
	if len(hours) == 0 {
		return unknown
	}
	sorted := append([]int(nil), hours...)
	sort.Ints(sorted)
	return hourLabel(sorted[0]) + "-" + hourLabel(sorted[len(sorted)-1])
}

func hourLabel(h int) string {
	switch {
	case h == 0:
		return "12am"
	case h < 12:
		return strconv.Itoa(h) + "am"
	case h == 12:
		return "12pm"
	default:
		return strconv.Itoa(h-12) + "pm"
	}
}

// PeakHour is the rounded mean of the active hours, or noon when unknown.
func PeakHour(hours []int) int {
	if len(hours) == 0 {
		return defaultPeakHour
	}
	sum := 0
	for _, h := range hours {
		sum += h
	}
	return int(math.Floor(float64(sum)/float64(len(hours)) + 0.5))
}

// Color picks a palette entry from the digits of a persona ID.
func Color(id string) string {
	last := 0
	for _, r := range id {
		if r >= '0' && r <= '9' {
			last = int(r - '0')
		}
	}
	return palette[last%len(palette)]
}

func canonicalMessages(raw []models.ConversationMessage) []models.Message {
	out := make([]models.Message, 0, len(raw))
	for _, m := range raw {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		out = append(out, models.Message{
			Sender: orDefault(m.Sender, models.SenderScammer),
			Text:   m.Text,
			Time:   orDefault(m.Time, defaultTime),
			Type:   orDefault(m.Type, models.MessageText),
			Flags:  nonNil(m.Flags),
		})
	}
	return out
}

// sortByTime orders messages by HH:MM. Unparseable times compare equal.
func sortByTime(messages []models.Message) {
	minutes := make(map[string]int, len(messages))
	for _, m := range messages {
		if v, ok := parseClock(m.Time); ok {
			minutes[m.Time] = v
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		a, okA := minutes[messages[i].Time]
		b, okB := minutes[messages[j].Time]
		return okA && okB && a < b
	})
}

func parseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	total := 0
	for i, scale := range []int{60, 1} {
		if i >= len(parts) {
			break
		}
		p := strings.TrimSpace(parts[i])
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, false
		}
		total += n * scale
	}
	return total, true
}

func unionFlags(messages []models.Message) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, m := range messages {
		for _, f := range m.Flags {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

func clampRisk(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string{}, s...)
}
