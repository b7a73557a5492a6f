package models

// Sender values.
const (
	SenderScammer = "scammer"
	SenderVictim  = "victim"
	SenderBot     = "bot"
)

// Message type values.
const (
	MessageText  = "text"
	MessageVoice = "voice"
	MessageImage = "image"
)

// Outcome values.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
	OutcomeOngoing = "ongoing"
)

// GenericScam is the placeholder archetype and the classifier fallback.
const GenericScam = "Generic Scam"

// Message is a single transcript line in canonical form.
type Message struct {
	Sender string   `json:"sender"`
	Text   string   `json:"text"`
	Time   string   `json:"time"`
	Type   string   `json:"type"`
	Flags  []string `json:"flags"`
}

// ScammerProfile is the join of a cluster summary with its persona detail.
type ScammerProfile struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Type                string   `json:"type"`
	RiskScore           float64  `json:"riskScore"`
	ActiveHours         string   `json:"activeHours"`
	Platform            []string `json:"platform"`
	Tone                string   `json:"tone"`
	AvgMessageLength    float64  `json:"avgMessageLength"`
	CommonPhrases       []string `json:"commonPhrases"`
	Conversations       int      `json:"conversations"`
	PeakHour            int      `json:"peakHour"`
	Keywords            []string `json:"keywords"`
	Color               string   `json:"color"`
	Tactics             []string `json:"tactics"`
	CrewID              string   `json:"crewId,omitempty"`
	FirstSeen           string   `json:"firstSeen"`
	LastSeen            string   `json:"lastSeen"`
	SuccessRate         float64  `json:"successRate"`
	AverageScamDuration string   `json:"averageScamDuration"`
}

// LinguisticMarkers are the per-conversation summary scores computed during
// transform.
type LinguisticMarkers struct {
	UrgencyScore          int `json:"urgencyScore"`
	EmotionalManipulation int `json:"emotionalManipulation"`
	GrammarErrors         int `json:"grammarErrors"`
	ScriptedResponses     int `json:"scriptedResponses"`
}

// ConversationLog is a conversation in canonical form.
type ConversationLog struct {
	ID                string            `json:"id"`
	ScammerID         string            `json:"scammerId"`
	VictimID          string            `json:"victimId"`
	Platform          string            `json:"platform"`
	StartTime         string            `json:"startTime"`
	EndTime           string            `json:"endTime"`
	Messages          []Message         `json:"messages"`
	Classification    string            `json:"classification"`
	Outcome           string            `json:"outcome"`
	AmountLost        *float64          `json:"amountLost,omitempty"`
	Flags             []string          `json:"flags"`
	LinguisticMarkers LinguisticMarkers `json:"linguisticMarkers"`
}

// ScammerMessages returns the messages sent by the scammer, in order.
func ScammerMessages(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Sender == SenderScammer {
			out = append(out, m)
		}
	}
	return out
}
