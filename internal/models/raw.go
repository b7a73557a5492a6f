package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexString decodes from either a JSON string or a JSON number. Upstream
// exports persona IDs as integers in some runs and as strings in others.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// ClusterData is one entry of clusters.json.
type ClusterData struct {
	PersonaID   FlexString `json:"persona_id"`
	Name        string     `json:"name"`
	Risk        float64    `json:"risk"`
	Keywords    []string   `json:"keywords"`
	Description string     `json:"description"`
	Archetype   string     `json:"archetype,omitempty"`
}

// PersonaTraits holds the behavioural traits of a persona record.
type PersonaTraits struct {
	Tone             string     `json:"tone"`
	EmojiRate        FlexString `json:"emoji_rate"`
	ScriptScore      float64    `json:"script_score"`
	AvgMessageLength float64    `json:"avg_message_length,omitempty"`
	CommonPhrases    []string   `json:"common_phrases,omitempty"`
	Tactics          []string   `json:"tactics,omitempty"`
	Platform         []string   `json:"platform,omitempty"`
}

// PersonaRecord is one value of personas.json.
type PersonaRecord struct {
	Name          string        `json:"name"`
	Traits        PersonaTraits `json:"traits"`
	ActiveHours   []int         `json:"active_hours"`
	RiskScore     float64       `json:"risk_score,omitempty"`
	Archetype     string        `json:"archetype,omitempty"`
	Color         string        `json:"color,omitempty"`
	CrewID        string        `json:"crew_id,omitempty"`
	FirstSeen     string        `json:"first_seen,omitempty"`
	LastSeen      string        `json:"last_seen,omitempty"`
	SuccessRate   float64       `json:"success_rate,omitempty"`
	Conversations int           `json:"conversations,omitempty"`
}

// PersonaData is personas.json: persona key -> record. Keys are not
// guaranteed to be normalized.
type PersonaData map[string]PersonaRecord

// ConversationMessage is a message as exported upstream.
type ConversationMessage struct {
	Sender string   `json:"sender"`
	Text   string   `json:"text"`
	Time   string   `json:"time,omitempty"`
	Type   string   `json:"type,omitempty"`
	Flags  []string `json:"flags,omitempty"`
}

// ConversationData is one entry of conversations.json.
type ConversationData struct {
	PersonaID      FlexString            `json:"persona_id"`
	ConversationID string                `json:"conversation_id,omitempty"`
	Platform       string                `json:"platform,omitempty"`
	StartTime      string                `json:"start_time,omitempty"`
	EndTime        string                `json:"end_time,omitempty"`
	Messages       []ConversationMessage `json:"messages"`
	Classification string                `json:"classification,omitempty"`
	Outcome        string                `json:"outcome,omitempty"`
	AmountLost     *float64              `json:"amount_lost,omitempty"`
}

type GraphNode struct {
	ID    FlexString `json:"id"`
	Label string     `json:"label,omitempty"`
	Group string     `json:"group,omitempty"`
}

type GraphEdge struct {
	Source FlexString `json:"source"`
	Target FlexString `json:"target"`
	Weight float64    `json:"weight,omitempty"`
	Type   string     `json:"type,omitempty"`
}

// SimilarityGraph is similarity_graph.json.
type SimilarityGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
