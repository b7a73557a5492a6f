package models

// ScamTypeShare is one row of a scam-type breakdown.
type ScamTypeShare struct {
	Type       string `json:"type"`
	Percentage int    `json:"percentage"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TacticScore is one axis of the persuasion radar.
type TacticScore struct {
	Tactic string `json:"tactic"`
	Score  int    `json:"score"`
}

// EscalationPoint is the pressure reading for one scammer message.
type EscalationPoint struct {
	Message      int `json:"message"`
	Urgency      int `json:"urgency"`
	Manipulation int `json:"manipulation"`
}

type LinguisticScores struct {
	UrgencyScore      int     `json:"urgencyScore"`
	ManipulationScore int     `json:"manipulationScore"`
	GrammarErrors     int     `json:"grammarErrors"`
	ScriptScore       float64 `json:"scriptScore"`
}

type LanguagePattern struct {
	Pattern  string   `json:"pattern"`
	Examples []string `json:"examples"`
	Count    int      `json:"count"`
}

type GrammarError struct {
	Type    string `json:"type"`
	Example string `json:"example"`
}

// LanguageGuess is the detected language of the scammer's text.
type LanguageGuess struct {
	Language   string  `json:"language"`
	Code       string  `json:"code"`
	Script     string  `json:"script"`
	Confidence float64 `json:"confidence"`
}

type GrammarAnalysis struct {
	Errors                []GrammarError `json:"errors"`
	RegionalIndicators    []string       `json:"regionalIndicators"`
	BehavioralLinguistics []string       `json:"behavioralLinguistics"`
	Language              *LanguageGuess `json:"language,omitempty"`
}

// ConversationAnalysis bundles every on-demand view over one message list.
type ConversationAnalysis struct {
	MessageCount       int               `json:"messageCount"`
	ScammerMessages    int               `json:"scammerMessages"`
	ScamTypeBreakdown  []ScamTypeShare   `json:"scamTypeBreakdown"`
	Scores             LinguisticScores  `json:"scores"`
	PersuasionTactics  []TacticScore     `json:"persuasionTactics"`
	PressureEscalation []EscalationPoint `json:"pressureEscalation"`
	WordFrequency      []WordCount       `json:"wordFrequency"`
	LanguagePatterns   []LanguagePattern `json:"languagePatterns"`
	Grammar            GrammarAnalysis   `json:"grammar"`
}
