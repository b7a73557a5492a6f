package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-service/internal/analyst"
	"persona-service/internal/classifier"
	"persona-service/internal/dashboard"
	"persona-service/internal/dataservice"
	"persona-service/internal/grammar"
	"persona-service/internal/lexicon"
	"persona-service/internal/linguistics"
	"persona-service/internal/models"
	"persona-service/internal/personaid"
	"persona-service/internal/transform"
)

var (
	ErrNotLoaded            = errors.New("snapshot not loaded")
	ErrPersonaNotFound      = errors.New("persona not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

// DataSource provides one complete set of upstream documents.
type DataSource interface {
	LoadAll(ctx context.Context) (*dataservice.Dataset, error)
}

// Snapshot is an immutable view built from one load.
type Snapshot struct {
	ID            string                        `json:"id"`
	LoadedAt      time.Time                     `json:"loadedAt"`
	Sources       map[string]dataservice.Source `json:"sources"`
	Personas      []models.ScammerProfile       `json:"-"`
	Conversations []models.ConversationLog      `json:"-"`
	Messages      map[string][]models.Message   `json:"-"`
	Graph         models.SimilarityGraph        `json:"-"`

	personaIndex      map[string]int
	conversationIndex map[string]int
}

// Service owns the current snapshot and the scorers run against it.
type Service struct {
	source      DataSource
	transformer *transform.Transformer
	classifier  *classifier.Classifier
	linguistics *linguistics.Analyzer
	grammar     *grammar.Analyzer
	analyst     *analyst.Analyst
	logger      *zap.Logger
	now         func() time.Time

	mu   sync.RWMutex
	snap *Snapshot
}

type Option func(*Service)

// WithClock overrides the clock used for load timestamps and missing dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates the service. Call Reload before serving reads.
func New(source DataSource, lex *lexicon.Lexicon, bot *analyst.Analyst, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		source:      source,
		classifier:  classifier.New(lex),
		linguistics: linguistics.New(lex),
		grammar:     grammar.New(lex),
		analyst:     bot,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.transformer = transform.New(lex, logger, transform.WithClock(s.now))
	if s.analyst == nil {
		s.analyst = analyst.New(nil, logger)
	}
	return s
}

// Reload rebuilds the snapshot from the data source and swaps it in. The
// previous snapshot stays active when loading fails.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	ds, err := s.source.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	snap := s.build(ds)

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()

	s.logger.Info("Snapshot loaded",
		zap.String("snapshot_id", snap.ID),
		zap.Int("personas", len(snap.Personas)),
		zap.Int("conversations", len(snap.Conversations)),
		zap.Any("sources", snap.Sources))
	return snap, nil
}

func (s *Service) build(ds *dataservice.Dataset) *Snapshot {
	personas := s.transformer.TransformPersonas(ds.Clusters, ds.Personas)
	conversations := s.transformer.TransformConversations(ds.Conversations)

	snap := &Snapshot{
		ID:                uuid.NewString(),
		LoadedAt:          s.now().UTC(),
		Sources:           ds.Sources,
		Personas:          personas,
		Conversations:     conversations,
		Messages:          transform.GroupConversationsByPersona(conversations),
		Graph:             transform.NormalizeGraph(ds.Graph),
		personaIndex:      make(map[string]int, len(personas)),
		conversationIndex: make(map[string]int, len(conversations)),
	}
	for i, p := range personas {
		if _, dup := snap.personaIndex[p.ID]; dup {
			s.logger.Warn("Duplicate persona ID, keeping first", zap.String("persona_id", p.ID))
			continue
		}
		snap.personaIndex[p.ID] = i
	}
	for i, c := range conversations {
		if _, dup := snap.conversationIndex[c.ID]; !dup {
			snap.conversationIndex[c.ID] = i
		}
	}
	return snap
}

// Current returns the active snapshot.
func (s *Service) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, ErrNotLoaded
	}
	return s.snap, nil
}

func (s *Service) Personas(f dashboard.PersonaFilter) ([]models.ScammerProfile, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	return dashboard.FilterPersonas(snap.Personas, f), nil
}

// Persona looks up a profile by ID in any accepted form.
func (s *Service) Persona(id string) (models.ScammerProfile, error) {
	snap, err := s.Current()
	if err != nil {
		return models.ScammerProfile{}, err
	}
	i, ok := snap.personaIndex[personaid.Normalize(id)]
	if !ok {
		return models.ScammerProfile{}, fmt.Errorf("%w: %s", ErrPersonaNotFound, id)
	}
	return snap.Personas[i], nil
}

// PersonaMessages returns every message attributed to the persona. A known
// persona without conversations yields an empty list.
func (s *Service) PersonaMessages(id string) ([]models.Message, error) {
	p, err := s.Persona(id)
	if err != nil {
		return nil, err
	}
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	messages := snap.Messages[p.ID]
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (s *Service) PersonaAnalysis(id string) (models.ConversationAnalysis, error) {
	messages, err := s.PersonaMessages(id)
	if err != nil {
		return models.ConversationAnalysis{}, err
	}
	return s.Analyze(messages), nil
}

func (s *Service) Conversations(f dashboard.ConversationFilter) ([]models.ConversationLog, error) {
	snap, err := s.Current()
	if err != nil {
		return nil, err
	}
	return dashboard.FilterConversations(snap.Conversations, f), nil
}

func (s *Service) Conversation(id string) (models.ConversationLog, error) {
	snap, err := s.Current()
	if err != nil {
		return models.ConversationLog{}, err
	}
	i, ok := snap.conversationIndex[id]
	if !ok {
		return models.ConversationLog{}, fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	return snap.Conversations[i], nil
}

func (s *Service) ConversationAnalysis(id string) (models.ConversationAnalysis, error) {
	conv, err := s.Conversation(id)
	if err != nil {
		return models.ConversationAnalysis{}, err
	}
	return s.Analyze(conv.Messages), nil
}

// Analyze runs every scorer over an ad-hoc message list. Blank messages are
// dropped and a missing sender is treated as the scammer, as in transform.
func (s *Service) Analyze(messages []models.Message) models.ConversationAnalysis {
	clean := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		if m.Sender == "" {
			m.Sender = models.SenderScammer
		}
		clean = append(clean, m)
	}

	return models.ConversationAnalysis{
		MessageCount:       len(clean),
		ScammerMessages:    len(models.ScammerMessages(clean)),
		ScamTypeBreakdown:  s.classifier.Breakdown(clean),
		Scores:             s.linguistics.Scores(clean),
		PersuasionTactics:  s.linguistics.PersuasionTactics(clean),
		PressureEscalation: s.linguistics.PressureEscalation(clean),
		WordFrequency:      s.linguistics.WordFrequency(clean, linguistics.DefaultTopWords),
		LanguagePatterns:   nonNilPatterns(s.linguistics.LanguagePatterns(clean)),
		Grammar:            s.grammar.Analyze(clean),
	}
}

// Classify labels free text with the first matching scam-type rule.
func (s *Service) Classify(keywords []string, description string, messages []string) string {
	return s.classifier.Classify(keywords, description, messages...)
}

func (s *Service) Dashboard() (dashboard.Stats, error) {
	snap, err := s.Current()
	if err != nil {
		return dashboard.Stats{}, err
	}
	return dashboard.Compute(snap.Personas), nil
}

func (s *Service) Similarity() (models.SimilarityGraph, error) {
	snap, err := s.Current()
	if err != nil {
		return models.SimilarityGraph{}, err
	}
	return snap.Graph, nil
}

// Ask answers an analyst question against the current snapshot.
func (s *Service) Ask(ctx context.Context, query, personaID string) (analyst.Reply, error) {
	snap, err := s.Current()
	if err != nil {
		return analyst.Reply{}, err
	}
	if personaID != "" {
		personaID = personaid.Normalize(personaID)
	}
	kb := analyst.Knowledge{
		Personas:      snap.Personas,
		Conversations: snap.Conversations,
		Now:           s.now(),
	}
	return s.analyst.Ask(ctx, query, personaID, kb), nil
}

func nonNilPatterns(p []models.LanguagePattern) []models.LanguagePattern {
	if p == nil {
		return []models.LanguagePattern{}
	}
	return p
}
