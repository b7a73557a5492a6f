// Package dataservice loads the upstream pipeline documents. Each document is
// tried from the local files directory, then the pipeline API, then the
// embedded sample. Every source is attempted at most once.
package dataservice

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"persona-service/internal/models"
)

// Document names, shared by the files directory and the API paths.
const (
	Clusters        = "clusters"
	Personas        = "personas"
	Conversations   = "conversations"
	SimilarityGraph = "similarity_graph"
)

// Source identifies where a document was loaded from.
type Source string

const (
	SourceFiles  Source = "files"
	SourceAPI    Source = "api"
	SourceSample Source = "sample"
)

//go:embed sample/*.json
var sampleFS embed.FS

// Options controls which sources are consulted.
type Options struct {
	FilesDir      string
	UseFiles      bool
	UseSampleData bool // skip the API and go straight to the sample
	APIBaseURL    string
	Timeout       time.Duration
}

// Dataset is one complete set of upstream documents.
type Dataset struct {
	Clusters      []models.ClusterData
	Personas      models.PersonaData
	Conversations []models.ConversationData
	Graph         models.SimilarityGraph
	Sources       map[string]Source
}

type Loader struct {
	opts       Options
	httpClient *http.Client
	logger     *zap.Logger
}

func New(opts Options, logger *zap.Logger) *Loader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Loader{
		opts:       opts,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// LoadAll fetches the four documents concurrently.
func (l *Loader) LoadAll(ctx context.Context) (*Dataset, error) {
	ds := &Dataset{}
	sources := make([]Source, 4)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Clusters, sources[0], err = load[[]models.ClusterData](ctx, l, Clusters)
		return err
	})
	g.Go(func() (err error) {
		ds.Personas, sources[1], err = load[models.PersonaData](ctx, l, Personas)
		return err
	})
	g.Go(func() (err error) {
		ds.Conversations, sources[2], err = load[[]models.ConversationData](ctx, l, Conversations)
		return err
	})
	g.Go(func() (err error) {
		ds.Graph, sources[3], err = load[models.SimilarityGraph](ctx, l, SimilarityGraph)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds.Sources = map[string]Source{
		Clusters:        sources[0],
		Personas:        sources[1],
		Conversations:   sources[2],
		SimilarityGraph: sources[3],
	}
	return ds, nil
}

func (l *Loader) LoadClusters(ctx context.Context) ([]models.ClusterData, Source, error) {
	return load[[]models.ClusterData](ctx, l, Clusters)
}

func (l *Loader) LoadPersonas(ctx context.Context) (models.PersonaData, Source, error) {
	return load[models.PersonaData](ctx, l, Personas)
}

func (l *Loader) LoadConversations(ctx context.Context) ([]models.ConversationData, Source, error) {
	return load[[]models.ConversationData](ctx, l, Conversations)
}

func (l *Loader) LoadSimilarityGraph(ctx context.Context) (models.SimilarityGraph, Source, error) {
	return load[models.SimilarityGraph](ctx, l, SimilarityGraph)
}

func load[T any](ctx context.Context, l *Loader, name string) (T, Source, error) {
	var doc T

	if l.opts.UseFiles && l.opts.FilesDir != "" {
		err := l.fromFile(name, &doc)
		if err == nil {
			l.logger.Info("Loaded document", zap.String("document", name), zap.String("source", string(SourceFiles)))
			return doc, SourceFiles, nil
		}
		l.logger.Warn("Failed to load document from files, trying API",
			zap.String("document", name), zap.Error(err))
		doc = *new(T)
	}

	if !l.opts.UseSampleData && l.opts.APIBaseURL != "" {
		err := l.fromAPI(ctx, name, &doc)
		if err == nil {
			l.logger.Info("Loaded document", zap.String("document", name), zap.String("source", string(SourceAPI)))
			return doc, SourceAPI, nil
		}
		l.logger.Warn("Failed to load document from API, using sample data",
			zap.String("document", name), zap.Error(err))
		doc = *new(T)
	}

	if err := fromSample(name, &doc); err != nil {
		return doc, "", err
	}
	l.logger.Info("Using sample document", zap.String("document", name))
	return doc, SourceSample, nil
}

func (l *Loader) fromFile(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(l.opts.FilesDir, name+".json"))
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode file: %w", err)
	}
	return nil
}

func (l *Loader) fromAPI(ctx context.Context, name string, v any) error {
	url := strings.TrimRight(l.opts.APIBaseURL, "/") + "/api/" + name + ".json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pipeline API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ErrNoSample is returned when a document has no embedded sample.
var ErrNoSample = errors.New("no embedded sample")

func fromSample(name string, v any) error {
	data, err := sampleFS.ReadFile("sample/" + name + ".json")
	if err != nil {
		return fmt.Errorf("%w for %s", ErrNoSample, name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode sample %s: %w", name, err)
	}
	return nil
}

// Close releases idle upstream connections.
func (l *Loader) Close() {
	l.httpClient.CloseIdleConnections()
}
