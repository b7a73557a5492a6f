package dataservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeDoc(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644))
}

func newLoader(t *testing.T, opts Options) *Loader {
	t.Helper()
	l := New(opts, zap.NewNop())
	t.Cleanup(l.Close)
	return l
}

func TestLoadAllFromSample(t *testing.T) {
	l := newLoader(t, Options{UseSampleData: true})

	ds, err := l.LoadAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, ds.Clusters, 5)
	assert.Len(t, ds.Personas, 4)
	assert.Len(t, ds.Conversations, 5)
	assert.NotEmpty(t, ds.Graph.Nodes)
	assert.NotEmpty(t, ds.Graph.Edges)
	for _, name := range []string{Clusters, Personas, Conversations, SimilarityGraph} {
		assert.Equal(t, SourceSample, ds.Sources[name], name)
	}
}

func TestLoadPrefersFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, Clusters, `[{"persona_id": 7, "name": "From file", "risk": 10, "keywords": []}]`)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := newLoader(t, Options{FilesDir: dir, UseFiles: true, APIBaseURL: srv.URL})

	clusters, source, err := l.LoadClusters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceFiles, source)
	require.Len(t, clusters, 1)
	assert.Equal(t, "7", clusters[0].PersonaID.String())
	assert.Equal(t, "From file", clusters[0].Name)
	assert.Zero(t, hits.Load())
}

func TestLoadFallsBackToAPI(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, Personas, `{not json`)

	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"C010": {"name": "From API", "traits": {"tone": "calm"}, "active_hours": [1]}}`))
	}))
	defer srv.Close()

	l := newLoader(t, Options{FilesDir: dir, UseFiles: true, APIBaseURL: srv.URL + "/"})

	personas, source, err := l.LoadPersonas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, source)
	assert.Equal(t, "From API", personas["C010"].Name)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/api/personas.json"}, paths)
}

func TestLoadFallsBackToSampleOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	l := newLoader(t, Options{FilesDir: t.TempDir(), UseFiles: true, APIBaseURL: srv.URL})

	convs, source, err := l.LoadConversations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSample, source)
	assert.Len(t, convs, 5)
	assert.Equal(t, int32(1), hits.Load())
}

func TestUseSampleDataSkipsAPI(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	l := newLoader(t, Options{UseSampleData: true, APIBaseURL: srv.URL})

	_, source, err := l.LoadSimilarityGraph(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSample, source)
	assert.Zero(t, hits.Load())
}

func TestFilesDisabled(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, Clusters, `[]`)

	l := newLoader(t, Options{FilesDir: dir, UseFiles: false, UseSampleData: true})

	clusters, source, err := l.LoadClusters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SourceSample, source)
	assert.NotEmpty(t, clusters)
}

func TestFromSampleMissing(t *testing.T) {
	var v any
	err := fromSample("nope", &v)
	require.ErrorIs(t, err, ErrNoSample)
}
