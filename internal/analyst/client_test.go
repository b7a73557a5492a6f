package analyst

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAsk(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr error
	}{
		{name: "response field", status: http.StatusOK, body: `{"response": "from response"}`, want: "from response"},
		{name: "answer field", status: http.StatusOK, body: `{"answer": "from answer"}`, want: "from answer"},
		{name: "empty", status: http.StatusOK, body: `{}`, wantErr: ErrEmptyAnswer},
		{name: "server error", status: http.StatusInternalServerError, body: `boom`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			received := make(chan AskRequest, 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/ask_bot", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var req AskRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				received <- req
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL+"/", 0, time.Second)
			defer c.Close()

			answer, err := c.Ask(context.Background(), "summarize", "C001")
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.status != http.StatusOK:
				require.Error(t, err)
				assert.Contains(t, err.Error(), "status 500")
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, answer)
			}
			assert.Equal(t, AskRequest{Query: "summarize", PersonaID: "C001"}, <-received)
		})
	}
}

func TestClientRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"response": "ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 1, time.Second)
	defer c.Close()

	_, err := c.Ask(context.Background(), "q", "")
	require.NoError(t, err)

	_, err = c.Ask(context.Background(), "q", "")
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, 0, time.Second)
	_, err := c.Ask(context.Background(), "q", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send request")
}
