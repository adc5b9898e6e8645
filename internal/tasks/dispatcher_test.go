package tasks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversPayloads(t *testing.T) {
	var (
		mu       sync.Mutex
		received []map[string]string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		mu.Lock()
		received = append(received, payload)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewDispatcher(srv.URL, 8)
	d.Enqueue(map[string]string{"email": "ann@example.com", "conferenceInfo": "GopherCon"})
	d.Enqueue(map[string]string{"email": "bob@example.com", "sessionInfo": "Keynote"})
	d.Close() // drains the queue

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 2)
	require.Equal(t, "ann@example.com", received[0]["email"])
	require.Equal(t, "Keynote", received[1]["sessionInfo"])
}

func TestDispatcher_DisabledWithoutURL(t *testing.T) {
	d := NewDispatcher("", 8)
	d.Enqueue(map[string]string{"email": "ann@example.com"})
	d.Close()
}
