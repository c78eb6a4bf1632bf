package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "CalendarSync/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("BEGIN:VCALENDAR\nEND:VCALENDAR"))
	}))
	defer server.Close()

	body, err := NewFetcher(time.Second).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
}

func TestFetchRejectsNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	_, err := NewFetcher(time.Second).Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestFetchTransportError(t *testing.T) {
	_, err := NewFetcher(200 * time.Millisecond).Fetch(context.Background(), "http://127.0.0.1:1/feed.ics")
	assert.Error(t, err)
}
