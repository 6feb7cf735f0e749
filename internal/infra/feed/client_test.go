package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)

		response := `{
			"total": 42,
			"latest_user": {"id": "u1", "name": "Sam", "createdAt": "2026-08-28T10:00:00Z"},
			"ticker_list": ["Sam", "Lee", "Kim"]
		}`
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client, err := New(Config{URL: server.URL})
	require.NoError(t, err)

	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, snap.Total)
	require.True(t, snap.HasLatest())
	assert.Equal(t, "u1", snap.Latest.ID)
	assert.Equal(t, "Sam", snap.Latest.DisplayName)
	assert.Equal(t, 2026, snap.Latest.JoinedAt.Year())
	assert.Equal(t, []string{"Sam", "Lee", "Kim"}, snap.RecentNames)
}

func TestFetch_NullLatestUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total": 10, "latest_user": null, "ticker_list": ["A", "B"]}`)
	}))
	defer server.Close()

	client, err := New(Config{URL: server.URL})
	require.NoError(t, err)

	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, snap.Total)
	assert.False(t, snap.HasLatest())
	assert.Equal(t, []string{"A", "B"}, snap.RecentNames)
}

func TestFetch_Normalization(t *testing.T) {
	names := make([]string, MaxTickerNames+20)
	for i := range names {
		names[i] = fmt.Sprintf("\"n%d\"", i)
	}
	payload := fmt.Sprintf(`{
		"total": -5,
		"latest_user": {"id": "u2", "name": "Lee", "createdAt": "not-a-time"},
		"ticker_list": [%s]
	}`, strings.Join(names, ","))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer server.Close()

	client, err := New(Config{URL: server.URL})
	require.NoError(t, err)

	snap, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Total, "negative totals clamp to zero")
	require.True(t, snap.HasLatest())
	assert.True(t, snap.Latest.JoinedAt.IsZero(), "unparseable createdAt becomes zero time")
	assert.Len(t, snap.RecentNames, MaxTickerNames)
}

func TestFetch_Errors(t *testing.T) {
	t.Run("server error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client, err := New(Config{URL: server.URL})
		require.NoError(t, err)
		_, err = client.Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"total": `)
		}))
		defer server.Close()

		client, err := New(Config{URL: server.URL})
		require.NoError(t, err)
		_, err = client.Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing url", func(t *testing.T) {
		_, err := New(Config{})
		assert.Error(t, err)
	})
}
