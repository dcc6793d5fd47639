// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package youtube_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorte-dev/vorte/internal/media/youtube"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "lofi beats", r.URL.Query().Get("q"))
		assert.Equal(t, "3", r.URL.Query().Get("maxResults"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[
			{"id":{"videoId":"aaa"},"snippet":{"title":"Lofi One"}},
			{"id":{"channelId":"skip-me"},"snippet":{"title":"A channel"}},
			{"id":{"videoId":"bbb"},"snippet":{"title":"Lofi Two"}}
		]}`))
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "aaa,bbb", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`{"items":[
			{"id":"bbb","contentDetails":{"duration":"PT1H2M3S"},"statistics":{"viewCount":"42"}},
			{"id":"aaa","contentDetails":{"duration":"PT4M13S"},"statistics":{"viewCount":"1500000"}}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSearch(t *testing.T) {
	srv := fakeAPI(t)
	c := youtube.NewClient(srv.Client(), srv.URL, "test-key")

	videos, err := c.Search(context.Background(), "lofi beats", 3)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "Lofi One", videos[0].Title)
	assert.Equal(t, "4:13", videos[0].Timestamp())
	assert.Equal(t, int64(1500000), videos[0].Views)
	assert.Equal(t, "https://youtube.com/watch?v=aaa", videos[0].URL())

	assert.Equal(t, "Lofi Two", videos[1].Title)
	assert.Equal(t, "1:02:03", videos[1].Timestamp())
	assert.Equal(t, int64(42), videos[1].Views)
}

func TestSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	videos, err := youtube.NewClient(srv.Client(), srv.URL, "k").Search(context.Background(), "nothing", 3)
	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestSearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	_, err := youtube.NewClient(srv.Client(), srv.URL, "k").Search(context.Background(), "song", 3)
	require.Error(t, err)
	assert.True(t, vorteerr.IsUpstreamFailure(err))
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = youtube.NewClient(nil, "", "").Search(context.Background(), "song", 3)
	assert.True(t, vorteerr.HasCode(err, vorteerr.CodeMediaProviderDisabled))

	_, err = youtube.NewClient(nil, "", "k").Search(context.Background(), "  ", 3)
	assert.True(t, vorteerr.HasCode(err, vorteerr.CodeMediaRequestInvalid))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 4*time.Minute+13*time.Second, youtube.ParseDuration("PT4M13S"))
	assert.Equal(t, time.Hour, youtube.ParseDuration("PT1H"))
	assert.Equal(t, 26*time.Hour, youtube.ParseDuration("P1DT2H"))
	assert.Equal(t, 30*time.Second, youtube.ParseDuration("PT30S"))
	assert.Zero(t, youtube.ParseDuration("garbage"))
	assert.Zero(t, youtube.ParseDuration(""))
}
