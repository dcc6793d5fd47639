// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package youtube searches videos through the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// DefaultEndpoint is the public Data API base URL.
const DefaultEndpoint = "https://www.googleapis.com/youtube/v3"

// maxBody caps how much of an API response is read.
const maxBody = 1 << 20

// Video is one search hit.
type Video struct {
	ID       string
	Title    string
	Duration time.Duration
	Views    int64
}

// URL is the watch link for the video.
func (v Video) URL() string {
	return "https://youtube.com/watch?v=" + v.ID
}

// Timestamp renders the duration as m:ss or h:mm:ss.
func (v Video) Timestamp() string {
	d := v.Duration.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Client talks to the Data API.
type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
}

// NewClient returns a Client. An empty endpoint selects DefaultEndpoint.
func NewClient(httpClient *http.Client, endpoint, apiKey string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		http:     httpClient,
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
	}
}

// Search returns up to limit videos matching query, best match first, with
// duration and view count filled in.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Video, error) {
	if c.apiKey == "" {
		return nil, vorteerr.New(vorteerr.CodeMediaProviderDisabled, "youtube search is not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, vorteerr.New(vorteerr.CodeMediaRequestInvalid, "search query is empty")
	}

	search, err := c.get(ctx, "/search", url.Values{
		"part":       {"snippet"},
		"type":       {"video"},
		"q":          {query},
		"maxResults": {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}

	var videos []Video
	for _, item := range gjson.GetBytes(search, "items").Array() {
		id := item.Get("id.videoId").String()
		if id == "" {
			continue
		}
		videos = append(videos, Video{ID: id, Title: item.Get("snippet.title").String()})
	}
	if len(videos) == 0 {
		return nil, nil
	}

	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	details, err := c.get(ctx, "/videos", url.Values{
		"part": {"contentDetails,statistics"},
		"id":   {strings.Join(ids, ",")},
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]gjson.Result)
	for _, item := range gjson.GetBytes(details, "items").Array() {
		byID[item.Get("id").String()] = item
	}
	for i := range videos {
		d, ok := byID[videos[i].ID]
		if !ok {
			continue
		}
		videos[i].Duration = ParseDuration(d.Get("contentDetails.duration").String())
		videos[i].Views = d.Get("statistics.viewCount").Int()
	}
	return videos, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	q.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, vorteerr.Errorf(vorteerr.CodeMediaUpstreamFailure, "building youtube request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, vorteerr.Errorf(vorteerr.CodeMediaUpstreamFailure, "youtube request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, vorteerr.Errorf(vorteerr.CodeMediaUpstreamFailure, "reading youtube response: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := gjson.GetBytes(body, "error.message").String()
		return nil, vorteerr.Errorf(vorteerr.CodeMediaUpstreamFailure, "youtube search failed (HTTP %d): %s", resp.StatusCode, msg)
	}
	if !gjson.ValidBytes(body) {
		return nil, vorteerr.New(vorteerr.CodeMediaUpstreamFailure, "youtube returned invalid JSON")
	}
	return body, nil
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO 8601 duration such as PT4M13S. Unparseable
// values yield zero.
func ParseDuration(s string) time.Duration {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	var d time.Duration
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		d += time.Duration(n) * unit
	}
	return d
}
