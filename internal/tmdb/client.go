// Package tmdb is a thin read-through client for The Movie Database v3 API.
// Responses are handed back as raw JSON so the proxy endpoints can pass
// them through untouched.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotConfigured is returned when no API key was provided.
	ErrNotConfigured = errors.New("tmdb: api key not configured")
	// ErrNotFound is returned when TMDB answers 404.
	ErrNotFound = errors.New("tmdb: not found")
)

// StatusError is an unexpected upstream status.
type StatusError struct{ Code int }

func (e *StatusError) Error() string { return fmt.Sprintf("tmdb status %d", e.Code) }

// EmptySearch is the page returned for a blank query.
var EmptySearch = json.RawMessage(`{"page":1,"results":[],"total_pages":0,"total_results":0}`)

// maxBody bounds what is read from TMDB.
const maxBody = 4 << 20

type Client struct {
	APIKey   string
	BaseURL  string
	Language string
	HTTP     *http.Client
}

func New(apiKey, base, language string) *Client {
	return &Client{
		APIKey:   apiKey,
		BaseURL:  strings.TrimRight(base, "/"),
		Language: language,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
	}
}

// GetMovie fetches a movie's details including credits and videos.
func (c *Client) GetMovie(ctx context.Context, id int64) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("append_to_response", "credits,videos")
	return c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), q)
}

// SearchMovies runs a title search.  A blank query short-circuits to
// EmptySearch without contacting TMDB.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return EmptySearch, nil
	}
	q := url.Values{}
	q.Set("query", query)
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return c.get(ctx, "/search/movie", q)
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (json.RawMessage, error) {
	if c.APIKey == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	q.Set("api_key", c.APIKey)
	if c.Language != "" {
		q.Set("language", c.Language)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case res.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: res.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("tmdb: invalid json response")
	}
	return json.RawMessage(body), nil
}
