// Package remote fetches restaurant records from the JSON feed.
//
// The client performs no caching and no retries: any connection failure,
// non-2xx status or malformed payload ends the request with a single
// NETWORK_ERROR. Caching is the store's job.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/restosync/internal/restaurant"
	"github.com/roach88/restosync/internal/stream"
)

// DefaultTimeout bounds a single request when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// CollectionPath is the feed endpoint relative to the base URL.
const CollectionPath = "/restaurants/"

// Client reads the remote feed.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (e.g. for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// New creates a client for the feed rooted at baseURL
// (e.g. "http://localhost:1337").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAll streams every record of GET /restaurants/ in the order the
// transport yields them. The request is issued when the stream is consumed;
// each consumption issues a new request.
func (c *Client) FetchAll(ctx context.Context) stream.Stream[restaurant.Restaurant] {
	return func(yield func(restaurant.Restaurant, error) bool) {
		fail := func(msg string, err error) {
			yield(restaurant.Restaurant{}, restaurant.NewNetworkError(msg, err))
		}

		v, err := newValidator()
		if err != nil {
			fail("prepare validator", err)
			return
		}

		resp, err := c.get(ctx, c.baseURL+CollectionPath)
		if err != nil {
			fail("fetch restaurants", err)
			return
		}
		defer resp.Body.Close()

		dec := json.NewDecoder(resp.Body)
		tok, err := dec.Token()
		if err != nil {
			fail("read payload", err)
			return
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			fail("read payload", fmt.Errorf("expected JSON array, got %v", tok))
			return
		}

		for i := 0; dec.More(); i++ {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				fail(fmt.Sprintf("read record %d", i), err)
				return
			}
			r, err := v.decode(raw)
			if err != nil {
				fail(fmt.Sprintf("record %d", i), err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}

		if _, err := dec.Token(); err != nil {
			fail("read payload", err)
		}
	}
}

// FetchByID returns the record served at GET /restaurants/{id}.
// A 404 is reported as NOT_FOUND; every other failure as NETWORK_ERROR.
func (c *Client) FetchByID(ctx context.Context, id int64) (restaurant.Restaurant, error) {
	v, err := newValidator()
	if err != nil {
		return restaurant.Restaurant{}, restaurant.NewNetworkError("prepare validator", err)
	}

	resp, err := c.get(ctx, fmt.Sprintf("%s%s%d", c.baseURL, CollectionPath, id))
	if err != nil {
		var se statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return restaurant.Restaurant{}, restaurant.NewNotFoundError(id)
		}
		return restaurant.Restaurant{}, restaurant.NewNetworkError(fmt.Sprintf("fetch restaurant %d", id), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return restaurant.Restaurant{}, restaurant.NewNetworkError(fmt.Sprintf("read restaurant %d", id), err)
	}
	r, err := v.decode(raw)
	if err != nil {
		return restaurant.Restaurant{}, restaurant.NewNetworkError(fmt.Sprintf("restaurant %d", id), err)
	}
	return r, nil
}

// statusError reports a non-2xx response.
type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

// get issues a GET and returns the response only for 2xx statuses.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, statusError{code: resp.StatusCode}
	}
	return resp, nil
}
