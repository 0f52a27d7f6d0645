package homeworkbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jpalmerr/homeworkbot/internal/poller"
	"golang.org/x/oauth2"
)

// DefaultEndpoint is the homework status endpoint of the review API.
const DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

const defaultRequestTimeout = 10 * time.Second

// Fetcher queries the review API for homework updated since a Unix
// timestamp and returns the decoded JSON document.
type Fetcher interface {
	Fetch(ctx context.Context, since int64) (any, error)
}

// APIFetcher is the HTTP [Fetcher] for the review API.
//
// Each call issues exactly one GET request with an "Authorization: OAuth
// <token>" header and a from_date query parameter. There are no internal retries; the polling
// loop is the retry mechanism.
type APIFetcher struct {
	endpoint string
	timeout  time.Duration
	client   *poller.Client
}

// NewAPIFetcher creates an [APIFetcher] for endpoint authenticated with
// token. A non-positive timeout falls back to 10 seconds.
func NewAPIFetcher(endpoint, token string, timeout time.Duration) *APIFetcher {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	// the review API expects the non-standard "OAuth" scheme
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "OAuth"})
	return &APIFetcher{
		endpoint: endpoint,
		timeout:  timeout,
		client:   poller.NewClient(poller.WithTokenSource(ts)),
	}
}

// Fetch implements [Fetcher].
//
// It returns a [*TransportError] when the request does not complete, a
// [*ServerError] for any status other than 200 and a
// [*MalformedResponseError] when the body is not JSON. Numbers in the
// returned document are [json.Number] values.
func (f *APIFetcher) Fetch(ctx context.Context, since int64) (any, error) {
	resp := f.client.Get(ctx, f.endpoint, nil,
		url.Values{"from_date": {strconv.FormatInt(since, 10)}},
		f.timeout,
	)
	if resp.Error != nil {
		return nil, &TransportError{Err: resp.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}

	doc, err := decodeDocument(resp.Body)
	if err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	return doc, nil
}

// Close releases idle connections held by the fetcher.
func (f *APIFetcher) Close() {
	f.client.Close()
}

func decodeDocument(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	// trailing garbage after the first value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return doc, nil
}
