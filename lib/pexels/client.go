// Package pexels searches the Pexels photo API and returns records in the
// shape the gallery controller consumes.
package pexels

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

	"github.com/pthm/hxsite/lib/async"
)

// DefaultBaseURL is the Pexels v1 API root.
const DefaultBaseURL = "https://api.pexels.com/v1"

// ErrMissingKey is returned when no API key has been configured.
var ErrMissingKey = &async.ProviderError{Message: "Pexels API key is not configured"}

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client implements async.RemoteDataSource against the Pexels search
// endpoint.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a client with a request timeout.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Photos []photo `json:"photos"`
}

type photo struct {
	ID              int64  `json:"id"`
	Alt             string `json:"alt"`
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographer_url"`
	Src             struct {
		Large2x string `json:"large2x"`
	} `json:"src"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Search runs one photo search. Provider failures are returned as
// *async.ProviderError so their text reaches the visitor; transport errors
// are returned as is.
func (c *Client) Search(ctx context.Context, q async.RemoteQuery) ([]async.RawRecord, error) {
	if c.APIKey == "" {
		return nil, ErrMissingKey
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", q.Keyword)
	params.Set("per_page", strconv.Itoa(q.PageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pexels: build request: %w", err)
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, providerError(resp)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("pexels: decode response: %w", err)
	}

	records := make([]async.RawRecord, 0, len(body.Photos))
	for _, p := range body.Photos {
		records = append(records, async.RawRecord{
			ID:              strconv.FormatInt(p.ID, 10),
			Alt:             plainText(p.Alt),
			ImageURL:        httpURL(p.Src.Large2x),
			Photographer:    plainText(p.Photographer),
			PhotographerURL: httpURL(p.PhotographerURL),
		})
	}
	return records, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func providerError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorResponse
	if json.Unmarshal(data, &body) == nil {
		switch {
		case body.Error != "":
			return &async.ProviderError{Message: plainText(body.Error)}
		case body.Code != "":
			return &async.ProviderError{Message: plainText(body.Code)}
		}
	}
	if text := strings.TrimSpace(plainText(string(data))); text != "" && len(text) < 200 && !strings.ContainsAny(text, "{}") {
		return &async.ProviderError{Message: text}
	}
	msg := http.StatusText(resp.StatusCode)
	if msg == "" {
		msg = "status " + strconv.Itoa(resp.StatusCode)
	}
	return &async.ProviderError{Message: msg}
}

// IsProviderError reports whether err carries a provider message.
func IsProviderError(err error) bool {
	var pe *async.ProviderError
	return errors.As(err, &pe)
}
