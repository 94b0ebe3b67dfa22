package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var _ StateStore = (*UpstashStore)(nil)

// UpstashStore implements StateStore on the Upstash Redis REST API. Writes
// use SETEX so the state of places nobody asks for expires after StateTTL.
type UpstashStore struct {
	restURL   string
	restToken string
	ttl       time.Duration
	client    *http.Client
}

// NewUpstashStore creates a store talking to the REST endpoint restURL
func NewUpstashStore(restURL, restToken string) *UpstashStore {
	return &UpstashStore{
		restURL:   strings.TrimRight(restURL, "/"),
		restToken: restToken,
		ttl:       StateTTL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Get retrieves the state stored under key
func (s *UpstashStore) Get(ctx context.Context, key string) (ReloadState, bool, error) {
	var reply struct {
		Result *string `json:"result"`
	}
	if err := s.command(ctx, http.MethodGet, nil, &reply, "get", key); err != nil {
		return ReloadState{}, false, err
	}
	if reply.Result == nil {
		return ReloadState{}, false, nil
	}

	var state ReloadState
	if err := json.Unmarshal([]byte(*reply.Result), &state); err != nil {
		return ReloadState{}, false, fmt.Errorf("unmarshaling state: %w", err)
	}
	return state, true, nil
}

// Set stores state under key for StateTTL
func (s *UpstashStore) Set(ctx context.Context, key string, state ReloadState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	seconds := fmt.Sprint(int64(s.ttl / time.Second))
	return s.command(ctx, http.MethodPost, strings.NewReader(string(raw)), nil, "setex", key, seconds)
}

// command sends one Redis command as path segments, the value (if any) as the
// request body, and decodes the JSON reply into out when out is not nil
func (s *UpstashStore) command(ctx context.Context, method string, body io.Reader, out any, args ...string) error {
	segments := make([]string, len(args))
	for i, a := range args {
		segments[i] = url.PathEscape(a)
	}
	endpoint := s.restURL + "/" + strings.Join(segments, "/")

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.restToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstash %s: %w", args[0], err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetail))
		return fmt.Errorf("upstash %s: unexpected status %d: %s", args[0], resp.StatusCode, detail)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s reply: %w", args[0], err)
	}
	return nil
}
