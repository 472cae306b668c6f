package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/popchoice/internal/db"
)

var _ db.Store = (*Store)(nil)

const defaultTimeout = 30 * time.Second

// Config holds the PostgREST endpoint of a Supabase project.
// MatchFunction defaults to "match_<collection>".
type Config struct {
	URL           string
	APIKey        string
	MatchFunction string
	HTTPClient    *http.Client
}

// Store implements db.Store over Supabase PostgREST and a pgvector RPC function.
// Thresholding and ordering are computed by the database function.
type Store struct {
	baseURL string
	apiKey  string
	matchFn string
	client  *http.Client
}

// NewStore validates the config and builds the HTTP client.
func NewStore(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("url is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Store{
		baseURL: strings.TrimRight(cfg.URL, "/") + "/rest/v1",
		apiKey:  cfg.APIKey,
		matchFn: cfg.MatchFunction,
		client:  client,
	}, nil
}

type matchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

type matchRow struct {
	ID         json.Number `json:"id"`
	Content    string      `json:"content"`
	Similarity float64     `json:"similarity"`
}

type insertRow struct {
	ID        *int64    `json:"id,omitempty"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Ping requests the PostgREST root.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.call(ctx, http.MethodGet, s.baseURL+"/", nil, nil, nil); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.client.CloseIdleConnections()
}

// SearchKNN calls the match function with the query vector, threshold and count.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	body := matchRequest{
		QueryEmbedding: q.Vector,
		MatchThreshold: q.MinScore,
		MatchCount:     q.K,
	}
	var rows []matchRow
	if err := s.call(ctx, http.MethodPost, s.baseURL+"/rpc/"+s.matchFunction(q.Collection), body, nil, &rows); err != nil {
		return nil, &db.Error{Op: db.OpRPC, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, db.SearchEntry{
			ID:      r.ID.String(),
			Content: r.Content,
			Score:   db.Clamp01(r.Similarity),
		})
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// EnsureCollection checks that the table is reachable. Schema is managed by SQL migrations.
func (s *Store) EnsureCollection(ctx context.Context, collection string, _ int) error {
	url := s.baseURL + "/" + collection + "?select=id&limit=1"
	if err := s.call(ctx, http.MethodGet, url, nil, nil, nil); err != nil {
		return &db.Error{Op: db.OpCreateCollection, Err: fmt.Errorf("table %s: %w", collection, err)}
	}
	return nil
}

// Upsert inserts rows, merging on primary key. Non-numeric ids are left to the database default.
func (s *Store) Upsert(ctx context.Context, collection string, points []db.Point) error {
	if len(points) == 0 {
		return nil
	}

	rows := make([]insertRow, len(points))
	for i, p := range points {
		rows[i] = insertRow{Content: p.Content, Embedding: p.Vector}
		if id, err := strconv.ParseInt(p.ID, 10, 64); err == nil {
			rows[i].ID = &id
		}
	}

	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=minimal"}
	if err := s.call(ctx, http.MethodPost, s.baseURL+"/"+collection, rows, headers, nil); err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

func (s *Store) matchFunction(collection string) string {
	if s.matchFn != "" {
		return s.matchFn
	}
	return "match_" + collection
}

// call sends a JSON request and decodes a JSON response into out when out is non-nil.
func (s *Store) call(ctx context.Context, method, url string, in any, headers map[string]string, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is a non-2xx PostgREST response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "http " + strconv.Itoa(e.Code)
	}
	return "http " + strconv.Itoa(e.Code) + ": " + e.Body
}
