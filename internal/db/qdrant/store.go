package qdrant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/popchoice/internal/db"
)

var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Qdrant gRPC endpoint.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

// pointsClient is the subset of *qdrant.Client the store uses.
type pointsClient interface {
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	Close() error
}

// Store implements db.Store over Qdrant. Threshold filtering is pushed down as score_threshold.
type Store struct {
	client pointsClient
}

// NewStore connects to Qdrant.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &Store{client: client}, nil
}

// Ping runs the Qdrant health check.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the gRPC connection.
func (s *Store) Close() {
	_ = s.client.Close()
}

// SearchKNN queries the collection with cosine similarity.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	req := &qdrant.QueryPoints{
		CollectionName: q.Collection,
		Query:          qdrant.NewQuery(q.Vector...),
		Limit:          qdrant.PtrOf(uint64(q.K)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if q.MinScore > 0 {
		req.ScoreThreshold = qdrant.PtrOf(float32(q.MinScore))
	}

	points, err := s.client.Query(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, db.SearchEntry{
			ID:      payloadString(p.GetPayload(), "id", pointIDString(p.GetId())),
			Content: payloadString(p.GetPayload(), db.FieldContent, ""),
			Score:   db.Clamp01(float64(p.GetScore())),
		})
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// EnsureCollection creates a cosine collection of the given size unless it exists.
func (s *Store) EnsureCollection(ctx context.Context, collection string, dim int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return &db.Error{Op: db.OpCreateCollection, Err: err}
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return &db.Error{Op: db.OpCreateCollection, Err: err}
	}
	return nil
}

// Upsert writes points. IDs must be unsigned integers or UUIDs; the original id is kept in the payload.
func (s *Store) Upsert(ctx context.Context, collection string, points []db.Point) error {
	if len(points) == 0 {
		return nil
	}

	structs := make([]*qdrant.PointStruct, len(points))
	for i := range points {
		p := &points[i]
		id, err := pointID(p.ID)
		if err != nil {
			return err
		}
		structs[i] = &qdrant.PointStruct{
			Id:      id,
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: map[string]*qdrant.Value{
				"id":            {Kind: &qdrant.Value_StringValue{StringValue: p.ID}},
				db.FieldContent: {Kind: &qdrant.Value_StringValue{StringValue: p.Content}},
			},
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

func payloadString(payload map[string]*qdrant.Value, key, fallback string) string {
	v, ok := payload[key]
	if !ok {
		return fallback
	}
	if sv, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
		return sv.StringValue
	}
	return fallback
}

// pointID maps a passage id onto the two id kinds qdrant accepts.
func pointID(id string) (*qdrant.PointId, error) {
	if num, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(num), nil
	}
	if _, err := uuid.Parse(id); err == nil {
		return qdrant.NewIDUUID(id), nil
	}
	return nil, fmt.Errorf("point id %q: qdrant requires numeric or UUID ids", id)
}

func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	return strconv.FormatUint(id.GetNum(), 10)
}
