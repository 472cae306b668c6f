package valkey

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/domain"
)

const (
	fieldID    = "id"
	hnswM      = 16
	hnswEFCons = 200
)

// keyPrefix returns the hash key prefix of a collection: "popchoice:movies:".
func keyPrefix(collection string) string {
	return domain.KeyPrefix + collection + ":"
}

// indexName returns the FT index name of a collection: "popchoice:movies:idx".
func indexName(collection string) string {
	return keyPrefix(collection) + "idx"
}

func pointKey(collection, id string) string {
	return keyPrefix(collection) + id
}

// EnsureCollection creates the FT index for a collection unless it already exists.
func (s *Store) EnsureCollection(ctx context.Context, collection string, dim int) error {
	def, err := db.NewIndex(indexName(collection)).
		Prefix(keyPrefix(collection)).
		Tag(fieldID).
		VectorHNSW(db.FieldEmbedding, dim, db.DistanceCosine, hnswM, hnswEFCons).
		Build()
	if err != nil {
		return err
	}

	exists, err := s.IndexExists(ctx, def.Name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := s.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return err
	}
	return nil
}

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "not found") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name, "ON", "HASH"}

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	switch f.Type {
	case db.IndexFieldTag:
		return []string{f.Name, "TAG"}, nil
	case db.IndexFieldVector:
		return buildVectorFieldArgs(f), nil
	default:
		return nil, errors.New("unknown field type")
	}
}

func buildVectorFieldArgs(f *db.IndexField) []string {
	algo := f.VectorAlgo
	if algo == "" {
		algo = db.VectorHNSW
	}
	distance := f.VectorDistance
	if distance == "" {
		distance = db.DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(distance),
	}
	if algo == db.VectorHNSW {
		if f.VectorM > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
		}
		if f.VectorEFConstruct > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
		}
	}

	out := make([]string, 0, 4+len(attrs))
	out = append(out, f.Name, "VECTOR", string(algo), strconv.Itoa(len(attrs)))
	return append(out, attrs...)
}
