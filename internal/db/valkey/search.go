package valkey

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/popchoice/internal/db"
)

const scoreField = "__score"

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// MinScore is applied after conversion to similarity.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB AS %s]", q.K, db.FieldEmbedding, scoreField)
	args := []string{
		indexName(q.Collection), queryStr,
		"RETURN", "3", fieldID, db.FieldContent, scoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := parseKNNResult(raw, keyPrefix(q.Collection))
	if err != nil {
		return nil, err
	}
	if q.MinScore > 0 {
		kept := res.Entries[:0]
		for _, e := range res.Entries {
			if float32(e.Score) >= float32(q.MinScore) {
				kept = append(kept, e)
			}
		}
		res.Entries = kept
		res.Total = len(kept)
	}
	return res, nil
}

func parseKNNResult(raw []rueidis.RedisMessage, prefix string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(fields)

		entry := db.SearchEntry{ID: m[fieldID], Content: m[db.FieldContent]}
		if entry.ID == "" && len(key) > len(prefix) {
			entry.ID = key[len(prefix):]
		}
		if scoreStr, ok := m[scoreField]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = db.SimilarityFromCosineDistance(d)
			}
		}
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return rueidis.BinaryString(buf)
}
