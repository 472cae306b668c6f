package valkey

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/popchoice/internal/db"
)

// Upsert writes points as hashes in a single DoMulti round-trip.
func (s *Store) Upsert(ctx context.Context, collection string, points []db.Point) error {
	if len(points) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(points))
	for i := range points {
		p := &points[i]
		cmds[i] = s.b().Hset().Key(pointKey(collection, p.ID)).FieldValue().
			FieldValue(fieldID, p.ID).
			FieldValue(db.FieldContent, p.Content).
			FieldValue(db.FieldEmbedding, vectorToBytes(p.Vector)).
			Build()
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("point %s: %w", points[i].ID, err)}
		}
	}
	return nil
}
