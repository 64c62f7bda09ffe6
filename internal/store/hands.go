package store

import (
	"context"
	"encoding/json"

	"github.com/samansohani78/private-poker/internal/game"
)

// InsertHandResult persists one completed hand. Duplicate hand IDs are
// ignored so a replayed record is harmless.
func (s *Store) InsertHandResult(ctx context.Context, res *game.HandResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO hands (id, table_id, hand_no, street, board, result)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		res.HandID, res.TableID, int64(res.HandNo), string(res.Street), res.Board, payload)
	return err
}

// ListHandResults returns the most recent hands for a table, newest first.
func (s *Store) ListHandResults(ctx context.Context, tableID string, limit int) ([]*game.HandResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT result FROM hands
		WHERE table_id = $1
		ORDER BY hand_no DESC
		LIMIT $2`, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*game.HandResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var res game.HandResult
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, err
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}
