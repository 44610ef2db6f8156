package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shelfsim/shelfsim/internal/report"
)

// WriteRun archives one finished run under the given ID.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - archiving a run whose ID
// already exists is silently ignored, detail rows included.
//
// The header row and all detail rows are written in one transaction, so a
// run is either fully archived or absent.
func (s *Store) WriteRun(ctx context.Context, id string, sum report.Summary) error {
	countsJSON, err := json.Marshal(sum.Counts)
	if err != nil {
		return fmt.Errorf("write run: marshal counts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, mode, failed, error, simulated_span, real_span, counts)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		sum.Mode,
		boolToInt(sum.Failed),
		sum.Error,
		sum.SimulatedSpan,
		sum.RealSpan,
		string(countsJSON),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Already archived; leave the existing rows untouched.
		return nil
	}

	for _, sh := range sum.Shelves {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_shelves (run_id, name, final, peak, capacity)
			VALUES (?, ?, ?, ?, ?)
		`, id, sh.Name, sh.Final, sh.Peak, sh.Capacity); err != nil {
			return fmt.Errorf("write run shelf %s: %w", sh.Name, err)
		}
	}

	for _, o := range sum.Orders {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO run_orders (run_id, pos, order_id, name, temp, outcome, picked_up, held_for)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, o.Pos, o.ID, o.Name, o.Temp, o.Outcome, boolToInt(o.PickedUp), o.HeldFor); err != nil {
			return fmt.Errorf("write run order %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
