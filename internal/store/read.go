package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shelfsim/shelfsim/internal/report"
)

// ErrRunNotFound is returned when no archived run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// RunHeader is one archived run's identity row, without detail rows.
type RunHeader struct {
	ID            string
	Mode          string
	Failed        bool
	SimulatedSpan float64
	ArchivedAt    string
}

// ReadRun loads an archived run back into a summary.
func (s *Store) ReadRun(ctx context.Context, id string) (report.Summary, error) {
	var (
		sum        report.Summary
		failed     int
		countsJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT mode, failed, error, simulated_span, real_span, counts
		FROM runs WHERE id = ?
	`, id).Scan(&sum.Mode, &failed, &sum.Error, &sum.SimulatedSpan, &sum.RealSpan, &countsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Summary{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return report.Summary{}, fmt.Errorf("read run %s: %w", id, err)
	}
	sum.Failed = failed != 0
	if err := json.Unmarshal([]byte(countsJSON), &sum.Counts); err != nil {
		return report.Summary{}, fmt.Errorf("read run %s: counts: %w", id, err)
	}

	shelves, err := s.readShelves(ctx, id)
	if err != nil {
		return report.Summary{}, err
	}
	sum.Shelves = shelves

	orders, err := s.readOrders(ctx, id)
	if err != nil {
		return report.Summary{}, err
	}
	sum.Orders = orders

	return sum, nil
}

func (s *Store) readShelves(ctx context.Context, id string) ([]report.ShelfLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, final, peak, capacity
		FROM run_shelves WHERE run_id = ?
		ORDER BY name ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read run %s shelves: %w", id, err)
	}
	defer rows.Close()

	var shelves []report.ShelfLine
	for rows.Next() {
		var sh report.ShelfLine
		if err := rows.Scan(&sh.Name, &sh.Final, &sh.Peak, &sh.Capacity); err != nil {
			return nil, fmt.Errorf("read run %s shelves: %w", id, err)
		}
		shelves = append(shelves, sh)
	}
	return shelves, rows.Err()
}

func (s *Store) readOrders(ctx context.Context, id string) ([]report.OrderLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pos, order_id, name, temp, outcome, picked_up, held_for
		FROM run_orders WHERE run_id = ?
		ORDER BY pos ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read run %s orders: %w", id, err)
	}
	defer rows.Close()

	var orders []report.OrderLine
	for rows.Next() {
		var (
			o        report.OrderLine
			pickedUp int
		)
		if err := rows.Scan(&o.Pos, &o.ID, &o.Name, &o.Temp, &o.Outcome, &pickedUp, &o.HeldFor); err != nil {
			return nil, fmt.Errorf("read run %s orders: %w", id, err)
		}
		o.PickedUp = pickedUp != 0
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListRuns returns headers for the most recently archived runs, newest
// first, up to limit. A limit of 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunHeader, error) {
	q := `
		SELECT id, mode, failed, simulated_span, archived_at
		FROM runs ORDER BY archived_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var headers []RunHeader
	for rows.Next() {
		var (
			h      RunHeader
			failed int
		)
		if err := rows.Scan(&h.ID, &h.Mode, &failed, &h.SimulatedSpan, &h.ArchivedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		h.Failed = failed != 0
		headers = append(headers, h)
	}
	return headers, rows.Err()
}
