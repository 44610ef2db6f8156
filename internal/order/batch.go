package order

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/unicode/norm"
)

// ReadBatch reads an order batch from a JSON file: a single array of order
// objects with fields id, name, temp, shelfLife, decayRate.
func ReadBatch(path string) ([]Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open order batch: %w", err)
	}
	defer f.Close()

	batch, err := ParseBatch(f)
	if err != nil {
		return nil, fmt.Errorf("parse order batch %s: %w", path, err)
	}
	return batch, nil
}

// ParseBatch decodes and validates an order batch from r.
//
// Display names are NFC-normalized so that downstream renderings (logs,
// summaries, golden files) are byte-stable regardless of how the input file
// encoded its text.
func ParseBatch(r io.Reader) ([]Order, error) {
	var batch []Order
	dec := json.NewDecoder(r)
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	for i := range batch {
		if err := validate(batch[i]); err != nil {
			// Positions are 1-based: they are only ever human-read.
			return nil, fmt.Errorf("order %d: %w", i+1, err)
		}
		batch[i].Name = norm.NFC.String(batch[i].Name)
	}
	return batch, nil
}

// validate checks the fields of a single batch item. Temperature classes are
// not checked against the configured shelves here: an order whose class has
// no shelf is a data-integrity case the engine counts at placement time, not
// a load failure.
func validate(o Order) error {
	if o.ID == "" {
		return fmt.Errorf("missing id")
	}
	if o.Temp == "" {
		return fmt.Errorf("order %s: missing temp", o.ID)
	}
	if o.ShelfLife <= 0 {
		return fmt.Errorf("order %s: shelfLife must be positive, got %g", o.ID, o.ShelfLife)
	}
	if o.DecayRate < 0 {
		return fmt.Errorf("order %s: decayRate must be non-negative, got %g", o.ID, o.DecayRate)
	}
	return nil
}
