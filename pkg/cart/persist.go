package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/panaghia/restaurant/pkg/storage"
)

// Persister saves the cart under storage.KeyCart. It is optional; a Store
// works without it.
type Persister struct {
	Store storage.Store
}

// Load returns a store with the saved lines. A missing or unreadable record
// yields an empty cart; the unreadable record is dropped.
func (p Persister) Load(ctx context.Context) (*Store, error) {
	raw, err := p.Store.Get(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		if derr := p.Store.Delete(ctx, storage.KeyCart); derr != nil {
			return nil, fmt.Errorf("drop corrupt cart: %w", derr)
		}
		return New(), nil
	}

	s := New()
	for _, l := range lines {
		if l.ID == "" || l.Quantity < 1 {
			continue
		}
		if i := s.indexLocked(l.ID); i >= 0 {
			s.lines[i].Quantity += l.Quantity
			continue
		}
		s.lines = append(s.lines, l)
	}
	return s, nil
}

func (p Persister) Save(ctx context.Context, snap Snapshot) error {
	if snap.IsEmpty() {
		return p.Store.Delete(ctx, storage.KeyCart)
	}
	raw, err := json.Marshal(snap.lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return p.Store.Set(ctx, storage.KeyCart, string(raw))
}
