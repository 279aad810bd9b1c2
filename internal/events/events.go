package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderCreated       = "order_created"
	OrderStatusChanged = "order_status_changed"
	MenuItemCreated    = "menu_item_created"
	MenuItemUpdated    = "menu_item_updated"
	MenuItemDeleted    = "menu_item_deleted"
	ReviewCreated      = "review_created"
)

type OrderEvent struct {
	Type        string          `json:"type"`
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	Previous    string          `json:"previous_status,omitempty"`
	OrderType   string          `json:"order_type"`
	Total       decimal.Decimal `json:"total"`
	By          string          `json:"by,omitempty"`
	At          time.Time       `json:"at"`
}

type MenuEvent struct {
	Type   string    `json:"type"`
	ItemID string    `json:"item_id"`
	Name   string    `json:"name,omitempty"`
	At     time.Time `json:"at"`
}

type ReviewEvent struct {
	Type     string    `json:"type"`
	ReviewID string    `json:"review_id"`
	Rating   int       `json:"rating"`
	At       time.Time `json:"at"`
}

type Recorded struct {
	Topic string
	Key   string
	Event map[string]any
}

// Recorder keeps published events in memory as decoded JSON.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Topic: topic, Key: key, Event: m})
	return nil
}

func (r *Recorder) Events(topic string) []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Recorded
	for _, e := range r.events {
		if topic == "" || e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
