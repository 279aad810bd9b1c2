// Package orderstatus owns the order lifecycle: the forward pipeline, the
// terminal states and the label/color table every view renders from.
package orderstatus

import (
	"errors"
	"fmt"
)

type Status string

const (
	Pending        Status = "pending"
	Confirmed      Status = "confirmed"
	Preparing      Status = "preparing"
	Ready          Status = "ready"
	OutForDelivery Status = "out_for_delivery"
	Delivered      Status = "delivered"
	Cancelled      Status = "cancelled"
)

var (
	ErrUnknownStatus = errors.New("unknown order status")
	ErrNoChange      = errors.New("order already has this status")
	ErrTerminal      = errors.New("order is in a terminal status")
)

// pipeline is the forward order of non-cancelled statuses.
var pipeline = []Status{Pending, Confirmed, Preparing, Ready, OutForDelivery, Delivered}

// ActiveDelivery is the default filter of the delivery board.
var ActiveDelivery = []Status{Confirmed, Preparing, Ready, OutForDelivery}

// Open lists the statuses the dashboard counts as still pending work.
var Open = []Status{Pending, Confirmed, Preparing}

type Meta struct {
	Label string
	Color string
}

var meta = map[Status]Meta{
	Pending:        {Label: "În așteptare", Color: "#eab308"},
	Confirmed:      {Label: "Confirmată", Color: "#3b82f6"},
	Preparing:      {Label: "Se prepară", Color: "#a855f7"},
	Ready:          {Label: "Gata", Color: "#22c55e"},
	OutForDelivery: {Label: "În livrare", Color: "#f97316"},
	Delivered:      {Label: "Livrată", Color: "#16a34a"},
	Cancelled:      {Label: "Anulată", Color: "#ef4444"},
}

// All returns every status, pipeline first and cancelled last.
func All() []Status {
	out := make([]Status, 0, len(pipeline)+1)
	out = append(out, pipeline...)
	return append(out, Cancelled)
}

func Parse(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := meta[s]
	return ok
}

func (s Status) String() string { return string(s) }

func (s Status) Meta() Meta {
	if m, ok := meta[s]; ok {
		return m
	}
	return Meta{Label: string(s), Color: "#6b7280"}
}

func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

func (s Status) CanCancel() bool {
	return s.Valid() && !s.IsTerminal()
}

// Next returns the single forward step from s. Terminal and unknown statuses
// have no next step.
func (s Status) Next() (Status, bool) {
	if s.IsTerminal() {
		return "", false
	}
	for i, p := range pipeline {
		if p == s && i+1 < len(pipeline) {
			return pipeline[i+1], true
		}
	}
	return "", false
}

type Option struct {
	Status   Status
	Meta     Meta
	Disabled bool
}

// Picker lists every status as a target for an explicit jump. The current
// status is disabled.
func Picker(current Status) []Option {
	all := All()
	out := make([]Option, 0, len(all))
	for _, s := range all {
		out = append(out, Option{Status: s, Meta: s.Meta(), Disabled: s == current})
	}
	return out
}

// CanTransition reports whether an order in from may be moved to to.
// Jumps in either direction are allowed while the order is not terminal.
func CanTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return ErrNoChange
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrTerminal, from)
	}
	return nil
}
