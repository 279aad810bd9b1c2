package orderstatus

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotConfirmed = errors.New("cancellation was not confirmed")

// Updater sends a status change to the server.
type Updater interface {
	SetOrderStatus(ctx context.Context, orderID string, status Status) error
}

// Workflow drives the admin actions on a single order. It only excludes the
// no-op jump; the server decides whether a jump is legal.
type Workflow struct {
	Updater Updater
}

func NewWorkflow(u Updater) *Workflow {
	return &Workflow{Updater: u}
}

// Advance moves the order one step forward and returns the new status.
func (w *Workflow) Advance(ctx context.Context, orderID string, current Status) (Status, error) {
	next, ok := current.Next()
	if !ok {
		return current, fmt.Errorf("%w: %s", ErrTerminal, current)
	}
	if err := w.Updater.SetOrderStatus(ctx, orderID, next); err != nil {
		return current, err
	}
	return next, nil
}

func (w *Workflow) SetStatus(ctx context.Context, orderID string, current, target Status) (Status, error) {
	if !target.Valid() {
		return current, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}
	if target == current {
		return current, ErrNoChange
	}
	if err := w.Updater.SetOrderStatus(ctx, orderID, target); err != nil {
		return current, err
	}
	return target, nil
}

// Cancel requires an explicit confirmation from the caller.
func (w *Workflow) Cancel(ctx context.Context, orderID string, current Status, confirmed bool) (Status, error) {
	if !current.CanCancel() {
		return current, fmt.Errorf("%w: %s", ErrTerminal, current)
	}
	if !confirmed {
		return current, ErrNotConfirmed
	}
	if err := w.Updater.SetOrderStatus(ctx, orderID, Cancelled); err != nil {
		return current, err
	}
	return Cancelled, nil
}
