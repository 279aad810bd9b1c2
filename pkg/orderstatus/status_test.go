package orderstatus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingUpdater struct {
	calls []Status
	err   error
}

func (r *recordingUpdater) SetOrderStatus(_ context.Context, _ string, s Status) error {
	r.calls = append(r.calls, s)
	return r.err
}

func TestNext_FollowsPipeline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from Status
		want Status
		ok   bool
	}{
		{Pending, Confirmed, true},
		{Confirmed, Preparing, true},
		{Preparing, Ready, true},
		{Ready, OutForDelivery, true},
		{OutForDelivery, Delivered, true},
		{Delivered, "", false},
		{Cancelled, "", false},
		{Status("bogus"), "", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.from), func(t *testing.T) {
			t.Parallel()
			got, ok := tt.from.Next()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalAndCancel(t *testing.T) {
	t.Parallel()

	for _, s := range All() {
		terminal := s == Delivered || s == Cancelled
		assert.Equal(t, terminal, s.IsTerminal(), s)
		assert.Equal(t, !terminal, s.CanCancel(), s)
	}
}

func TestPicker_DisablesCurrentOnly(t *testing.T) {
	t.Parallel()

	opts := Picker(Preparing)
	require.Len(t, opts, 7)
	for _, o := range opts {
		assert.Equal(t, o.Status == Preparing, o.Disabled, o.Status)
		assert.NotEmpty(t, o.Meta.Label)
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CanTransition(Pending, Ready))
	assert.NoError(t, CanTransition(Ready, Confirmed))
	assert.ErrorIs(t, CanTransition(Ready, Ready), ErrNoChange)
	assert.ErrorIs(t, CanTransition(Delivered, Pending), ErrTerminal)
	assert.ErrorIs(t, CanTransition(Cancelled, Pending), ErrTerminal)
	assert.ErrorIs(t, CanTransition(Pending, Status("lost")), ErrUnknownStatus)
}

func TestParse(t *testing.T) {
	t.Parallel()

	s, err := Parse("out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, OutForDelivery, s)

	_, err = Parse("shipped")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestWorkflow_Advance(t *testing.T) {
	t.Parallel()

	u := &recordingUpdater{}
	w := NewWorkflow(u)

	got, err := w.Advance(context.Background(), "o1", Ready)
	require.NoError(t, err)
	assert.Equal(t, OutForDelivery, got)
	assert.Equal(t, []Status{OutForDelivery}, u.calls)

	_, err = w.Advance(context.Background(), "o1", Delivered)
	assert.ErrorIs(t, err, ErrTerminal)
	assert.Len(t, u.calls, 1)
}

func TestWorkflow_SetStatus_RejectsNoop(t *testing.T) {
	t.Parallel()

	u := &recordingUpdater{}
	w := NewWorkflow(u)

	_, err := w.SetStatus(context.Background(), "o1", Confirmed, Confirmed)
	assert.ErrorIs(t, err, ErrNoChange)
	assert.Empty(t, u.calls)

	got, err := w.SetStatus(context.Background(), "o1", Confirmed, Pending)
	require.NoError(t, err)
	assert.Equal(t, Pending, got)
}

func TestWorkflow_Cancel(t *testing.T) {
	t.Parallel()

	for _, s := range All() {
		s := s
		t.Run(string(s), func(t *testing.T) {
			t.Parallel()
			u := &recordingUpdater{}
			w := NewWorkflow(u)

			got, err := w.Cancel(context.Background(), "o1", s, true)
			if s.IsTerminal() {
				assert.ErrorIs(t, err, ErrTerminal)
				assert.Empty(t, u.calls)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Cancelled, got)
		})
	}
}

func TestWorkflow_Cancel_NeedsConfirmation(t *testing.T) {
	t.Parallel()

	u := &recordingUpdater{}
	w := NewWorkflow(u)

	got, err := w.Cancel(context.Background(), "o1", Pending, false)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, Pending, got)
	assert.Empty(t, u.calls)
}

func TestWorkflow_ServerErrorKeepsStatus(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	w := NewWorkflow(&recordingUpdater{err: boom})

	got, err := w.Advance(context.Background(), "o1", Pending)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Pending, got)
}
