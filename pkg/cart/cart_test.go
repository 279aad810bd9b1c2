package cart

import (
	"context"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaghia/restaurant/pkg/storage"
)

func item(id string, price int64) Item {
	return Item{ID: id, Name: "item " + id, Price: decimal.NewFromInt(price)}
}

func TestAdd_SameIDTwice(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item("ciorba", 18))
	snap := c.Add(item("ciorba", 18))

	require.Equal(t, 1, snap.Len())
	l, ok := snap.Line("ciorba")
	require.True(t, ok)
	assert.Equal(t, 2, l.Quantity)
	assert.Equal(t, 2, snap.ItemCount())
}

func TestUpdateQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		qty     int
		present bool
	}{
		{name: "set exact", qty: 5, present: true},
		{name: "zero removes", qty: 0, present: false},
		{name: "negative removes", qty: -3, present: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := New()
			c.Add(item("a", 10))
			c.Add(item("a", 10))
			snap := c.UpdateQuantity("a", tt.qty)

			l, ok := snap.Line("a")
			assert.Equal(t, tt.present, ok)
			if tt.present {
				assert.Equal(t, tt.qty, l.Quantity)
			}
		})
	}
}

func TestUpdateQuantity_UnknownIsNoop(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item("a", 10))
	snap := c.UpdateQuantity("b", 4)
	assert.Equal(t, 1, snap.ItemCount())
}

func TestRemoveAndClear(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item("a", 1))
	c.Add(item("b", 2))
	c.Add(item("c", 3))

	snap := c.Remove("b")
	assert.Equal(t, []string{"a", "c"}, ids(snap))

	snap = c.Remove("missing")
	assert.Equal(t, 2, snap.Len())

	snap = c.Clear()
	assert.True(t, snap.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
}

func TestSnapshot_IsImmutable(t *testing.T) {
	t.Parallel()

	c := New()
	before := c.Add(item("a", 5))
	c.Add(item("a", 5))
	c.Add(item("b", 5))

	assert.Equal(t, 1, before.ItemCount())
	lines := before.Lines()
	lines[0].Quantity = 99
	l, _ := before.Line("a")
	assert.Equal(t, 1, l.Quantity)
}

func TestSubtotal(t *testing.T) {
	t.Parallel()

	c := New()
	c.Add(item("a", 18))
	c.Add(item("a", 18))
	snap := c.Add(item("b", 6))

	assert.True(t, decimal.NewFromInt(42).Equal(snap.Subtotal()), snap.Subtotal().String())
}

func TestInvariants_RandomSequences(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c", "d"}
	c := New()

	for i := 0; i < 2000; i++ {
		id := ids[r.Intn(len(ids))]
		var snap Snapshot
		switch r.Intn(3) {
		case 0:
			snap = c.Add(item(id, 3))
		case 1:
			snap = c.UpdateQuantity(id, r.Intn(6)-2)
		default:
			snap = c.Remove(id)
		}

		seen := map[string]bool{}
		sum := 0
		for _, l := range snap.Lines() {
			require.False(t, seen[l.ID], "duplicate line %s", l.ID)
			require.GreaterOrEqual(t, l.Quantity, 1)
			seen[l.ID] = true
			sum += l.Quantity
		}
		require.Equal(t, sum, snap.ItemCount())
		require.Equal(t, snap.ItemCount(), snap.ItemCount())
	}
}

func TestPersister_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p := Persister{Store: storage.NewMemory()}

	c := New()
	c.Add(item("a", 18))
	c.Add(item("a", 18))
	require.NoError(t, p.Save(ctx, c.Add(item("b", 6))))

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	snap := loaded.Snapshot()
	assert.Equal(t, []string{"a", "b"}, ids(snap))
	assert.Equal(t, 3, snap.ItemCount())

	require.NoError(t, p.Save(ctx, loaded.Clear()))
	_, err = p.Store.Get(ctx, storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPersister_CorruptRecordIsDropped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Set(ctx, storage.KeyCart, "{not json"))

	loaded, err := Persister{Store: kv}.Load(ctx)
	require.NoError(t, err)
	assert.True(t, loaded.Snapshot().IsEmpty())

	_, err = kv.Get(ctx, storage.KeyCart)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func ids(s Snapshot) []string {
	var out []string
	for _, l := range s.Lines() {
		out = append(out, l.ID)
	}
	return out
}
