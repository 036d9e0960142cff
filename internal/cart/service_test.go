package cart

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maisonaurelle/boutique-backend/pkg/logger"
)

type fakeMirror struct {
	upserts    []string
	deletes    []string
	deleteAlls []string
	err        error
}

func (m *fakeMirror) UpsertLine(_ context.Context, ownerKey, productID, variant string, quantity int) error {
	m.upserts = append(m.upserts, ownerKey+"|"+productID+"|"+variant)
	return m.err
}

func (m *fakeMirror) DeleteLine(_ context.Context, ownerKey, productID, variant string) error {
	m.deletes = append(m.deletes, ownerKey+"|"+productID+"|"+variant)
	return m.err
}

func (m *fakeMirror) DeleteAllLines(_ context.Context, ownerKey string) error {
	m.deleteAlls = append(m.deleteAlls, ownerKey)
	return m.err
}

func newTestService(t *testing.T, mirror Mirror) (*Service, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "cart-test", Output: &buf})
	svc, err := NewService(NewStore(), mirror, logg)
	require.NoError(t, err)
	svc.dispatch = func(fn func()) { fn() }
	return svc, &buf
}

func TestAddItemMirrorsForPersistentOwners(t *testing.T) {
	mirror := &fakeMirror{}
	svc, _ := newTestService(t, mirror)

	svc.AddItem(context.Background(), "user-1", true, AddInput{
		ProductID: "p1", Name: "Ulania Watch", Variant: "Gold", Quantity: 1,
	})

	require.Len(t, mirror.upserts, 1)
	assert.Equal(t, "user-1|p1|Gold", mirror.upserts[0])
}

func TestAddItemSkipsMirrorForGuests(t *testing.T) {
	mirror := &fakeMirror{}
	svc, _ := newTestService(t, mirror)

	svc.AddItem(context.Background(), "session-abc", false, AddInput{
		ProductID: "p1", Name: "Silk Scarf", Quantity: 1,
	})

	assert.Empty(t, mirror.upserts)
}

func TestMirrorFailureDoesNotAffectLocalState(t *testing.T) {
	mirror := &fakeMirror{err: errors.New("connection refused")}
	svc, buf := newTestService(t, mirror)

	svc.AddItem(context.Background(), "user-1", true, AddInput{
		ProductID: "p1", Name: "Silk Scarf", Quantity: 2,
	})

	lines, total, count := svc.Snapshot("user-1")
	require.Len(t, lines, 1)
	assert.Equal(t, 2, count)
	assert.Zero(t, total)
	assert.Contains(t, buf.String(), "cart mirror write failed")
}

func TestUpdateQuantityToZeroMirrorsDelete(t *testing.T) {
	mirror := &fakeMirror{}
	svc, _ := newTestService(t, mirror)
	ctx := context.Background()

	line := svc.AddItem(ctx, "user-1", true, AddInput{
		ProductID: "p1", Name: "Silk Scarf", Variant: "Ivory", Quantity: 2,
	})

	ok := svc.UpdateQuantity(ctx, "user-1", true, line.CompositeID, 0)
	require.True(t, ok)

	lines, _, _ := svc.Snapshot("user-1")
	assert.Empty(t, lines)
	require.Len(t, mirror.deletes, 1)
	assert.Equal(t, "user-1|p1|Ivory", mirror.deletes[0])
}

func TestRemoveItemUnknownLine(t *testing.T) {
	mirror := &fakeMirror{}
	svc, _ := newTestService(t, mirror)

	ok := svc.RemoveItem(context.Background(), "user-1", true, "missing")
	assert.False(t, ok)
	assert.Empty(t, mirror.deletes)
}

func TestClearMirrorsBulkDelete(t *testing.T) {
	mirror := &fakeMirror{}
	svc, _ := newTestService(t, mirror)
	ctx := context.Background()

	svc.AddItem(ctx, "user-1", true, AddInput{ProductID: "p1", Name: "Silk Scarf", Quantity: 1})
	svc.AddItem(ctx, "user-1", true, AddInput{ProductID: "p2", Name: "Opera Gloves", Quantity: 1})
	svc.Clear(ctx, "user-1", true)

	lines, _, _ := svc.Snapshot("user-1")
	assert.Empty(t, lines)
	require.Len(t, mirror.deleteAlls, 1)
	assert.Equal(t, "user-1", mirror.deleteAlls[0])
}
