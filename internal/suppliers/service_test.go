package suppliers

import (
	"context"
	"testing"

	"go-inventory-agent/internal/models"
	"go-inventory-agent/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupplierLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewService(testutil.NewDB(t), nil)

	acme, err := s.Create(ctx, models.Supplier{Name: " Acme Corp ", ContactPerson: "Jane Roe", Email: "jane@acme.test"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", acme.Name)

	_, err = s.Create(ctx, models.Supplier{Name: "Globex", Email: "sales@globex.test"})
	require.NoError(t, err)

	_, err = s.Create(ctx, models.Supplier{})
	assert.ErrorIs(t, err, ErrNameRequired)

	found, err := s.FindByName(ctx, "acme corp")
	require.NoError(t, err)
	assert.Equal(t, acme.ID, found.ID)

	_, err = s.FindByName(ctx, "Acme")
	assert.ErrorIs(t, err, ErrSupplierNotFound)

	hits, err := s.Search(ctx, "jane")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, acme.ID, hits[0].ID)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Acme Corp", all[0].Name)

	updated, err := s.Update(ctx, acme.ID, models.Supplier{Name: "Acme Industries", Phone: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Industries", updated.Name)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Empty(t, updated.ContactPerson)

	require.NoError(t, s.Delete(ctx, acme.ID))
	assert.ErrorIs(t, s.Delete(ctx, acme.ID), ErrSupplierNotFound)
	_, err = s.Get(ctx, acme.ID)
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}
