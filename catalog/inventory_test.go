package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpus/domain"
	"perpus/repository"
	"perpus/testutil"
)

func Test_Inventory_CRUD(t *testing.T) {
	ctx := context.Background()
	inv := NewInventory(repository.NewInventoryRepo(testutil.NewDB(t)), nil)

	item, err := inv.Create(ctx, domain.InventoryInput{
		ItemName:  "Proyektor",
		Category:  "Elektronik",
		Condition: domain.ConditionGood,
		Quantity:  2,
	})
	require.NoError(t, err)

	damaged := domain.ConditionMinorDamage
	updated, err := inv.Update(ctx, item.ID, domain.InventoryPatch{Condition: &damaged, Quantity: testutil.Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, domain.ConditionMinorDamage, updated.Condition)
	assert.Equal(t, 1, updated.Quantity)

	items, err := inv.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, inv.Delete(ctx, item.ID))
	_, err = inv.Get(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func Test_Inventory_RejectsUnknownCondition(t *testing.T) {
	inv := NewInventory(repository.NewInventoryRepo(testutil.NewDB(t)), nil)

	_, err := inv.Create(context.Background(), domain.InventoryInput{
		ItemName:  "Meja",
		Category:  "Mebel",
		Condition: "bagus sekali",
		Quantity:  1,
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}
