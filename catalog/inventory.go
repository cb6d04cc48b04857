package catalog

import (
	"context"

	"github.com/go-playground/validator/v10"

	"perpus/domain"
	"perpus/events"
	"perpus/log"
	"perpus/repository"
)

// Inventory keeps the register of non-book school assets.
type Inventory struct {
	items     repository.InventoryRepository
	publisher events.Publisher
	validate  *validator.Validate
}

func (i *Inventory) Get(ctx context.Context, id string) (domain.InventoryItem, error) {
	return i.items.GetById(ctx, id)
}

func (i *Inventory) List(ctx context.Context) ([]domain.InventoryItem, error) {
	return i.items.List(ctx)
}

func (i *Inventory) Create(ctx context.Context, in domain.InventoryInput) (domain.InventoryItem, error) {
	if err := i.validate.Struct(in); err != nil {
		return domain.InventoryItem{}, domain.Invalid("%s", err)
	}
	item := domain.InventoryItem{
		ItemName:  in.ItemName,
		Category:  in.Category,
		Condition: in.Condition,
		Quantity:  in.Quantity,
		Location:  in.Location,
		Notes:     in.Notes,
		ImageURL:  in.ImageURL,
	}
	if err := i.items.Create(ctx, &item); err != nil {
		return domain.InventoryItem{}, err
	}
	i.changed(ctx, item.ID)
	return item, nil
}

func (i *Inventory) Update(ctx context.Context, id string, patch domain.InventoryPatch) (domain.InventoryItem, error) {
	if err := i.validate.Struct(patch); err != nil {
		return domain.InventoryItem{}, domain.Invalid("%s", err)
	}
	fields := map[string]interface{}{}
	if patch.ItemName != nil {
		fields["item_name"] = *patch.ItemName
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Condition != nil {
		fields["condition"] = *patch.Condition
	}
	if patch.Quantity != nil {
		fields["quantity"] = *patch.Quantity
	}
	if patch.Location != nil {
		fields["location"] = *patch.Location
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}
	item, err := i.items.Update(ctx, id, fields)
	if err != nil {
		return domain.InventoryItem{}, err
	}
	i.changed(ctx, id)
	return item, nil
}

func (i *Inventory) Delete(ctx context.Context, id string) error {
	if err := i.items.Delete(ctx, id); err != nil {
		return err
	}
	i.changed(ctx, id)
	return nil
}

func (i *Inventory) changed(ctx context.Context, id string) {
	if err := i.publisher.Publish(ctx, events.New(events.InventoryChanged, id, "")); err != nil {
		log.GetLogger(ctx).WithError(err).Warnf("publish inventory change for %s fail", id)
	}
}

func NewInventory(items repository.InventoryRepository, publisher events.Publisher) *Inventory {
	if publisher == nil {
		publisher = events.Nop()
	}
	return &Inventory{
		items:     items,
		publisher: publisher,
		validate:  newValidator(),
	}
}
