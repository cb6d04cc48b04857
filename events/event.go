package events

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

const (
	BorrowingChannel string = "BorrowingChannel"
	CatalogChannel   string = "CatalogChannel"

	BorrowingCreated  string = "borrowing.created"
	BorrowingUpdated  string = "borrowing.updated"
	BorrowingReturned string = "borrowing.returned"
	BorrowingDeleted  string = "borrowing.deleted"

	BookCreated string = "book.created"
	BookUpdated string = "book.updated"
	BookDeleted string = "book.deleted"

	InventoryChanged string = "inventory.changed"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	BookID     string    `json:"book_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(typ, entityID, bookID string) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       typ,
		EntityID:   entityID,
		BookID:     bookID,
		OccurredAt: time.Now().UTC(),
	}
}

// Channel is the pub/sub channel an event of this type travels on.
func (e Event) Channel() string {
	switch e.Type {
	case BorrowingCreated, BorrowingUpdated, BorrowingReturned, BorrowingDeleted:
		return BorrowingChannel
	default:
		return CatalogChannel
	}
}

func (e Event) MarshalBinary() ([]byte, error) {
	return sonic.Marshal(e)
}

func Decode(payload string) (Event, error) {
	var e Event
	err := sonic.UnmarshalString(payload, &e)
	return e, err
}
