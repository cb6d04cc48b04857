package domain

import "time"

type Condition string

const (
	ConditionGood        Condition = "baik"
	ConditionMinorDamage Condition = "rusak_ringan"
	ConditionMajorDamage Condition = "rusak_berat"
	ConditionLost        Condition = "hilang"
)

type InventoryItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ItemName  string    `json:"item_name" gorm:"type:varchar(255);not null"`
	Category  string    `json:"category" gorm:"type:varchar(100);index;not null"`
	Condition Condition `json:"condition" gorm:"type:varchar(16);not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Location  *string   `json:"location" gorm:"type:varchar(255)"`
	Notes     *string   `json:"notes" gorm:"type:text"`
	ImageURL  *string   `json:"image_url" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string { return "inventory" }
