package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go out as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// FoodStatus is the sale status of a menu item
type FoodStatus string

const (
	FoodAvailable  FoodStatus = "available"
	FoodOutOfStock FoodStatus = "out_of_stock"
	FoodInactive   FoodStatus = "inactive"
)

func (s FoodStatus) Valid() bool {
	switch s {
	case FoodAvailable, FoodOutOfStock, FoodInactive:
		return true
	}
	return false
}

type Food struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Code        string          `json:"food_code" gorm:"uniqueIndex;size:20;not null"`
	Name        string          `json:"food_name" gorm:"size:150;not null;index"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	Category    *Category       `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Image       *string         `json:"image"`
	Status      FoodStatus      `json:"status" gorm:"size:20;not null;default:'available'"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
