package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCredit PaymentMethod = "credit"
	PaymentQRIS   PaymentMethod = "qris"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentDebit, PaymentCredit, PaymentQRIS:
		return true
	}
	return false
}

// TransactionStatus represents the lifecycle state of a sale
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// Transaction is a recorded sale. Totals are fixed at creation.
type Transaction struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	Code            string            `json:"transaction_code" gorm:"uniqueIndex;size:20;not null"`
	TransactionDate time.Time         `json:"transaction_date" gorm:"not null;index"`
	UserID          *uint             `json:"user_id"`
	Cashier         *User             `json:"cashier,omitempty" gorm:"foreignKey:UserID"`
	TotalItem       int               `json:"total_item" gorm:"not null;default:0"`
	Subtotal        decimal.Decimal   `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Tax             decimal.Decimal   `json:"tax" gorm:"type:decimal(12,2);not null"`
	Discount        decimal.Decimal   `json:"discount" gorm:"type:decimal(12,2);not null"`
	TotalPayment    decimal.Decimal   `json:"total_payment" gorm:"type:decimal(12,2);not null"`
	MoneyReceived   decimal.Decimal   `json:"money_received" gorm:"type:decimal(12,2);not null"`
	ChangeMoney     decimal.Decimal   `json:"change_money" gorm:"type:decimal(12,2);not null"`
	PaymentMethod   PaymentMethod     `json:"payment_method" gorm:"size:10;not null;default:'cash'"`
	Notes           *string           `json:"notes"`
	Status          TransactionStatus `json:"status" gorm:"size:20;not null;default:'completed';index"`
	Items           []TransactionLine `json:"items,omitempty" gorm:"foreignKey:TransactionID"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// TransactionLine is one sold item. Name and price are snapshots taken at sale time.
type TransactionLine struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	TransactionID uint            `json:"transaction_id" gorm:"not null;index"`
	FoodID        uint            `json:"food_id" gorm:"not null;index"`
	FoodName      string          `json:"food_name" gorm:"size:150;not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Notes         *string         `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
}
