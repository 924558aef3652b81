package services

import (
	"time"

	"foodpos-api/codegen"
	"foodpos-api/models"
	"foodpos-api/statemachine"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// totalsTolerance is how far supplied totals may drift from recomputed
// ones under strict checking.
var totalsTolerance = decimal.RequireFromString("0.01")

// LineInput is one normalised cart line. A nil UnitPrice or empty FoodName
// is filled from the food's current row.
type LineInput struct {
	FoodID    uint
	FoodName  string
	UnitPrice *decimal.Decimal
	Quantity  int
	Notes     *string
}

// CreateTransactionInput is a normalised sale request. The optional totals,
// when set, are used as given in place of the computed values.
type CreateTransactionInput struct {
	UserID        *uint
	Items         []LineInput
	PaymentMethod models.PaymentMethod
	MoneyReceived *decimal.Decimal
	Subtotal      *decimal.Decimal
	Tax           *decimal.Decimal
	Discount      *decimal.Decimal
	TotalPayment  *decimal.Decimal
	ChangeMoney   *decimal.Decimal
	Notes         *string
}

type TransactionOptions struct {
	TaxRate      decimal.Decimal
	StrictTotals bool
	// Now defaults to time.Now.
	Now func() time.Time
}

type TransactionFilter struct {
	StartDate     *time.Time
	EndDate       *time.Time
	Search        string
	PaymentMethod models.PaymentMethod
	Status        models.TransactionStatus
}

type TransactionService struct {
	db   *gorm.DB
	opts TransactionOptions
}

func NewTransactionService(db *gorm.DB, opts TransactionOptions) *TransactionService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TransactionService{db: db, opts: opts}
}

type totals struct {
	totalItem     int
	subtotal      decimal.Decimal
	tax           decimal.Decimal
	discount      decimal.Decimal
	totalPayment  decimal.Decimal
	moneyReceived decimal.Decimal
	change        decimal.Decimal
}

// Create records a sale atomically: code, header, lines and stock
// decrements are committed together or not at all.
func (s *TransactionService) Create(in CreateTransactionInput) (*models.Transaction, error) {
	if len(in.Items) == 0 {
		return nil, Invalidf("Transaction items are required")
	}
	for i, it := range in.Items {
		if it.FoodID == 0 {
			return nil, Invalidf("Item %d: food_id is required", i+1)
		}
		if it.Quantity <= 0 {
			return nil, Invalidf("Item %d: quantity must be greater than 0", i+1)
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return nil, Invalidf("Item %d: price must not be negative", i+1)
		}
	}

	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	if !in.PaymentMethod.Valid() {
		return nil, Invalidf("Invalid payment method %q", in.PaymentMethod)
	}
	if in.PaymentMethod == models.PaymentCash && in.MoneyReceived == nil {
		return nil, Invalidf("Money received is required for cash payment")
	}
	if in.Discount != nil && in.Discount.IsNegative() {
		return nil, Invalidf("Discount must not be negative")
	}

	now := s.opts.Now()
	var created models.Transaction

	err := transact(s.db, func(tx *gorm.DB) error {
		lines, err := resolveLines(tx, in.Items)
		if err != nil {
			return err
		}
		t, err := s.computeTotals(in, lines)
		if err != nil {
			return err
		}

		created = models.Transaction{
			TransactionDate: now,
			UserID:          in.UserID,
			TotalItem:       t.totalItem,
			Subtotal:        t.subtotal,
			Tax:             t.tax,
			Discount:        t.discount,
			TotalPayment:    t.totalPayment,
			MoneyReceived:   t.moneyReceived,
			ChangeMoney:     t.change,
			PaymentMethod:   in.PaymentMethod,
			Notes:           in.Notes,
			Status:          models.TransactionCompleted,
		}
		_, err = codegen.Claim(tx, codegen.TransactionScope(now), func(code string) error {
			created.Code = code
			return tx.Omit(clause.Associations).Create(&created).Error
		})
		if err != nil {
			return err
		}

		for i := range lines {
			lines[i].TransactionID = created.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return errors.Wrap(err, "insert transaction lines")
		}

		for _, l := range lines {
			if err := decrementStock(tx, l.FoodID, l.FoodName, l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, codegen.ErrExhausted) {
			return nil, Conflictf("Could not allocate a transaction code, please retry")
		}
		if KindOf(err) != 0 {
			return nil, err
		}
		return nil, errors.Wrap(err, "create transaction")
	}

	return s.Get(created.ID)
}

// resolveLines loads each referenced food and builds the line rows with
// name and price snapshots.
func resolveLines(tx *gorm.DB, items []LineInput) ([]models.TransactionLine, error) {
	lines := make([]models.TransactionLine, 0, len(items))
	for _, it := range items {
		var food models.Food
		if err := tx.First(&food, it.FoodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, NotFoundf("Food %d not found", it.FoodID)
			}
			return nil, errors.Wrapf(err, "load food %d", it.FoodID)
		}

		price := food.Price
		if it.UnitPrice != nil {
			price = *it.UnitPrice
		}
		price = price.Round(2)
		name := it.FoodName
		if name == "" {
			name = food.Name
		}

		lines = append(lines, models.TransactionLine{
			FoodID:    food.ID,
			FoodName:  name,
			UnitPrice: price,
			Quantity:  it.Quantity,
			Subtotal:  price.Mul(decimal.NewFromInt(int64(it.Quantity))),
			Notes:     it.Notes,
		})
	}
	return lines, nil
}

func (s *TransactionService) computeTotals(in CreateTransactionInput, lines []models.TransactionLine) (totals, error) {
	var t totals
	computed := decimal.Zero
	for _, l := range lines {
		t.totalItem += l.Quantity
		computed = computed.Add(l.Subtotal)
	}

	t.subtotal = pick(in.Subtotal, computed)
	t.discount = pick(in.Discount, decimal.Zero)

	taxable := t.subtotal.Sub(t.discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	computedTax := taxable.Mul(s.opts.TaxRate).Round(2)
	t.tax = pick(in.Tax, computedTax)

	computedTotal := t.subtotal.Add(t.tax).Sub(t.discount)
	t.totalPayment = pick(in.TotalPayment, computedTotal)
	t.moneyReceived = pick(in.MoneyReceived, t.totalPayment)
	computedChange := t.moneyReceived.Sub(t.totalPayment)
	t.change = pick(in.ChangeMoney, computedChange)

	if s.opts.StrictTotals {
		checks := []struct {
			name              string
			supplied          *decimal.Decimal
			recomputed, given decimal.Decimal
		}{
			{"subtotal", in.Subtotal, computed, t.subtotal},
			{"tax", in.Tax, computedTax, t.tax},
			{"total_payment", in.TotalPayment, computedTotal, t.totalPayment},
			{"change_money", in.ChangeMoney, computedChange, t.change},
		}
		for _, c := range checks {
			if c.supplied != nil && c.given.Sub(c.recomputed).Abs().GreaterThan(totalsTolerance) {
				return t, Invalidf("Supplied %s %s does not match computed %s", c.name, c.given.StringFixed(2), c.recomputed.StringFixed(2))
			}
		}
	}

	if in.PaymentMethod == models.PaymentCash && t.change.IsNegative() {
		return t, Invalidf("Payment is less than total")
	}
	return t, nil
}

func pick(supplied *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if supplied != nil {
		return supplied.Round(2)
	}
	return fallback.Round(2)
}

// decrementStock takes qty from a food only if enough remains. A food
// that reaches zero is marked out of stock.
func decrementStock(tx *gorm.DB, foodID uint, name string, qty int) error {
	res := tx.Model(&models.Food{}).
		Where("id = ? AND stock >= ?", foodID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return errors.Wrapf(res.Error, "decrement stock of food %d", foodID)
	}
	if res.RowsAffected == 0 {
		return Conflictf("Insufficient stock for %s", name)
	}

	err := tx.Model(&models.Food{}).
		Where("id = ? AND stock = 0 AND status = ?", foodID, models.FoodAvailable).
		UpdateColumn("status", models.FoodOutOfStock).Error
	return errors.Wrapf(err, "mark food %d out of stock", foodID)
}

func (s *TransactionService) Get(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.db.Preload("Items").Preload("Cashier").First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("Transaction not found")
		}
		return nil, errors.Wrap(err, "get transaction")
	}
	return &t, nil
}

func (s *TransactionService) filtered(f TransactionFilter) *gorm.DB {
	q := s.db.Model(&models.Transaction{})
	if f.StartDate != nil {
		q = q.Where("transaction_date >= ?", startOfDay(*f.StartDate))
	}
	if f.EndDate != nil {
		q = q.Where("transaction_date < ?", startOfDay(*f.EndDate).AddDate(0, 0, 1))
	}
	if f.Search != "" {
		q = q.Where("code LIKE ?", "%"+f.Search+"%")
	}
	if f.PaymentMethod != "" {
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

// List returns one page of transactions, newest first, and the total
// number matching f.
func (s *TransactionService) List(f TransactionFilter, page, limit int) ([]models.Transaction, int64, error) {
	var total int64
	if err := s.filtered(f).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count transactions")
	}

	out := []models.Transaction{}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	// pages past the end are empty; checking first keeps (page-1)*limit below total
	if int64(page-1) >= (total+int64(limit)-1)/int64(limit) {
		return out, total, nil
	}
	err := s.filtered(f).
		Preload("Cashier").
		Order("transaction_date DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list transactions")
	}
	return out, total, nil
}

// History returns up to limit matching transactions with their lines
func (s *TransactionService) History(f TransactionFilter, limit int) ([]models.Transaction, error) {
	out := []models.Transaction{}
	err := s.filtered(f).
		Preload("Items").
		Preload("Cashier").
		Order("transaction_date DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "transaction history")
	}
	return out, nil
}

// Refund moves a completed sale to refunded and puts its items back in stock
func (s *TransactionService) Refund(id uint, actor models.UserRole) (*models.Transaction, error) {
	err := transact(s.db, func(tx *gorm.DB) error {
		q := tx.Preload("Items")
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var t models.Transaction
		if err := q.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("Transaction not found")
			}
			return errors.Wrap(err, "load transaction")
		}

		if err := statemachine.CanTransition(t.Status, models.TransactionRefunded, actor); err != nil {
			return Rulef("Cannot refund transaction: %v", err)
		}

		for _, l := range t.Items {
			err := tx.Model(&models.Food{}).
				Where("id = ?", l.FoodID).
				UpdateColumn("stock", gorm.Expr("stock + ?", l.Quantity)).Error
			if err != nil {
				return errors.Wrapf(err, "restore stock of food %d", l.FoodID)
			}
			err = tx.Model(&models.Food{}).
				Where("id = ? AND stock > 0 AND status = ?", l.FoodID, models.FoodOutOfStock).
				UpdateColumn("status", models.FoodAvailable).Error
			if err != nil {
				return errors.Wrapf(err, "mark food %d available", l.FoodID)
			}
		}

		return errors.Wrap(
			tx.Model(&t).UpdateColumn("status", models.TransactionRefunded).Error,
			"mark transaction refunded")
	})
	if err != nil {
		if KindOf(err) != 0 {
			return nil, err
		}
		return nil, errors.Wrap(err, "refund transaction")
	}
	return s.Get(id)
}

// Delete always refuses: recorded sales are kept for data integrity.
// Use Refund to reverse a sale.
func (s *TransactionService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return Rulef("Transaction deletion is not allowed for data integrity")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
