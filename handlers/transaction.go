package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"foodpos-api/config"
	"foodpos-api/middleware"
	"foodpos-api/models"
	"foodpos-api/services"
	"foodpos-api/statemachine"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionLineRequest accepts the field aliases sent by older clients:
// qty for quantity, unit_price for price and name for food_name.
type TransactionLineRequest struct {
	FoodID    uint             `json:"food_id" binding:"required"`
	FoodName  string           `json:"food_name"`
	Name      string           `json:"name"`
	Quantity  *int             `json:"quantity" binding:"omitempty,gt=0"`
	Qty       *int             `json:"qty" binding:"omitempty,gt=0"`
	Price     *decimal.Decimal `json:"price"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	Notes     *string          `json:"notes"`
}

type CreateTransactionRequest struct {
	Items         []TransactionLineRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string                   `json:"payment_method" binding:"omitempty,oneof=cash debit credit qris"`
	MoneyReceived *decimal.Decimal         `json:"money_received"`
	Subtotal      *decimal.Decimal         `json:"subtotal"`
	Tax           *decimal.Decimal         `json:"tax"`
	Discount      *decimal.Decimal         `json:"discount"`
	TotalPayment  *decimal.Decimal         `json:"total_payment"`
	ChangeMoney   *decimal.Decimal         `json:"change_money"`
	Notes         *string                  `json:"notes"`
}

func (l TransactionLineRequest) normalize(n int) (services.LineInput, error) {
	line := services.LineInput{FoodID: l.FoodID, Notes: l.Notes}

	switch {
	case l.Quantity != nil:
		line.Quantity = *l.Quantity
	case l.Qty != nil:
		line.Quantity = *l.Qty
	default:
		return line, errors.Newf("Item %d: quantity is required", n)
	}

	line.UnitPrice = l.Price
	if line.UnitPrice == nil {
		line.UnitPrice = l.UnitPrice
	}

	line.FoodName = strings.TrimSpace(l.FoodName)
	if line.FoodName == "" {
		line.FoodName = strings.TrimSpace(l.Name)
	}
	return line, nil
}

// normalize turns the request into service input bound to the cashier
func (r CreateTransactionRequest) normalize(userID uint) (services.CreateTransactionInput, error) {
	in := services.CreateTransactionInput{
		PaymentMethod: models.PaymentMethod(r.PaymentMethod),
		MoneyReceived: r.MoneyReceived,
		Subtotal:      r.Subtotal,
		Tax:           r.Tax,
		Discount:      r.Discount,
		TotalPayment:  r.TotalPayment,
		ChangeMoney:   r.ChangeMoney,
		Notes:         r.Notes,
	}
	if userID != 0 {
		in.UserID = &userID
	}
	for i, l := range r.Items {
		line, err := l.normalize(i + 1)
		if err != nil {
			return in, err
		}
		in.Items = append(in.Items, line)
	}
	return in, nil
}

func transactionService(c *gin.Context) *services.TransactionService {
	return services.NewTransactionService(config.DB.WithContext(c.Request.Context()), services.TransactionOptions{
		TaxRate:      config.App.TaxRate,
		StrictTotals: config.App.StrictTotals,
	})
}

// CreateTransaction records a sale and decrements stock atomically
func CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	in, err := req.normalize(middleware.GetUserID(c))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	t, err := transactionService(c).Create(in)
	if err != nil {
		respondError(c, err, "An error occurred while creating transaction")
		return
	}
	respond(c, http.StatusCreated, "Transaction created successfully", t)
}

func ListTransactions(c *gin.Context) {
	filter, ok := transactionFilter(c)
	if !ok {
		return
	}
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	if limit > 100 {
		limit = 100
	}

	items, total, err := transactionService(c).List(filter, page, limit)
	if err != nil {
		respondError(c, err, "An error occurred while fetching transactions")
		return
	}
	respondPage(c, items, Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	})
}

// TransactionHistory returns matching sales with their lines, unpaginated
func TransactionHistory(c *gin.Context) {
	filter, ok := transactionFilter(c)
	if !ok {
		return
	}
	items, err := transactionService(c).History(filter, queryInt(c, "limit", 1000))
	if err != nil {
		respondError(c, err, "An error occurred while fetching transaction history")
		return
	}
	respond(c, http.StatusOK, "", items)
}

func GetTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := transactionService(c).Get(id)
	if err != nil {
		respondError(c, err, "An error occurred while fetching transaction")
		return
	}
	respond(c, http.StatusOK, "", t)
}

func RefundTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := transactionService(c).Refund(id, middleware.GetRole(c))
	if err != nil {
		respondError(c, err, "An error occurred while refunding transaction")
		return
	}
	respond(c, http.StatusOK, "Transaction refunded successfully", t)
}

// DeleteTransaction is always refused once the sale exists
func DeleteTransaction(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := transactionService(c).Delete(id); err != nil {
		respondError(c, err, "An error occurred while deleting transaction")
		return
	}
	respond(c, http.StatusOK, "Transaction deleted successfully", nil)
}

// TransactionLifecycle lists the allowed status changes of a sale
func TransactionLifecycle(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{
		"transitions":     statemachine.GetAllTransitions(),
		"terminal_states": []models.TransactionStatus{models.TransactionRefunded},
	})
}

func transactionFilter(c *gin.Context) (services.TransactionFilter, bool) {
	f := services.TransactionFilter{
		Search:        strings.TrimSpace(c.Query("search")),
		PaymentMethod: models.PaymentMethod(c.Query("payment_method")),
		Status:        models.TransactionStatus(c.Query("status")),
	}
	for key, dst := range map[string]**time.Time{"start_date": &f.StartDate, "end_date": &f.EndDate} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		d, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s, expected YYYY-MM-DD", key))
			return f, false
		}
		*dst = &d
	}
	return f, true
}
