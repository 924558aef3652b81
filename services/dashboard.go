package services

import (
	"time"

	"foodpos-api/models"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Summary struct {
	TodayRevenue      decimal.Decimal `json:"today_revenue"`
	TodayTransactions int64           `json:"today_transactions"`
	TodayItemsSold    int64           `json:"today_items_sold"`
	TotalFoods        int64           `json:"total_foods"`
	TotalCategories   int64           `json:"total_categories"`
}

type TopFood struct {
	ID           uint    `json:"id"`
	FoodName     string  `json:"food_name"`
	Image        *string `json:"image"`
	CategoryName *string `json:"category_name"`
	QuantitySold int64   `json:"quantity_sold"`
}

type DailySales struct {
	Date              string          `json:"date"`
	DayName           string          `json:"day_name"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
}

type CategoryStat struct {
	CategoryName string `json:"category_name"`
	TotalFoods   int64  `json:"total_foods"`
	TotalSold    int64  `json:"total_sold"`
}

type Dashboard struct {
	Summary            Summary              `json:"summary"`
	PopularFoods       []TopFood            `json:"popular_foods"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
	WeeklySales        []DailySales         `json:"weekly_sales"`
	CategoryStats      []CategoryStat       `json:"category_stats"`
}

// soldQuantity counts only lines of completed sales
const soldQuantity = "COALESCE(SUM(CASE WHEN transactions.id IS NOT NULL THEN transaction_lines.quantity ELSE 0 END), 0)"

type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB, now func() time.Time) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{db: db, now: now}
}

func (s *DashboardService) Summary() (*Dashboard, error) {
	var d Dashboard
	var err error

	if d.Summary, err = s.summary(); err != nil {
		return nil, err
	}
	if d.PopularFoods, err = s.TopFoods(5); err != nil {
		return nil, err
	}

	err = s.db.Preload("Cashier").
		Order("transaction_date DESC, id DESC").
		Limit(5).
		Find(&d.RecentTransactions).Error
	if err != nil {
		return nil, errors.Wrap(err, "recent transactions")
	}

	if d.WeeklySales, err = s.weeklySales(); err != nil {
		return nil, err
	}
	if d.CategoryStats, err = s.categoryStats(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DashboardService) summary() (Summary, error) {
	var sum Summary
	start := startOfDay(s.now())
	end := start.AddDate(0, 0, 1)

	today := s.db.Model(&models.Transaction{}).
		Where("status = ? AND transaction_date >= ? AND transaction_date < ?", models.TransactionCompleted, start, end)
	if err := today.Count(&sum.TodayTransactions).Error; err != nil {
		return sum, errors.Wrap(err, "count today transactions")
	}
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(total_payment), 0)").
		Where("status = ? AND transaction_date >= ? AND transaction_date < ?", models.TransactionCompleted, start, end).
		Row().Scan(&sum.TodayRevenue)
	if err != nil {
		return sum, errors.Wrap(err, "today revenue")
	}
	sum.TodayRevenue = sum.TodayRevenue.Round(2)

	err = s.db.Model(&models.TransactionLine{}).
		Select("COALESCE(SUM(transaction_lines.quantity), 0)").
		Joins("JOIN transactions ON transactions.id = transaction_lines.transaction_id").
		Where("transactions.status = ? AND transactions.transaction_date >= ? AND transactions.transaction_date < ?",
			models.TransactionCompleted, start, end).
		Row().Scan(&sum.TodayItemsSold)
	if err != nil {
		return sum, errors.Wrap(err, "today items sold")
	}

	if err := s.db.Model(&models.Food{}).Count(&sum.TotalFoods).Error; err != nil {
		return sum, errors.Wrap(err, "count foods")
	}
	if err := s.db.Model(&models.Category{}).Count(&sum.TotalCategories).Error; err != nil {
		return sum, errors.Wrap(err, "count categories")
	}
	return sum, nil
}

// TopFoods ranks foods by quantity sold in completed transactions
func (s *DashboardService) TopFoods(limit int) ([]TopFood, error) {
	out := []TopFood{}
	err := s.db.Table("foods").
		Select("foods.id, foods.name AS food_name, foods.image, categories.name AS category_name, "+soldQuantity+" AS quantity_sold").
		Joins("LEFT JOIN categories ON categories.id = foods.category_id").
		Joins("LEFT JOIN transaction_lines ON transaction_lines.food_id = foods.id").
		Joins("LEFT JOIN transactions ON transactions.id = transaction_lines.transaction_id AND transactions.status = ?", models.TransactionCompleted).
		Group("foods.id, foods.name, foods.image, categories.name").
		Order("quantity_sold DESC, foods.name ASC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "top foods")
	}
	return out, nil
}

// weeklySales buckets the last seven days, today included, by local date.
// Days without sales are reported with zero totals.
func (s *DashboardService) weeklySales() ([]DailySales, error) {
	today := startOfDay(s.now())
	from := today.AddDate(0, 0, -6)

	var rows []models.Transaction
	err := s.db.Select("transaction_date", "total_payment").
		Where("status = ? AND transaction_date >= ? AND transaction_date < ?", models.TransactionCompleted, from, today.AddDate(0, 0, 1)).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "weekly sales")
	}

	days := make([]DailySales, 7)
	index := map[string]int{}
	for i := range days {
		day := from.AddDate(0, 0, i)
		days[i] = DailySales{Date: day.Format("2006-01-02"), DayName: day.Weekday().String()}
		index[days[i].Date] = i
	}
	for _, r := range rows {
		i, ok := index[r.TransactionDate.In(today.Location()).Format("2006-01-02")]
		if !ok {
			continue
		}
		days[i].TotalTransactions++
		days[i].TotalRevenue = days[i].TotalRevenue.Add(r.TotalPayment)
	}
	return days, nil
}

func (s *DashboardService) categoryStats() ([]CategoryStat, error) {
	out := []CategoryStat{}
	err := s.db.Table("categories").
		Select("categories.name AS category_name, COUNT(DISTINCT foods.id) AS total_foods, "+soldQuantity+" AS total_sold").
		Joins("LEFT JOIN foods ON foods.category_id = categories.id").
		Joins("LEFT JOIN transaction_lines ON transaction_lines.food_id = foods.id").
		Joins("LEFT JOIN transactions ON transactions.id = transaction_lines.transaction_id AND transactions.status = ?", models.TransactionCompleted).
		Group("categories.id, categories.name").
		Order("total_sold DESC, categories.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "category stats")
	}
	return out, nil
}
