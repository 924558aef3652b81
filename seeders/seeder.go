package seeders

import (
	"log"

	"foodpos-api/models"
	"foodpos-api/services"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedUser struct {
	username, fullName, password string
	role                         models.UserRole
}

type seedFood struct {
	name, category, price string
	stock                 int
}

var users = []seedUser{
	{"admin", "Administrator", "admin123", models.RoleAdmin},
	{"cashier", "Cashier", "cashier123", models.RoleCashier},
}

var categories = []string{"Food", "Drinks", "Snacks"}

var foods = []seedFood{
	{"Fried Rice", "Food", "25000", 50},
	{"Chicken Noodles", "Food", "20000", 40},
	{"Iced Tea", "Drinks", "5000", 100},
	{"Lemon Juice", "Drinks", "12000", 60},
	{"French Fries", "Snacks", "15000", 30},
}

// Seed creates the default users, categories and foods. Existing rows are
// left alone, so it is safe to run at every start.
func Seed(db *gorm.DB) error {
	auth := services.NewAuthService(db)
	for _, u := range users {
		var n int64
		if err := db.Model(&models.User{}).Where("username = ?", u.username).Count(&n).Error; err != nil {
			return errors.Wrap(err, "check seed user")
		}
		if n > 0 {
			continue
		}
		if _, err := auth.CreateUser(u.username, u.fullName, u.password, u.role); err != nil {
			return errors.Wrapf(err, "seed user %s", u.username)
		}
		log.Printf("Seeded user %s", u.username)
	}

	categoryIDs := map[string]uint{}
	for _, name := range categories {
		c := models.Category{Name: name}
		if err := db.Where(models.Category{Name: name}).FirstOrCreate(&c).Error; err != nil {
			return errors.Wrapf(err, "seed category %s", name)
		}
		categoryIDs[name] = c.ID
	}

	var n int64
	if err := db.Model(&models.Food{}).Count(&n).Error; err != nil {
		return errors.Wrap(err, "count foods")
	}
	if n > 0 {
		return nil
	}

	svc := services.NewFoodService(db, nil)
	for _, f := range foods {
		price := decimal.RequireFromString(f.price)
		stock := f.stock
		_, err := svc.Create(services.FoodInput{
			Name:       f.name,
			CategoryID: categoryIDs[f.category],
			Price:      &price,
			Stock:      &stock,
		})
		if err != nil {
			return errors.Wrapf(err, "seed food %s", f.name)
		}
	}
	log.Printf("Seeded %d foods", len(foods))
	return nil
}
