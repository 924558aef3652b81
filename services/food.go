package services

import (
	"log"
	"strings"

	"foodpos-api/codegen"
	"foodpos-api/models"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImageRemover deletes a stored food image
type ImageRemover interface {
	Remove(name string) error
}

type FoodFilter struct {
	CategoryID uint
	Search     string
	Status     models.FoodStatus
}

// FoodInput carries create and update fields. Image is set only when a new
// file was stored for this request.
type FoodInput struct {
	Name        string
	CategoryID  uint
	Price       *decimal.Decimal
	Stock       *int
	Description *string
	Status      models.FoodStatus
	Image       *string
}

type FoodService struct {
	db     *gorm.DB
	images ImageRemover
}

func NewFoodService(db *gorm.DB, images ImageRemover) *FoodService {
	return &FoodService{db: db, images: images}
}

func (s *FoodService) List(f FoodFilter) ([]models.Food, error) {
	q := s.db.Preload("Category")
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.Search != "" {
		q = q.Where("name LIKE ?", "%"+f.Search+"%")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	foods := []models.Food{}
	if err := q.Order("name ASC").Find(&foods).Error; err != nil {
		return nil, errors.Wrap(err, "list foods")
	}
	return foods, nil
}

func (s *FoodService) Get(id uint) (*models.Food, error) {
	return getFood(s.db, id)
}

func getFood(db *gorm.DB, id uint) (*models.Food, error) {
	var f models.Food
	if err := db.Preload("Category").First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("Food not found")
		}
		return nil, errors.Wrap(err, "get food")
	}
	return &f, nil
}

// Create stores a food under the next MKN code
func (s *FoodService) Create(in FoodInput) (*models.Food, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	food := models.Food{
		Name:        in.Name,
		CategoryID:  in.CategoryID,
		Price:       in.Price.Round(2),
		Description: in.Description,
		Image:       in.Image,
		Status:      in.Status,
	}
	if in.Stock != nil {
		food.Stock = *in.Stock
	}
	if !food.Status.Valid() {
		food.Status = models.FoodAvailable
	}

	err := transact(s.db, func(tx *gorm.DB) error {
		food.ID = 0
		_, err := codegen.Claim(tx, codegen.FoodScope(), func(code string) error {
			food.Code = code
			return tx.Omit("Category").Create(&food).Error
		})
		return err
	})
	if err != nil {
		if errors.Is(err, codegen.ErrExhausted) {
			return nil, Conflictf("Could not allocate a food code, please retry")
		}
		return nil, errors.Wrap(err, "create food")
	}
	return s.Get(food.ID)
}

// Update overwrites a food's editable fields. An invalid status keeps the
// current one. A replaced image is removed after the row is saved.
func (s *FoodService) Update(id uint, in FoodInput) (*models.Food, error) {
	food, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	var oldImage string
	if in.Image != nil {
		if food.Image != nil {
			oldImage = *food.Image
		}
		food.Image = in.Image
	}

	food.Name = in.Name
	food.CategoryID = in.CategoryID
	food.Category = nil
	food.Price = in.Price.Round(2)
	food.Description = in.Description
	if in.Stock != nil {
		food.Stock = *in.Stock
	}
	if in.Status.Valid() {
		food.Status = in.Status
	}

	if err := s.db.Omit("Category").Save(food).Error; err != nil {
		return nil, errors.Wrap(err, "update food")
	}
	if oldImage != "" && oldImage != *food.Image {
		s.removeImage(oldImage)
	}
	return s.Get(id)
}

// Delete removes a food. When sale lines reference it and force is false a
// *ConfirmationRequiredError is returned and nothing changes. With force
// the lines and the food are removed together; sale headers stay.
func (s *FoodService) Delete(id uint, force bool) error {
	food, err := s.Get(id)
	if err != nil {
		return err
	}

	refs, err := s.References(id)
	if err != nil {
		return err
	}
	if refs.TransactionCount > 0 && !force {
		return refs
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if refs.TransactionCount > 0 {
			if err := tx.Where("food_id = ?", id).Delete(&models.TransactionLine{}).Error; err != nil {
				return errors.Wrap(err, "delete food transaction lines")
			}
		}
		res := tx.Delete(&models.Food{}, id)
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete food")
		}
		if res.RowsAffected == 0 {
			return NotFoundf("Food not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if food.Image != nil {
		s.removeImage(*food.Image)
	}
	return nil
}

// References describes the sale lines that point at a food
func (s *FoodService) References(id uint) (*ConfirmationRequiredError, error) {
	refs := &ConfirmationRequiredError{}
	lines := s.db.Model(&models.TransactionLine{}).Where("food_id = ?", id)
	if err := lines.Count(&refs.TransactionCount).Error; err != nil {
		return nil, errors.Wrap(err, "count food references")
	}
	if refs.TransactionCount == 0 {
		return refs, nil
	}

	sub := s.db.Model(&models.TransactionLine{}).Select("transaction_id").Where("food_id = ?", id)
	var first, last models.Transaction
	if err := s.db.Where("id IN (?)", sub).Order("transaction_date ASC").Take(&first).Error; err == nil {
		refs.FirstTransactionDate = &first.TransactionDate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "first referencing transaction")
	}
	if err := s.db.Where("id IN (?)", sub).Order("transaction_date DESC").Take(&last).Error; err == nil {
		refs.LastTransactionDate = &last.TransactionDate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "last referencing transaction")
	}
	return refs, nil
}

func (s *FoodService) validate(in *FoodInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.CategoryID == 0 || in.Price == nil {
		return Invalidf("Food name, category, and price are required")
	}
	if in.Price.IsNegative() {
		return Invalidf("Price must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return Invalidf("Stock must not be negative")
	}

	var n int64
	if err := s.db.Model(&models.Category{}).Where("id = ?", in.CategoryID).Count(&n).Error; err != nil {
		return errors.Wrap(err, "check food category")
	}
	if n == 0 {
		return Invalidf("Category not found")
	}
	return nil
}

// Image cleanup never fails the request that triggered it.
func (s *FoodService) removeImage(name string) {
	if s.images == nil {
		return
	}
	if err := s.images.Remove(name); err != nil {
		log.Printf("food image cleanup: %v", err)
	}
}
