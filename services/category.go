package services

import (
	"strings"

	"foodpos-api/codegen"
	"foodpos-api/models"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name        string
	Description *string
}

// CategoryWithCount is a category along with how many foods it holds
type CategoryWithCount struct {
	models.Category
	FoodCount int64 `json:"food_count"`
}

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List returns all categories ordered by name
func (s *CategoryService) List() ([]CategoryWithCount, error) {
	out := []CategoryWithCount{}
	err := s.db.Model(&models.Category{}).
		Select("categories.*, COUNT(foods.id) AS food_count").
		Joins("LEFT JOIN foods ON foods.category_id = categories.id").
		Group("categories.id").
		Order("categories.name ASC").
		Scan(&out).Error
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return out, nil
}

func (s *CategoryService) Get(id uint) (*models.Category, error) {
	var c models.Category
	if err := s.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("Category not found")
		}
		return nil, errors.Wrap(err, "get category")
	}
	return &c, nil
}

func (s *CategoryService) Create(in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, Invalidf("Category name is required")
	}
	if err := s.checkUniqueName(in.Name, 0); err != nil {
		return nil, err
	}

	c := models.Category{Name: in.Name, Description: in.Description}
	if err := s.db.Create(&c).Error; err != nil {
		if codegen.IsDuplicateKey(err) {
			return nil, Rulef("Category name already exists")
		}
		return nil, errors.Wrap(err, "create category")
	}
	return &c, nil
}

func (s *CategoryService) Update(id uint, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, Invalidf("Category name is required")
	}
	c, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.checkUniqueName(in.Name, id); err != nil {
		return nil, err
	}

	c.Name = in.Name
	c.Description = in.Description
	if err := s.db.Save(c).Error; err != nil {
		if codegen.IsDuplicateKey(err) {
			return nil, Rulef("Category name already exists")
		}
		return nil, errors.Wrap(err, "update category")
	}
	return c, nil
}

// Delete removes a category that no food references
func (s *CategoryService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}

	var foods int64
	if err := s.db.Model(&models.Food{}).Where("category_id = ?", id).Count(&foods).Error; err != nil {
		return errors.Wrap(err, "count category foods")
	}
	if foods > 0 {
		return Rulef("Cannot delete category. There are foods in this category.")
	}

	if err := s.db.Delete(&models.Category{}, id).Error; err != nil {
		return errors.Wrap(err, "delete category")
	}
	return nil
}

func (s *CategoryService) checkUniqueName(name string, excludeID uint) error {
	q := s.db.Model(&models.Category{}).Where("name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return errors.Wrap(err, "check category name")
	}
	if n > 0 {
		return Rulef("Category name already exists")
	}
	return nil
}
