package handlers

import (
	"net/http"

	"foodpos-api/config"
	"foodpos-api/services"

	"github.com/gin-gonic/gin"
)

type CategoryRequest struct {
	CategoryName string  `json:"category_name" binding:"required"`
	Description  *string `json:"description"`
}

func categoryService(c *gin.Context) *services.CategoryService {
	return services.NewCategoryService(config.DB.WithContext(c.Request.Context()))
}

func ListCategories(c *gin.Context) {
	categories, err := categoryService(c).List()
	if err != nil {
		respondError(c, err, "An error occurred while fetching categories")
		return
	}
	respond(c, http.StatusOK, "", categories)
}

func GetCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	category, err := categoryService(c).Get(id)
	if err != nil {
		respondError(c, err, "An error occurred while fetching category")
		return
	}
	respond(c, http.StatusOK, "", category)
}

func CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	category, err := categoryService(c).Create(services.CategoryInput{Name: req.CategoryName, Description: req.Description})
	if err != nil {
		respondError(c, err, "An error occurred while creating category")
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", category)
}

func UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	category, err := categoryService(c).Update(id, services.CategoryInput{Name: req.CategoryName, Description: req.Description})
	if err != nil {
		respondError(c, err, "An error occurred while updating category")
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory refuses while foods reference the category
func DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := categoryService(c).Delete(id); err != nil {
		respondError(c, err, "An error occurred while deleting category")
		return
	}
	respond(c, http.StatusOK, "Category deleted successfully", nil)
}
