package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"foodpos-api/config"
	"foodpos-api/helpers"
	"foodpos-api/models"
	"foodpos-api/services"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type FoodRequest struct {
	FoodName    string           `json:"food_name" binding:"required"`
	CategoryID  uint             `json:"category_id" binding:"required"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       *int             `json:"stock" binding:"omitempty,gte=0"`
	Description *string          `json:"description"`
	Status      string           `json:"status"`
}

func foodService(c *gin.Context) (*services.FoodService, *helpers.ImageStore) {
	images := helpers.NewImageStore(config.App.UploadDir)
	return services.NewFoodService(config.DB.WithContext(c.Request.Context()), images), images
}

func ListFoods(c *gin.Context) {
	svc, _ := foodService(c)
	filter := services.FoodFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: models.FoodStatus(c.Query("status")),
	}
	if id, err := strconv.ParseUint(c.Query("category_id"), 10, 64); err == nil {
		filter.CategoryID = uint(id)
	}

	foods, err := svc.List(filter)
	if err != nil {
		respondError(c, err, "An error occurred while fetching foods")
		return
	}
	respond(c, http.StatusOK, "", foods)
}

func GetFood(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	svc, _ := foodService(c)
	food, err := svc.Get(id)
	if err != nil {
		respondError(c, err, "An error occurred while fetching food")
		return
	}
	respond(c, http.StatusOK, "", food)
}

func CreateFood(c *gin.Context) {
	svc, images := foodService(c)
	in, ok := bindFood(c, images)
	if !ok {
		return
	}
	food, err := svc.Create(in)
	if err != nil {
		discardImage(images, in.Image)
		respondError(c, err, "An error occurred while creating food")
		return
	}
	respond(c, http.StatusCreated, "Food created successfully", food)
}

func UpdateFood(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	svc, images := foodService(c)
	in, ok := bindFood(c, images)
	if !ok {
		return
	}
	food, err := svc.Update(id, in)
	if err != nil {
		discardImage(images, in.Image)
		respondError(c, err, "An error occurred while updating food")
		return
	}
	respond(c, http.StatusOK, "Food updated successfully", food)
}

// DeleteFood asks for confirmation with a 409 when sale lines reference the
// food, unless force=true is given.
func DeleteFood(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	force := c.Query("force") == "true"

	svc, _ := foodService(c)
	if err := svc.Delete(id, force); err != nil {
		respondError(c, err, "An error occurred while deleting food")
		return
	}

	message := "Food deleted successfully"
	if force {
		message = "Food and related transaction items deleted successfully"
	}
	respond(c, http.StatusOK, message, nil)
}

// bindFood reads a food from JSON or a multipart form. A file in the
// "image" field is stored before the service runs.
func bindFood(c *gin.Context, images *helpers.ImageStore) (services.FoodInput, bool) {
	var req FoodRequest
	var err error
	if c.ContentType() == "multipart/form-data" {
		if req, err = foodForm(c); err == nil {
			err = binding.Validator.ValidateStruct(&req)
		}
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		message := bindingMessage(err)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Tag() == "required" {
			message = "Food name, category, and price are required"
		}
		fail(c, http.StatusBadRequest, message)
		return services.FoodInput{}, false
	}

	in := services.FoodInput{
		Name:        req.FoodName,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		Status:      models.FoodStatus(req.Status),
	}

	if fh, err := c.FormFile("image"); err == nil {
		name, err := images.Accept(fh)
		if err != nil {
			if errors.Is(err, helpers.ErrInvalidImage) {
				fail(c, http.StatusBadRequest, "Only image files (jpg, jpeg, png, gif, webp) up to 5MB are allowed")
			} else {
				respondError(c, err, "Failed to store image")
			}
			return services.FoodInput{}, false
		}
		if err := c.SaveUploadedFile(fh, images.Path(name)); err != nil {
			respondError(c, errors.Wrap(err, "save uploaded image"), "Failed to store image")
			return services.FoodInput{}, false
		}
		in.Image = &name
	}
	return in, true
}

func foodForm(c *gin.Context) (FoodRequest, error) {
	req := FoodRequest{
		FoodName: c.PostForm("food_name"),
		Status:   c.PostForm("status"),
	}
	if v := c.PostForm("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return req, errors.New("category_id must be a number")
		}
		req.CategoryID = uint(id)
	}
	if v := c.PostForm("price"); v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return req, errors.New("price must be a number")
		}
		req.Price = &price
	}
	if v := c.PostForm("stock"); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return req, errors.New("stock must be a whole number")
		}
		req.Stock = &stock
	}
	if v, ok := c.GetPostForm("description"); ok {
		req.Description = &v
	}
	return req, nil
}

// discardImage removes an upload stored for a request that then failed
func discardImage(images *helpers.ImageStore, name *string) {
	if name == nil {
		return
	}
	if err := images.Remove(*name); err != nil {
		log.Printf("discard uploaded image: %v", err)
	}
}
