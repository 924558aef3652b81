package services_test

import (
	"testing"

	"foodpos-api/models"
	"foodpos-api/services"
	"foodpos-api/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCRUD(t *testing.T) {
	db := testutils.OpenDB(t)
	svc := services.NewCategoryService(db)

	drinks, err := svc.Create(services.CategoryInput{Name: " Drinks "})
	require.NoError(t, err)
	assert.Equal(t, "Drinks", drinks.Name)

	_, err = svc.Create(services.CategoryInput{Name: "Drinks"})
	assert.Equal(t, services.KindRule, services.KindOf(err))

	_, err = svc.Create(services.CategoryInput{Name: "  "})
	assert.Equal(t, services.KindInvalid, services.KindOf(err))

	food, err := svc.Create(services.CategoryInput{Name: "Food", Description: strPtr("Main dishes")})
	require.NoError(t, err)

	_, err = svc.Update(food.ID, services.CategoryInput{Name: "Drinks"})
	assert.Equal(t, services.KindRule, services.KindOf(err))

	updated, err := svc.Update(food.ID, services.CategoryInput{Name: "Food", Description: strPtr("Rice and noodles")})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Rice and noodles", *updated.Description)

	testutils.CreateFood(t, db, food.ID, "MKN0001", "Fried Rice", "10", 1)
	testutils.CreateFood(t, db, food.ID, "MKN0002", "Noodles", "10", 1)

	list, err := svc.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Drinks", list[0].Name)
	assert.Equal(t, int64(0), list[0].FoodCount)
	assert.Equal(t, "Food", list[1].Name)
	assert.Equal(t, int64(2), list[1].FoodCount)

	_, err = svc.Get(999)
	assert.Equal(t, services.KindNotFound, services.KindOf(err))
}

func TestDeleteCategoryBlockedByFoods(t *testing.T) {
	db := testutils.OpenDB(t)
	svc := services.NewCategoryService(db)
	cat := testutils.CreateCategory(t, db, "Food")
	testutils.CreateFood(t, db, cat.ID, "MKN0001", "Fried Rice", "10", 1)

	err := svc.Delete(cat.ID)
	require.Error(t, err)
	assert.Equal(t, services.KindRule, services.KindOf(err))
	assert.Equal(t, "Cannot delete category. There are foods in this category.", err.Error())
	assert.Equal(t, int64(1), countRows(t, db, &models.Category{}))

	empty := testutils.CreateCategory(t, db, "Snacks")
	require.NoError(t, svc.Delete(empty.ID))
	assert.Equal(t, services.KindNotFound, services.KindOf(svc.Delete(empty.ID)))
}
