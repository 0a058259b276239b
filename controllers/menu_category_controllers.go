package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

type categoryRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	SortOrder int    `json:"sortOrder" binding:"gte=0"`
}

func (mc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.MenuCategory
	if err := mc.DB.WithContext(c.Request.Context()).Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of categories", gin.H{"categories": categories})
}

func (mc *MenuCategoryController) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	category := models.MenuCategory{Name: strings.TrimSpace(req.Name), SortOrder: req.SortOrder}
	if err := mc.DB.WithContext(c.Request.Context()).Create(&category).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			utils.RespondError(c, utils.ConflictError("Category already exists"))
			return
		}
		utils.RespondError(c, utils.InternalError(err))
		return
	}

	utils.InfoLogger.WithField("category", category.Name).Info("menu category created")
	utils.RespondJSON(c, http.StatusCreated, "Category created", gin.H{"category": category})
}

func (mc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req categoryRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	var category models.MenuCategory
	if err := mc.DB.WithContext(c.Request.Context()).First(&category, id).Error; err != nil {
		utils.RespondError(c, dbError(err, "Category not found"))
		return
	}
	err = mc.DB.WithContext(c.Request.Context()).Model(&category).Updates(map[string]interface{}{
		"name":       strings.TrimSpace(req.Name),
		"sort_order": req.SortOrder,
	}).Error
	if err != nil {
		if utils.IsUniqueViolation(err) {
			utils.RespondError(c, utils.ConflictError("Category already exists"))
			return
		}
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category updated", gin.H{"category": category})
}

// DeleteCategory refuses to delete a category that still has menu items.
func (mc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var items int64
	if err := mc.DB.WithContext(c.Request.Context()).Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&items).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if items > 0 {
		utils.RespondError(c, utils.ConflictError("Category still has menu items"))
		return
	}

	res := mc.DB.WithContext(c.Request.Context()).Delete(&models.MenuCategory{}, id)
	if res.Error != nil {
		utils.RespondError(c, utils.InternalError(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, utils.NotFoundError("Category not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Category deleted", nil)
}
