package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/events"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var errMenuItemNotFound = utils.NotFoundError("Menu item not found")

type MenuController struct {
	DB        *gorm.DB
	Publisher events.Publisher
}

func NewMenuController(db *gorm.DB, publisher events.Publisher) *MenuController {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &MenuController{DB: db, Publisher: publisher}
}

type menuItemRequest struct {
	CategoryID   uint           `json:"categoryId" binding:"required"`
	Name         string         `json:"name" binding:"required,max=255"`
	Description  string         `json:"description" binding:"max=2000"`
	Price        float64        `json:"price" binding:"required,gt=0"`
	IsAvailable  *bool          `json:"isAvailable"`
	Station      models.Station `json:"station" binding:"omitempty,station"`
	IsVegetarian bool           `json:"isVegetarian"`
	IsVegan      bool           `json:"isVegan"`
	IsGlutenFree bool           `json:"isGlutenFree"`
	IsSpicy      bool           `json:"isSpicy"`
}

type availabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

// GetAllMenus lists menu items. Filters: categoryId, station, available,
// vegetarian, vegan, glutenFree, search.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	q := mc.DB.WithContext(c.Request.Context()).Preload("Category").Order("name asc")

	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, utils.ValidationError("Invalid categoryId"))
			return
		}
		q = q.Where("category_id = ?", id)
	}
	if raw := c.Query("station"); raw != "" {
		station := models.Station(strings.ToUpper(raw))
		if !station.Valid() {
			utils.RespondError(c, utils.ValidationError("Invalid station"))
			return
		}
		q = q.Where("station = ?", station)
	}
	for param, column := range map[string]string{
		"available":  "is_available",
		"vegetarian": "is_vegetarian",
		"vegan":      "is_vegan",
		"glutenFree": "is_gluten_free",
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondError(c, utils.ValidationError("Invalid "+param))
			return
		}
		q = q.Where(column+" = ?", v)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menu items", gin.H{"menuItems": items})
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.WithContext(c.Request.Context()).Preload("Category").First(&item, id).Error; err != nil {
		utils.RespondError(c, dbError(err, "Menu item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item retrieved", gin.H{"menuItem": item})
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuItemRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := mc.checkCategory(c, req.CategoryID); err != nil {
		utils.RespondError(c, err)
		return
	}

	item := models.MenuItem{IsAvailable: true, Station: models.StationKitchen}
	req.apply(&item)
	if err := mc.DB.WithContext(c.Request.Context()).Create(&item).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"menu_item": item.Name,
		"price":     utils.FormatCurrency(item.Price),
	}).Info("menu item created")
	utils.RespondJSON(c, http.StatusCreated, "Menu item created", gin.H{"menuItem": item})
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req menuItemRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := mc.checkCategory(c, req.CategoryID); err != nil {
		utils.RespondError(c, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.WithContext(c.Request.Context()).First(&item, id).Error; err != nil {
		utils.RespondError(c, dbError(err, "Menu item not found"))
		return
	}
	req.apply(&item)
	if err := mc.DB.WithContext(c.Request.Context()).Omit("Category").Save(&item).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item updated", gin.H{"menuItem": item})
}

// DeleteMenu removes a menu item that was never ordered. Ordered items should
// be marked unavailable instead so order history keeps its reference.
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var ordered int64
	if err := mc.DB.WithContext(c.Request.Context()).Model(&models.OrderItem{}).Where("menu_item_id = ?", id).Count(&ordered).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if ordered > 0 {
		utils.RespondError(c, utils.ConflictError("Menu item has been ordered, mark it unavailable instead"))
		return
	}

	err = mc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return utils.InternalError(err)
		}
		res := tx.Delete(&models.MenuItem{}, id)
		if res.Error != nil {
			return utils.InternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return errMenuItemNotFound
		}
		return nil
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item deleted", nil)
}

// UpdateAvailability toggles whether a menu item can be ordered. Setting the
// current value again is rejected as a no-op.
func (mc *MenuController) UpdateAvailability(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req availabilityRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.WithContext(c.Request.Context()).First(&item, id).Error; err != nil {
		utils.RespondError(c, dbError(err, "Menu item not found"))
		return
	}
	if item.IsAvailable == *req.IsAvailable {
		utils.RespondError(c, utils.NoOpError("Menu item availability is already "+strconv.FormatBool(item.IsAvailable)))
		return
	}
	if err := mc.DB.WithContext(c.Request.Context()).Model(&item).Update("is_available", *req.IsAvailable).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	item.IsAvailable = *req.IsAvailable

	if err := mc.Publisher.Publish(c.Request.Context(), events.New(events.MenuItemAvailability, item)); err != nil {
		utils.ErrorLogger.WithField("menu_item_id", item.ID).Warnf("publish failed: %v", err)
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item availability updated", gin.H{"menuItem": item})
}

func (mc *MenuController) checkCategory(c *gin.Context, categoryID uint) error {
	var category models.MenuCategory
	err := mc.DB.WithContext(c.Request.Context()).First(&category, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ValidationError("Category does not exist")
	}
	if err != nil {
		return utils.InternalError(err)
	}
	return nil
}

func (r menuItemRequest) apply(item *models.MenuItem) {
	item.CategoryID = r.CategoryID
	item.Name = strings.TrimSpace(r.Name)
	item.Description = strings.TrimSpace(r.Description)
	item.Price = utils.CurrencyFloat(decimal.NewFromFloat(r.Price))
	if r.IsAvailable != nil {
		item.IsAvailable = *r.IsAvailable
	}
	if r.Station != "" {
		item.Station = r.Station
	}
	item.IsVegetarian = r.IsVegetarian
	item.IsVegan = r.IsVegan
	item.IsGlutenFree = r.IsGlutenFree
	item.IsSpicy = r.IsSpicy
}
