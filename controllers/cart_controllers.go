package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// CartController serves both signed-in users and guests identified by the
// guest session cookie.
type CartController struct {
	Carts        *services.CartService
	CookieSecure bool
}

func NewCartController(carts *services.CartService, cookieSecure bool) *CartController {
	return &CartController{Carts: carts, CookieSecure: cookieSecure}
}

type addCartItemRequest struct {
	MenuItemID          uint   `json:"menuItemId" binding:"required"`
	Quantity            int    `json:"quantity" binding:"required,min=1,max=99"`
	SpecialInstructions string `json:"specialInstructions" binding:"max=500"`
}

type updateCartItemRequest struct {
	Quantity            int     `json:"quantity" binding:"required,min=1,max=99"`
	SpecialInstructions *string `json:"specialInstructions" binding:"omitempty,max=500"`
}

func (cc *CartController) GetCart(c *gin.Context) {
	owner := cartOwner(c, false, cc.CookieSecure)
	cart, err := cc.Carts.GetCart(c.Request.Context(), owner)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart retrieved", gin.H{"cart": cart})
}

// GetSummary prices the cart. Missing and empty carts still succeed with a
// zero summary.
func (cc *CartController) GetSummary(c *gin.Context) {
	owner := cartOwner(c, false, cc.CookieSecure)
	cart, summary, message, err := cc.Carts.Summary(c.Request.Context(), owner)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, message, gin.H{
		"cart":    cart,
		"summary": summary,
	})
}

func (cc *CartController) AddItem(c *gin.Context) {
	var req addCartItemRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	owner := cartOwner(c, true, cc.CookieSecure)
	cart, err := cc.Carts.AddItem(c.Request.Context(), owner, req.MenuItemID, req.Quantity, req.SpecialInstructions)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Item added to cart", gin.H{"cart": cart})
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req updateCartItemRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	owner := cartOwner(c, false, cc.CookieSecure)
	cart, err := cc.Carts.UpdateItem(c.Request.Context(), owner, id, req.Quantity, req.SpecialInstructions)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item updated", gin.H{"cart": cart})
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	owner := cartOwner(c, false, cc.CookieSecure)
	cart, err := cc.Carts.RemoveItem(c.Request.Context(), owner, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart item removed", gin.H{"cart": cart})
}

func (cc *CartController) ClearCart(c *gin.Context) {
	owner := cartOwner(c, false, cc.CookieSecure)
	if err := cc.Carts.Clear(c.Request.Context(), owner); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cart cleared", nil)
}
