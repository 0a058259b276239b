package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

type AddressController struct {
	Addresses *services.AddressService
}

func NewAddressController(addresses *services.AddressService) *AddressController {
	return &AddressController{Addresses: addresses}
}

type addressRequest struct {
	Label      string `json:"label" binding:"max=50"`
	Line1      string `json:"line1" binding:"required,max=255"`
	Line2      string `json:"line2" binding:"max=255"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postalCode" binding:"max=20"`
	Phone      string `json:"phone" binding:"max=30"`
	IsDefault  bool   `json:"isDefault"`
}

func (r addressRequest) input() services.AddressInput {
	return services.AddressInput{
		Label:      r.Label,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		PostalCode: r.PostalCode,
		Phone:      r.Phone,
		IsDefault:  r.IsDefault,
	}
}

func (ac *AddressController) ListAddresses(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)
	addresses, err := ac.Addresses.List(c.Request.Context(), userID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Addresses retrieved", gin.H{"addresses": addresses})
}

func (ac *AddressController) CreateAddress(c *gin.Context) {
	var req addressRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	userID, _ := middlewares.CurrentUserID(c)
	address, err := ac.Addresses.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Address created", gin.H{"address": address})
}

func (ac *AddressController) UpdateAddress(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req addressRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	userID, _ := middlewares.CurrentUserID(c)
	address, err := ac.Addresses.Update(c.Request.Context(), userID, id, req.input())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Address updated", gin.H{"address": address})
}

func (ac *AddressController) DeleteAddress(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	userID, _ := middlewares.CurrentUserID(c)
	if err := ac.Addresses.Delete(c.Request.Context(), userID, id); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Address deleted", nil)
}

// SetDefaultAddress makes the address the user's only default.
func (ac *AddressController) SetDefaultAddress(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	userID, _ := middlewares.CurrentUserID(c)
	address, err := ac.Addresses.SetDefault(c.Request.Context(), userID, id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Default address updated", gin.H{"address": address})
}
