package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

const guestCookieMaxAge = 30 * 24 * 60 * 60

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.ValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// cartOwner resolves the cart owner from the session or the guest cookie.
// When create is set and neither is present, a new guest cookie is issued.
func cartOwner(c *gin.Context, create, secure bool) services.CartOwner {
	if userID, ok := middlewares.CurrentUserID(c); ok {
		return services.UserOwner(userID)
	}
	if guest, err := c.Cookie(middlewares.GuestCookieName); err == nil {
		if _, err := uuid.Parse(guest); err == nil {
			return services.GuestOwner(guest)
		}
	}
	if !create {
		return services.CartOwner{}
	}

	guest := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.GuestCookieName, guest, guestCookieMaxAge, "/", "", secure, true)
	return services.GuestOwner(guest)
}

// dbError maps a lookup failure to NotFound with the given message.
func dbError(err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NotFoundError(notFound)
	}
	return utils.InternalError(err)
}
