package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/models"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

var (
	errInvalidCredentials = utils.NewError(utils.KindAuthRequired, "Invalid email or password")
	errEmailTaken         = utils.ConflictError("Email is already registered")
	errUserNotFound       = utils.NotFoundError("User not found")
)

type UserController struct {
	DB           *gorm.DB
	Tokens       *utils.TokenManager
	Sessions     services.SessionStore
	Carts        *services.CartService
	CookieSecure bool
}

func NewUserController(db *gorm.DB, tokens *utils.TokenManager, sessions services.SessionStore, carts *services.CartService, cookieSecure bool) *UserController {
	return &UserController{DB: db, Tokens: tokens, Sessions: sessions, Carts: carts, CookieSecure: cookieSecure}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type createUserRequest struct {
	Name     string      `json:"name" binding:"required,max=255"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8,max=72"`
	Role     models.Role `json:"role" binding:"required,user_role"`
}

type updateRoleRequest struct {
	Role models.Role `json:"role" binding:"required,user_role"`
}

// Register creates a customer account.
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	user, err := uc.createUser(c.Request.Context(), req.Name, req.Email, req.Password, models.RoleCustomer)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.InfoLogger.WithField("email", user.Email).Info("user registered")
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{"user": user})
}

// Login opens a session, sets the session cookie and moves any guest cart
// into the user's cart.
func (uc *UserController) Login(c *gin.Context) {
	var req loginRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	var user models.User
	if err := uc.DB.WithContext(c.Request.Context()).
		Where("email = ?", normalizeEmail(req.Email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, errInvalidCredentials)
			return
		}
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, errInvalidCredentials)
		return
	}

	session, err := uc.Sessions.Create(c.Request.Context(), user.ID, user.Role, uc.Tokens.TTL())
	if err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	token, expiresAt, err := uc.issue(c, session)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if guest, err := c.Cookie(middlewares.GuestCookieName); err == nil && guest != "" {
		if err := uc.Carts.MergeGuestCart(c.Request.Context(), guest, user.ID); err != nil {
			utils.ErrorLogger.WithField("user_id", user.ID).Warnf("guest cart merge failed: %v", err)
		} else {
			c.SetCookie(middlewares.GuestCookieName, "", -1, "/", "", uc.CookieSecure, true)
		}
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      user,
	})
}

// Logout destroys the current session.
func (uc *UserController) Logout(c *gin.Context) {
	if err := uc.Sessions.Delete(c.Request.Context(), middlewares.CurrentSessionID(c)); err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	c.SetCookie(middlewares.SessionCookieName, "", -1, "/", "", uc.CookieSecure, true)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// Refresh extends the current session and issues a new token for it.
func (uc *UserController) Refresh(c *gin.Context) {
	session, err := uc.Sessions.Touch(c.Request.Context(), middlewares.CurrentSessionID(c), uc.Tokens.TTL())
	if errors.Is(err, services.ErrSessionNotFound) {
		utils.RespondError(c, utils.ErrAuthRequired)
		return
	}
	if err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}

	token, expiresAt, err := uc.issue(c, session)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session refreshed", gin.H{
		"token":     token,
		"expiresAt": expiresAt,
	})
}

// GetProfile returns the signed-in user.
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, _ := middlewares.CurrentUserID(c)

	var user models.User
	if err := uc.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		utils.RespondError(c, dbError(err, "User not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{"user": user})
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	q := uc.DB.WithContext(c.Request.Context()).Order("id asc")
	if role := models.Role(strings.ToUpper(c.Query("role"))); role != "" {
		if !role.Valid() {
			utils.RespondError(c, utils.ValidationError("Invalid role"))
			return
		}
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All users", gin.H{"users": users})
}

// CreateUser lets an admin create an account with any role.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}

	user, err := uc.createUser(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.InfoLogger.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("staff account created")
	utils.RespondJSON(c, http.StatusCreated, "User created", gin.H{"user": user})
}

// UpdateUserRole changes a user's role and ends their sessions so the new
// role applies on next login.
func (uc *UserController) UpdateUserRole(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req updateRoleRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	if self, _ := middlewares.CurrentUserID(c); self == id {
		utils.RespondError(c, utils.ValidationError("You cannot change your own role"))
		return
	}

	var user models.User
	if err := uc.DB.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		utils.RespondError(c, dbError(err, "User not found"))
		return
	}
	if user.Role == req.Role {
		utils.RespondError(c, utils.NoOpError("User already has this role"))
		return
	}
	if err := uc.DB.WithContext(c.Request.Context()).Model(&user).Update("role", req.Role).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	user.Role = req.Role
	if err := uc.Sessions.DeleteUser(c.Request.Context(), user.ID); err != nil {
		utils.ErrorLogger.WithField("user_id", user.ID).Warnf("ending sessions failed: %v", err)
	}

	utils.RespondJSON(c, http.StatusOK, "User role updated", gin.H{"user": user})
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if self, _ := middlewares.CurrentUserID(c); self == id {
		utils.RespondError(c, utils.ValidationError("You cannot delete your own account"))
		return
	}

	var orders int64
	if err := uc.DB.WithContext(c.Request.Context()).Model(&models.Order{}).Where("user_id = ?", id).Count(&orders).Error; err != nil {
		utils.RespondError(c, utils.InternalError(err))
		return
	}
	if orders > 0 {
		utils.RespondError(c, utils.ConflictError("User has orders and cannot be deleted"))
		return
	}

	res := uc.DB.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		utils.RespondError(c, utils.InternalError(res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, errUserNotFound)
		return
	}
	if err := uc.Sessions.DeleteUser(c.Request.Context(), id); err != nil {
		utils.ErrorLogger.WithField("user_id", id).Warnf("ending sessions failed: %v", err)
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted", nil)
}

func (uc *UserController) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.InternalError(err)
	}

	user := models.User{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: string(hashed),
		Role:     role,
	}
	if err := uc.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, errEmailTaken
		}
		return nil, utils.InternalError(err)
	}
	return &user, nil
}

func (uc *UserController) issue(c *gin.Context, session *services.Session) (string, time.Time, error) {
	token, expiresAt, err := uc.Tokens.GenerateToken(session.UserID, string(session.Role), session.ID, time.Now())
	if err != nil {
		return "", time.Time{}, utils.InternalError(err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookieName, token, int(uc.Tokens.TTL().Seconds()), "/", "", uc.CookieSecure, true)
	return token, expiresAt, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
