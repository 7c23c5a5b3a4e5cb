package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/middleware"
	"storefront/models"
	"storefront/services"
)

const SessionHeader = "X-Session-ID"

type CartController struct {
	carts        *services.CartService
	logger       *slog.Logger
	cookieMaxAge int
	cookieSecure bool
}

func NewCartController(carts *services.CartService, logger *slog.Logger, tokenTTL time.Duration, cookieSecure bool) *CartController {
	return &CartController{
		carts:        carts,
		logger:       logger,
		cookieMaxAge: int(tokenTTL.Seconds()),
		cookieSecure: cookieSecure,
	}
}

// AddToCart godoc
// @Summary Add item to cart
// @Description Adds a product line or increases the quantity of a matching (product, size, color) line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddToCartRequest true "Item"
// @Success 200 {object} models.Response{data=models.AddItemResult}
// @Failure 400 {object} models.Response
// @Failure 401 {object} models.Response
// @Failure 403 {object} models.Response
// @Router /cart/add [post]
func (ctrl *CartController) AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := ctrl.carts.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, result.AccessToken, ctrl.cookieMaxAge, "/", "", ctrl.cookieSecure, true)
	respond(c, http.StatusOK, "Item added to cart", result)
}

// GetCart godoc
// @Summary Get my cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.Cart}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.carts.GetCart(c.Request.Context(), models.UserOwner(userID))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Cart retrieved successfully", cart)
}

// UpdateItem godoc
// @Summary Set the quantity of a cart line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateCartItemRequest true "Line"
// @Success 200 {object} models.Response{data=models.Cart}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /cart/item [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := ctrl.carts.UpdateItemQuantity(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Cart updated", cart)
}

// RemoveItem godoc
// @Summary Remove a cart line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.RemoveCartItemRequest true "Line"
// @Success 200 {object} models.Response{data=models.Cart}
// @Failure 404 {object} models.Response
// @Router /cart/item [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := ctrl.carts.RemoveItem(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Item removed from cart", cart)
}

// AddGuestItem godoc
// @Summary Add item to a guest cart
// @Description A new session id is generated and returned in X-Session-ID when none is sent
// @Tags Cart
// @Accept json
// @Produce json
// @Param X-Session-ID header string false "Guest session"
// @Param request body models.AddToCartRequest true "Item"
// @Success 200 {object} models.Response{data=models.Cart}
// @Failure 400 {object} models.Response
// @Router /cart/guest/add [post]
func (ctrl *CartController) AddGuestItem(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sessionID := c.GetHeader(SessionHeader)
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if _, err := uuid.Parse(sessionID); err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid session id", nil)
		return
	}
	c.Header(SessionHeader, sessionID)

	cart, err := ctrl.carts.AddGuestItem(c.Request.Context(), sessionID, req)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Item added to cart", cart)
}

// GetGuestCart godoc
// @Summary Get a guest cart
// @Tags Cart
// @Produce json
// @Param X-Session-ID header string true "Guest session"
// @Success 200 {object} models.Response{data=models.Cart}
// @Failure 400 {object} models.Response
// @Router /cart/guest [get]
func (ctrl *CartController) GetGuestCart(c *gin.Context) {
	sessionID := c.GetHeader(SessionHeader)
	if _, err := uuid.Parse(sessionID); err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid session id", nil)
		return
	}

	cart, err := ctrl.carts.GetCart(c.Request.Context(), models.SessionOwner(sessionID))
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	respond(c, http.StatusOK, "Cart retrieved successfully", cart)
}
