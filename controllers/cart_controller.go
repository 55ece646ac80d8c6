package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/models"
	"github.com/chaudhary-hadi27/usman-fast-food/services"
)

// SessionCookieName identifies a customer's cart across page reloads.
const SessionCookieName = "cart_session"

const sessionCookieMaxAge = 7 * 24 * 60 * 60

type CartController struct {
	Carts *services.CartService
	Menu  *services.MenuService
}

func NewCartController(carts *services.CartService, menu *services.MenuService) *CartController {
	return &CartController{
		Carts: carts,
		Menu:  menu,
	}
}

type cartResponse struct {
	SessionID string            `json:"sessionId"`
	Items     []models.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Total     float64           `json:"total"`
}

func toCartResponse(cart *models.Cart) cartResponse {
	items := cart.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return cartResponse{
		SessionID: cart.SessionID,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Total:     cart.Total(),
	}
}

// sessionID reads the cart session cookie, minting one when absent.
func (cc *CartController) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(SessionCookieName); err == nil && id != "" {
		return id
	}
	if id := c.GetHeader("X-Session-ID"); id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(SessionCookieName, id, sessionCookieMaxAge, "/", "", false, true)
	return id
}

// GetCart returns the current cart for the session.
func (cc *CartController) GetCart(c *gin.Context) {
	cart, err := cc.Carts.Get(c.Request.Context(), cc.sessionID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

type addItemRequest struct {
	MenuItemID string `json:"menuItem" binding:"required"`
	Quantity   int    `json:"quantity"`
}

// AddItem snapshots the menu item server-side and merges it into the cart.
// The client only names the item; name and price come from the catalog so a
// tampered payload cannot seed the cart with made-up prices.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	menuItem, err := cc.Menu.Get(c.Request.Context(), req.MenuItemID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if !menuItem.Available {
		apperrors.Respond(c, apperrors.Validation("menuItem", "item is currently unavailable"))
		return
	}

	item := models.CartItem{
		MenuItemID: menuItem.ID.Hex(),
		Name:       menuItem.Name,
		Price:      menuItem.Price,
	}

	cart, ok, err := cc.Carts.AddItem(c.Request.Context(), cc.sessionID(c), item, req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if !ok {
		apperrors.Respond(c, apperrors.Validation("quantity", "maximum quantity per item reached"))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// SetQuantity replaces the stored quantity for one line.
func (cc *CartController) SetQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	cart, ok, err := cc.Carts.SetQuantity(c.Request.Context(), cc.sessionID(c), c.Param("menu_item_id"), req.Quantity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if !ok {
		apperrors.Respond(c, apperrors.Validation("quantity", "quantity must be between 1 and 20"))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

// Increment bumps one line by one unit.
func (cc *CartController) Increment(c *gin.Context) {
	cart, ok, err := cc.Carts.Increment(c.Request.Context(), cc.sessionID(c), c.Param("menu_item_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	if !ok {
		apperrors.Respond(c, apperrors.Validation("quantity", "maximum quantity per item reached"))
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

// Decrement lowers one line by one unit, removing it at quantity 1.
func (cc *CartController) Decrement(c *gin.Context) {
	cart, _, err := cc.Carts.Decrement(c.Request.Context(), cc.sessionID(c), c.Param("menu_item_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

// RemoveItem deletes one line from the cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	cart, err := cc.Carts.RemoveItem(c.Request.Context(), cc.sessionID(c), c.Param("menu_item_id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}

// ClearCart empties the cart unconditionally.
func (cc *CartController) ClearCart(c *gin.Context) {
	cart, err := cc.Carts.Clear(c.Request.Context(), cc.sessionID(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(cart))
}
