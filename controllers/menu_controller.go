package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaudhary-hadi27/usman-fast-food/apperrors"
	"github.com/chaudhary-hadi27/usman-fast-food/services"
)

type MenuController struct {
	Menu *services.MenuService
}

func NewMenuController(menu *services.MenuService) *MenuController {
	return &MenuController{Menu: menu}
}

// GetMenu lists catalog items for the storefront. Unavailable items are
// hidden unless all=true (the admin dashboard view).
func (mc *MenuController) GetMenu(c *gin.Context) {
	availableOnly := c.Query("all") != "true"
	items, err := mc.Menu.List(c.Request.Context(), c.Query("category"), availableOnly)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetMenuItem returns a single catalog entry.
func (mc *MenuController) GetMenuItem(c *gin.Context) {
	item, err := mc.Menu.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateMenuItem adds a catalog entry (admin only).
func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	var input services.MenuItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	item, err := mc.Menu.Create(c.Request.Context(), &input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateMenuItem replaces a catalog entry's fields (admin only).
func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	var input services.MenuItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}

	item, err := mc.Menu.Update(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteMenuItem removes a catalog entry (admin only).
func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	if err := mc.Menu.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "menu item deleted"})
}
