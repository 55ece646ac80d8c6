package models

import "time"

// MaxItemQuantity caps how many units of a single menu item one cart may hold.
const MaxItemQuantity = 20

// CartItem is a line in a customer's cart. Name and price are snapshots of
// the menu at the time the item was added; checkout re-verifies the total
// server-side anyway.
type CartItem struct {
	MenuItemID string  `json:"menuItem"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// Cart is the draft of what one customer intends to order. It holds at most
// one line per menu item id. Derived values (Total, ItemCount) are always
// recomputed from the current lines, never stored.
type Cart struct {
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (c *Cart) find(menuItemID string) int {
	for i := range c.Items {
		if c.Items[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// AddItem merges quantity into an existing line or appends a new one.
// Returns false and leaves the cart unchanged if the resulting quantity
// would exceed MaxItemQuantity or quantity is not positive.
func (c *Cart) AddItem(item CartItem, quantity int) bool {
	if quantity < 1 {
		return false
	}
	if i := c.find(item.MenuItemID); i >= 0 {
		if c.Items[i].Quantity+quantity > MaxItemQuantity {
			return false
		}
		c.Items[i].Quantity += quantity
		return true
	}
	if quantity > MaxItemQuantity {
		return false
	}
	item.Quantity = quantity
	c.Items = append(c.Items, item)
	return true
}

// RemoveItem deletes the line for menuItemID. Absent ids are a no-op.
func (c *Cart) RemoveItem(menuItemID string) {
	if i := c.find(menuItemID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
}

// SetQuantity replaces the stored quantity for menuItemID. Returns false for
// quantities outside [1, MaxItemQuantity]. Absent ids are a no-op that still
// reports success.
func (c *Cart) SetQuantity(menuItemID string, quantity int) bool {
	if quantity < 1 || quantity > MaxItemQuantity {
		return false
	}
	if i := c.find(menuItemID); i >= 0 {
		c.Items[i].Quantity = quantity
	}
	return true
}

// Increment bumps the line by one, refusing silently at the cap.
func (c *Cart) Increment(menuItemID string) bool {
	i := c.find(menuItemID)
	if i < 0 || c.Items[i].Quantity >= MaxItemQuantity {
		return false
	}
	c.Items[i].Quantity++
	return true
}

// Decrement lowers the line by one; at quantity 1 the line is removed
// entirely (the minus button doubles as remove).
func (c *Cart) Decrement(menuItemID string) bool {
	i := c.find(menuItemID)
	if i < 0 {
		return false
	}
	if c.Items[i].Quantity <= 1 {
		c.RemoveItem(menuItemID)
		return true
	}
	c.Items[i].Quantity--
	return true
}

// Clear empties the cart. Called after a successful order submission.
func (c *Cart) Clear() {
	c.Items = nil
}

// ItemCount is the sum of quantities across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, it := range c.Items {
		count += it.Quantity
	}
	return count
}

// Total is the sum of price*quantity across all lines.
func (c *Cart) Total() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}
