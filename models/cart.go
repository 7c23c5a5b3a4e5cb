package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a cart. ProductName, PricePerUnit and ProductImage are
// snapshotted when the line is created; TotalPrice is derived from price and quantity.
type CartItem struct {
	ProductID       string          `json:"productId"`
	ProductObjectID int64           `json:"productObjectId"`
	ProductName     string          `json:"productName"`
	PricePerUnit    decimal.Decimal `json:"pricePerUnit"`
	Quantity        int             `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Size            *string         `json:"size,omitempty"`
	Color           *string         `json:"color,omitempty"`
	ColorCode       *string         `json:"colorCode,omitempty"`
	ProductImage    string          `json:"productImage,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Matches reports whether the line is the (productId, size, color) triple given.
// A nil option and an empty option are the same.
func (i CartItem) Matches(productID string, size, color *string) bool {
	return i.ProductID == productID && deref(i.Size) == deref(size) && deref(i.Color) == deref(color)
}

type CartOwner struct {
	UserID    int64
	SessionID string
}

func UserOwner(id int64) CartOwner {
	return CartOwner{UserID: id}
}

func SessionOwner(id string) CartOwner {
	return CartOwner{SessionID: id}
}

func (o CartOwner) IsUser() bool {
	return o.UserID != 0
}

// CacheKey is the cache key prefix that all entries for this owner live under.
func (o CartOwner) CacheKey() string {
	if o.IsUser() {
		return fmt.Sprintf("cart:user:%d", o.UserID)
	}
	return "cart:session:" + o.SessionID
}

type Cart struct {
	ID        int64      `json:"id"`
	UserID    *int64     `json:"userId,omitempty"`
	SessionID *string    `json:"sessionId,omitempty"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func NewCart(owner CartOwner) *Cart {
	cart := &Cart{Items: []CartItem{}}
	if owner.IsUser() {
		id := owner.UserID
		cart.UserID = &id
	} else {
		sid := owner.SessionID
		cart.SessionID = &sid
	}
	return cart
}

func (c *Cart) Owner() CartOwner {
	if c.UserID != nil {
		return UserOwner(*c.UserID)
	}
	if c.SessionID != nil {
		return SessionOwner(*c.SessionID)
	}
	return CartOwner{}
}

// FindItem returns the index of the line identified by the triple, or -1.
func (c *Cart) FindItem(productID string, size, color *string) int {
	for idx, item := range c.Items {
		if item.Matches(productID, size, color) {
			return idx
		}
	}
	return -1
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

// Clone returns a deep copy so callers can mutate items without touching shared state.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := *c
	if c.UserID != nil {
		v := *c.UserID
		cp.UserID = &v
	}
	if c.SessionID != nil {
		v := *c.SessionID
		cp.SessionID = &v
	}
	cp.Items = CloneItems(c.Items)
	return &cp
}

func CloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	for idx, item := range items {
		item.Size = cloneString(item.Size)
		item.Color = cloneString(item.Color)
		item.ColorCode = cloneString(item.ColorCode)
		out[idx] = item
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
