package models

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AddToCartRequest struct {
	UserID          int64   `json:"userId"`
	ProductID       string  `json:"productId" binding:"required"`
	ProductObjectID int64   `json:"productObjectId"`
	Quantity        int     `json:"quantity" binding:"required,min=1"`
	Size            *string `json:"size"`
	Color           *string `json:"color"`
	ColorCode       *string `json:"colorCode"`
}

type UpdateCartItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
}

type RemoveCartItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Size      *string `json:"size"`
	Color     *string `json:"color"`
}

type AddItemResult struct {
	AccessToken string `json:"accessToken,omitempty"`
	Cart        *Cart  `json:"cart"`
}

type PlaceOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress" binding:"required"`
	ContactNumber   string          `json:"contactNumber" binding:"required,min=6,max=20"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" binding:"required,oneof=COD Prepaid bKash Nagad Rocket"`
	PaymentDetails  *PaymentDetails `json:"paymentDetails"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required,oneof=Pending Processing Shipped Delivered Cancelled"`
}

type CreateProductRequest struct {
	Code          string          `json:"productId" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" binding:"min=0"`
	IsSaleable    bool            `json:"isSaleable"`
	IsDisplayable bool            `json:"isDisplayable"`
	PrepaidOnly   bool            `json:"prepaidOnly"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
	Image         string          `json:"image"`
}
