package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCOD     PaymentMethod = "COD"
	PaymentPrepaid PaymentMethod = "Prepaid"
	PaymentBKash   PaymentMethod = "bKash"
	PaymentNagad   PaymentMethod = "Nagad"
	PaymentRocket  PaymentMethod = "Rocket"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

// CanTransitionTo reports whether the order state machine allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

type ShippingAddress struct {
	Division string `json:"division" binding:"required"`
	District string `json:"district" binding:"required"`
	Upazila  string `json:"upazila" binding:"required"`
	Address  string `json:"address" binding:"required"`
}

type PaymentDetails struct {
	TransactionID string `json:"transactionId,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Gateway       string `json:"gateway,omitempty"`
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          int64           `json:"userId"`
	Items           []CartItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	ContactNumber   string          `json:"contactNumber"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentDetails  *PaymentDetails `json:"paymentDetails,omitempty"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
