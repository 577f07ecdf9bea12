package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ==================== 下单 ====================

// OrderItemInput 下单项
type OrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest 下单请求
// shipping / taxes 不传时分别取 0 和小计的 13%
type CreateOrderRequest struct {
	Items        []OrderItemInput `json:"order_items_input" binding:"required"`
	ShippingCost *decimal.Decimal `json:"shipping_cost_input"`
	Taxes        *decimal.Decimal `json:"taxes_input"`
}

// ==================== 订单视图 ====================

// OrderItemVO 订单项视图
type OrderItemVO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderVO 订单视图，与前端订单列表消费的字段一一对应
type OrderVO struct {
	ID           int64           `json:"id"`
	OrderNumber  string          `json:"order_number"`
	User         *UserInfo       `json:"user"`
	Items        []OrderItemVO   `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Taxes        decimal.Decimal `json:"taxes"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}
