package dto

// ==================== 支付会话 ====================

// CreateCheckoutSessionRequest 创建支付会话请求
type CreateCheckoutSessionRequest struct {
	OrderID int64 `json:"order_id" binding:"required"`
}

// CheckoutSessionResponse 支付会话响应，client_secret 由前端嵌入式结账使用
type CheckoutSessionResponse struct {
	ClientSecret string `json:"client_secret"`
}

// CheckoutStatusResponse 支付会话状态
type CheckoutStatusResponse struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}
