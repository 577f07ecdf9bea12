package service

import (
	"context"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/model"
	"pcparts_dev_v1/pkg/logger"
)

// ==================== 配置 ====================

// CheckoutConfig 支付会话配置
// APIKey 只从配置注入，代码里不允许出现密钥字面量
type CheckoutConfig struct {
	APIKey    string
	ReturnURL string
	Currency  string
}

// ==================== CheckoutService 支付会话 ====================

// CheckoutService 对接 Stripe Checkout（嵌入式）
type CheckoutService struct {
	cfg *CheckoutConfig
	log logger.Logger
}

// NewCheckoutService 创建支付服务
func NewCheckoutService(cfg *CheckoutConfig, log logger.Logger) *CheckoutService {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	stripe.Key = cfg.APIKey
	return &CheckoutService{cfg: cfg, log: log}
}

// CreateSession 为订单创建支付会话，行项目来自订单的快照价
func (s *CheckoutService) CreateSession(ctx context.Context, order *model.Order) (*dto.CheckoutSessionResponse, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items))
	for _, item := range order.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.PartName),
				},
				UnitAmount: stripe.Int64(toMinorUnits(item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		UIMode:            stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ReturnURL:         stripe.String(s.cfg.ReturnURL),
		ClientReferenceID: stripe.String(order.OrderNumber),
		LineItems:         lineItems,
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}

	s.log.Infof("创建支付会话 %s 订单 %s", sess.ID, order.OrderNumber)
	return &dto.CheckoutSessionResponse{ClientSecret: sess.ClientSecret}, nil
}

// SessionStatus 查询支付会话状态
func (s *CheckoutService) SessionStatus(ctx context.Context, sessionID string) (*dto.CheckoutStatusResponse, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		return nil, err
	}
	return &dto.CheckoutStatusResponse{
		Status:        string(sess.Status),
		PaymentStatus: string(sess.PaymentStatus),
	}, nil
}

// toMinorUnits 金额转最小货币单位（分）
func toMinorUnits(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
