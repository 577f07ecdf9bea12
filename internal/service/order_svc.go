package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/model"
	"pcparts_dev_v1/internal/repository"
)

// ==================== 业务错误 ====================

var (
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("every quantity must be a positive integer")
)

// PartsNotFoundError 下单引用了不存在的配件
// 一次性收集全部缺失 ID，而不是只报第一个
type PartsNotFoundError struct {
	IDs []int64
}

func (e *PartsNotFoundError) Error() string {
	strs := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		strs[i] = fmt.Sprintf("%d", id)
	}
	return "parts not found: " + strings.Join(strs, ", ")
}

// DefaultTaxRate 未提供税额时的默认税率（小计的 13%，无税区逻辑）
var DefaultTaxRate = decimal.New(13, -2)

// ==================== OrderService 订单定价 ====================

// OrderService 订单定价与存储
// 金额全程使用 decimal 精确计算，多行相加不会产生浮点漂移
type OrderService struct {
	orderRepo repository.OrderRepository
	partRepo  repository.PartRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, partRepo repository.PartRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, partRepo: partRepo}
}

// CreateOrder 校验购物车并落库订单快照
// 配件查价和订单写入在同一事务内完成：请求中途的调价不可能让
// 已存订单的小计与其订单项对不上。单价在此刻捕获到订单项，之后只读
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, req *dto.CreateOrderRequest) (*dto.OrderVO, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	ids := make([]int64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}

	var order *model.Order
	err := s.orderRepo.Transaction(ctx, func(tx *gorm.DB) error {
		parts, err := s.partRepo.WithTx(tx).GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		byID := make(map[int64]*model.Part, len(parts))
		for i := range parts {
			byID[parts[i].ID] = &parts[i]
		}

		var missing []int64
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
			return &PartsNotFoundError{IDs: missing}
		}

		subtotal := decimal.Zero
		items := make([]model.OrderItem, 0, len(req.Items))
		for _, in := range req.Items {
			part := byID[in.ProductID]
			qty := decimal.NewFromInt(int64(in.Quantity))
			subtotal = subtotal.Add(part.Price.Mul(qty))
			items = append(items, model.OrderItem{
				PartID:    part.ID,
				PartName:  part.Name,
				Quantity:  in.Quantity,
				UnitPrice: part.Price,
			})
		}

		shipping := decimal.Zero
		if req.ShippingCost != nil {
			shipping = *req.ShippingCost
		}
		taxes := subtotal.Mul(DefaultTaxRate)
		if req.Taxes != nil {
			taxes = *req.Taxes
		}

		order = &model.Order{
			UserID:       userID,
			Subtotal:     subtotal,
			ShippingCost: shipping,
			Taxes:        taxes,
			TotalAmount:  subtotal.Add(shipping).Add(taxes),
			Items:        items,
		}
		return s.orderRepo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.orderRepo.GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return s.toOrderVO(created), nil
}

// ListOrders 当前用户订单，按创建时间倒序
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]*dto.OrderVO, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	vos := make([]*dto.OrderVO, 0, len(orders))
	for i := range orders {
		vos = append(vos, s.toOrderVO(&orders[i]))
	}
	return vos, nil
}

// GetOwnedOrder 按 ID 取订单，非本人订单按不存在处理
func (s *OrderService) GetOwnedOrder(ctx context.Context, userID, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *OrderService) toOrderVO(order *model.Order) *dto.OrderVO {
	items := make([]dto.OrderItemVO, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, dto.OrderItemVO{
			ProductID: it.PartID,
			Quantity:  it.Quantity,
		})
	}
	return &dto.OrderVO{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		User: &dto.UserInfo{
			ID:        order.User.ID,
			Username:  order.User.Username,
			CreatedAt: order.User.CreatedAt,
		},
		Items:        items,
		Subtotal:     order.Subtotal,
		ShippingCost: order.ShippingCost,
		Taxes:        order.Taxes,
		TotalAmount:  order.TotalAmount,
		CreatedAt:    order.CreatedAt,
	}
}
