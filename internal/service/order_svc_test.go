package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/model"
	"pcparts_dev_v1/internal/repository"
)

// ==================== 测试辅助 ====================

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.User{}, &model.Part{}, &model.Order{}, &model.OrderItem{})
	return db
}

func newOrderService(db *gorm.DB) *OrderService {
	return NewOrderService(repository.NewOrderRepository(db), repository.NewPartRepository(db))
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	user := model.User{Username: username, Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return &user
}

func seedPart(t *testing.T, db *gorm.DB, name, price string) *model.Part {
	part := model.Part{
		Name:         name,
		Manufacturer: "TestCo",
		Type:         model.PartTypeCPU,
		Price:        decimal.RequireFromString(price),
		URL:          "https://parts.example/" + name,
	}
	if err := db.Create(&part).Error; err != nil {
		t.Fatalf("创建测试配件失败: %v", err)
	}
	return &part
}

// ==================== 单元测试 ====================

func TestOrderService_CreateOrder_Pricing(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db, "buyer")
	part := seedPart(t, db, "Ryzen 5 7600", "22.75")

	// 2 × 22.75 = 45.50，默认税 13% = 5.915，合计 51.415
	vo, err := svc.CreateOrder(context.Background(), user.ID, &dto.CreateOrderRequest{
		Items: []dto.OrderItemInput{{ProductID: part.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	if !vo.Subtotal.Equal(decimal.RequireFromString("45.50")) {
		t.Errorf("subtotal = %s, want 45.50", vo.Subtotal)
	}
	if !vo.ShippingCost.Equal(decimal.Zero) {
		t.Errorf("shipping = %s, want 0", vo.ShippingCost)
	}
	if !vo.Taxes.Equal(decimal.RequireFromString("5.915")) {
		t.Errorf("taxes = %s, want 5.915", vo.Taxes)
	}
	if !vo.TotalAmount.Equal(decimal.RequireFromString("51.415")) {
		t.Errorf("total = %s, want 51.415", vo.TotalAmount)
	}
}

func TestOrderService_CreateOrder_Overrides(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db, "buyer")
	part := seedPart(t, db, "RTX 4070", "100.00")

	shipping := decimal.RequireFromString("9.99")
	taxes := decimal.Zero
	vo, err := svc.CreateOrder(context.Background(), user.ID, &dto.CreateOrderRequest{
		Items:        []dto.OrderItemInput{{ProductID: part.ID, Quantity: 1}},
		ShippingCost: &shipping,
		Taxes:        &taxes,
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	// 显式传 0 税额时不能退回默认 13%
	if !vo.Taxes.Equal(decimal.Zero) {
		t.Errorf("taxes = %s, want 0", vo.Taxes)
	}
	if !vo.TotalAmount.Equal(decimal.RequireFromString("109.99")) {
		t.Errorf("total = %s, want 109.99", vo.TotalAmount)
	}
}

func TestOrderService_CreateOrder_CollectsAllMissingIDs(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db, "buyer")
	part := seedPart(t, db, "B650 Board", "50.00")

	_, err := svc.CreateOrder(context.Background(), user.ID, &dto.CreateOrderRequest{
		Items: []dto.OrderItemInput{
			{ProductID: 999, Quantity: 1},
			{ProductID: part.ID, Quantity: 1},
			{ProductID: 888, Quantity: 1},
		},
	})

	var notFound *PartsNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want PartsNotFoundError", err)
	}
	if len(notFound.IDs) != 2 {
		t.Fatalf("missing = %v, want 2 个 ID", notFound.IDs)
	}
	if notFound.IDs[0] != 888 || notFound.IDs[1] != 999 {
		t.Errorf("missing = %v, want [888 999]", notFound.IDs)
	}

	// 校验失败不能留下半截订单
	var count int64
	db.Model(&model.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("失败下单后订单数 = %d, want 0", count)
	}
}

func TestOrderService_CreateOrder_Validation(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db, "buyer")
	part := seedPart(t, db, "Corsair RAM", "30.00")

	if _, err := svc.CreateOrder(context.Background(), user.ID, &dto.CreateOrderRequest{}); !errors.Is(err, ErrEmptyOrder) {
		t.Errorf("空订单 err = %v, want ErrEmptyOrder", err)
	}

	_, err := svc.CreateOrder(context.Background(), user.ID, &dto.CreateOrderRequest{
		Items: []dto.OrderItemInput{{ProductID: part.ID, Quantity: 0}},
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("数量为 0 err = %v, want ErrInvalidQuantity", err)
	}

	_, err = svc.CreateOrder(context.Background(), user.ID, &dto.CreateOrderRequest{
		Items: []dto.OrderItemInput{{ProductID: part.ID, Quantity: -3}},
	})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("负数量 err = %v, want ErrInvalidQuantity", err)
	}
}

func TestOrderService_SnapshotSurvivesPriceChange(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := newOrderService(db)
	user := seedUser(t, db, "buyer")
	part := seedPart(t, db, "Seasonic PSU", "80.00")

	vo, err := svc.CreateOrder(context.Background(), user.ID, &dto.CreateOrderRequest{
		Items: []dto.OrderItemInput{{ProductID: part.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	// 下单后涨价，已存订单的金额不动
	db.Model(&model.Part{}).Where("id = ?", part.ID).
		Update("price", decimal.RequireFromString("999.00"))

	orders, err := svc.ListOrders(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("查询订单失败: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("订单数 = %d, want 1", len(orders))
	}
	if !orders[0].Subtotal.Equal(vo.Subtotal) {
		t.Errorf("调价后 subtotal = %s, want %s", orders[0].Subtotal, vo.Subtotal)
	}

	var item model.OrderItem
	db.First(&item)
	if !item.UnitPrice.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("订单项单价 = %s, want 80.00", item.UnitPrice)
	}
}

func TestOrderService_ListOrders_OwnershipAndOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := newOrderService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	part := seedPart(t, db, "NVMe SSD", "10.00")

	mkOrder := func(userID int64) *dto.OrderVO {
		vo, err := svc.CreateOrder(context.Background(), userID, &dto.CreateOrderRequest{
			Items: []dto.OrderItemInput{{ProductID: part.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("下单失败: %v", err)
		}
		return vo
	}

	first := mkOrder(alice.ID)
	mkOrder(bob.ID)
	second := mkOrder(alice.ID)

	orders, err := svc.ListOrders(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("查询订单失败: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("alice 订单数 = %d, want 2", len(orders))
	}
	for _, o := range orders {
		if o.User == nil || o.User.ID != alice.ID {
			t.Errorf("返回了他人订单: %+v", o.User)
		}
	}
	// 新单在前
	if orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Errorf("排序 = [%d %d], want [%d %d]", orders[0].ID, orders[1].ID, second.ID, first.ID)
	}
}

func TestOrderService_GetOwnedOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	svc := newOrderService(db)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	part := seedPart(t, db, "Case Fan", "5.00")

	vo, err := svc.CreateOrder(context.Background(), alice.ID, &dto.CreateOrderRequest{
		Items: []dto.OrderItemInput{{ProductID: part.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("下单失败: %v", err)
	}

	if _, err := svc.GetOwnedOrder(context.Background(), alice.ID, vo.ID); err != nil {
		t.Errorf("本人取单失败: %v", err)
	}

	// 他人的订单按不存在处理，不泄露存在性
	if _, err := svc.GetOwnedOrder(context.Background(), bob.ID, vo.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("他人取单 err = %v, want ErrRecordNotFound", err)
	}
}
