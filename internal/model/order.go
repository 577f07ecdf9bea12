package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ==================== Order 订单主表 ====================

// Order 订单
// 订单是下单时刻的不可变快照：单价在创建时捕获到订单项上，
// 之后配件调价不影响已存订单的金额
type Order struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	OrderNumber string `gorm:"size:32;uniqueIndex;not null"`
	UserID      int64  `gorm:"index;not null"`

	// 金额
	// 订单金额列放宽到 4 位小数：13% 默认税率会产生 5.915 这类值，必须精确保存
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	Taxes        decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,4);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// 关联
	User  User        `gorm:"foreignKey:UserID"`
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// BeforeCreate 首次入库时分配订单号，之后不再变更
// 同一用户同一秒内连续下单会撞号，此时把时间戳往后挪一秒直到唯一
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber != "" {
		return nil
	}
	at := time.Now()
	for {
		candidate := BuildOrderNumber(at, o.UserID)
		var count int64
		if err := tx.Model(&Order{}).Where("order_number = ?", candidate).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			o.OrderNumber = candidate
			return nil
		}
		at = at.Add(time.Second)
	}
}

// BuildOrderNumber 生成订单号
// 格式: "ORD-" + 创建时间 YYYYMMDDHHMMSS + 所有者 ID 的后 4 位
func BuildOrderNumber(createdAt time.Time, userID int64) string {
	owner := fmt.Sprintf("%d", userID)
	if len(owner) > 4 {
		owner = owner[len(owner)-4:]
	}
	return "ORD-" + createdAt.Format("20060102150405") + owner
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项，单价为下单时捕获的快照价
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	OrderID int64 `gorm:"index;not null"`
	PartID  int64 `gorm:"index;not null"`

	PartName  string          `gorm:"size:200"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	CreatedAt time.Time
}

func (*OrderItem) TableName() string {
	return "order_items"
}

// LineTotal 行小计 = 数量 × 快照单价
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
