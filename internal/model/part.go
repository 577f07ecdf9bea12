package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ==================== 配件类型常量 ====================

const (
	PartTypeCPU         = "CPU"
	PartTypeGPU         = "GPU"
	PartTypeMotherboard = "Motherboard"
	PartTypeRAM         = "RAM"
	PartTypeStorage     = "Storage"
	PartTypePSU         = "PSU"
	PartTypeCase        = "Case"
)

// 常用规格键名（与抓取源一致，大小写敏感）
const (
	SpecKeyTDP     = "TDP"
	SpecKeyWattage = "Wattage"
	SpecKeyCores   = "Cores"
	SpecKeyThreads = "Threads"
	SpecKeySocket  = "Socket"
)

// ==================== Part 配件 ====================

// Part PC 配件
// Specs 为自由格式的规格映射（PostgreSQL JSONB），键按类目不同而不同
type Part struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string            `gorm:"size:200;not null;index" json:"name"`
	Manufacturer string            `gorm:"size:100;not null;index" json:"manufacturer"`
	Type         string            `gorm:"size:50;not null;index" json:"type"`
	Price        decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"price"`
	URL          string            `gorm:"size:500;uniqueIndex" json:"url"`
	Specs        datatypes.JSONMap `gorm:"type:jsonb" json:"specs"`
	Description  string            `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (*Part) TableName() string {
	return "parts"
}

// ==================== 规格访问 ====================

// Spec 精确读取规格值（键大小写敏感），缺失返回 false
func (p *Part) Spec(key string) (string, bool) {
	if p.Specs == nil {
		return "", false
	}
	v, ok := p.Specs[key]
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprintf("%v", v), true
}

// SpecNumber 数值化读取规格值
// 规格值多为带单位的字符串（"95 W"、"650W"、"3.8 GHz"），取前导数值部分；
// 缺失或无法解析时返回 0，不报错
func (p *Part) SpecNumber(key string) float64 {
	raw, ok := p.Spec(key)
	if !ok {
		return 0
	}
	return coerceNumber(raw)
}

// TDP 典型功耗（瓦）
func (p *Part) TDP() float64 {
	return p.SpecNumber(SpecKeyTDP)
}

// Wattage 电源额定功率（瓦），仅 PSU 类目有意义
func (p *Part) Wattage() float64 {
	return p.SpecNumber(SpecKeyWattage)
}

// IsPSU 是否电源（类目比较忽略大小写和首尾空白）
func (p *Part) IsPSU() bool {
	return strings.EqualFold(strings.TrimSpace(p.Type), PartTypePSU)
}

// coerceNumber 解析字符串的前导数值部分
func coerceNumber(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDot := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			end = i + 1
			continue
		}
		if c == '.' && !seenDot && end == i {
			seenDot = true
			end = i + 1
			continue
		}
		if (c == '+' || c == '-') && i == 0 {
			end = i + 1
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}
