package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pcparts_dev_v1/internal/model"
)

// ==================== 接口定义 ====================

// PartRepository 配件仓储接口
type PartRepository interface {
	Create(ctx context.Context, part *model.Part) error
	GetByID(ctx context.Context, id int64) (*model.Part, error)
	// GetByIDs 批量查询，只返回存在的记录，不为缺失的 ID 报错
	GetByIDs(ctx context.Context, ids []int64) ([]model.Part, error)
	Upsert(ctx context.Context, part *model.Part) error
	List(ctx context.Context, filter PartFilter) ([]model.Part, error)

	WithTx(tx *gorm.DB) PartRepository
}

// PartFilter 配件过滤条件，各条件取 AND
type PartFilter struct {
	Type         string
	Manufacturer string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
}

// ==================== 仓储实现 ====================

type partRepo struct {
	db *gorm.DB
}

// NewPartRepository 创建配件仓储
func NewPartRepository(db *gorm.DB) PartRepository {
	return &partRepo{db: db}
}

func (r *partRepo) WithTx(tx *gorm.DB) PartRepository {
	return &partRepo{db: tx}
}

func (r *partRepo) Create(ctx context.Context, part *model.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *partRepo) GetByID(ctx context.Context, id int64) (*model.Part, error) {
	var part model.Part
	if err := r.db.WithContext(ctx).First(&part, id).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *partRepo) GetByIDs(ctx context.Context, ids []int64) ([]model.Part, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var parts []model.Part
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&parts).Error
	return parts, err
}

// Upsert 按抓取源 URL 幂等写入，已存在时刷新价格与规格
func (r *partRepo) Upsert(ctx context.Context, part *model.Part) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "manufacturer", "type", "price", "specs", "description", "updated_at",
		}),
	}).Create(part).Error
}

func (r *partRepo) List(ctx context.Context, filter PartFilter) ([]model.Part, error) {
	q := r.db.WithContext(ctx).Model(&model.Part{})

	if t := normalizeFilter(filter.Type); t != "" {
		q = q.Where("LOWER(type) = ?", t)
	}
	if m := normalizeFilter(filter.Manufacturer); m != "" {
		q = q.Where("LOWER(manufacturer) = ?", m)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", filter.MaxPrice)
	}
	if s := strings.ToLower(strings.TrimSpace(filter.Search)); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(
			"(LOWER(name) LIKE ? OR LOWER(manufacturer) LIKE ? OR LOWER(type) LIKE ?)",
			pattern, pattern, pattern,
		)
	}

	var parts []model.Part
	err := q.Order("id").Find(&parts).Error
	return parts, err
}

// normalizeFilter "all" 与空串都表示不过滤
func normalizeFilter(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "all" {
		return ""
	}
	return v
}
