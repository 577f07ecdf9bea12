package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/model"
	"pcparts_dev_v1/internal/repository"
	"pcparts_dev_v1/pkg/cache"
	"pcparts_dev_v1/pkg/logger"
)

// ==================== CatalogService 目录查询 ====================

// CatalogService 配件目录查询服务
type CatalogService struct {
	partRepo repository.PartRepository
	store    cache.Store
	cacheTTL time.Duration
	log      logger.Logger
}

// NewCatalogService 创建目录服务
func NewCatalogService(partRepo repository.PartRepository, store cache.Store, cacheTTL time.Duration, log logger.Logger) *CatalogService {
	if store == nil {
		store = cache.NewNoopStore()
	}
	return &CatalogService{
		partRepo: partRepo,
		store:    store,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// ListParts 按条件查询配件列表
// 条件之间取 AND；min/max 解析失败时记日志并忽略该条件，不让请求失败
func (s *CatalogService) ListParts(ctx context.Context, query dto.PartListQuery) ([]model.Part, error) {
	filter := repository.PartFilter{
		Type:         query.Type,
		Manufacturer: query.Manufacturer,
		Search:       query.Search,
		MinPrice:     s.parsePrice("min_price", query.MinPrice),
		MaxPrice:     s.parsePrice("max_price", query.MaxPrice),
	}

	key := s.cacheKey(filter)
	if data, err := s.store.Get(ctx, key); err == nil {
		var parts []model.Part
		if err := json.Unmarshal(data, &parts); err == nil {
			return parts, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warnf("目录缓存读取失败: %v", err)
	}

	parts, err := s.partRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(parts); err == nil {
		if err := s.store.Set(ctx, key, data, s.cacheTTL); err != nil {
			s.log.Warnf("目录缓存写入失败: %v", err)
		}
	}
	return parts, nil
}

// GetPart 按 ID 查询单个配件
func (s *CatalogService) GetPart(ctx context.Context, id int64) (*model.Part, error) {
	return s.partRepo.GetByID(ctx, id)
}

func (s *CatalogService) parsePrice(name, raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		s.log.Warnf("无法解析价格过滤条件 %s=%q，已忽略: %v", name, raw, err)
		return nil
	}
	return &d
}

func (s *CatalogService) cacheKey(f repository.PartFilter) string {
	min, max := "", ""
	if f.MinPrice != nil {
		min = f.MinPrice.String()
	}
	if f.MaxPrice != nil {
		max = f.MaxPrice.String()
	}
	return fmt.Sprintf("parts:%s|%s|%s|%s|%s",
		strings.ToLower(f.Type), strings.ToLower(f.Manufacturer), min, max, strings.ToLower(f.Search))
}
