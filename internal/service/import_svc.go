package service

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"pcparts_dev_v1/internal/model"
	"pcparts_dev_v1/internal/repository"
	"pcparts_dev_v1/pkg/logger"
)

// ==================== ImportService 目录导入 ====================

// ImportSummary 一轮导入的统计
type ImportSummary struct {
	Fetched  int
	Upserted int
	Failed   int
}

// ImportService 把抓取到的第三方列表写入配件目录
// 尽力而为：任何单条/单类目失败只记日志，不中断整轮导入
type ImportService struct {
	partRepo   repository.PartRepository
	client     *ListingClient
	categories []string
	log        logger.Logger
}

// NewImportService 创建导入服务
func NewImportService(partRepo repository.PartRepository, client *ListingClient, categories []string, log logger.Logger) *ImportService {
	return &ImportService{
		partRepo:   partRepo,
		client:     client,
		categories: categories,
		log:        log,
	}
}

// RefreshCatalog 抓取所有配置类目并按 URL 幂等写入
func (s *ImportService) RefreshCatalog(ctx context.Context) ImportSummary {
	var sum ImportSummary

	for _, category := range s.categories {
		listings, err := s.client.SearchCategory(ctx, category)
		if err != nil {
			s.log.Warnf("类目 %s 抓取失败，跳过: %v", category, err)
			continue
		}
		sum.Fetched += len(listings)

		for i := range listings {
			s.fillSpecs(ctx, &listings[i])
			part := s.toPart(&listings[i])
			if part == nil {
				sum.Failed++
				continue
			}
			if err := s.partRepo.Upsert(ctx, part); err != nil {
				s.log.Warnf("写入配件失败 url=%s: %v", part.URL, err)
				sum.Failed++
				continue
			}
			sum.Upserted++
		}

		if ctx.Err() != nil {
			break
		}
	}

	s.log.Infof("目录导入完成: 抓取 %d 条，写入 %d 条，失败 %d 条", sum.Fetched, sum.Upserted, sum.Failed)
	return sum
}

// fillSpecs 搜索结果缺规格时回源拉详情补齐，补不到就按原样导入
func (s *ImportService) fillSpecs(ctx context.Context, l *ScrapedListing) {
	if len(l.Specs) > 0 || l.URL == "" {
		return
	}
	detail, err := s.client.FetchDetail(ctx, l.URL)
	if err != nil {
		s.log.Debugf("拉取详情失败 url=%s: %v", l.URL, err)
		return
	}
	l.Specs = detail.Specs
	if l.Description == "" {
		l.Description = detail.Description
	}
}

// toPart 抓取结果转配件记录，缺关键字段的丢弃
func (s *ImportService) toPart(l *ScrapedListing) *model.Part {
	if l.Name == "" || l.URL == "" || l.Price <= 0 {
		return nil
	}

	specs := make(datatypes.JSONMap, len(l.Specs))
	for k, v := range l.Specs {
		specs[k] = v
	}

	return &model.Part{
		Name:         l.Name,
		Manufacturer: l.Manufacturer,
		Type:         l.Category,
		Price:        decimal.NewFromFloat(l.Price).Round(2),
		URL:          l.URL,
		Specs:        specs,
		Description:  l.Description,
	}
}
