package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"pcparts_dev_v1/pkg/logger"
)

// ==================== 配置 ====================

// ListingConfig 第三方配件抓取 API 配置
type ListingConfig struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	FetchDelay time.Duration // 相邻请求之间的固定间隔，遵守对方站点限流
	MaxPages   int
}

// ==================== 统一数据结构 ====================

// ScrapedListing 统一抓取结果
type ScrapedListing struct {
	Name         string            `json:"name"`
	Manufacturer string            `json:"manufacturer"`
	Category     string            `json:"category"`
	Price        float64           `json:"price"`
	URL          string            `json:"url"`
	Specs        map[string]string `json:"specs"`
	Description  string            `json:"description"`
}

type listingSearchResp struct {
	Items   []ScrapedListing `json:"items"`
	HasMore bool             `json:"has_more"`
}

// ==================== 服务实现 ====================

// ListingClient 第三方配件搜索/抓取客户端
type ListingClient struct {
	cfg    *ListingConfig
	client *resty.Client
	log    logger.Logger
}

// NewListingClient 创建抓取客户端
func NewListingClient(cfg *ListingConfig, log logger.Logger) *ListingClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.FetchDelay == 0 {
		cfg.FetchDelay = 2 * time.Second
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = 5
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetHeader("x-api-key", cfg.APIKey)

	return &ListingClient{cfg: cfg, client: client, log: log}
}

// SearchCategory 按类目关键词逐页抓取
// 串行请求加固定间隔；单页失败记日志后继续，返回已拿到的部分结果。
// 只有第一页之前就失败才向调用方报错
func (c *ListingClient) SearchCategory(ctx context.Context, category string) ([]ScrapedListing, error) {
	var all []ScrapedListing

	for page := 1; page <= c.cfg.MaxPages; page++ {
		if page > 1 {
			select {
			case <-time.After(c.cfg.FetchDelay):
			case <-ctx.Done():
				return all, ctx.Err()
			}
		}

		items, hasMore, err := c.fetchPage(ctx, category, page)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			c.log.Warnf("抓取 %s 第 %d 页失败，保留已有 %d 条: %v", category, page, len(all), err)
			break
		}

		all = append(all, items...)
		if !hasMore {
			break
		}
	}
	return all, nil
}

// FetchDetail 按源 URL 拉取单条详情
// 搜索结果偶尔缺规格字段，导入前用详情接口补齐
func (c *ListingClient) FetchDetail(ctx context.Context, url string) (*ScrapedListing, error) {
	var result ScrapedListing
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("url", url).
		SetResult(&result).
		Get("/api/parts/detail")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("listing api status %d: %s", resp.StatusCode(), resp.String())
	}
	return &result, nil
}

func (c *ListingClient) fetchPage(ctx context.Context, category string, page int) ([]ScrapedListing, bool, error) {
	var result listingSearchResp
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":    category,
			"page": fmt.Sprintf("%d", page),
		}).
		SetResult(&result).
		Get("/api/parts/search")
	if err != nil {
		return nil, false, err
	}
	if resp.StatusCode() != 200 {
		return nil, false, fmt.Errorf("listing api status %d: %s", resp.StatusCode(), resp.String())
	}
	return result.Items, result.HasMore, nil
}
