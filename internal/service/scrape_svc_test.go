package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pcparts_dev_v1/internal/model"
	"pcparts_dev_v1/internal/repository"
	pkglog "pcparts_dev_v1/pkg/logger"
)

// ==================== 测试辅助 ====================

func newTestListingClient(baseURL string) *ListingClient {
	return NewListingClient(&ListingConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		FetchDelay: time.Millisecond,
		MaxPages:   5,
	}, pkglog.NewNopLogger())
}

func listingPage(names []string, hasMore bool) listingSearchResp {
	items := make([]ScrapedListing, 0, len(names))
	for _, n := range names {
		items = append(items, ScrapedListing{
			Name:         n,
			Manufacturer: "TestCo",
			Category:     "CPU",
			Price:        99.99,
			URL:          "https://vendor.example/" + n,
			Specs:        map[string]string{"TDP": "65 W"},
		})
	}
	return listingSearchResp{Items: items, HasMore: hasMore}
}

// ==================== 单元测试 ====================

func TestListingClient_Pagination(t *testing.T) {
	var lastAPIKey atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastAPIKey.Store(r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			json.NewEncoder(w).Encode(listingPage([]string{"cpu-a", "cpu-b"}, true))
		case "2":
			json.NewEncoder(w).Encode(listingPage([]string{"cpu-c"}, false))
		default:
			t.Errorf("不该请求第 %s 页", page)
			json.NewEncoder(w).Encode(listingPage(nil, false))
		}
	}))
	defer srv.Close()

	client := newTestListingClient(srv.URL)
	listings, err := client.SearchCategory(context.Background(), "CPU")
	if err != nil {
		t.Fatalf("抓取失败: %v", err)
	}
	if len(listings) != 3 {
		t.Errorf("结果数 = %d, want 3", len(listings))
	}
	if lastAPIKey.Load() != "test-key" {
		t.Errorf("x-api-key = %v, want test-key", lastAPIKey.Load())
	}
}

func TestListingClient_FirstPageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestListingClient(srv.URL)
	if _, err := client.SearchCategory(context.Background(), "CPU"); err == nil {
		t.Error("第一页失败应向调用方报错")
	}
}

func TestListingClient_PartialFailureKeepsEarlierPages(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(listingPage([]string{"cpu-a", "cpu-b"}, true))
			return
		}
		// 第二页起一直失败；resty 会重试，保持失败即可
		http.Error(w, "flaky", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestListingClient(srv.URL)
	listings, err := client.SearchCategory(context.Background(), "CPU")
	if err != nil {
		t.Fatalf("后续页失败不应报错: %v", err)
	}
	if len(listings) != 2 {
		t.Errorf("结果数 = %d, want 保留第一页的 2 条", len(listings))
	}
}

func TestListingClient_MaxPagesCap(t *testing.T) {
	var pages int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&pages, 1)
		w.Header().Set("Content-Type", "application/json")
		// 永远声称还有下一页
		json.NewEncoder(w).Encode(listingPage([]string{fmt.Sprintf("cpu-%d", pages)}, true))
	}))
	defer srv.Close()

	client := newTestListingClient(srv.URL)
	listings, err := client.SearchCategory(context.Background(), "CPU")
	if err != nil {
		t.Fatalf("抓取失败: %v", err)
	}
	if got := atomic.LoadInt32(&pages); got != 5 {
		t.Errorf("请求页数 = %d, want 上限 5", got)
	}
	if len(listings) != 5 {
		t.Errorf("结果数 = %d, want 5", len(listings))
	}
}

// ==================== 导入服务测试 ====================

func setupImportTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.Part{})
	return db
}

func TestImportService_RefreshCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("q") {
		case "CPU":
			resp := listingPage([]string{"cpu-a"}, false)
			// 混入两条坏数据：缺 URL 和非正价格
			resp.Items = append(resp.Items,
				ScrapedListing{Name: "no-url", Price: 10},
				ScrapedListing{Name: "free", URL: "https://vendor.example/free", Price: 0},
			)
			json.NewEncoder(w).Encode(resp)
		case "GPU":
			http.Error(w, "category broken", http.StatusInternalServerError)
		default:
			json.NewEncoder(w).Encode(listingPage(nil, false))
		}
	}))
	defer srv.Close()

	db := setupImportTestDB(t)
	svc := NewImportService(
		repository.NewPartRepository(db),
		newTestListingClient(srv.URL),
		[]string{"CPU", "GPU", "PSU"},
		pkglog.NewNopLogger(),
	)

	sum := svc.RefreshCatalog(context.Background())

	// GPU 类目整个失败只跳过，CPU 的坏数据计入 Failed
	if sum.Fetched != 3 {
		t.Errorf("fetched = %d, want 3", sum.Fetched)
	}
	if sum.Upserted != 1 {
		t.Errorf("upserted = %d, want 1", sum.Upserted)
	}
	if sum.Failed != 2 {
		t.Errorf("failed = %d, want 2", sum.Failed)
	}

	var count int64
	db.Model(&model.Part{}).Count(&count)
	if count != 1 {
		t.Errorf("库中配件数 = %d, want 1", count)
	}
}

func TestImportService_FillsSpecsFromDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/parts/detail" {
			json.NewEncoder(w).Encode(ScrapedListing{
				Name:  "cpu-a",
				URL:   r.URL.Query().Get("url"),
				Price: 99.99,
				Specs: map[string]string{"TDP": "65 W", "Cores": "6"},
			})
			return
		}
		// 搜索结果不带规格
		resp := listingPage([]string{"cpu-a"}, false)
		resp.Items[0].Specs = nil
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	db := setupImportTestDB(t)
	svc := NewImportService(
		repository.NewPartRepository(db),
		newTestListingClient(srv.URL),
		[]string{"CPU"},
		pkglog.NewNopLogger(),
	)

	svc.RefreshCatalog(context.Background())

	var part model.Part
	if err := db.First(&part).Error; err != nil {
		t.Fatalf("配件未落库: %v", err)
	}
	if part.TDP() != 65 {
		t.Errorf("补齐后的 TDP = %g, want 65", part.TDP())
	}
}

func TestImportService_UpsertIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(listingPage([]string{"cpu-a"}, false))
	}))
	defer srv.Close()

	db := setupImportTestDB(t)
	svc := NewImportService(
		repository.NewPartRepository(db),
		newTestListingClient(srv.URL),
		[]string{"CPU"},
		pkglog.NewNopLogger(),
	)

	svc.RefreshCatalog(context.Background())
	svc.RefreshCatalog(context.Background())

	// 同一 URL 重复导入只保留一条
	var count int64
	db.Model(&model.Part{}).Count(&count)
	if count != 1 {
		t.Errorf("重复导入后配件数 = %d, want 1", count)
	}
}
