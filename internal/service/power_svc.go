package service

import (
	"context"
	"fmt"

	"pcparts_dev_v1/internal/api/dto"
	"pcparts_dev_v1/internal/repository"
	"pcparts_dev_v1/pkg/logger"
)

// ==================== PowerService 功耗检查 ====================

// PowerService 购物车功耗预算检查
// 纯读计算：不写库，单个坏 ID 不会让整个请求失败
type PowerService struct {
	partRepo repository.PartRepository
	log      logger.Logger
}

// NewPowerService 创建功耗检查服务
func NewPowerService(partRepo repository.PartRepository, log logger.Logger) *PowerService {
	return &PowerService{partRepo: partRepo, log: log}
}

// CheckPower 汇总 TDP 并逐个检查电源余量
// ids 中无法解析或查不到的元素直接跳过；
// 同一购物车里的多个 PSU 各自独立地与总 TDP 比较
func (s *PowerService) CheckPower(ctx context.Context, rawIDs []interface{}) (*dto.PowerCheckResponse, error) {
	ids := coerceIDs(rawIDs)

	parts, err := s.partRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(parts) < len(ids) {
		s.log.Debugf("功耗检查: %d 个 ID 中 %d 个未解析", len(ids), len(ids)-len(parts))
	}

	totalTDP := 0.0
	for i := range parts {
		totalTDP += parts[i].TDP()
	}

	warnings := make([]dto.PSUWarning, 0)
	for i := range parts {
		part := &parts[i]
		if !part.IsPSU() {
			continue
		}
		wattage := part.Wattage()
		switch {
		case wattage <= 0:
			warnings = append(warnings, dto.PSUWarning{
				PSUName: part.Name,
				Wattage: "Unknown",
				Warning: fmt.Sprintf("Could not read wattage for PSU %s.", part.Name),
			})
		case totalTDP > wattage:
			warnings = append(warnings, dto.PSUWarning{
				PSUName: part.Name,
				Wattage: wattage,
				Warning: fmt.Sprintf("Total TDP (%gW) exceeds PSU wattage (%gW).", totalTDP, wattage),
			})
		}
	}

	return &dto.PowerCheckResponse{
		TotalTDP:    totalTDP,
		PSUWarnings: warnings,
	}, nil
}

// coerceIDs 宽容地把 JSON 数组元素转成配件 ID，转不动的丢弃
func coerceIDs(raw []interface{}) []int64 {
	ids := make([]int64, 0, len(raw))
	for _, v := range raw {
		switch t := v.(type) {
		case float64:
			if t == float64(int64(t)) && t > 0 {
				ids = append(ids, int64(t))
			}
		case string:
			if n := coerceNumberString(t); n > 0 {
				ids = append(ids, n)
			}
		}
	}
	return ids
}

func coerceNumberString(s string) int64 {
	var n int64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0
	}
	return n
}
