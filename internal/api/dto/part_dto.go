package dto

// PartListQuery 配件列表查询参数
// min_price / max_price 为字符串原样接收，解析失败时该过滤条件被忽略
type PartListQuery struct {
	Type         string `form:"type"`
	Manufacturer string `form:"manufacturer"`
	MinPrice     string `form:"min_price"`
	MaxPrice     string `form:"max_price"`
	Search       string `form:"search"`
}
