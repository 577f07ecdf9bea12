package dto

// ==================== 功耗检查 ====================

// PowerCheckRequest 功耗检查请求
// ids 允许混入无效元素（字符串/对象等），无效元素在计算时被跳过
type PowerCheckRequest struct {
	IDs []interface{} `json:"ids"`
}

// PSUWarning 电源告警
// Wattage 可读时为数值，读不到时为字符串 "Unknown"
type PSUWarning struct {
	PSUName string      `json:"psu_name"`
	Wattage interface{} `json:"wattage"`
	Warning string      `json:"warning"`
}

// PowerCheckResponse 功耗检查响应
type PowerCheckResponse struct {
	TotalTDP    float64      `json:"total_tdp"`
	PSUWarnings []PSUWarning `json:"psu_warnings"`
}
