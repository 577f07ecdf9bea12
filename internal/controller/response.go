package controller

import (
	"github.com/gin-gonic/gin"

	"pcparts_dev_v1/pkg/logger"
)

// respondError 统一错误响应体 {"error": msg}
func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// respondInternal 未预期错误：完整记日志，响应体只给通用文案，
// 内部细节不外泄
func respondInternal(c *gin.Context, log logger.Logger, err error) {
	log.Errorf("%s %s 处理失败: %v", c.Request.Method, c.FullPath(), err)
	respondError(c, 500, "internal server error")
}
