package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int
	PageSize int
}

// BindPage 从查询参数解析分页
func BindPage(c *gin.Context) PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// BindJobID 从路径参数解析任务 ID
func BindJobID(c *gin.Context) string {
	return c.Param("jid")
}

// BindDocumentID 从路径参数解析文档 ID
func BindDocumentID(c *gin.Context) string {
	return c.Param("did")
}
