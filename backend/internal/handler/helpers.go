package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"isizulu-corpus/backend/internal/middleware"
	"isizulu-corpus/backend/internal/service/activity"

	"github.com/gin-gonic/gin"
)

// Pagination 描述列表接口的默认页大小与上限。
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

func (p Pagination) normalize() Pagination {
	if p.DefaultSize <= 0 {
		p.DefaultSize = 20
	}
	if p.MaxSize <= 0 {
		p.MaxSize = 100
	}
	if p.DefaultSize > p.MaxSize {
		p.DefaultSize = p.MaxSize
	}
	return p
}

// maxPageOffset 是 (page-1)*page_size 允许的最大值，超出的页码会被压到这个范围内。
const maxPageOffset = math.MaxInt32

// parse 读取 page/page_size 查询参数，非法值回落到默认值，page_size 不超过上限。
func (p Pagination) parse(c *gin.Context) (page, size int) {
	p = p.normalize()
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(p.DefaultSize)))
	if err != nil || size < 1 {
		size = p.DefaultSize
	}
	if size > p.MaxSize {
		size = p.MaxSize
	}
	if lastPage := maxPageOffset/size + 1; page > lastPage {
		page = lastPage
	}
	return page, size
}

// pageWindow 返回第 page 页在长度为 total 的切片中的 [start, end)，越界时为空区间。
func pageWindow(page, size, total int) (start, end int) {
	if page < 1 || size < 1 || page-1 > total/size {
		return total, total
	}
	start = (page - 1) * size
	if start > total {
		start = total
	}
	end = start + size
	if end > total {
		end = total
	}
	return start, end
}

func extractUserID(c *gin.Context) (uint, bool) {
	val, ok := c.Get(middleware.ContextUserID)
	if !ok {
		return 0, false
	}
	switch id := val.(type) {
	case uint:
		return id, id > 0
	case uint64:
		return uint(id), id > 0
	case int:
		if id <= 0 {
			return 0, false
		}
		return uint(id), true
	case int64:
		if id <= 0 {
			return 0, false
		}
		return uint(id), true
	default:
		return 0, false
	}
}

func isAdmin(c *gin.Context) bool {
	val, ok := c.Get(middleware.ContextIsAdmin)
	if !ok {
		return false
	}
	admin, _ := val.(bool)
	return admin
}

// actorFrom 组装审计用的操作者信息，匿名请求只携带 IP。
func actorFrom(c *gin.Context) activity.Actor {
	actor := activity.Anonymous(middleware.ClientIP(c))
	if id, ok := extractUserID(c); ok {
		actor.UserID = &id
	}
	return actor
}

// parseUintParam 从路径参数解析无符号整数。
func parseUintParam(c *gin.Context, name string) (uint, error) {
	val := strings.TrimSpace(c.Param(name))
	if val == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	parsed, err := strconv.ParseUint(val, 10, 64)
	if err != nil || parsed == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return uint(parsed), nil
}

// optionalIntQuery 读取可选整数参数，缺省返回 nil。
func optionalIntQuery(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &v, nil
}
