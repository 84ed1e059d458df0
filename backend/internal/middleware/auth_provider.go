package middleware

import "github.com/gin-gonic/gin"

// Authenticator 抽象鉴权中间件。Handle 用于必须登录的路由，Optional 用于匿名可访问但需要识别身份的路由。
type Authenticator interface {
	Handle() gin.HandlerFunc
	Optional() gin.HandlerFunc
}
