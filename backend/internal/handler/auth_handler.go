/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-08 20:42:09
 * @FilePath: \isizulu-corpus\backend\internal\handler\auth_handler.go
 * @LastEditTime: 2025-10-14 16:48:12
 */
package handler

import (
	"errors"
	"net/http"

	response "isizulu-corpus/backend/internal/infra/common"
	"isizulu-corpus/backend/internal/service/auth"

	"github.com/gin-gonic/gin"
)

// AuthHandler 负责对接 Gin，处理登录请求。
type AuthHandler struct {
	service *auth.Service
}

// NewAuthHandler 构造鉴权 handler，注入业务层服务做实际处理。
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 校验凭证并返回访问令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrBadRequest, "username and password are required", nil)
		return
	}

	user, access, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLogin) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials, err.Error(), nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal, "login failed", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":         user,
		"access_token": access.Token,
		"expires_in":   access.ExpiresIn,
		"token_type":   access.TokenType,
	}, nil)
}
