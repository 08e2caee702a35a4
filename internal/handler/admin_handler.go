package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/marketdev/internal/db"
	"go.uber.org/zap"
)

type loginPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ShowLoginPage 渲染登录页面
func (a *API) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"title": "Sign in",
	})
}

// Login 校验用户名密码并写入会话。JSON 请求返回 JSON，表单请求重定向到站点列表。
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBind(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid login request")
		return
	}

	var user db.User
	username := strings.TrimSpace(payload.Username)
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil || !user.CheckPassword(payload.Password) {
		a.logger.Info("login rejected", zap.String("username", username))
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "could not save session")
		return
	}

	if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
		return
	}
	c.Redirect(http.StatusFound, "/admin/sites")
}

// Logout 处理用户登出
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/admin/login")
}

// AuthRequired 是一个简单的认证中间件；API 请求返回 401，页面请求重定向到登录页。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			if strings.HasPrefix(c.Request.URL.Path, "/admin/api/") {
				respondError(c, http.StatusUnauthorized, "authentication required")
			} else {
				c.Redirect(http.StatusFound, "/admin/login")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}
