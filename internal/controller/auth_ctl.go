package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/api/dto"
	"nutriharvest_mall_v1_202608/internal/middleware"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/service"
)

// AuthController 注册 / 登录 / 令牌
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController 工厂方法
func NewAuthController(s *service.AuthService) *AuthController {
	return &AuthController{authService: s}
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Email:     user.Email,
		Mobile:    user.Mobile,
		Role:      string(user.RoleKind()),
		IsActive:  user.IsActive,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

// Register
// @Summary 顾客注册
// @Description 创建顾客账号与档案，注册成功直接返回令牌
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 200 {object} map[string]interface{} "令牌与用户信息"
// @Failure 400 {object} map[string]string "参数错误/用户名已占用"
// @Router /api/auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	user, err := ctrl.authService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Address:  req.Address,
		City:     req.City,
		Pincode:  req.Pincode,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "用户名已被占用"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "注册失败", "detail": err.Error()})
		return
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Username, string(user.RoleKind()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "令牌生成失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "注册成功",
		"data": dto.LoginResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			User:         toUserInfo(user),
		},
	})
}

// Login
// @Summary 登录
// @Description 用户名密码登录，返回 Access/Refresh 令牌
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} map[string]interface{} "令牌与用户信息"
// @Failure 401 {object} map[string]string "用户名或密码错误"
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	user, err := ctrl.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户名或密码错误"})
		case errors.Is(err, service.ErrUserDisabled):
			c.JSON(http.StatusForbidden, gin.H{"code": 403, "message": "账号已停用"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "登录失败"})
		}
		return
	}

	access, refresh, err := middleware.GenerateTokenPair(user.ID, user.Username, string(user.RoleKind()))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "令牌生成失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "登录成功",
		"data": dto.LoginResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			User:         toUserInfo(user),
		},
	})
}

// Refresh
// @Summary 刷新令牌
// @Description 用 Refresh Token 换新的令牌对
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param body body dto.RefreshTokenRequest true "Refresh Token"
// @Success 200 {object} map[string]interface{} "新令牌对"
// @Failure 401 {object} map[string]string "Token 无效"
// @Router /api/auth/refresh [post]
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误"})
		return
	}

	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || claims.Subject != "refresh" {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "Refresh Token 无效或已过期"})
		return
	}

	access, refresh, err := middleware.GenerateTokenPair(claims.UserID, claims.Username, claims.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "令牌生成失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "刷新成功",
		"data": gin.H{
			"access_token":  access,
			"refresh_token": refresh,
		},
	})
}

// Profile
// @Summary 当前用户信息
// @Tags Auth (认证模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "用户信息"
// @Router /api/auth/profile [get]
func (ctrl *AuthController) Profile(c *gin.Context) {
	user, err := ctrl.authService.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "用户不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": toUserInfo(user)})
}

// ChangePassword
// @Summary 修改密码
// @Tags Auth (认证模块)
// @Accept json
// @Produce json
// @Param body body dto.ChangePasswordRequest true "新旧密码"
// @Success 200 {object} map[string]string "修改成功"
// @Failure 401 {object} map[string]string "旧密码错误"
// @Router /api/auth/password [put]
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	err := ctrl.authService.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.OldPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "旧密码错误"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "修改失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "修改成功"})
}
