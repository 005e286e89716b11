package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/api/dto"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/service"
)

// UserController 后台用户 / 角色 / 权限矩阵管理
type UserController struct {
	authService *service.AuthService
	permService *service.PermissionService
}

// NewUserController 工厂方法
func NewUserController(auth *service.AuthService, perm *service.PermissionService) *UserController {
	return &UserController{authService: auth, permService: perm}
}

// ==================== 用户管理 ====================

// List
// @Summary 用户列表
// @Tags User (用户模块)
// @Produce json
// @Param role_id query int false "角色 ID"
// @Param keyword query string false "用户名/姓名模糊搜索"
// @Success 200 {object} map[string]interface{} "用户列表"
// @Router /api/manage/users [get]
func (ctrl *UserController) List(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误"})
		return
	}

	users, total, err := ctrl.authService.ListUsers(c.Request.Context(), repository.UserFilter{
		RoleID:   req.RoleID,
		Keyword:  req.Keyword,
		IsActive: req.IsActive,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}

	list := make([]*dto.UserInfo, 0, len(users))
	for i := range users {
		list = append(list, toUserInfo(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": list, "total": total},
	})
}

// CreateEmployee
// @Summary 创建员工
// @Tags User (用户模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateEmployeeRequest true "员工信息"
// @Success 200 {object} map[string]interface{} "新建的员工账号"
// @Router /api/manage/employees [post]
func (ctrl *UserController) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	user, err := ctrl.authService.CreateEmployee(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		Mobile:   req.Mobile,
	}, req.EmployeeNo, req.Department)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "用户名已被占用"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "创建失败", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "创建成功", "data": toUserInfo(user)})
}

// ListEmployees
// @Summary 员工列表
// @Tags User (用户模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "员工档案列表"
// @Router /api/manage/employees [get]
func (ctrl *UserController) ListEmployees(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	employees, total, err := ctrl.authService.ListEmployees(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": employees, "total": total},
	})
}

// ListCustomers
// @Summary 顾客列表
// @Tags User (用户模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "顾客档案列表"
// @Router /api/manage/customers [get]
func (ctrl *UserController) ListCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	customers, total, err := ctrl.authService.ListCustomers(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": customers, "total": total},
	})
}

// SetActive
// @Summary 启停账号
// @Tags User (用户模块)
// @Accept json
// @Produce json
// @Param id path int true "用户 ID"
// @Param body body dto.SetUserActiveRequest true "启停标志"
// @Success 200 {object} map[string]string "设置成功"
// @Router /api/manage/users/{id}/active [put]
func (ctrl *UserController) SetActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	var req dto.SetUserActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误"})
		return
	}

	if err := ctrl.authService.SetUserActive(c.Request.Context(), id, *req.IsActive); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "设置失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "设置成功"})
}

// ==================== 角色与权限矩阵 ====================

// ListRoles
// @Summary 角色列表（含权限行）
// @Tags User (用户模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "角色列表"
// @Router /api/manage/roles [get]
func (ctrl *UserController) ListRoles(c *gin.Context) {
	roles, err := ctrl.permService.ListRoles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"roles": roles, "modules": model.AllModules},
	})
}

// DeleteRole
// @Summary 删除角色
// @Description 仍有用户挂在角色上时拒绝删除
// @Tags User (用户模块)
// @Produce json
// @Param id path int true "角色 ID"
// @Success 200 {object} map[string]string "删除成功"
// @Failure 409 {object} map[string]string "角色仍被引用"
// @Router /api/manage/roles/{id} [delete]
func (ctrl *UserController) DeleteRole(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	if err := ctrl.permService.DeleteRole(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrRoleInUse) {
			c.JSON(http.StatusConflict, gin.H{"code": 409, "message": "角色仍被用户引用，不能删除", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "删除成功"})
}

// SetPermission
// @Summary 设置权限行
// @Description 按 (角色, 模块) 覆盖四个开关位，立即生效
// @Tags User (用户模块)
// @Accept json
// @Produce json
// @Param body body dto.SetPermissionRequest true "权限配置"
// @Success 200 {object} map[string]string "设置成功"
// @Router /api/manage/permissions [put]
func (ctrl *UserController) SetPermission(c *gin.Context) {
	var req dto.SetPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	err := ctrl.permService.SetPermission(c.Request.Context(), &model.Permission{
		RoleID:    req.RoleID,
		Module:    model.Module(req.Module),
		CanView:   req.CanView,
		CanAdd:    req.CanAdd,
		CanEdit:   req.CanEdit,
		CanDelete: req.CanDelete,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "设置失败", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "设置成功"})
}

// DeletePermission
// @Summary 删除权限行
// @Description 删除后该 (角色, 模块) 回到默认拒绝
// @Tags User (用户模块)
// @Produce json
// @Param id path int true "权限行 ID"
// @Success 200 {object} map[string]string "删除成功"
// @Router /api/manage/permissions/{id} [delete]
func (ctrl *UserController) DeletePermission(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}
	if err := ctrl.permService.DeletePermission(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "删除成功"})
}

// ListPermissions
// @Summary 某角色的权限行
// @Tags User (用户模块)
// @Produce json
// @Param id path int true "角色 ID"
// @Success 200 {object} map[string]interface{} "权限行列表"
// @Router /api/manage/roles/{id}/permissions [get]
func (ctrl *UserController) ListPermissions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	perms, err := ctrl.permService.ListPermissions(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": perms})
}
