package dto

// ==================== 员工管理 ====================

// CreateEmployeeRequest 创建员工请求（管理员）
type CreateEmployeeRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50"`
	Password   string `json:"password" binding:"required,min=6,max=100"`
	FullName   string `json:"full_name" binding:"required,max=100"`
	Email      string `json:"email" binding:"omitempty,email"`
	Mobile     string `json:"mobile" binding:"omitempty,max=15"`
	EmployeeNo string `json:"employee_no" binding:"required,max=20"`
	Department string `json:"department" binding:"omitempty,max=50"`
}

// SetUserActiveRequest 启停账号请求
type SetUserActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UserListRequest 用户列表请求
type UserListRequest struct {
	RoleID   int64  `form:"role_id"`
	Keyword  string `form:"keyword"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ==================== 权限矩阵 ====================

// SetPermissionRequest 设置权限行请求
type SetPermissionRequest struct {
	RoleID    int64  `json:"role_id" binding:"required,gt=0"`
	Module    string `json:"module" binding:"required,oneof=products orders customers employees reports cms"`
	CanView   bool   `json:"can_view"`
	CanAdd    bool   `json:"can_add"`
	CanEdit   bool   `json:"can_edit"`
	CanDelete bool   `json:"can_delete"`
}
