package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ==================== 角色常量 ====================

// RoleKind 角色类型（封闭枚举，禁止在业务代码里直接比较字符串）
type RoleKind string

const (
	RoleAdmin    RoleKind = "admin"    // 管理员：绕过所有权限检查
	RoleEmployee RoleKind = "employee" // 员工：按权限矩阵授权
	RoleCustomer RoleKind = "customer" // 顾客：按权限矩阵授权
	RoleUnknown  RoleKind = ""         // 未知角色：一律拒绝
)

// ==================== 权限模块 / 动作 ====================

// Module 权限作用的功能模块
type Module string

const (
	ModuleProducts  Module = "products"
	ModuleOrders    Module = "orders"
	ModuleCustomers Module = "customers"
	ModuleEmployees Module = "employees"
	ModuleReports   Module = "reports"
	ModuleCMS       Module = "cms"
)

// AllModules 模块全集，后台权限矩阵按此渲染
var AllModules = []Module{
	ModuleProducts, ModuleOrders, ModuleCustomers,
	ModuleEmployees, ModuleReports, ModuleCMS,
}

// Action 权限动作
type Action string

const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// ==================== Role 角色 ====================

// Role 系统角色，初始化时预置 admin / employee / customer 三条
type Role struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:20;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	Permissions []Permission `gorm:"foreignKey:RoleID" json:"permissions,omitempty"`
}

func (Role) TableName() string { return "roles" }

// Kind 把角色名收敛为封闭枚举
func (r *Role) Kind() RoleKind {
	switch r.Name {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleEmployee):
		return RoleEmployee
	case string(RoleCustomer):
		return RoleCustomer
	default:
		return RoleUnknown
	}
}

// ==================== Permission 权限行 ====================

// Permission (角色, 模块) 唯一，对应四个布尔开关
type Permission struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID    int64  `gorm:"not null;uniqueIndex:idx_role_module" json:"role_id"`
	Module    Module `gorm:"size:20;not null;uniqueIndex:idx_role_module" json:"module"`
	CanView   bool   `gorm:"default:true" json:"can_view"`
	CanAdd    bool   `gorm:"default:false" json:"can_add"`
	CanEdit   bool   `gorm:"default:false" json:"can_edit"`
	CanDelete bool   `gorm:"default:false" json:"can_delete"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Permission) TableName() string { return "permissions" }

// Allows 按动作取对应布尔位
func (p *Permission) Allows(action Action) bool {
	switch action {
	case ActionView:
		return p.CanView
	case ActionAdd:
		return p.CanAdd
	case ActionEdit:
		return p.CanEdit
	case ActionDelete:
		return p.CanDelete
	default:
		return false
	}
}

// ==================== User 用户 ====================

// User 登录账号
// RoleID 可空：无角色用户在权限检查中一律拒绝
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	FullName string `gorm:"size:100" json:"full_name"`
	Email    string `gorm:"size:100" json:"email"`
	Mobile   string `gorm:"size:15" json:"mobile"`

	// 角色外键：删除被引用角色必须失败（RESTRICT），服务层二次校验
	RoleID *int64 `gorm:"index" json:"role_id"`
	Role   *Role  `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"role,omitempty"`

	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// RoleKind 无角色返回 RoleUnknown
func (u *User) RoleKind() RoleKind {
	if u.Role == nil {
		return RoleUnknown
	}
	return u.Role.Kind()
}

// 派生标志：由角色名计算，不落库
func (u *User) IsAdmin() bool    { return u.RoleKind() == RoleAdmin }
func (u *User) IsEmployee() bool { return u.RoleKind() == RoleEmployee }
func (u *User) IsCustomer() bool { return u.RoleKind() == RoleCustomer }

// ==================== Employee 员工档案 ====================

// Employee 员工扩展信息，与 User 一对一
type Employee struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64     `gorm:"uniqueIndex;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EmployeeNo string    `gorm:"size:20;uniqueIndex;not null" json:"employee_no"`
	Department string    `gorm:"size:50" json:"department"`
	HireDate   time.Time `json:"hire_date"`
	Status     string    `gorm:"size:20;default:active" json:"status"` // active, inactive, suspended
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Employee) TableName() string { return "employees" }

// ==================== Customer 顾客档案 ====================

// Customer 顾客扩展信息，累计消费在下单事务里更新
type Customer struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"uniqueIndex;not null" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Address     string          `gorm:"type:text" json:"address"`
	City        string          `gorm:"size:50" json:"city"`
	Pincode     string          `gorm:"size:10" json:"pincode"`
	TotalOrders int             `gorm:"default:0" json:"total_orders"`
	TotalSpent  decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_spent"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }

// ==================== ActivityLog 操作日志 ====================

// ActivityLog 后台操作审计日志
type ActivityLog struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64             `gorm:"index;not null" json:"user_id"`
	RequestID   string            `gorm:"size:36;index" json:"request_id"`
	Action      string            `gorm:"size:100;not null" json:"action"`
	Module      string            `gorm:"size:50" json:"module"`
	Description string            `gorm:"type:text" json:"description"`
	IPAddress   string            `gorm:"size:45" json:"ip_address"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_logs" }
