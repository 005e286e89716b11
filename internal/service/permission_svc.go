package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ErrRoleInUse 角色仍被用户引用时禁止删除
var ErrRoleInUse = errors.New("role is referenced by users")

// ==================== PermissionService 权限服务 ====================

// PermissionService 角色/权限矩阵的读与管理
// HasPermission 是纯读路径，每次直查数据库，不做缓存：
// 权限行变更频率极低，几个请求内的短暂陈旧可以接受
type PermissionService struct {
	roleRepo repository.RoleRepository
}

// NewPermissionService 工厂方法
func NewPermissionService(roleRepo repository.RoleRepository) *PermissionService {
	return &PermissionService{roleRepo: roleRepo}
}

// HasPermission 判定用户能否对模块执行动作。
// 规则（顺序即语义）：
//  1. 无角色 → 拒绝
//  2. 角色为 admin 枚举 → 放行（超管旁路是刻意设计）
//  3. 查 (role, module) 唯一权限行：无行 → 默认拒绝；有行 → 取对应布尔位
func (s *PermissionService) HasPermission(ctx context.Context, user *model.User, module model.Module, action model.Action) bool {
	if user == nil || user.RoleID == nil {
		return false
	}

	switch user.RoleKind() {
	case model.RoleAdmin:
		return true
	case model.RoleUnknown:
		// RoleID 有值但 Role 未预加载：按角色 ID 补查一次
		role, err := s.roleRepo.GetRoleByID(ctx, *user.RoleID)
		if err != nil {
			return false
		}
		if role.Kind() == model.RoleAdmin {
			return true
		}
		if role.Kind() == model.RoleUnknown {
			return false
		}
	}

	perm, err := s.roleRepo.GetPermission(ctx, *user.RoleID, module)
	if err != nil {
		// 无权限行 → 默认拒绝；查询故障同样拒绝
		return false
	}
	return perm.Allows(action)
}

// ==================== 角色管理 ====================

// ListRoles 角色列表（含权限行）
func (s *PermissionService) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roleRepo.ListRoles(ctx)
}

// DeleteRole 删除角色；仍有用户挂在该角色上时返回 ErrRoleInUse
func (s *PermissionService) DeleteRole(ctx context.Context, roleID int64) error {
	count, err := s.roleRepo.CountUsersWithRole(ctx, roleID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d users", ErrRoleInUse, count)
	}
	return s.roleRepo.DeleteRole(ctx, roleID)
}

// ==================== 权限矩阵管理 ====================

// SetPermission 新增或覆盖 (role, module) 权限行，立即对后续请求生效
func (s *PermissionService) SetPermission(ctx context.Context, perm *model.Permission) error {
	if _, err := s.roleRepo.GetRoleByID(ctx, perm.RoleID); err != nil {
		return fmt.Errorf("角色不存在: %w", err)
	}
	if !validModule(perm.Module) {
		return fmt.Errorf("未知模块: %s", perm.Module)
	}
	return s.roleRepo.UpsertPermission(ctx, perm)
}

// ListPermissions 某角色的全部权限行
func (s *PermissionService) ListPermissions(ctx context.Context, roleID int64) ([]model.Permission, error) {
	return s.roleRepo.ListPermissions(ctx, roleID)
}

// DeletePermission 删除一条权限行，该 (role, module) 回到默认拒绝
func (s *PermissionService) DeletePermission(ctx context.Context, id int64) error {
	return s.roleRepo.DeletePermission(ctx, id)
}

// ==================== 初始化 ====================

// SeedRoles 预置三个系统角色，已存在则跳过
func (s *PermissionService) SeedRoles(ctx context.Context) error {
	seeds := []model.Role{
		{Name: string(model.RoleAdmin), Description: "Administrator"},
		{Name: string(model.RoleEmployee), Description: "Employee"},
		{Name: string(model.RoleCustomer), Description: "Customer"},
	}
	for i := range seeds {
		_, err := s.roleRepo.GetRoleByName(ctx, seeds[i].Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.roleRepo.CreateRole(ctx, &seeds[i]); err != nil {
			return err
		}
	}
	return nil
}

func validModule(m model.Module) bool {
	for _, known := range model.AllModules {
		if m == known {
			return true
		}
	}
	return false
}
