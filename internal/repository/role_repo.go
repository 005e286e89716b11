package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutriharvest_mall_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// RoleRepository 角色与权限矩阵仓储接口
type RoleRepository interface {
	// 角色
	CreateRole(ctx context.Context, role *model.Role) error
	GetRoleByID(ctx context.Context, id int64) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]model.Role, error)
	DeleteRole(ctx context.Context, id int64) error
	CountUsersWithRole(ctx context.Context, roleID int64) (int64, error)

	// 权限行：(role, module) 唯一
	GetPermission(ctx context.Context, roleID int64, module model.Module) (*model.Permission, error)
	ListPermissions(ctx context.Context, roleID int64) ([]model.Permission, error)
	UpsertPermission(ctx context.Context, perm *model.Permission) error
	DeletePermission(ctx context.Context, id int64) error
}

// ==================== 仓储实现 ====================

type roleRepo struct {
	db *gorm.DB
}

// NewRoleRepository 创建角色仓储
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) CreateRole(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *roleRepo) GetRoleByID(ctx context.Context, id int64) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) ListRoles(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Order("id").
		Find(&roles).Error
	return roles, err
}

func (r *roleRepo) DeleteRole(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Role{}, id).Error
}

func (r *roleRepo) CountUsersWithRole(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

// ==================== 权限行 ====================

func (r *roleRepo) GetPermission(ctx context.Context, roleID int64, module model.Module) (*model.Permission, error) {
	var perm model.Permission
	err := r.db.WithContext(ctx).
		Where("role_id = ? AND module = ?", roleID, module).
		First(&perm).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *roleRepo) ListPermissions(ctx context.Context, roleID int64) ([]model.Permission, error) {
	var perms []model.Permission
	err := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Order("module").
		Find(&perms).Error
	return perms, err
}

// UpsertPermission (role, module) 冲突时更新四个开关位
func (r *roleRepo) UpsertPermission(ctx context.Context, perm *model.Permission) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "role_id"}, {Name: "module"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"can_view", "can_add", "can_edit", "can_delete", "updated_at",
			}),
		}).
		Create(perm).Error
}

func (r *roleRepo) DeletePermission(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Permission{}, id).Error
}
