package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupPermTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Role{}, &model.Permission{}, &model.User{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

func newPermService(t *testing.T) (*PermissionService, *gorm.DB) {
	db := setupPermTestDB(t)
	return NewPermissionService(repository.NewRoleRepository(db)), db
}

func mustSeedRoles(t *testing.T, svc *PermissionService) map[string]*model.Role {
	ctx := context.Background()
	if err := svc.SeedRoles(ctx); err != nil {
		t.Fatalf("SeedRoles 失败: %v", err)
	}
	roles, err := svc.ListRoles(ctx)
	if err != nil {
		t.Fatalf("ListRoles 失败: %v", err)
	}
	byName := make(map[string]*model.Role, len(roles))
	for i := range roles {
		byName[roles[i].Name] = &roles[i]
	}
	return byName
}

func userWithRole(role *model.Role) *model.User {
	return &model.User{ID: 1, Username: "tester", RoleID: &role.ID, Role: role}
}

// ==================== 单元测试 ====================

func TestHasPermission_NoRole(t *testing.T) {
	svc, _ := newPermService(t)
	ctx := context.Background()

	if svc.HasPermission(ctx, nil, model.ModuleProducts, model.ActionView) {
		t.Error("nil 用户不应有任何权限")
	}
	if svc.HasPermission(ctx, &model.User{ID: 1}, model.ModuleProducts, model.ActionView) {
		t.Error("无角色用户不应有任何权限")
	}
}

func TestHasPermission_AdminBypass(t *testing.T) {
	svc, _ := newPermService(t)
	ctx := context.Background()
	roles := mustSeedRoles(t, svc)
	admin := userWithRole(roles["admin"])

	// 管理员不需要权限行，任意模块任意动作放行
	for _, m := range model.AllModules {
		for _, a := range []model.Action{model.ActionView, model.ActionAdd, model.ActionEdit, model.ActionDelete} {
			if !svc.HasPermission(ctx, admin, m, a) {
				t.Errorf("admin 对 %s/%s 应放行", m, a)
			}
		}
	}
}

func TestHasPermission_DefaultDeny(t *testing.T) {
	svc, _ := newPermService(t)
	ctx := context.Background()
	roles := mustSeedRoles(t, svc)
	employee := userWithRole(roles["employee"])

	// 没有权限行一律拒绝
	if svc.HasPermission(ctx, employee, model.ModuleOrders, model.ActionView) {
		t.Error("无权限行应默认拒绝")
	}
}

func TestHasPermission_PerActionFlags(t *testing.T) {
	svc, _ := newPermService(t)
	ctx := context.Background()
	roles := mustSeedRoles(t, svc)
	employee := userWithRole(roles["employee"])

	err := svc.SetPermission(ctx, &model.Permission{
		RoleID:  roles["employee"].ID,
		Module:  model.ModuleProducts,
		CanView: true,
		CanAdd:  true,
		CanEdit: false,
	})
	if err != nil {
		t.Fatalf("SetPermission 失败: %v", err)
	}

	cases := []struct {
		action model.Action
		want   bool
	}{
		{model.ActionView, true},
		{model.ActionAdd, true},
		{model.ActionEdit, false},
		{model.ActionDelete, false},
	}
	for _, c := range cases {
		if got := svc.HasPermission(ctx, employee, model.ModuleProducts, c.action); got != c.want {
			t.Errorf("products/%s = %v, want %v", c.action, got, c.want)
		}
	}

	// 授权只对指定模块生效
	if svc.HasPermission(ctx, employee, model.ModuleOrders, model.ActionView) {
		t.Error("未授权模块应拒绝")
	}
}

func TestHasPermission_RoleNotPreloaded(t *testing.T) {
	svc, _ := newPermService(t)
	ctx := context.Background()
	roles := mustSeedRoles(t, svc)

	// 只有 RoleID、Role 未预加载：服务需要自己补查角色
	admin := &model.User{ID: 1, Username: "boss", RoleID: &roles["admin"].ID}
	if !svc.HasPermission(ctx, admin, model.ModuleReports, model.ActionDelete) {
		t.Error("未预加载的 admin 也应放行")
	}

	employee := &model.User{ID: 2, Username: "staff", RoleID: &roles["employee"].ID}
	if svc.HasPermission(ctx, employee, model.ModuleReports, model.ActionView) {
		t.Error("未预加载的 employee 无权限行时应拒绝")
	}
}

func TestHasPermission_UnknownRole(t *testing.T) {
	svc, db := newPermService(t)
	ctx := context.Background()

	// 非枚举角色即使有权限行也不走 admin 旁路，仍按矩阵判定
	weird := model.Role{Name: "auditor"}
	if err := db.Create(&weird).Error; err != nil {
		t.Fatalf("创建角色失败: %v", err)
	}
	user := userWithRole(&weird)

	if svc.HasPermission(ctx, user, model.ModuleReports, model.ActionView) {
		t.Error("未知角色无权限行应拒绝")
	}

	if err := svc.SetPermission(ctx, &model.Permission{
		RoleID: weird.ID, Module: model.ModuleReports, CanView: true,
	}); err != nil {
		t.Fatalf("SetPermission 失败: %v", err)
	}
	if !svc.HasPermission(ctx, user, model.ModuleReports, model.ActionView) {
		t.Error("未知角色有权限行时按行判定")
	}
}

func TestSetPermission_Upsert(t *testing.T) {
	svc, _ := newPermService(t)
	ctx := context.Background()
	roles := mustSeedRoles(t, svc)
	employee := userWithRole(roles["employee"])

	grant := &model.Permission{RoleID: roles["employee"].ID, Module: model.ModuleCMS, CanView: true, CanEdit: true}
	if err := svc.SetPermission(ctx, grant); err != nil {
		t.Fatalf("SetPermission 失败: %v", err)
	}
	if !svc.HasPermission(ctx, employee, model.ModuleCMS, model.ActionEdit) {
		t.Error("授权后 edit 应放行")
	}

	// 覆盖同一 (role, module)，收回 edit 立即生效
	revoke := &model.Permission{RoleID: roles["employee"].ID, Module: model.ModuleCMS, CanView: true, CanEdit: false}
	if err := svc.SetPermission(ctx, revoke); err != nil {
		t.Fatalf("SetPermission 覆盖失败: %v", err)
	}
	if svc.HasPermission(ctx, employee, model.ModuleCMS, model.ActionEdit) {
		t.Error("收回后 edit 应拒绝")
	}
	if !svc.HasPermission(ctx, employee, model.ModuleCMS, model.ActionView) {
		t.Error("view 不应被覆盖掉")
	}

	perms, err := svc.ListPermissions(ctx, roles["employee"].ID)
	if err != nil {
		t.Fatalf("ListPermissions 失败: %v", err)
	}
	if len(perms) != 1 {
		t.Errorf("权限行数 = %d, want 1（覆盖不应产生新行）", len(perms))
	}
}

func TestSetPermission_UnknownModule(t *testing.T) {
	svc, _ := newPermService(t)
	ctx := context.Background()
	roles := mustSeedRoles(t, svc)

	err := svc.SetPermission(ctx, &model.Permission{
		RoleID: roles["employee"].ID,
		Module: model.Module("warehouse"),
	})
	if err == nil {
		t.Error("未知模块应报错")
	}
}

func TestSeedRoles_Idempotent(t *testing.T) {
	svc, _ := newPermService(t)
	ctx := context.Background()

	mustSeedRoles(t, svc)
	if err := svc.SeedRoles(ctx); err != nil {
		t.Fatalf("重复 SeedRoles 失败: %v", err)
	}

	roles, err := svc.ListRoles(ctx)
	if err != nil {
		t.Fatalf("ListRoles 失败: %v", err)
	}
	if len(roles) != 3 {
		t.Errorf("角色数 = %d, want 3", len(roles))
	}
}

func TestDeleteRole_InUse(t *testing.T) {
	svc, db := newPermService(t)
	ctx := context.Background()
	roles := mustSeedRoles(t, svc)

	user := model.User{Username: "staff", Password: "x", RoleID: &roles["employee"].ID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	err := svc.DeleteRole(ctx, roles["employee"].ID)
	if !errors.Is(err, ErrRoleInUse) {
		t.Errorf("err = %v, want ErrRoleInUse", err)
	}

	// 无人引用的角色可以删
	if err := svc.DeleteRole(ctx, roles["customer"].ID); err != nil {
		t.Errorf("删除空角色失败: %v", err)
	}
}
