package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
)

// ==================== 错误定义 ====================

var (
	// ErrInvalidCredentials 用户名或密码错误（对外不区分哪个错）
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserDisabled 账号被停用
	ErrUserDisabled = errors.New("user is disabled")
	// ErrUsernameTaken 用户名已被占用
	ErrUsernameTaken = errors.New("username already taken")
)

// ==================== AuthService 认证服务 ====================

// AuthService 注册与登录。令牌签发在 middleware 包，由控制器拼装
type AuthService struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
}

// NewAuthService 工厂方法
func NewAuthService(userRepo repository.UserRepository, roleRepo repository.RoleRepository) *AuthService {
	return &AuthService{userRepo: userRepo, roleRepo: roleRepo}
}

// RegisterInput 注册入参
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Email    string
	Mobile   string
	Address  string
	City     string
	Pincode  string
}

// Register 顾客自助注册：建账号（customer 角色）+ 顾客档案
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	_, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}

	role, err := s.roleRepo.GetRoleByName(ctx, string(model.RoleCustomer))
	if err != nil {
		return nil, fmt.Errorf("顾客角色未初始化: %w", err)
	}

	user := &model.User{
		Username: input.Username,
		Password: string(hash),
		FullName: input.FullName,
		Email:    input.Email,
		Mobile:   input.Mobile,
		RoleID:   &role.ID,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role

	customer := &model.Customer{
		UserID:  user.ID,
		Address: input.Address,
		City:    input.City,
		Pincode: input.Pincode,
	}
	if err := s.userRepo.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	return user, nil
}

// Login 校验口令并刷新最后登录时间
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	now := time.Now()
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"last_login": now}); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return user, nil
}

// ChangePassword 修改密码，需验证旧密码
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}
	return s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"password": string(hash)})
}

// GetProfile 取当前用户（含角色）
func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ==================== 后台用户管理 ====================

// CreateEmployee 管理员创建员工账号 + 员工档案
func (s *AuthService) CreateEmployee(ctx context.Context, input RegisterInput, employeeNo, department string) (*model.User, error) {
	_, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("密码加密失败: %w", err)
	}
	role, err := s.roleRepo.GetRoleByName(ctx, string(model.RoleEmployee))
	if err != nil {
		return nil, fmt.Errorf("员工角色未初始化: %w", err)
	}

	user := &model.User{
		Username: input.Username,
		Password: string(hash),
		FullName: input.FullName,
		Email:    input.Email,
		Mobile:   input.Mobile,
		RoleID:   &role.ID,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role

	employee := &model.Employee{
		UserID:     user.ID,
		EmployeeNo: employeeNo,
		Department: department,
		HireDate:   time.Now(),
		Status:     "active",
	}
	if err := s.userRepo.CreateEmployee(ctx, employee); err != nil {
		return nil, err
	}
	return user, nil
}

// SetUserActive 启停账号
func (s *AuthService) SetUserActive(ctx context.Context, userID int64, active bool) error {
	return s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{"is_active": active})
}

// ListUsers 用户列表
func (s *AuthService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	return s.userRepo.List(ctx, filter)
}

// ListCustomers 顾客档案列表
func (s *AuthService) ListCustomers(ctx context.Context, page, pageSize int) ([]model.Customer, int64, error) {
	return s.userRepo.ListCustomers(ctx, page, pageSize)
}

// ListEmployees 员工档案列表
func (s *AuthService) ListEmployees(ctx context.Context, page, pageSize int) ([]model.Employee, int64, error) {
	return s.userRepo.ListEmployees(ctx, page, pageSize)
}
