package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutriharvest_mall_v1_202608/internal/middleware"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/service"
	"nutriharvest_mall_v1_202608/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

func setupCouponCtlTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	err = db.AutoMigrate(
		&model.Category{}, &model.Product{}, &model.CartItem{},
		&model.Coupon{}, &model.CouponUsage{},
	)
	if err != nil {
		t.Fatalf("建表失败: %v", err)
	}
	return db
}

// setupCouponRouter 装配一个带假登录态的最小路由
func setupCouponRouter(t *testing.T, userID int64) (*gin.Engine, *gorm.DB) {
	db := setupCouponCtlTestDB(t)
	svc := service.NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCartRepository(db),
		service.NewPricingService(),
		session.NewMemoryCouponStore(),
	)
	ctl := NewCouponController(svc)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Next()
	})
	r.POST("/api/coupons/apply", ctl.Apply)
	r.DELETE("/api/coupons/apply", ctl.Remove)
	r.POST("/api/manage/coupons", ctl.Create)
	r.GET("/api/manage/coupons", ctl.List)
	return r, db
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedCartAndCoupon(t *testing.T, db *gorm.DB, userID int64, price string) {
	p, _ := decimal.NewFromString(price)
	product := model.Product{CategoryID: 1, Name: "蜂蜜", Slug: "honey", Price: p, Stock: 10, IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	item := model.CartItem{UserID: userID, ProductID: product.ID, Quantity: 1}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("创建购物车项失败: %v", err)
	}
	coupon := model.Coupon{
		Code: "SAVE10", CouponType: model.CouponPercentage,
		DiscountValue: decimal.NewFromInt(10),
		IsActive:      true, ValidFrom: time.Now().Add(-time.Hour),
		MaxUsesPerUser: 1,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("创建优惠券失败: %v", err)
	}
}

// ==================== 单元测试 ====================

func TestApplyCoupon(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantStatus int
	}{
		{"应用成功", "SAVE10", http.StatusOK},
		{"优惠码不存在", "NOPE", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, db := setupCouponRouter(t, 1)
			seedCartAndCoupon(t, db, 1, "100.00")

			w := performRequest(r, http.MethodPost, "/api/coupons/apply", gin.H{"code": tt.code})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestApplyCoupon_Inactive(t *testing.T) {
	r, db := setupCouponRouter(t, 1)
	seedCartAndCoupon(t, db, 1, "100.00")
	db.Model(&model.Coupon{}).Where("code = ?", "SAVE10").Update("is_active", false)

	w := performRequest(r, http.MethodPost, "/api/coupons/apply", gin.H{"code": "SAVE10"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestApplyCoupon_BadRequest(t *testing.T) {
	r, _ := setupCouponRouter(t, 1)

	// code 是必填字段
	w := performRequest(r, http.MethodPost, "/api/coupons/apply", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveCoupon(t *testing.T) {
	r, db := setupCouponRouter(t, 1)
	seedCartAndCoupon(t, db, 1, "100.00")

	w := performRequest(r, http.MethodPost, "/api/coupons/apply", gin.H{"code": "SAVE10"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodDelete, "/api/coupons/apply", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateCoupon(t *testing.T) {
	r, db := setupCouponRouter(t, 1)

	w := performRequest(r, http.MethodPost, "/api/manage/coupons", gin.H{
		"code":           "SPRING25",
		"coupon_type":    "fixed",
		"discount_value": "25.00",
		"max_uses":       100,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var coupon model.Coupon
	err := db.Where("code = ?", "SPRING25").First(&coupon).Error
	assert.NoError(t, err)
	assert.Equal(t, model.CouponFixed, coupon.CouponType)
	assert.Equal(t, model.ApplyCart, coupon.Application)
	assert.Equal(t, 1, coupon.MaxUsesPerUser)
	assert.True(t, coupon.IsActive)
}

func TestListCoupons(t *testing.T) {
	r, db := setupCouponRouter(t, 1)
	seedCartAndCoupon(t, db, 1, "100.00")

	w := performRequest(r, http.MethodGet, "/api/manage/coupons", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			List  []map[string]interface{} `json:"list"`
			Total int64                    `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v", err)
	}
	assert.Equal(t, int64(1), resp.Data.Total)
	if assert.Len(t, resp.Data.List, 1) {
		assert.Equal(t, "SAVE10", resp.Data.List[0]["code"])
		assert.Equal(t, true, resp.Data.List[0]["valid"])
	}
}
