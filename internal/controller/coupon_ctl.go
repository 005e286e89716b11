package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/api/dto"
	"nutriharvest_mall_v1_202608/internal/middleware"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/service"
)

// CouponController 优惠券：购物车侧应用 + 后台管理
type CouponController struct {
	couponService *service.CouponService
}

// NewCouponController 工厂方法
func NewCouponController(s *service.CouponService) *CouponController {
	return &CouponController{couponService: s}
}

// ==================== 购物车侧 ====================

// Apply
// @Summary 应用优惠码
// @Description 校验并把优惠码挂到购物车，真正核销在结算时发生
// @Tags Coupon (优惠券模块)
// @Accept json
// @Produce json
// @Param body body dto.ApplyCouponRequest true "优惠码"
// @Success 200 {object} map[string]interface{} "券信息"
// @Failure 404 {object} map[string]string "优惠码不存在"
// @Failure 422 {object} map[string]string "券当前不可用"
// @Router /api/coupons/apply [post]
func (ctrl *CouponController) Apply(c *gin.Context) {
	var req dto.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	coupon, err := ctrl.couponService.Apply(c.Request.Context(), middleware.GetUserID(c), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "优惠码不存在"})
		case errors.Is(err, service.ErrCouponNotApplicable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": 422, "message": "优惠码当前不可用"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "应用失败"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "优惠码已应用", "data": coupon})
}

// Remove
// @Summary 移除优惠码
// @Tags Coupon (优惠券模块)
// @Produce json
// @Success 200 {object} map[string]string "已移除"
// @Router /api/coupons/apply [delete]
func (ctrl *CouponController) Remove(c *gin.Context) {
	if err := ctrl.couponService.Remove(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "移除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "已移除"})
}

// ==================== 后台管理 ====================

// Create
// @Summary 新建优惠券
// @Tags Coupon (优惠券模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateCouponRequest true "优惠券配置"
// @Success 200 {object} map[string]interface{} "新建的券"
// @Router /api/manage/coupons [post]
func (ctrl *CouponController) Create(c *gin.Context) {
	var req dto.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	coupon := &model.Coupon{
		Code:              req.Code,
		CouponType:        model.CouponType(req.CouponType),
		DiscountValue:     req.DiscountValue,
		CategoryID:        req.CategoryID,
		ProductID:         req.ProductID,
		MinPurchaseAmount: req.MinPurchaseAmount,
		MaxUses:           req.MaxUses,
		MaxUsesPerUser:    req.MaxUsesPerUser,
		IsActive:          true,
	}
	if req.Application != "" {
		coupon.Application = model.CouponApplication(req.Application)
	} else {
		coupon.Application = model.ApplyCart
	}
	if req.ValidFrom != nil {
		coupon.ValidFrom = *req.ValidFrom
	}
	coupon.ValidTo = req.ValidTo
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if coupon.MaxUsesPerUser == 0 {
		coupon.MaxUsesPerUser = 1
	}

	if err := ctrl.couponService.Create(c.Request.Context(), coupon); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "新建失败", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "新建成功", "data": coupon})
}

// Update
// @Summary 更新优惠券
// @Tags Coupon (优惠券模块)
// @Accept json
// @Produce json
// @Param id path int true "券 ID"
// @Param body body dto.UpdateCouponRequest true "更新字段"
// @Success 200 {object} map[string]interface{} "更新后的券"
// @Router /api/manage/coupons/{id} [put]
func (ctrl *CouponController) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	var req dto.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	coupon, err := ctrl.couponService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "优惠券不存在"})
		return
	}

	if req.DiscountValue != nil {
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.MinPurchaseAmount != nil {
		coupon.MinPurchaseAmount = req.MinPurchaseAmount
	}
	if req.MaxUses != nil {
		coupon.MaxUses = req.MaxUses
	}
	if req.MaxUsesPerUser != nil {
		coupon.MaxUsesPerUser = *req.MaxUsesPerUser
	}
	if req.ValidFrom != nil {
		coupon.ValidFrom = *req.ValidFrom
	}
	if req.ValidTo != nil {
		coupon.ValidTo = req.ValidTo
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := ctrl.couponService.Update(c.Request.Context(), coupon); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "更新失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "更新成功", "data": coupon})
}

// Delete
// @Summary 删除优惠券
// @Tags Coupon (优惠券模块)
// @Produce json
// @Param id path int true "券 ID"
// @Success 200 {object} map[string]string "删除成功"
// @Router /api/manage/coupons/{id} [delete]
func (ctrl *CouponController) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}
	if err := ctrl.couponService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "删除成功"})
}

// List
// @Summary 优惠券列表
// @Tags Coupon (优惠券模块)
// @Produce json
// @Param keyword query string false "按优惠码模糊搜索"
// @Param is_active query bool false "启用状态"
// @Success 200 {object} map[string]interface{} "列表与总数"
// @Router /api/manage/coupons [get]
func (ctrl *CouponController) List(c *gin.Context) {
	var req dto.CouponListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误"})
		return
	}

	coupons, total, err := ctrl.couponService.List(c.Request.Context(), repository.CouponFilter{
		Keyword:  req.Keyword,
		IsActive: req.IsActive,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}

	now := time.Now()
	type couponRow struct {
		model.Coupon
		Valid bool `json:"valid"`
	}
	rows := make([]couponRow, 0, len(coupons))
	for i := range coupons {
		rows = append(rows, couponRow{Coupon: coupons[i], Valid: coupons[i].IsValid(now)})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": rows, "total": total},
	})
}

// ListUsages
// @Summary 券使用记录
// @Tags Coupon (优惠券模块)
// @Produce json
// @Param id path int true "券 ID"
// @Success 200 {object} map[string]interface{} "使用记录"
// @Router /api/manage/coupons/{id}/usages [get]
func (ctrl *CouponController) ListUsages(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	usages, total, err := ctrl.couponService.ListUsages(c.Request.Context(), id, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": usages, "total": total},
	})
}

// DeleteUsage
// @Summary 删除使用记录
// @Description 纠错入口：删除一条核销记录并回退该券的使用计数
// @Tags Coupon (优惠券模块)
// @Produce json
// @Param usage_id path int true "使用记录 ID"
// @Success 200 {object} map[string]string "删除成功"
// @Router /api/manage/coupons/usages/{usage_id} [delete]
func (ctrl *CouponController) DeleteUsage(c *gin.Context) {
	usageID, err := strconv.ParseInt(c.Param("usage_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "usage_id 必须是数字"})
		return
	}
	if err := ctrl.couponService.DeleteUsage(c.Request.Context(), usageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "删除成功"})
}
