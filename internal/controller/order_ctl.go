package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/api/dto"
	"nutriharvest_mall_v1_202608/internal/middleware"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/service"
)

// OrderController 结算与订单
type OrderController struct {
	checkoutService *service.CheckoutService
	orderService    *service.OrderService
}

// NewOrderController 工厂方法
func NewOrderController(checkout *service.CheckoutService, orders *service.OrderService) *OrderController {
	return &OrderController{checkoutService: checkout, orderService: orders}
}

// Checkout
// @Summary 结算下单
// @Description 扣库存、建订单、核销优惠券在同一事务内完成，任何一步失败整单回滚
// @Tags Order (订单模块)
// @Accept json
// @Produce json
// @Param body body dto.CheckoutRequest true "收货信息与支付方式"
// @Success 200 {object} map[string]interface{} "订单"
// @Failure 409 {object} map[string]string "库存不足/优惠码已被抢完"
// @Failure 422 {object} map[string]string "优惠码当前不可用"
// @Router /api/checkout [post]
func (ctrl *OrderController) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	order, err := ctrl.checkoutService.Checkout(c.Request.Context(), middleware.GetUserID(c), service.ShippingInfo{
		Name:    req.ShippingName,
		Email:   req.ShippingEmail,
		Mobile:  req.ShippingMobile,
		Address: req.ShippingAddress,
		City:    req.City,
		Pincode: req.Pincode,
	}, req.PaymentMode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "购物车为空"})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"code": 409, "message": "部分商品库存不足", "detail": err.Error()})
		case errors.Is(err, service.ErrCouponExhausted):
			c.JSON(http.StatusConflict, gin.H{"code": 409, "message": "优惠码已被抢完"})
		case errors.Is(err, service.ErrCouponNotFound), errors.Is(err, service.ErrCouponNotApplicable):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"code": 422, "message": "优惠码当前不可用，请移除后重试"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "下单失败", "detail": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "下单成功", "data": order})
}

// MyOrders
// @Summary 我的订单
// @Tags Order (订单模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "订单列表"
// @Router /api/orders [get]
func (ctrl *OrderController) MyOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := ctrl.orderService.List(c.Request.Context(), repository.OrderFilter{
		CustomerID: middleware.GetUserID(c),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": orders, "total": total},
	})
}

// MyOrderDetail
// @Summary 我的订单详情
// @Tags Order (订单模块)
// @Produce json
// @Param id path int true "订单 ID"
// @Success 200 {object} map[string]interface{} "订单"
// @Failure 404 {object} map[string]string "订单不存在"
// @Router /api/orders/{id} [get]
func (ctrl *OrderController) MyOrderDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	order, err := ctrl.orderService.GetOwnedByUser(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "订单不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": order})
}

// CancelMyOrder
// @Summary 取消我的订单
// @Description 发货前可取消
// @Tags Order (订单模块)
// @Produce json
// @Param id path int true "订单 ID"
// @Success 200 {object} map[string]string "取消成功"
// @Failure 409 {object} map[string]string "当前状态不可取消"
// @Router /api/orders/{id}/cancel [post]
func (ctrl *OrderController) CancelMyOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	err = ctrl.orderService.Cancel(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "订单不存在"})
		case errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"code": 409, "message": "当前状态不可取消"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "取消失败"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "取消成功"})
}

// ==================== 后台订单管理 ====================

// List
// @Summary 订单列表（后台）
// @Tags Order (订单模块)
// @Produce json
// @Param order_status query string false "订单状态"
// @Param payment_status query string false "支付状态"
// @Success 200 {object} map[string]interface{} "列表与总数"
// @Router /api/manage/orders [get]
func (ctrl *OrderController) List(c *gin.Context) {
	var req dto.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误"})
		return
	}

	orders, total, err := ctrl.orderService.List(c.Request.Context(), repository.OrderFilter{
		CustomerID:    req.CustomerID,
		OrderStatus:   req.OrderStatus,
		PaymentStatus: req.PaymentStatus,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": orders, "total": total},
	})
}

// Detail
// @Summary 订单详情（后台）
// @Description 路径参数既可以是订单 ID，也可以是订单号（NHxxxxxxxx）
// @Tags Order (订单模块)
// @Produce json
// @Param id path string true "订单 ID 或订单号"
// @Success 200 {object} map[string]interface{} "订单"
// @Router /api/manage/orders/{id} [get]
func (ctrl *OrderController) Detail(c *gin.Context) {
	key := c.Param("id")
	ctx := c.Request.Context()

	var order *model.Order
	var err error
	if id, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		order, err = ctrl.orderService.GetByID(ctx, id)
	} else {
		order, err = ctrl.orderService.GetByNumber(ctx, key)
	}
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "订单不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": order})
}

// UpdateStatus
// @Summary 订单状态流转（后台）
// @Description action 取 process / ship / deliver / cancel / mark_paid
// @Tags Order (订单模块)
// @Produce json
// @Param id path int true "订单 ID"
// @Param action path string true "流转动作"
// @Success 200 {object} map[string]string "流转成功"
// @Failure 409 {object} map[string]string "状态不允许该流转"
// @Router /api/manage/orders/{id}/{action} [post]
func (ctrl *OrderController) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	ctx := c.Request.Context()
	switch c.Param("action") {
	case "process":
		err = ctrl.orderService.Process(ctx, id)
	case "ship":
		err = ctrl.orderService.Ship(ctx, id)
	case "deliver":
		err = ctrl.orderService.Deliver(ctx, id)
	case "cancel":
		err = ctrl.orderService.Cancel(ctx, 0, id)
	case "mark_paid":
		err = ctrl.orderService.MarkPaid(ctx, id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "未知动作"})
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "订单不存在"})
		case errors.Is(err, service.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"code": 409, "message": "当前状态不允许该流转", "detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "流转失败"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "流转成功"})
}
