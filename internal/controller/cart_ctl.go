package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/api/dto"
	"nutriharvest_mall_v1_202608/internal/middleware"
	"nutriharvest_mall_v1_202608/internal/service"
)

// CartController 购物车与收藏
type CartController struct {
	cartService *service.CartService
}

// NewCartController 工厂方法
func NewCartController(s *service.CartService) *CartController {
	return &CartController{cartService: s}
}

// View
// @Summary 查看购物车
// @Description 购物车明细 + 当前挂着的优惠券 + 报价
// @Tags Cart (购物车模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "购物车内容"
// @Router /api/cart [get]
func (ctrl *CartController) View(c *gin.Context) {
	view, err := ctrl.cartService.View(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "加载购物车失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": view})
}

// AddItem
// @Summary 加购
// @Tags Cart (购物车模块)
// @Accept json
// @Produce json
// @Param body body dto.AddCartItemRequest true "商品与数量"
// @Success 200 {object} map[string]string "加购成功"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	err := ctrl.cartService.AddItem(c.Request.Context(), middleware.GetUserID(c), req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在或已下架"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "加购失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "加购成功"})
}

// UpdateItem
// @Summary 修改数量
// @Description 数量为 0 等价于移除
// @Tags Cart (购物车模块)
// @Accept json
// @Produce json
// @Param product_id path int true "商品 ID"
// @Param body body dto.UpdateCartItemRequest true "数量"
// @Success 200 {object} map[string]string "修改成功"
// @Router /api/cart/items/{product_id} [put]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "product_id 必须是数字"})
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	if err := ctrl.cartService.UpdateQuantity(c.Request.Context(), middleware.GetUserID(c), productID, req.Quantity); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "修改失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "修改成功"})
}

// RemoveItem
// @Summary 移除购物车项
// @Tags Cart (购物车模块)
// @Produce json
// @Param product_id path int true "商品 ID"
// @Success 200 {object} map[string]string "移除成功"
// @Router /api/cart/items/{product_id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "product_id 必须是数字"})
		return
	}

	if err := ctrl.cartService.RemoveItem(c.Request.Context(), middleware.GetUserID(c), productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "移除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "移除成功"})
}

// Clear
// @Summary 清空购物车
// @Tags Cart (购物车模块)
// @Produce json
// @Success 200 {object} map[string]string "清空成功"
// @Router /api/cart [delete]
func (ctrl *CartController) Clear(c *gin.Context) {
	if err := ctrl.cartService.Clear(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "清空失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "清空成功"})
}

// ==================== 收藏 ====================

// AddWishlist
// @Summary 加入收藏
// @Tags Cart (购物车模块)
// @Accept json
// @Produce json
// @Param body body dto.WishlistRequest true "商品 ID"
// @Success 200 {object} map[string]string "收藏成功"
// @Router /api/wishlist [post]
func (ctrl *CartController) AddWishlist(c *gin.Context) {
	var req dto.WishlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误"})
		return
	}

	err := ctrl.cartService.AddWishlist(c.Request.Context(), middleware.GetUserID(c), req.ProductID)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "收藏失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "收藏成功"})
}

// RemoveWishlist
// @Summary 取消收藏
// @Tags Cart (购物车模块)
// @Produce json
// @Param product_id path int true "商品 ID"
// @Success 200 {object} map[string]string "取消成功"
// @Router /api/wishlist/{product_id} [delete]
func (ctrl *CartController) RemoveWishlist(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "product_id 必须是数字"})
		return
	}

	if err := ctrl.cartService.RemoveWishlist(c.Request.Context(), middleware.GetUserID(c), productID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "取消失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "取消成功"})
}

// ListWishlist
// @Summary 收藏列表
// @Tags Cart (购物车模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "收藏列表"
// @Router /api/wishlist [get]
func (ctrl *CartController) ListWishlist(c *gin.Context) {
	items, err := ctrl.cartService.ListWishlist(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "加载失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": items})
}
