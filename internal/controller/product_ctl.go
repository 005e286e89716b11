package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/api/dto"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/repository"
	"nutriharvest_mall_v1_202608/internal/service"
)

// ProductController 商品：店面浏览 + 后台管理
type ProductController struct {
	productService *service.ProductService
}

// NewProductController 工厂方法
func NewProductController(s *service.ProductService) *ProductController {
	return &ProductController{productService: s}
}

// ==================== 店面 ====================

// Browse
// @Summary 店面商品列表
// @Description 只返回在售商品
// @Tags Product (商品模块)
// @Produce json
// @Param category_id query int false "分类 ID"
// @Param keyword query string false "名称模糊搜索"
// @Param featured query bool false "只看推荐"
// @Success 200 {object} map[string]interface{} "商品列表"
// @Router /api/shop/products [get]
func (ctrl *ProductController) Browse(c *gin.Context) {
	var req dto.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误"})
		return
	}

	products, total, err := ctrl.productService.List(c.Request.Context(), repository.ProductFilter{
		CategoryID: req.CategoryID,
		Keyword:    req.Keyword,
		Featured:   req.Featured,
		ActiveOnly: true,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": products, "total": total},
	})
}

// BySlug
// @Summary 店面商品详情
// @Tags Product (商品模块)
// @Produce json
// @Param slug path string true "商品 slug"
// @Success 200 {object} map[string]interface{} "商品"
// @Failure 404 {object} map[string]string "商品不存在"
// @Router /api/shop/products/{slug} [get]
func (ctrl *ProductController) BySlug(c *gin.Context) {
	product, err := ctrl.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil || !product.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": product})
}

// Categories
// @Summary 店面分类列表
// @Tags Product (商品模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "分类列表"
// @Router /api/shop/categories [get]
func (ctrl *ProductController) Categories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": categories})
}

// ==================== 后台管理 ====================

// List
// @Summary 商品列表（后台，含下架）
// @Tags Product (商品模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "商品列表"
// @Router /api/manage/products [get]
func (ctrl *ProductController) List(c *gin.Context) {
	var req dto.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误"})
		return
	}

	products, total, err := ctrl.productService.List(c.Request.Context(), repository.ProductFilter{
		CategoryID: req.CategoryID,
		Keyword:    req.Keyword,
		Featured:   req.Featured,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": products, "total": total},
	})
}

// Create
// @Summary 新建商品
// @Tags Product (商品模块)
// @Accept json
// @Produce json
// @Param body body dto.CreateProductRequest true "商品信息"
// @Success 200 {object} map[string]interface{} "新建的商品"
// @Router /api/manage/products [post]
func (ctrl *ProductController) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	product := &model.Product{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		IsActive:      true,
	}
	if req.LowStockThreshold > 0 {
		product.LowStockThreshold = req.LowStockThreshold
	} else {
		product.LowStockThreshold = 10
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := ctrl.productService.Create(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "新建失败", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "新建成功", "data": product})
}

// Update
// @Summary 更新商品
// @Tags Product (商品模块)
// @Accept json
// @Produce json
// @Param id path int true "商品 ID"
// @Param body body dto.UpdateProductRequest true "更新字段"
// @Success 200 {object} map[string]interface{} "更新后的商品"
// @Router /api/manage/products/{id} [put]
func (ctrl *ProductController) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	product, err := ctrl.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在"})
		return
	}

	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}

	if err := ctrl.productService.Update(c.Request.Context(), product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "更新失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "更新成功", "data": product})
}

// Delete
// @Summary 删除商品
// @Tags Product (商品模块)
// @Produce json
// @Param id path int true "商品 ID"
// @Success 200 {object} map[string]string "删除成功"
// @Router /api/manage/products/{id} [delete]
func (ctrl *ProductController) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}
	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "删除成功"})
}

// LowStock
// @Summary 低库存商品
// @Tags Product (商品模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "低库存清单"
// @Router /api/manage/products/low-stock [get]
func (ctrl *ProductController) LowStock(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	products, err := ctrl.productService.ListLowStock(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": products})
}

// AdjustStock
// @Summary 手工调库存
// @Tags Product (商品模块)
// @Accept json
// @Produce json
// @Param id path int true "商品 ID"
// @Param body body dto.AdjustStockRequest true "库存数量"
// @Success 200 {object} map[string]string "调整成功"
// @Router /api/manage/products/{id}/stock [patch]
func (ctrl *ProductController) AdjustStock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	if err := ctrl.productService.AdjustStock(c.Request.Context(), id, *req.Stock); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "调整失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "调整成功"})
}

// SetImages
// @Summary 设置商品图片
// @Description 整组覆盖，图片顺序按传入顺序；只保存外部 URL
// @Tags Product (商品模块)
// @Accept json
// @Produce json
// @Param id path int true "商品 ID"
// @Param body body dto.SetProductImagesRequest true "图片列表"
// @Success 200 {object} map[string]string "设置成功"
// @Router /api/manage/products/{id}/images [put]
func (ctrl *ProductController) SetImages(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	var req dto.SetProductImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	images := make([]model.ProductImage, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, model.ProductImage{URL: img.URL, AltText: img.AltText})
	}

	if err := ctrl.productService.SetImages(c.Request.Context(), id, images); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "商品不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "设置成功"})
}

// ==================== 分类管理 ====================

// CreateCategory
// @Summary 新建分类
// @Tags Product (商品模块)
// @Accept json
// @Produce json
// @Param body body dto.CategoryRequest true "分类信息"
// @Success 200 {object} map[string]interface{} "新建的分类"
// @Router /api/manage/categories [post]
func (ctrl *ProductController) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	category := &model.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := ctrl.productService.CreateCategory(c.Request.Context(), category); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "新建失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "新建成功", "data": category})
}

// UpdateCategory
// @Summary 更新分类
// @Tags Product (商品模块)
// @Accept json
// @Produce json
// @Param id path int true "分类 ID"
// @Param body body dto.CategoryRequest true "分类信息"
// @Success 200 {object} map[string]interface{} "更新后的分类"
// @Router /api/manage/categories/{id} [put]
func (ctrl *ProductController) UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	category, err := ctrl.productService.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "分类不存在"})
		return
	}

	category.Name = req.Name
	if req.Slug != "" {
		category.Slug = req.Slug
	}
	category.Description = req.Description
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := ctrl.productService.UpdateCategory(c.Request.Context(), category); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "更新失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "更新成功", "data": category})
}

// DeleteCategory
// @Summary 删除分类
// @Tags Product (商品模块)
// @Produce json
// @Param id path int true "分类 ID"
// @Success 200 {object} map[string]string "删除成功"
// @Router /api/manage/categories/{id} [delete]
func (ctrl *ProductController) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}
	if err := ctrl.productService.DeleteCategory(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "删除成功"})
}
