package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/api/dto"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/service"
)

// CMSController 内容：店面读取 + 后台维护
type CMSController struct {
	cmsService *service.CMSService
}

// NewCMSController 工厂方法
func NewCMSController(s *service.CMSService) *CMSController {
	return &CMSController{cmsService: s}
}

// ==================== 店面 ====================

// PageBySlug
// @Summary 店面页面
// @Tags CMS (内容模块)
// @Produce json
// @Param slug path string true "页面 slug"
// @Success 200 {object} map[string]interface{} "页面"
// @Failure 404 {object} map[string]string "页面不存在"
// @Router /api/shop/pages/{slug} [get]
func (ctrl *CMSController) PageBySlug(c *gin.Context) {
	page, err := ctrl.cmsService.GetPublishedPage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "页面不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": page})
}

// Banners
// @Summary 店面横幅
// @Tags CMS (内容模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "横幅列表"
// @Router /api/shop/banners [get]
func (ctrl *CMSController) Banners(c *gin.Context) {
	banners, err := ctrl.cmsService.ListBanners(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": banners})
}

// ==================== 后台页面管理 ====================

// ListPages
// @Summary 页面列表（后台，含未发布）
// @Tags CMS (内容模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "页面列表"
// @Router /api/manage/pages [get]
func (ctrl *CMSController) ListPages(c *gin.Context) {
	pages, err := ctrl.cmsService.ListPages(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": pages})
}

// CreatePage
// @Summary 新建页面
// @Tags CMS (内容模块)
// @Accept json
// @Produce json
// @Param body body dto.PageRequest true "页面内容"
// @Success 200 {object} map[string]interface{} "新建的页面"
// @Router /api/manage/pages [post]
func (ctrl *CMSController) CreatePage(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	page := &model.Page{
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
	}
	if req.IsPublished != nil {
		page.IsPublished = *req.IsPublished
	}

	if err := ctrl.cmsService.CreatePage(c.Request.Context(), page); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "新建失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "新建成功", "data": page})
}

// UpdatePage
// @Summary 更新页面
// @Tags CMS (内容模块)
// @Accept json
// @Produce json
// @Param slug path string true "页面 slug"
// @Param body body dto.PageRequest true "页面内容"
// @Success 200 {object} map[string]interface{} "更新后的页面"
// @Router /api/manage/pages/{slug} [put]
func (ctrl *CMSController) UpdatePage(c *gin.Context) {
	var req dto.PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	page, err := ctrl.cmsService.GetPage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 404, "message": "页面不存在"})
		return
	}

	page.Title = req.Title
	page.Content = req.Content
	if req.IsPublished != nil {
		page.IsPublished = *req.IsPublished
	}

	if err := ctrl.cmsService.UpdatePage(c.Request.Context(), page); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "更新失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "更新成功", "data": page})
}

// DeletePage
// @Summary 删除页面
// @Tags CMS (内容模块)
// @Produce json
// @Param id path int true "页面 ID"
// @Success 200 {object} map[string]string "删除成功"
// @Router /api/manage/pages/{id} [delete]
func (ctrl *CMSController) DeletePage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}
	if err := ctrl.cmsService.DeletePage(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "删除成功"})
}

// ==================== 后台横幅管理 ====================

// CreateBanner
// @Summary 新建横幅
// @Tags CMS (内容模块)
// @Accept json
// @Produce json
// @Param body body dto.BannerRequest true "横幅内容"
// @Success 200 {object} map[string]interface{} "新建的横幅"
// @Router /api/manage/banners [post]
func (ctrl *CMSController) CreateBanner(c *gin.Context) {
	var req dto.BannerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	banner := &model.Banner{
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}

	if err := ctrl.cmsService.CreateBanner(c.Request.Context(), banner); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "新建失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "新建成功", "data": banner})
}

// ListBanners
// @Summary 横幅列表（后台，含停用）
// @Tags CMS (内容模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "横幅列表"
// @Router /api/manage/banners [get]
func (ctrl *CMSController) ListBanners(c *gin.Context) {
	banners, err := ctrl.cmsService.ListBanners(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": banners})
}

// DeleteBanner
// @Summary 删除横幅
// @Tags CMS (内容模块)
// @Produce json
// @Param id path int true "横幅 ID"
// @Success 200 {object} map[string]string "删除成功"
// @Router /api/manage/banners/{id} [delete]
func (ctrl *CMSController) DeleteBanner(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}
	if err := ctrl.cmsService.DeleteBanner(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "删除成功"})
}
