package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/api/dto"
	"nutriharvest_mall_v1_202608/internal/middleware"
	"nutriharvest_mall_v1_202608/internal/model"
	"nutriharvest_mall_v1_202608/internal/service"
)

// NotificationController 站内通知
type NotificationController struct {
	notifyService *service.NotificationService
}

// NewNotificationController 工厂方法
func NewNotificationController(s *service.NotificationService) *NotificationController {
	return &NotificationController{notifyService: s}
}

// List
// @Summary 我的通知
// @Tags Notification (通知模块)
// @Produce json
// @Param unread query bool false "只看未读"
// @Success 200 {object} map[string]interface{} "通知列表"
// @Router /api/notifications [get]
func (ctrl *NotificationController) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	unreadOnly := c.Query("unread") == "true"

	items, total, err := ctrl.notifyService.ListByUser(c.Request.Context(), middleware.GetUserID(c), unreadOnly, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data":    gin.H{"list": items, "total": total},
	})
}

// MarkRead
// @Summary 标记通知已读
// @Tags Notification (通知模块)
// @Produce json
// @Param id path int true "通知 ID"
// @Success 200 {object} map[string]string "已读"
// @Router /api/notifications/{id}/read [post]
func (ctrl *NotificationController) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "id 必须是数字"})
		return
	}

	if err := ctrl.notifyService.MarkRead(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "标记失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "已读"})
}

// SaveTemplate
// @Summary 保存通知模板
// @Description 按名称新建或覆盖模板，Body 中使用 {{key}} 占位符
// @Tags Notification (通知模块)
// @Accept json
// @Produce json
// @Param body body dto.NotificationTemplateRequest true "模板内容"
// @Success 200 {object} map[string]interface{} "保存后的模板"
// @Router /api/manage/notification-templates [put]
func (ctrl *NotificationController) SaveTemplate(c *gin.Context) {
	var req dto.NotificationTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "参数错误", "detail": err.Error()})
		return
	}

	tpl := &model.NotificationTemplate{
		Name:     req.Name,
		Channel:  model.NotifyChannel(req.Channel),
		Subject:  req.Subject,
		Body:     req.Body,
		IsActive: true,
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := ctrl.notifyService.SaveTemplate(c.Request.Context(), tpl); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "保存失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "保存成功", "data": tpl})
}
