package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nutriharvest_mall_v1_202608/internal/service"
)

// ReportController 报表与看板
type ReportController struct {
	reportService *service.ReportService
}

// NewReportController 工厂方法
func NewReportController(s *service.ReportService) *ReportController {
	return &ReportController{reportService: s}
}

func parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	var from, to time.Time
	var err error
	if v := c.Query("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "from 格式应为 YYYY-MM-DD"})
			return from, to, false
		}
	}
	if v := c.Query("to"); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "to 格式应为 YYYY-MM-DD"})
			return from, to, false
		}
		// 区间右端取当日结束
		to = to.AddDate(0, 0, 1)
	}
	return from, to, true
}

// Sales
// @Summary 销售汇总
// @Description 区间缺省为最近 30 天，取消单不计入
// @Tags Report (报表模块)
// @Produce json
// @Param from query string false "起始日期 YYYY-MM-DD"
// @Param to query string false "结束日期 YYYY-MM-DD"
// @Success 200 {object} map[string]interface{} "订单数/营收/优惠合计"
// @Router /api/manage/reports/sales [get]
func (ctrl *ReportController) Sales(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}

	summary, err := ctrl.reportService.SalesSummary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": summary})
}

// TopProducts
// @Summary 销量榜
// @Tags Report (报表模块)
// @Produce json
// @Param from query string false "起始日期 YYYY-MM-DD"
// @Param to query string false "结束日期 YYYY-MM-DD"
// @Param limit query int false "榜单长度，默认 10"
// @Success 200 {object} map[string]interface{} "销量前 N 的商品"
// @Router /api/manage/reports/top-products [get]
func (ctrl *ReportController) TopProducts(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, err := ctrl.reportService.TopProducts(c.Request.Context(), from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": rows})
}

// Dashboard
// @Summary 后台看板
// @Description 当日汇总 + 本月汇总 + 低库存清单
// @Tags Report (报表模块)
// @Produce json
// @Success 200 {object} map[string]interface{} "看板数据"
// @Router /api/manage/reports/dashboard [get]
func (ctrl *ReportController) Dashboard(c *gin.Context) {
	data, err := ctrl.reportService.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "查询失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "ok", "data": data})
}
