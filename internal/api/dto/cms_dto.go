package dto

// ==================== 页面 ====================

// PageRequest 新建/更新页面请求
type PageRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"omitempty,max=220"`
	Content     string `json:"content"`
	IsPublished *bool  `json:"is_published"`
}

// ==================== 横幅 ====================

// BannerRequest 新建/更新横幅请求
type BannerRequest struct {
	Title     string `json:"title" binding:"required,max=200"`
	ImageURL  string `json:"image_url" binding:"required,max=500"`
	LinkURL   string `json:"link_url" binding:"omitempty,max=500"`
	SortOrder int    `json:"sort_order"`
	IsActive  *bool  `json:"is_active"`
}
