package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== Page 静态页面 ====================

// Page CMS 页面（正文渲染由前端/模板层负责，这里只管数据）
type Page struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string         `gorm:"size:200;not null" json:"title"`
	Slug        string         `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Content     string         `gorm:"type:text" json:"content"`
	IsPublished bool           `gorm:"default:false;index" json:"is_published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Page) TableName() string { return "cms_pages" }

// ==================== Banner 首页横幅 ====================

// Banner 首页横幅
type Banner struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	ImageURL  string    `gorm:"size:500;not null" json:"image_url"`
	LinkURL   string    `gorm:"size:500" json:"link_url"`
	SortOrder int       `gorm:"default:0" json:"sort_order"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Banner) TableName() string { return "cms_banners" }
