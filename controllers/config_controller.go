package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dealspot/dealspot/config"
	"github.com/dealspot/dealspot/utils"
)

// ConfigController serves dynamic, environment-driven UI configuration.
type ConfigController struct{}

func NewConfigController() *ConfigController { return &ConfigController{} }

// GetFooter returns footer configuration loaded from environment with defaults.
func (c *ConfigController) GetFooter(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"about": gin.H{
			"title": cfg.FooterAboutTitle,
			"html":  cfg.FooterAboutHTML,
		},
		"links": gin.H{
			"title": cfg.FooterLinksTitle,
			"items": []gin.H{
				{"name": cfg.FooterLink1Name, "url": cfg.FooterLink1URL},
				{"name": cfg.FooterLink2Name, "url": cfg.FooterLink2URL},
				{"name": cfg.FooterLink3Name, "url": cfg.FooterLink3URL},
			},
		},
		"contact": gin.H{
			"title":      cfg.FooterContactTitle,
			"email_link": cfg.FooterEmailLink,
		},
	})
}

// GetNotice returns announcement/notice content configured via config.
func (c *ConfigController) GetNotice(ctx *gin.Context) {
	cfg := config.Get()
	utils.Success(ctx, gin.H{
		"title": cfg.NoticeTitle,
		"html":  cfg.NoticeHTML,
	})
}
