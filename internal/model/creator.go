package model

import (
	"time"
)

// CreatorModel 创作者档案模型
type CreatorModel struct {
	Id        uint64    `json:"-" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 身份标识（统一小写存储，大小写不敏感匹配）
	Address string `json:"address" gorm:"not null;uniqueIndex"`

	// 展示信息
	Name        string            `json:"name"`
	Bio         string            `json:"bio"`
	Avatar      string            `json:"avatar"`
	SocialLinks map[string]string `json:"socialLinks" gorm:"serializer:json"`

	// 累计信息：只增不减
	CampaignCount   int64   `json:"campaignCount" gorm:"default:0"`
	TotalRaised     float64 `json:"totalRaised" gorm:"default:0"`
	ReputationScore float64 `json:"reputationScore" gorm:"default:0"`
}

// TableName 自定义表名
func (CreatorModel) TableName() string {
	return "creator"
}
