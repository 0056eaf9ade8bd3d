package model

import (
	"time"
)

// CampaignModel 众筹活动模型
type CampaignModel struct {
	Id        uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 基本信息
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	// 众筹信息
	GoalAmount     float64 `json:"goalAmount" gorm:"not null"`
	RaisedAmount   float64 `json:"raisedAmount" gorm:"default:0"`
	SupporterCount int64   `json:"supporterCount" gorm:"default:0"`

	// 时间信息：duration 统一以天为单位，deadline = createdAt + duration*24h
	DurationDays int64     `json:"duration" gorm:"not null"`
	Deadline     time.Time `json:"deadline" gorm:"not null"`

	// 状态
	Status CampaignStatus `json:"status" gorm:"default:'active'"`

	// 创建者信息（地址统一小写存储）
	CreatorAddress string `json:"creatorAddress" gorm:"not null;index"`

	// 区块链信息
	ChainCampaignId uint64 `json:"chainCampaignId,omitempty" gorm:"index"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"    // 进行中
	CampaignStatusCompleted CampaignStatus = "completed" // 已完成
	CampaignStatusCancelled CampaignStatus = "cancelled" // 已取消
)

// Terminal 是否为终态，终态活动不再接受任何变更
func (s CampaignStatus) Terminal() bool {
	return s == CampaignStatusCompleted || s == CampaignStatusCancelled
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
