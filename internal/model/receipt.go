package model

import (
	"time"
)

// SupportReceiptModel 支持凭证（NFT）模型
//
// tokenId 全局唯一且单调递增；campaignId 关联一经铸造不可变更。
type SupportReceiptModel struct {
	TokenId   uint64    `json:"tokenId" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"createdAt"`

	CampaignId uint64  `json:"campaignId" gorm:"not null;index"`
	Owner      string  `json:"owner" gorm:"not null;index"`
	TokenURI   string  `json:"tokenUri"`
	Amount     float64 `json:"amount" gorm:"not null"`

	// 区块链信息（链上铸造时填写）
	TxHash   string `json:"txHash,omitempty" gorm:"index"`
	BlockNum uint64 `json:"blockNum,omitempty"`
	LogIndex uint   `json:"logIndex,omitempty"`
}

// TableName 自定义表名
func (SupportReceiptModel) TableName() string {
	return "support_receipt"
}
