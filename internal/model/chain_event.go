package model

import (
	"time"
)

// ChainEventModel 链上事件记录，用于断点续扫与幂等去重
type ChainEventModel struct {
	Id        uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"createdAt"`

	EventType string `json:"eventType" gorm:"not null"`
	TxHash    string `json:"txHash" gorm:"not null;index:idx_chain_event_tx,unique"`
	LogIndex  uint   `json:"logIndex" gorm:"index:idx_chain_event_tx,unique"`
	BlockNum  uint64 `json:"blockNum" gorm:"not null;index"`
	Payload   string `json:"payload" gorm:"type:text"`
}

// TableName 自定义表名
func (ChainEventModel) TableName() string {
	return "chain_event"
}
