package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/credvault/cvs/internal/ethereum"
	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/logger"
	"github.com/credvault/cvs/internal/model"
)

// Processor 链上事件处理器，把合约事件回放进账本
//
// 以 txHash+logIndex 去重；去重记录与账本变更在同一事务内落库，
// 中途崩溃后重扫不会重复记账。
type Processor struct {
	ledger *ledger.Ledger
	store  ledger.Store
}

// NewProcessor 创建事件处理器
func NewProcessor(l *ledger.Ledger, store ledger.Store) *Processor {
	return &Processor{
		ledger: l,
		store:  store,
	}
}

// Process 按事件类型分发
func (p *Processor) Process(ctx context.Context, parsed interface{}) error {
	switch ev := parsed.(type) {
	case *ethereum.CampaignCreatedEvent:
		return p.processCampaignCreated(ctx, ev)
	case *ethereum.SupportReceivedEvent:
		return p.processSupportReceived(ctx, ev)
	default:
		return fmt.Errorf("unsupported event type %T", parsed)
	}
}

// processCampaignCreated 处理链上活动创建
func (p *Processor) processCampaignCreated(ctx context.Context, ev *ethereum.CampaignCreatedEvent) error {
	seen, err := p.store.HasChainEvent(ctx, ev.TxHash, ev.LogIndex)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	record, err := chainEventRecord("CampaignCreated", ev.TxHash, ev.LogIndex, ev.BlockNum, ev)
	if err != nil {
		return err
	}

	campaign, err := p.ledger.RecordChainCampaign(ctx, ledger.ChainCampaignInput{
		ChainCampaignId: ev.CampaignId,
		Creator:         ev.Creator,
		Title:           ev.Title,
		GoalAmount:      ev.GoalAmount,
		Deadline:        ev.Deadline,
		TxHash:          ev.TxHash,
		ChainEvent:      record,
	})
	if err != nil {
		return fmt.Errorf("failed to record chain campaign %d: %w", ev.CampaignId, err)
	}

	logger.Info("Processed CampaignCreated: chain campaign %d -> local campaign %d", ev.CampaignId, campaign.Id)
	return nil
}

// processSupportReceived 处理链上支持事件
func (p *Processor) processSupportReceived(ctx context.Context, ev *ethereum.SupportReceivedEvent) error {
	seen, err := p.store.HasChainEvent(ctx, ev.TxHash, ev.LogIndex)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	// 支持事件必须晚于对应的活动创建事件
	campaign, err := p.ledger.GetCampaignByChainId(ctx, ev.CampaignId)
	if err != nil {
		return fmt.Errorf("chain campaign %d not yet indexed: %w", ev.CampaignId, err)
	}

	record, err := chainEventRecord("SupportReceived", ev.TxHash, ev.LogIndex, ev.BlockNum, ev)
	if err != nil {
		return err
	}

	receipt, err := p.ledger.Support(ctx, ledger.SupportInput{
		CampaignId: campaign.Id,
		Supporter:  ev.Supporter,
		Amount:     ev.Amount,
		TokenURI:   ev.TokenURI,
		TokenId:    ev.TokenId,
		TxHash:     ev.TxHash,
		BlockNum:   ev.BlockNum,
		LogIndex:   ev.LogIndex,
		ChainEvent: record,
	})
	if err != nil {
		return fmt.Errorf("failed to apply support for chain campaign %d: %w", ev.CampaignId, err)
	}

	logger.Info("Processed SupportReceived: %f ETH from %s, token %d", ev.Amount, ev.Supporter, receipt.TokenId)
	return nil
}

// chainEventRecord 构造事件去重记录
func chainEventRecord(eventType, txHash string, logIndex uint, blockNum uint64, payload interface{}) (*model.ChainEventModel, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &model.ChainEventModel{
		EventType: eventType,
		TxHash:    txHash,
		LogIndex:  logIndex,
		BlockNum:  blockNum,
		Payload:   string(raw),
	}, nil
}
