package ledger

import (
	"context"

	"github.com/credvault/cvs/internal/model"
)

// Store 账本存储抽象
//
// 账本逻辑只依赖该接口，Postgres 与内存实现可互换，语义一致。
// 查询不到记录时返回 ErrCampaignNotFound / ErrCreatorNotFound。
type Store interface {
	// Atomically 在单个事务内执行 fn，fn 返回错误时全部回滚。
	// 内存实现没有回滚，依赖调用方先校验后写入。
	Atomically(ctx context.Context, fn func(Store) error) error

	// 活动
	CreateCampaign(ctx context.Context, c *model.CampaignModel) error
	GetCampaign(ctx context.Context, id uint64) (*model.CampaignModel, error)
	GetCampaignByChainId(ctx context.Context, chainId uint64) (*model.CampaignModel, error)
	ListCampaigns(ctx context.Context) ([]model.CampaignModel, error)
	ListCampaignsByStatus(ctx context.Context, status model.CampaignStatus) ([]model.CampaignModel, error)
	AddCampaignSupport(ctx context.Context, id uint64, amount float64) error
	SetCampaignStatus(ctx context.Context, id uint64, status model.CampaignStatus) error

	// 创作者
	GetCreator(ctx context.Context, address string) (*model.CreatorModel, error)
	ListCreators(ctx context.Context) ([]model.CreatorModel, error)
	CreateCreator(ctx context.Context, c *model.CreatorModel) error
	UpdateCreator(ctx context.Context, c *model.CreatorModel) error

	// 支持凭证
	MintReceipt(ctx context.Context, r *model.SupportReceiptModel) error
	HasReceipt(ctx context.Context, owner string, campaignId uint64) (bool, error)
	ListReceipts(ctx context.Context, campaignId uint64) ([]model.SupportReceiptModel, error)

	// 链上事件
	HasChainEvent(ctx context.Context, txHash string, logIndex uint) (bool, error)
	SaveChainEvent(ctx context.Context, e *model.ChainEventModel) error
	LastProcessedBlock(ctx context.Context) (uint64, error)

	// Ping 存储健康检查
	Ping(ctx context.Context) error
}
