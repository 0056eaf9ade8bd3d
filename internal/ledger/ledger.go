package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/credvault/cvs/internal/logger"
	"github.com/credvault/cvs/internal/model"
)

// BaselineReputation 首次建活动时的声誉基线
const BaselineReputation = 100

// ReputationPolicy 声誉加分策略，必须随金额严格单调递增
type ReputationPolicy func(amount float64) float64

// DefaultReputationPolicy 默认策略：按金额等比例加分
func DefaultReputationPolicy(amount float64) float64 {
	return amount * 10
}

// Ledger 活动资金与声誉账本
//
// 三块状态（活动、支持凭证、创作者档案）由账本独占持有，
// 写路径串行执行，保证支持操作五步更新的原子性。
type Ledger struct {
	store       Store
	policy      ReputationPolicy
	subscribers []Subscriber

	// 写锁：串行化所有写操作，读操作不经过该锁
	mu sync.Mutex
}

// NewLedger 创建账本，policy 为 nil 时使用默认策略
func NewLedger(store Store, policy ReputationPolicy) *Ledger {
	if policy == nil {
		policy = DefaultReputationPolicy
	}
	return &Ledger{
		store:  store,
		policy: policy,
	}
}

// CreateCampaignInput 建活动输入
type CreateCampaignInput struct {
	Title          string
	Description    string
	GoalAmount     float64
	Duration       int64 // 天
	CreatorAddress string
}

// CreateCampaign 创建活动
//
// 校验全部通过后才写入，任一字段不合法则整体失败，不产生任何状态变更。
// 同时惰性创建创作者档案：campaignCount 加一，首个活动时声誉置为基线。
func (l *Ledger) CreateCampaign(ctx context.Context, in CreateCampaignInput) (*model.CampaignModel, error) {
	if err := validateCreateCampaign(in); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	campaign := &model.CampaignModel{
		Title:          in.Title,
		Description:    in.Description,
		GoalAmount:     in.GoalAmount,
		RaisedAmount:   0,
		SupporterCount: 0,
		DurationDays:   in.Duration,
		Deadline:       now.Add(time.Duration(in.Duration) * 24 * time.Hour),
		Status:         model.CampaignStatusActive,
		CreatorAddress: model.NormalizeAddress(in.CreatorAddress),
	}

	err := l.store.Atomically(ctx, func(s Store) error {
		if err := s.CreateCampaign(ctx, campaign); err != nil {
			return err
		}
		return l.accrueCampaignCreated(ctx, s, campaign.CreatorAddress)
	})
	if err != nil {
		return nil, internalErr(err)
	}

	l.notify(Notification{
		Type:       NotificationCampaignCreated,
		CampaignId: campaign.Id,
		Address:    campaign.CreatorAddress,
	})

	return campaign, nil
}

// ChainCampaignInput 链上活动同步输入
//
// 链上合约自带校验，这里不套用 HTTP 侧的文案长度约束。
type ChainCampaignInput struct {
	ChainCampaignId uint64
	Creator         string
	Title           string
	GoalAmount      float64
	Deadline        time.Time
	TxHash          string

	// ChainEvent 去重记录，与活动写入同一事务落库
	ChainEvent *model.ChainEventModel
}

// RecordChainCampaign 回放链上 CampaignCreated 事件
//
// 幂等：同一链上活动只落库一次。
func (l *Ledger) RecordChainCampaign(ctx context.Context, in ChainCampaignInput) (*model.CampaignModel, error) {
	if !model.IsValidAddress(in.Creator) {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "creator", Message: "creator must be a 0x-prefixed 40-digit hex address"},
		}}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, err := l.store.GetCampaignByChainId(ctx, in.ChainCampaignId); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrCampaignNotFound) {
		return nil, internalErr(err)
	}

	now := time.Now()
	durationDays := int64(in.Deadline.Sub(now).Hours() / 24)
	if durationDays < 1 {
		durationDays = 1
	}

	campaign := &model.CampaignModel{
		Title:           in.Title,
		GoalAmount:      in.GoalAmount,
		DurationDays:    durationDays,
		Deadline:        in.Deadline,
		Status:          model.CampaignStatusActive,
		CreatorAddress:  model.NormalizeAddress(in.Creator),
		ChainCampaignId: in.ChainCampaignId,
		TransactionHash: in.TxHash,
	}

	err := l.store.Atomically(ctx, func(s Store) error {
		if err := s.CreateCampaign(ctx, campaign); err != nil {
			return err
		}
		if err := l.accrueCampaignCreated(ctx, s, campaign.CreatorAddress); err != nil {
			return err
		}
		if in.ChainEvent != nil {
			return s.SaveChainEvent(ctx, in.ChainEvent)
		}
		return nil
	})
	if err != nil {
		return nil, internalErr(err)
	}

	l.notify(Notification{
		Type:       NotificationCampaignCreated,
		CampaignId: campaign.Id,
		Address:    campaign.CreatorAddress,
	})

	return campaign, nil
}

// GetCampaign 获取活动详情
func (l *Ledger) GetCampaign(ctx context.Context, id uint64) (*model.CampaignModel, error) {
	return l.store.GetCampaign(ctx, id)
}

// GetCampaignByChainId 根据链上活动ID获取本地活动
func (l *Ledger) GetCampaignByChainId(ctx context.Context, chainId uint64) (*model.CampaignModel, error) {
	return l.store.GetCampaignByChainId(ctx, chainId)
}

// ListCampaigns 获取活动列表，按创建顺序返回
func (l *Ledger) ListCampaigns(ctx context.Context) ([]model.CampaignModel, error) {
	return l.store.ListCampaigns(ctx)
}

// SupportInput 支持活动输入
//
// TokenId/TxHash 仅在回放链上事件时填写，API 侧铸造由存储层分配 tokenId。
type SupportInput struct {
	CampaignId uint64
	Supporter  string
	Amount     float64
	TokenURI   string

	TokenId  uint64
	TxHash   string
	BlockNum uint64
	LogIndex uint

	// ChainEvent 去重记录，与五步更新同一事务落库
	ChainEvent *model.ChainEventModel
}

// Support 接受一笔支持并铸造凭证
//
// 五步更新在写锁与存储事务内完成：查活动、累加 raisedAmount、
// supporterCount 加一、铸造凭证、累计创作者档案。要么全部生效要么全部不生效。
func (l *Ledger) Support(ctx context.Context, in SupportInput) (*model.SupportReceiptModel, error) {
	if err := validateSupport(in); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	campaign, err := l.store.GetCampaign(ctx, in.CampaignId)
	if err != nil {
		return nil, err
	}
	if campaign.Status.Terminal() {
		return nil, &ConflictError{Message: "campaign is no longer accepting support"}
	}

	receipt := &model.SupportReceiptModel{
		TokenId:    in.TokenId,
		CampaignId: campaign.Id,
		Owner:      model.NormalizeAddress(in.Supporter),
		TokenURI:   in.TokenURI,
		Amount:     in.Amount,
		TxHash:     in.TxHash,
		BlockNum:   in.BlockNum,
		LogIndex:   in.LogIndex,
	}

	err = l.store.Atomically(ctx, func(s Store) error {
		if err := s.AddCampaignSupport(ctx, campaign.Id, in.Amount); err != nil {
			return err
		}
		if err := s.MintReceipt(ctx, receipt); err != nil {
			return err
		}
		if err := l.accrueSupportReceived(ctx, s, campaign.CreatorAddress, in.Amount); err != nil {
			return err
		}
		if in.ChainEvent != nil {
			return s.SaveChainEvent(ctx, in.ChainEvent)
		}
		return nil
	})
	if err != nil {
		return nil, internalErr(err)
	}

	l.notify(Notification{
		Type:       NotificationSupportReceived,
		CampaignId: campaign.Id,
		Address:    receipt.Owner,
		Amount:     in.Amount,
	})
	l.notify(Notification{
		Type:       NotificationTokenMinted,
		CampaignId: campaign.Id,
		Address:    receipt.Owner,
		TokenId:    receipt.TokenId,
	})

	return receipt, nil
}

// HasReceipt 判断某地址是否持有某活动的支持凭证
func (l *Ledger) HasReceipt(ctx context.Context, owner string, campaignId uint64) (bool, error) {
	return l.store.HasReceipt(ctx, model.NormalizeAddress(owner), campaignId)
}

// ListReceipts 获取活动的全部支持凭证
func (l *Ledger) ListReceipts(ctx context.Context, campaignId uint64) ([]model.SupportReceiptModel, error) {
	if _, err := l.store.GetCampaign(ctx, campaignId); err != nil {
		return nil, err
	}
	return l.store.ListReceipts(ctx, campaignId)
}

// CancelCampaign 取消活动，只允许 active -> cancelled
func (l *Ledger) CancelCampaign(ctx context.Context, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	campaign, err := l.store.GetCampaign(ctx, id)
	if err != nil {
		return err
	}
	if campaign.Status.Terminal() {
		return &ConflictError{Message: "campaign is already in a terminal status"}
	}

	if err := l.store.SetCampaignStatus(ctx, id, model.CampaignStatusCancelled); err != nil {
		return internalErr(err)
	}
	return nil
}

// FinalizeExpired 将到期活动移入终态
//
// 达到目标 -> completed，未达目标且已过截止时间 -> cancelled。
// 返回发生状态变更的活动数量。
func (l *Ledger) FinalizeExpired(ctx context.Context, now time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	active, err := l.store.ListCampaignsByStatus(ctx, model.CampaignStatusActive)
	if err != nil {
		return 0, internalErr(err)
	}

	updated := 0
	for _, campaign := range active {
		var next model.CampaignStatus
		switch {
		case campaign.RaisedAmount >= campaign.GoalAmount:
			next = model.CampaignStatusCompleted
		case now.After(campaign.Deadline):
			next = model.CampaignStatusCancelled
		default:
			continue
		}

		if err := l.store.SetCampaignStatus(ctx, campaign.Id, next); err != nil {
			logger.Error("Failed to finalize campaign %d: %v", campaign.Id, err)
			continue
		}
		logger.Info("Campaign %d moved from %s to %s", campaign.Id, campaign.Status, next)
		updated++
	}

	return updated, nil
}

// EnsureProfile 幂等获取或创建创作者档案
func (l *Ledger) EnsureProfile(ctx context.Context, address string) (*model.CreatorModel, error) {
	if !model.IsValidAddress(address) {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "address", Message: "address must be a 0x-prefixed 40-digit hex address"},
		}}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	creator, err := l.ensureProfile(ctx, l.store, model.NormalizeAddress(address))
	if err != nil {
		return nil, internalErr(err)
	}
	return creator, nil
}

// GetProfile 获取创作者档案，地址大小写不敏感
func (l *Ledger) GetProfile(ctx context.Context, address string) (*model.CreatorModel, error) {
	return l.store.GetCreator(ctx, model.NormalizeAddress(address))
}

// ListProfiles 获取全部创作者档案
func (l *Ledger) ListProfiles(ctx context.Context) ([]model.CreatorModel, error) {
	return l.store.ListCreators(ctx)
}

// ProfileUpdate 档案展示信息更新，nil 字段表示不修改
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	Avatar      *string
	SocialLinks map[string]string
}

// UpsertProfile 创建或更新创作者档案展示信息
//
// 只改展示字段，不触碰 campaignCount/totalRaised/reputationScore。
// 返回值第二项表示本次是否新建了档案。
func (l *Ledger) UpsertProfile(ctx context.Context, address string, upd ProfileUpdate) (*model.CreatorModel, bool, error) {
	if err := validateProfileUpdate(address, upd); err != nil {
		return nil, false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	addr := model.NormalizeAddress(address)
	created := false

	creator, err := l.store.GetCreator(ctx, addr)
	if errors.Is(err, ErrCreatorNotFound) {
		creator = &model.CreatorModel{Address: addr}
		if err := l.store.CreateCreator(ctx, creator); err != nil {
			return nil, false, internalErr(err)
		}
		created = true
	} else if err != nil {
		return nil, false, err
	}

	if upd.Name != nil {
		creator.Name = *upd.Name
	}
	if upd.Bio != nil {
		creator.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		creator.Avatar = *upd.Avatar
	}
	if upd.SocialLinks != nil {
		creator.SocialLinks = upd.SocialLinks
	}

	if err := l.store.UpdateCreator(ctx, creator); err != nil {
		return nil, false, internalErr(err)
	}

	return creator, created, nil
}

// CampaignStats 活动统计信息
type CampaignStats struct {
	CampaignId           uint64  `json:"campaignId"`
	RaisedAmount         float64 `json:"raisedAmount"`
	GoalAmount           float64 `json:"goalAmount"`
	CompletionPercentage float64 `json:"completionPercentage"`
	SupporterCount       int64   `json:"supporterCount"`
	RemainingTime        string  `json:"remainingTime"`
	Status               string  `json:"status"`
}

// GetCampaignStats 获取活动统计信息
func (l *Ledger) GetCampaignStats(ctx context.Context, id uint64) (*CampaignStats, error) {
	campaign, err := l.store.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}

	percentage := float64(0)
	if campaign.GoalAmount > 0 {
		percentage = campaign.RaisedAmount / campaign.GoalAmount * 100
	}

	remaining := time.Duration(0)
	if campaign.Status == model.CampaignStatusActive && time.Now().Before(campaign.Deadline) {
		remaining = time.Until(campaign.Deadline)
	}

	return &CampaignStats{
		CampaignId:           campaign.Id,
		RaisedAmount:         campaign.RaisedAmount,
		GoalAmount:           campaign.GoalAmount,
		CompletionPercentage: percentage,
		SupporterCount:       campaign.SupporterCount,
		RemainingTime:        remaining.String(),
		Status:               string(campaign.Status),
	}, nil
}

// ensureProfile 在当前事务内获取或创建档案
func (l *Ledger) ensureProfile(ctx context.Context, s Store, addr string) (*model.CreatorModel, error) {
	creator, err := s.GetCreator(ctx, addr)
	if errors.Is(err, ErrCreatorNotFound) {
		creator = &model.CreatorModel{Address: addr}
		if err := s.CreateCreator(ctx, creator); err != nil {
			return nil, err
		}
		return creator, nil
	}
	if err != nil {
		return nil, err
	}
	return creator, nil
}

// accrueCampaignCreated 活动创建时的档案累计
func (l *Ledger) accrueCampaignCreated(ctx context.Context, s Store, addr string) error {
	creator, err := l.ensureProfile(ctx, s, addr)
	if err != nil {
		return err
	}

	creator.CampaignCount++
	if creator.CampaignCount == 1 {
		creator.ReputationScore = BaselineReputation
	}

	return s.UpdateCreator(ctx, creator)
}

// accrueSupportReceived 收到支持时的档案累计
func (l *Ledger) accrueSupportReceived(ctx context.Context, s Store, addr string, amount float64) error {
	creator, err := l.ensureProfile(ctx, s, addr)
	if err != nil {
		return err
	}

	creator.TotalRaised += amount
	creator.ReputationScore += l.policy(amount)

	return s.UpdateCreator(ctx, creator)
}
