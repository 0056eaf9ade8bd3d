// Package memstore 账本的内存存储实现
//
// 用于测试与本地运行（storage.driver: memory）。所有写入在账本写锁
// 之后进行，这里的互斥锁只保护 map 自身的并发访问。
package memstore

import (
	"context"
	"sync"

	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/model"
)

// Store 内存存储
type Store struct {
	mu sync.RWMutex

	campaigns    map[uint64]*model.CampaignModel
	campaignIds  []uint64 // 保持插入顺序
	creators     map[string]*model.CreatorModel
	creatorAddrs []string
	receipts     map[uint64]*model.SupportReceiptModel
	receiptIds   []uint64
	chainEvents  map[chainEventKey]*model.ChainEventModel

	nextCampaignId uint64
	nextTokenId    uint64
	lastBlock      uint64
}

type chainEventKey struct {
	txHash   string
	logIndex uint
}

// New 创建内存存储
func New() *Store {
	return &Store{
		campaigns:   make(map[uint64]*model.CampaignModel),
		creators:    make(map[string]*model.CreatorModel),
		receipts:    make(map[uint64]*model.SupportReceiptModel),
		chainEvents: make(map[chainEventKey]*model.ChainEventModel),
	}
}

// Atomically 内存实现没有事务，直接执行
//
// 原子性由账本写锁保证；调用方遵循先校验后写入，中途不会失败。
func (s *Store) Atomically(ctx context.Context, fn func(ledger.Store) error) error {
	return fn(s)
}

// CreateCampaign 创建活动，分配自增ID
func (s *Store) CreateCampaign(ctx context.Context, c *model.CampaignModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCampaignId++
	c.Id = s.nextCampaignId

	clone := *c
	s.campaigns[c.Id] = &clone
	s.campaignIds = append(s.campaignIds, c.Id)
	return nil
}

// GetCampaign 获取活动
func (s *Store) GetCampaign(ctx context.Context, id uint64) (*model.CampaignModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[id]
	if !ok {
		return nil, ledger.ErrCampaignNotFound
	}
	clone := *c
	return &clone, nil
}

// GetCampaignByChainId 根据链上ID获取活动
func (s *Store) GetCampaignByChainId(ctx context.Context, chainId uint64) (*model.CampaignModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.campaignIds {
		c := s.campaigns[id]
		if c.ChainCampaignId == chainId && chainId != 0 {
			clone := *c
			return &clone, nil
		}
	}
	return nil, ledger.ErrCampaignNotFound
}

// ListCampaigns 按插入顺序返回全部活动
func (s *Store) ListCampaigns(ctx context.Context) ([]model.CampaignModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CampaignModel, 0, len(s.campaignIds))
	for _, id := range s.campaignIds {
		out = append(out, *s.campaigns[id])
	}
	return out, nil
}

// ListCampaignsByStatus 按状态过滤活动
func (s *Store) ListCampaignsByStatus(ctx context.Context, status model.CampaignStatus) ([]model.CampaignModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.CampaignModel
	for _, id := range s.campaignIds {
		if s.campaigns[id].Status == status {
			out = append(out, *s.campaigns[id])
		}
	}
	return out, nil
}

// AddCampaignSupport 累加活动筹款金额与支持人次
func (s *Store) AddCampaignSupport(ctx context.Context, id uint64, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return ledger.ErrCampaignNotFound
	}
	c.RaisedAmount += amount
	c.SupporterCount++
	return nil
}

// SetCampaignStatus 更新活动状态
func (s *Store) SetCampaignStatus(ctx context.Context, id uint64, status model.CampaignStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.campaigns[id]
	if !ok {
		return ledger.ErrCampaignNotFound
	}
	c.Status = status
	return nil
}

// GetCreator 获取创作者档案，地址需已归一化
func (s *Store) GetCreator(ctx context.Context, address string) (*model.CreatorModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.creators[address]
	if !ok {
		return nil, ledger.ErrCreatorNotFound
	}
	clone := *c
	return &clone, nil
}

// ListCreators 按插入顺序返回全部创作者
func (s *Store) ListCreators(ctx context.Context) ([]model.CreatorModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CreatorModel, 0, len(s.creatorAddrs))
	for _, addr := range s.creatorAddrs {
		out = append(out, *s.creators[addr])
	}
	return out, nil
}

// CreateCreator 创建创作者档案
func (s *Store) CreateCreator(ctx context.Context, c *model.CreatorModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.creators[c.Address]; exists {
		return nil
	}
	clone := *c
	s.creators[c.Address] = &clone
	s.creatorAddrs = append(s.creatorAddrs, c.Address)
	return nil
}

// UpdateCreator 整体更新创作者档案
func (s *Store) UpdateCreator(ctx context.Context, c *model.CreatorModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creators[c.Address]; !ok {
		return ledger.ErrCreatorNotFound
	}
	clone := *c
	s.creators[c.Address] = &clone
	return nil
}

// MintReceipt 铸造支持凭证
//
// TokenId 为0时由计数器分配，保证严格单调且不重复。
func (s *Store) MintReceipt(ctx context.Context, r *model.SupportReceiptModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.TokenId == 0 {
		s.nextTokenId++
		r.TokenId = s.nextTokenId
	} else if r.TokenId > s.nextTokenId {
		s.nextTokenId = r.TokenId
	}

	clone := *r
	s.receipts[r.TokenId] = &clone
	s.receiptIds = append(s.receiptIds, r.TokenId)
	return nil
}

// HasReceipt 判断地址是否持有活动凭证
func (s *Store) HasReceipt(ctx context.Context, owner string, campaignId uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.receiptIds {
		r := s.receipts[id]
		if r.Owner == owner && r.CampaignId == campaignId {
			return true, nil
		}
	}
	return false, nil
}

// ListReceipts 获取活动的全部凭证
func (s *Store) ListReceipts(ctx context.Context, campaignId uint64) ([]model.SupportReceiptModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.SupportReceiptModel
	for _, id := range s.receiptIds {
		if s.receipts[id].CampaignId == campaignId {
			out = append(out, *s.receipts[id])
		}
	}
	return out, nil
}

// HasChainEvent 链上事件是否已处理过
func (s *Store) HasChainEvent(ctx context.Context, txHash string, logIndex uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.chainEvents[chainEventKey{txHash: txHash, logIndex: logIndex}]
	return ok, nil
}

// SaveChainEvent 记录链上事件
func (s *Store) SaveChainEvent(ctx context.Context, e *model.ChainEventModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *e
	s.chainEvents[chainEventKey{txHash: e.TxHash, logIndex: e.LogIndex}] = &clone
	if e.BlockNum > s.lastBlock {
		s.lastBlock = e.BlockNum
	}
	return nil
}

// LastProcessedBlock 最近处理过的区块号
func (s *Store) LastProcessedBlock(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastBlock, nil
}

// Ping 健康检查，内存存储恒为可用
func (s *Store) Ping(ctx context.Context) error {
	return nil
}
