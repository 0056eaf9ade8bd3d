// Package gormstore 账本的 Postgres 存储实现
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/credvault/cvs/internal/config"
	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Store Postgres 存储
type Store struct {
	db *gorm.DB
}

// Init 连接数据库并自动迁移
func Init(cfg config.DatabaseConfig) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent), // 禁用 GORM 的默认日志输出
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true, // 禁用复数表名
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 自动迁移
	if err := db.AutoMigrate(
		&model.CampaignModel{},
		&model.CreatorModel{},
		&model.SupportReceiptModel{},
		&model.ChainEventModel{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// New 包装已有连接，测试用
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Atomically 在数据库事务内执行 fn
func (s *Store) Atomically(ctx context.Context, fn func(ledger.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// CreateCampaign 创建活动
func (s *Store) CreateCampaign(ctx context.Context, c *model.CampaignModel) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// GetCampaign 获取活动
func (s *Store) GetCampaign(ctx context.Context, id uint64) (*model.CampaignModel, error) {
	var c model.CampaignModel
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrCampaignNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetCampaignByChainId 根据链上ID获取活动
//
// HTTP 创建的活动 chain_campaign_id 为零值，不参与链上匹配。
func (s *Store) GetCampaignByChainId(ctx context.Context, chainId uint64) (*model.CampaignModel, error) {
	if chainId == 0 {
		return nil, ledger.ErrCampaignNotFound
	}

	var c model.CampaignModel
	err := s.db.WithContext(ctx).
		Where("chain_campaign_id = ?", chainId).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrCampaignNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCampaigns 按创建顺序返回全部活动
func (s *Store) ListCampaigns(ctx context.Context) ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// ListCampaignsByStatus 按状态过滤活动
func (s *Store) ListCampaignsByStatus(ctx context.Context, status model.CampaignStatus) ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// AddCampaignSupport 累加筹款金额与支持人次
func (s *Store) AddCampaignSupport(ctx context.Context, id uint64, amount float64) error {
	result := s.db.WithContext(ctx).
		Model(&model.CampaignModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"raised_amount":   gorm.Expr("raised_amount + ?", amount),
			"supporter_count": gorm.Expr("supporter_count + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrCampaignNotFound
	}
	return nil
}

// SetCampaignStatus 更新活动状态
func (s *Store) SetCampaignStatus(ctx context.Context, id uint64, status model.CampaignStatus) error {
	result := s.db.WithContext(ctx).
		Model(&model.CampaignModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrCampaignNotFound
	}
	return nil
}

// GetCreator 获取创作者档案，地址需已归一化
func (s *Store) GetCreator(ctx context.Context, address string) (*model.CreatorModel, error) {
	var c model.CreatorModel
	if err := s.db.WithContext(ctx).Where("address = ?", address).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrCreatorNotFound
		}
		return nil, err
	}
	return &c, nil
}

// ListCreators 按创建顺序返回全部创作者
func (s *Store) ListCreators(ctx context.Context) ([]model.CreatorModel, error) {
	var creators []model.CreatorModel
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&creators).Error; err != nil {
		return nil, err
	}
	return creators, nil
}

// CreateCreator 创建创作者档案
func (s *Store) CreateCreator(ctx context.Context, c *model.CreatorModel) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// UpdateCreator 整体更新创作者档案
func (s *Store) UpdateCreator(ctx context.Context, c *model.CreatorModel) error {
	return s.db.WithContext(ctx).Save(c).Error
}

// MintReceipt 铸造支持凭证，TokenId 为0时由自增主键分配
func (s *Store) MintReceipt(ctx context.Context, r *model.SupportReceiptModel) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// HasReceipt 判断地址是否持有活动凭证
func (s *Store) HasReceipt(ctx context.Context, owner string, campaignId uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.SupportReceiptModel{}).
		Where("owner = ? AND campaign_id = ?", owner, campaignId).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListReceipts 获取活动的全部凭证
func (s *Store) ListReceipts(ctx context.Context, campaignId uint64) ([]model.SupportReceiptModel, error) {
	var receipts []model.SupportReceiptModel
	err := s.db.WithContext(ctx).
		Where("campaign_id = ?", campaignId).
		Order("token_id ASC").
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// HasChainEvent 链上事件是否已处理过
func (s *Store) HasChainEvent(ctx context.Context, txHash string, logIndex uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.ChainEventModel{}).
		Where("tx_hash = ? AND log_index = ?", txHash, logIndex).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveChainEvent 记录链上事件
func (s *Store) SaveChainEvent(ctx context.Context, e *model.ChainEventModel) error {
	return s.db.WithContext(ctx).Create(e).Error
}

// LastProcessedBlock 最近处理过的区块号
func (s *Store) LastProcessedBlock(ctx context.Context) (uint64, error) {
	var block uint64
	err := s.db.WithContext(ctx).
		Model(&model.ChainEventModel{}).
		Select("COALESCE(MAX(block_num), 0)").
		Scan(&block).Error
	if err != nil {
		return 0, err
	}
	return block, nil
}

// Ping 数据库健康检查
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
