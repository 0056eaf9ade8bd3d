package event

import (
	"context"
	"sync"
	"time"

	"github.com/credvault/cvs/internal/ethereum"
	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/logger"
	coretypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
)

// 单次扫描的最大区块跨度，避免一次 FilterLogs 覆盖过多区块
const maxBlockBatch = 1000

// Monitor 区块链事件监控器
//
// 周期性扫描 CredVault 合约日志，按活动分组后并行回放进账本；
// 同一活动的事件保持链上顺序串行处理。
type Monitor struct {
	client    *ethereum.Client
	store     ledger.Store
	processor *Processor

	pollInterval time.Duration
	lastBlock    uint64
	mu           sync.RWMutex // 保护 lastBlock 的并发访问

	retryCount      int
	backoffDuration time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewMonitor 创建事件监控器
func NewMonitor(client *ethereum.Client, store ledger.Store, l *ledger.Ledger, pollInterval time.Duration) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		client:          client,
		store:           store,
		processor:       NewProcessor(l, store),
		pollInterval:    pollInterval,
		backoffDuration: time.Second * 5, // 初始退避时间5秒
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start 启动监控
func (m *Monitor) Start() error {
	// 测试 RPC 连接
	currentBlock, err := m.client.GetLatestBlock(m.ctx)
	if err != nil {
		return err
	}
	logger.Info("Connected to blockchain, current block: %d", currentBlock)

	// 获取最后处理的区块号，落后于配置起点时从配置起点开始
	lastBlock, err := m.store.LastProcessedBlock(m.ctx)
	if err != nil {
		logger.Warn("Failed to load last processed block, starting from config: %v", err)
		lastBlock = 0
	}
	if lastBlock < m.client.GetStartBlock() {
		lastBlock = m.client.GetStartBlock()
	}

	m.mu.Lock()
	m.lastBlock = lastBlock
	m.mu.Unlock()

	logger.Info("Starting blockchain monitor from block %d", lastBlock)

	// 启动监控循环
	go m.loop()
	return nil
}

// Stop 停止监控
func (m *Monitor) Stop() {
	logger.Info("Stopping blockchain event monitor")
	m.cancel()
}

// loop 监控循环
func (m *Monitor) loop() {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			logger.Info("Monitor stopped")
			return
		case <-ticker.C:
			if err := m.sync(); err != nil {
				m.retryCount++
				logger.Error("Error syncing blocks (attempt %d): %v", m.retryCount, err)

				// 指数退避，最长5分钟
				if !m.waitBackoff() {
					logger.Info("Monitor stopped")
					return
				}
				if m.backoffDuration < time.Minute*5 {
					m.backoffDuration *= 2
				}
				continue
			}
			m.retryCount = 0
			m.backoffDuration = time.Second * 5
		}
	}
}

// waitBackoff 退避等待，监控停止时立即返回 false
func (m *Monitor) waitBackoff() bool {
	timer := time.NewTimer(m.backoffDuration)
	defer timer.Stop()

	select {
	case <-m.ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// sync 扫描并处理新区块
func (m *Monitor) sync() error {
	currentBlock, err := m.client.GetLatestBlock(m.ctx)
	if err != nil {
		return err
	}

	m.mu.RLock()
	last := m.lastBlock
	m.mu.RUnlock()

	from, to, ok := scanRange(currentBlock, last, m.client.GetConfirmations())
	if !ok {
		return nil
	}

	logs, err := m.client.GetLogs(m.ctx, from, to)
	if err != nil {
		return err
	}

	if len(logs) > 0 {
		if err := m.processLogs(logs); err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.lastBlock = to
	m.mu.Unlock()

	logger.Debug("Synced blocks %d-%d, %d logs", from, to, len(logs))
	return nil
}

// scanRange 计算下一批扫描的区块区间
//
// 链高不足确认区块数时（例如刚起的开发链）没有可处理区块，返回 ok=false，
// 避免无符号减法回绕把游标推过链头。
func scanRange(current, last uint64, confirmations int) (from, to uint64, ok bool) {
	if current < uint64(confirmations) {
		return 0, 0, false
	}

	// 留出确认区块数，避免处理可能被重组的区块
	confirmed := current - uint64(confirmations)

	from = last + 1
	if from > confirmed {
		return 0, 0, false
	}

	to = confirmed
	if to-from+1 > maxBlockBatch {
		to = from + maxBlockBatch - 1
	}
	return from, to, true
}

// processLogs 按活动分组并行处理日志
func (m *Monitor) processLogs(logs []coretypes.Log) error {
	// topic[1] 是 campaignId，两类事件一致
	groups := make(map[string][]coretypes.Log)
	for _, lg := range logs {
		if len(lg.Topics) < 2 {
			continue
		}
		key := lg.Topics[1].Hex()
		groups[key] = append(groups[key], lg)
	}

	pool, err := ants.NewPool(len(groups))
	if err != nil {
		return err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)

	for _, group := range groups {
		group := group
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			// 组内按链上顺序串行处理
			for _, lg := range group {
				if err := m.processLog(lg); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					return
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			errMu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			errMu.Unlock()
		}
	}

	wg.Wait()
	return firstErr
}

// processLog 解析并回放单条日志
func (m *Monitor) processLog(lg coretypes.Log) error {
	parsed, err := m.client.ParseLog(lg)
	if err != nil {
		// 未知事件签名直接跳过
		logger.Warn("Skipping unparseable log in tx %s: %v", lg.TxHash.Hex(), err)
		return nil
	}

	return m.processor.Process(m.ctx, parsed)
}
