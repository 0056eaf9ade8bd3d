package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/credvault/cvs/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// weiPerEther 金额换算
var weiPerEther = big.NewFloat(1e18)

// Client CredVault 合约客户端
type Client struct {
	client        *ethclient.Client
	privateKey    *ecdsa.PrivateKey
	chainId       int64
	ContractAddr  common.Address
	startBlock    uint64
	confirmations int
	contractABI   abi.ABI
}

// CredVault 合约ABI定义（事件部分）
const contractABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "campaignId", "type": "uint256"},
			{"indexed": true, "name": "creator", "type": "address"},
			{"indexed": false, "name": "title", "type": "string"},
			{"indexed": false, "name": "goalAmount", "type": "uint256"},
			{"indexed": false, "name": "deadline", "type": "uint256"}
		],
		"name": "CampaignCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "campaignId", "type": "uint256"},
			{"indexed": true, "name": "supporter", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"},
			{"indexed": false, "name": "tokenId", "type": "uint256"},
			{"indexed": false, "name": "tokenURI", "type": "string"}
		],
		"name": "SupportReceived",
		"type": "event"
	}
]`

// CampaignCreatedEvent 链上活动创建事件
type CampaignCreatedEvent struct {
	CampaignId uint64
	Creator    string
	Title      string
	GoalAmount float64 // ETH
	Deadline   time.Time
	TxHash     string
	BlockNum   uint64
	LogIndex   uint
}

// SupportReceivedEvent 链上支持事件
type SupportReceivedEvent struct {
	CampaignId uint64
	Supporter  string
	Amount     float64 // ETH
	TokenId    uint64
	TokenURI   string
	TxHash     string
	BlockNum   uint64
	LogIndex   uint
}

func Init(cfg config.ChainConfig) (*Client, error) {
	// 连接以太坊客户端
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 解析私钥（可选，仅发交易需要）
	var privateKey *ecdsa.PrivateKey
	if cfg.PrivateKey != "" {
		privateKey, err = crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &Client{
		client:        client,
		privateKey:    privateKey,
		chainId:       cfg.ChainId,
		ContractAddr:  common.HexToAddress(cfg.ContractAddress),
		startBlock:    cfg.StartBlock,
		confirmations: cfg.Confirmations,
		contractABI:   parsedABI,
	}, nil
}

// GetStartBlock 配置的起始扫描区块
func (c *Client) GetStartBlock() uint64 {
	return c.startBlock
}

// GetConfirmations 确认区块数
func (c *Client) GetConfirmations() int {
	return c.confirmations
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// GetLogs 获取指定区块范围内的合约日志
func (c *Client) GetLogs(ctx context.Context, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{c.ContractAddr},
	}

	return c.client.FilterLogs(ctx, query)
}

// ParseLog 解析事件日志，返回 *CampaignCreatedEvent 或 *SupportReceivedEvent
func (c *Client) ParseLog(lg types.Log) (interface{}, error) {
	if len(lg.Topics) == 0 {
		return nil, fmt.Errorf("log has no topics")
	}

	switch lg.Topics[0] {
	case c.contractABI.Events["CampaignCreated"].ID:
		return c.parseCampaignCreated(lg)
	case c.contractABI.Events["SupportReceived"].ID:
		return c.parseSupportReceived(lg)
	default:
		return nil, fmt.Errorf("unknown event signature: %s", lg.Topics[0].Hex())
	}
}

// parseCampaignCreated 解析活动创建事件
func (c *Client) parseCampaignCreated(lg types.Log) (*CampaignCreatedEvent, error) {
	if len(lg.Topics) < 3 {
		return nil, fmt.Errorf("invalid CampaignCreated event: insufficient topics")
	}

	// 非索引参数：title, goalAmount, deadline
	data := make(map[string]interface{})
	if err := c.contractABI.UnpackIntoMap(data, "CampaignCreated", lg.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack CampaignCreated event: %w", err)
	}

	title, _ := data["title"].(string)
	goalAmount, ok := data["goalAmount"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid CampaignCreated event: missing goalAmount")
	}
	deadline, ok := data["deadline"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid CampaignCreated event: missing deadline")
	}

	return &CampaignCreatedEvent{
		CampaignId: new(big.Int).SetBytes(lg.Topics[1].Bytes()).Uint64(),
		Creator:    common.BytesToAddress(lg.Topics[2].Bytes()).Hex(),
		Title:      title,
		GoalAmount: weiToEther(goalAmount),
		Deadline:   time.Unix(deadline.Int64(), 0),
		TxHash:     lg.TxHash.Hex(),
		BlockNum:   lg.BlockNumber,
		LogIndex:   lg.Index,
	}, nil
}

// parseSupportReceived 解析支持事件
func (c *Client) parseSupportReceived(lg types.Log) (*SupportReceivedEvent, error) {
	if len(lg.Topics) < 3 {
		return nil, fmt.Errorf("invalid SupportReceived event: insufficient topics")
	}

	// 非索引参数：amount, tokenId, tokenURI
	data := make(map[string]interface{})
	if err := c.contractABI.UnpackIntoMap(data, "SupportReceived", lg.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack SupportReceived event: %w", err)
	}

	amount, ok := data["amount"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid SupportReceived event: missing amount")
	}
	tokenId, ok := data["tokenId"].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("invalid SupportReceived event: missing tokenId")
	}
	tokenURI, _ := data["tokenURI"].(string)

	return &SupportReceivedEvent{
		CampaignId: new(big.Int).SetBytes(lg.Topics[1].Bytes()).Uint64(),
		Supporter:  common.BytesToAddress(lg.Topics[2].Bytes()).Hex(),
		Amount:     weiToEther(amount),
		TokenId:    tokenId.Uint64(),
		TokenURI:   tokenURI,
		TxHash:     lg.TxHash.Hex(),
		BlockNum:   lg.BlockNumber,
		LogIndex:   lg.Index,
	}, nil
}

// GetTransactionReceipt 获取交易回执
func (c *Client) GetTransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.client.TransactionReceipt(ctx, txHash)
}

// IsTransactionConfirmed 检查交易是否已确认
func (c *Client) IsTransactionConfirmed(ctx context.Context, txHash common.Hash) (bool, error) {
	receipt, err := c.GetTransactionReceipt(ctx, txHash)
	if err != nil {
		return false, err
	}

	if receipt == nil {
		return false, nil
	}

	latestBlock, err := c.GetLatestBlock(ctx)
	if err != nil {
		return false, err
	}

	return latestBlock >= receipt.BlockNumber.Uint64()+uint64(c.confirmations), nil
}

// GetAccountAddress 获取账户地址
func (c *Client) GetAccountAddress() (common.Address, error) {
	if c.privateKey == nil {
		return common.Address{}, fmt.Errorf("no private key configured")
	}
	return crypto.PubkeyToAddress(c.privateKey.PublicKey), nil
}

// GetAuth 获取交易授权
func (c *Client) GetAuth() (*bind.TransactOpts, error) {
	if c.privateKey == nil {
		return nil, fmt.Errorf("no private key configured")
	}
	return bind.NewKeyedTransactorWithChainID(c.privateKey, big.NewInt(c.chainId))
}

// weiToEther wei 转 ETH
func weiToEther(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEther).Float64()
	return f
}
