package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credvault/cvs/internal/ledger"
	"github.com/credvault/cvs/internal/model"
	"github.com/credvault/cvs/internal/store/memstore"
)

func newCampaign(title string) *model.CampaignModel {
	return &model.CampaignModel{
		Title:          title,
		Description:    "A campaign used by the memstore tests.",
		GoalAmount:     100,
		DurationDays:   30,
		Deadline:       time.Now().Add(30 * 24 * time.Hour),
		Status:         model.CampaignStatusActive,
		CreatorAddress: "0x1234567890123456789012345678901234567890",
	}
}

func TestCampaignLifecycle(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	c := newCampaign("Memstore Campaign")
	require.NoError(t, s.CreateCampaign(ctx, c))
	assert.Equal(t, uint64(1), c.Id)

	got, err := s.GetCampaign(ctx, c.Id)
	require.NoError(t, err)
	assert.Equal(t, "Memstore Campaign", got.Title)

	// 返回的是副本，修改不影响存储内容
	got.Title = "mutated"
	again, err := s.GetCampaign(ctx, c.Id)
	require.NoError(t, err)
	assert.Equal(t, "Memstore Campaign", again.Title)

	require.NoError(t, s.AddCampaignSupport(ctx, c.Id, 2.5))
	require.NoError(t, s.AddCampaignSupport(ctx, c.Id, 1.5))
	got, err = s.GetCampaign(ctx, c.Id)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.RaisedAmount)
	assert.Equal(t, int64(2), got.SupporterCount)

	require.NoError(t, s.SetCampaignStatus(ctx, c.Id, model.CampaignStatusCompleted))
	got, err = s.GetCampaign(ctx, c.Id)
	require.NoError(t, err)
	assert.Equal(t, model.CampaignStatusCompleted, got.Status)
}

func TestCampaignNotFound(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	_, err := s.GetCampaign(ctx, 99)
	assert.ErrorIs(t, err, ledger.ErrCampaignNotFound)

	err = s.AddCampaignSupport(ctx, 99, 1)
	assert.ErrorIs(t, err, ledger.ErrCampaignNotFound)

	err = s.SetCampaignStatus(ctx, 99, model.CampaignStatusCancelled)
	assert.ErrorIs(t, err, ledger.ErrCampaignNotFound)
}

func TestListCampaignsOrder(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, s.CreateCampaign(ctx, newCampaign(title)))
	}

	campaigns, err := s.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, campaigns, 3)
	assert.Equal(t, "first", campaigns[0].Title)
	assert.Equal(t, "third", campaigns[2].Title)
}

func TestMintReceipt_TokenAllocation(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	r1 := &model.SupportReceiptModel{CampaignId: 1, Owner: "0xaaa", Amount: 1}
	require.NoError(t, s.MintReceipt(ctx, r1))
	r2 := &model.SupportReceiptModel{CampaignId: 1, Owner: "0xbbb", Amount: 1}
	require.NoError(t, s.MintReceipt(ctx, r2))

	assert.Equal(t, uint64(1), r1.TokenId)
	assert.Equal(t, uint64(2), r2.TokenId)

	// 链上指定的 tokenId 推进计数器，后续分配不回退
	r3 := &model.SupportReceiptModel{TokenId: 10, CampaignId: 1, Owner: "0xccc", Amount: 1}
	require.NoError(t, s.MintReceipt(ctx, r3))
	r4 := &model.SupportReceiptModel{CampaignId: 1, Owner: "0xddd", Amount: 1}
	require.NoError(t, s.MintReceipt(ctx, r4))
	assert.Equal(t, uint64(11), r4.TokenId)
}

func TestHasReceipt(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	require.NoError(t, s.MintReceipt(ctx, &model.SupportReceiptModel{
		CampaignId: 3,
		Owner:      "0xaaa",
		Amount:     1,
	}))

	has, err := s.HasReceipt(ctx, "0xaaa", 3)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasReceipt(ctx, "0xaaa", 4)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = s.HasReceipt(ctx, "0xbbb", 3)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCreatorRoundTrip(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	addr := "0x1234567890123456789012345678901234567890"
	require.NoError(t, s.CreateCreator(ctx, &model.CreatorModel{Address: addr}))

	creator, err := s.GetCreator(ctx, addr)
	require.NoError(t, err)

	creator.Name = "Alice"
	creator.TotalRaised = 5
	require.NoError(t, s.UpdateCreator(ctx, creator))

	got, err := s.GetCreator(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 5.0, got.TotalRaised)

	_, err = s.GetCreator(ctx, "0xmissing")
	assert.ErrorIs(t, err, ledger.ErrCreatorNotFound)
}

func TestChainEvents(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	block, err := s.LastProcessedBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), block)

	require.NoError(t, s.SaveChainEvent(ctx, &model.ChainEventModel{
		EventType: "SupportReceived",
		TxHash:    "0xabc",
		LogIndex:  0,
		BlockNum:  120,
	}))

	seen, err := s.HasChainEvent(ctx, "0xabc", 0)
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = s.HasChainEvent(ctx, "0xabc", 1)
	require.NoError(t, err)
	assert.False(t, seen)

	block, err = s.LastProcessedBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(120), block)
}

func TestGetCampaignByChainId_ZeroNotMatched(t *testing.T) {
	s := memstore.New()
	ctx := context.Background()

	// HTTP 创建的活动 chainCampaignId 为零值，不参与链上匹配
	require.NoError(t, s.CreateCampaign(ctx, newCampaign("off-chain campaign")))

	_, err := s.GetCampaignByChainId(ctx, 0)
	assert.ErrorIs(t, err, ledger.ErrCampaignNotFound)

	c := newCampaign("on-chain campaign")
	c.ChainCampaignId = 9
	require.NoError(t, s.CreateCampaign(ctx, c))

	got, err := s.GetCampaignByChainId(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "on-chain campaign", got.Title)
}
