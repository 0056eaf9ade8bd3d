package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScanRange(t *testing.T) {
	tests := []struct {
		name          string
		current       uint64
		last          uint64
		confirmations int
		wantFrom      uint64
		wantTo        uint64
		wantOk        bool
	}{
		{
			// 新起的链，链高低于确认区块数，无符号减法不能回绕
			name:          "young chain below confirmations",
			current:       5,
			last:          0,
			confirmations: 12,
			wantOk:        false,
		},
		{
			name:          "exactly at confirmations",
			current:       12,
			last:          0,
			confirmations: 12,
			wantOk:        false,
		},
		{
			name:          "first confirmed block",
			current:       13,
			last:          0,
			confirmations: 12,
			wantFrom:      1,
			wantTo:        1,
			wantOk:        true,
		},
		{
			name:          "caught up",
			current:       100,
			last:          88,
			confirmations: 12,
			wantOk:        false,
		},
		{
			name:          "normal range",
			current:       100,
			last:          50,
			confirmations: 12,
			wantFrom:      51,
			wantTo:        88,
			wantOk:        true,
		},
		{
			name:          "range capped at batch size",
			current:       5000,
			last:          0,
			confirmations: 12,
			wantFrom:      1,
			wantTo:        maxBlockBatch,
			wantOk:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, ok := scanRange(tt.current, tt.last, tt.confirmations)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.wantFrom, from)
				assert.Equal(t, tt.wantTo, to)
			}
		})
	}
}

func TestWaitBackoff_StopCancelsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		backoffDuration: time.Minute,
		ctx:             ctx,
		cancel:          cancel,
	}

	done := make(chan bool, 1)
	go func() {
		done <- m.waitBackoff()
	}()

	m.Stop()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("waitBackoff did not return after Stop")
	}
}

func TestWaitBackoff_ElapsesNormally(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := &Monitor{
		backoffDuration: 10 * time.Millisecond,
		ctx:             ctx,
		cancel:          cancel,
	}

	assert.True(t, m.waitBackoff())
}
