package ledger

import (
	"github.com/credvault/cvs/internal/logger"
)

// NotificationType 账本通知类型
type NotificationType string

const (
	NotificationSupportReceived NotificationType = "SupportReceived"
	NotificationTokenMinted     NotificationType = "TokenMinted"
	NotificationCampaignCreated NotificationType = "CampaignCreated"
)

// Notification 账本通知，仅供外部订阅方消费，不参与正确性保证
type Notification struct {
	Type       NotificationType
	CampaignId uint64
	Address    string
	Amount     float64
	TokenId    uint64
}

// Subscriber 通知订阅方
type Subscriber interface {
	Notify(n Notification)
}

// SubscriberFunc 函数式订阅方
type SubscriberFunc func(n Notification)

// Notify 实现 Subscriber 接口
func (f SubscriberFunc) Notify(n Notification) {
	f(n)
}

// Subscribe 注册订阅方，需在启动阶段完成，运行期不加锁
func (l *Ledger) Subscribe(s Subscriber) {
	l.subscribers = append(l.subscribers, s)
}

// notify 在状态提交后向所有订阅方广播
func (l *Ledger) notify(n Notification) {
	for _, s := range l.subscribers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Notification subscriber panicked: %v", r)
				}
			}()
			s.Notify(n)
		}()
	}
}
