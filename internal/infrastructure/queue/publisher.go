// Package queue は予約イベントをメッセージブローカーへ発行する
// 下流のコンシューマ（通知・分析）はDBを参照せずにイベントだけで処理できる
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanosuguru/go-hotdesk-reservation/internal/domain/booking"
)

const bookingQueueName = "booking.events"

// BookingEvent は予約の作成・キャンセルを表すイベント
type BookingEvent struct {
	Type        string `json:"type"` // booking.created / booking.cancelled
	BookingID   string `json:"booking_id"`
	SeatID      string `json:"seat_id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Date        string `json:"date"`
	Slot        string `json:"slot"`
	OccurredAt  string `json:"occurred_at"`
	CancelledAt string `json:"cancelled_at,omitempty"`
}

// Publisher はRabbitMQへ予約イベントを発行する
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher はブローカーに接続し、耐久キューを宣言する
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("ブローカー接続に失敗: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗: %w", err)
	}
	if _, err := ch.QueueDeclare(bookingQueueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("キュー宣言に失敗: %w", err)
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

// PublishBookingCreated は予約作成イベントを発行する
func (p *Publisher) PublishBookingCreated(ctx context.Context, b *booking.Booking) error {
	return p.publish(ctx, toEvent("booking.created", b))
}

// PublishBookingCancelled は予約キャンセルイベントを発行する
func (p *Publisher) PublishBookingCancelled(ctx context.Context, b *booking.Booking) error {
	return p.publish(ctx, toEvent("booking.cancelled", b))
}

func (p *Publisher) publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("イベントの変換に失敗: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, "", bookingQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("イベント発行に失敗: %w", err)
	}
	return nil
}

// Close は接続を閉じる
func (p *Publisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func toEvent(eventType string, b *booking.Booking) BookingEvent {
	ev := BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		SeatID:     b.SeatID,
		UserID:     b.UserID,
		UserName:   b.UserName,
		Date:       b.Date.Format(booking.DateLayout),
		Slot:       string(b.Slot),
		OccurredAt: time.Now().Format(time.RFC3339),
	}
	if b.CancelledAt != nil {
		ev.CancelledAt = b.CancelledAt.Format(time.RFC3339)
	}
	return ev
}
