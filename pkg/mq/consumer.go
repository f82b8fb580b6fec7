package mq

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/rabbitmq/amqp091-go"
)

type Consumer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

func NewConsumer(rabbitmqURL string) (*Consumer, error) {
	conn, err := amqp091.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// 设置QoS，限制未确认消息数量
	if err = ch.Qos(10, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}
	if err = setupTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to setup topology: %w", err)
	}

	return &Consumer{conn: conn, channel: ch}, nil
}

// Outcome 一条消息处理后的确认方式
type Outcome int

const (
	Ack Outcome = iota
	// Requeue 重新入队，只对首次投递使用
	Requeue
	// Drop 拒绝且不再入队
	Drop
)

// Dispatch 解码并处理一条消息，返回应当如何确认
// 通知是尽力而为的，同一条消息最多重试一次
func Dispatch(ctx context.Context, body []byte, redelivered bool, handler NotificationEventHandler) Outcome {
	event, err := DecodeNotificationEvent(body)
	if err != nil {
		hlog.Errorf("Failed to decode notification event: %v", err)
		return Drop
	}
	if err := handler.HandleNotificationEvent(ctx, event); err != nil {
		hlog.Errorf("Failed to handle notification event %s: %v", event.EventID, err)
		if redelivered {
			return Drop
		}
		return Requeue
	}
	return Ack
}

func (c *Consumer) ConsumeNotificationEvents(ctx context.Context, handler NotificationEventHandler) error {
	msgs, err := c.channel.Consume(
		NotificationEventQueue,
		"",    // consumer
		false, // auto-ack (设置为false，手动确认)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				hlog.Info("Notification event consumer context cancelled")
				return
			case d, ok := <-msgs:
				if !ok {
					hlog.Info("Notification event consumer channel closed")
					return
				}
				switch Dispatch(ctx, d.Body, d.Redelivered, handler) {
				case Ack:
					d.Ack(false)
				case Requeue:
					d.Nack(false, true)
				default:
					d.Nack(false, false)
				}
			}
		}
	}()

	return nil
}

func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
