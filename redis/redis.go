package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/sessiongate/sessiongate/config"
	"github.com/sessiongate/sessiongate/instanceid"
	"github.com/sessiongate/sessiongate/log"
)

const (
	// SyncChannelName is the pub/sub channel shared by all instances
	SyncChannelName = "sessiongate_cache_sync"

	messageTypeDrain = "drain"

	chanCap = 100
)

// syncMessage is sent to the other instances
type syncMessage struct {
	Client []byte `json:"c"`
	Type   string `json:"t"`
}

// MarshalBinary encodes the struct to json
func (m *syncMessage) MarshalBinary() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalBinary decodes the struct from json
func (m *syncMessage) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, m)
}

// Client for the redis connection
type Client struct {
	config     *config.RedisConfig
	client     *redis.Client
	l          *logrus.Entry
	sendBuffer chan *syncMessage

	// DrainChannel receives a value each time another instance drained its session cache
	DrainChannel chan struct{}
}

// New creates a new redis client and subscribes the sync channel. It returns nil if
// redis is not configured.
func New(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	if !cfg.IsEnabled() {
		return nil, nil //nolint:nilnil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	var err error

	for attempt := 1; attempt <= cfg.ConnectionAttempts; attempt++ {
		if err = rdb.Ping(ctx).Err(); err == nil {
			break
		}

		if attempt == cfg.ConnectionAttempts {
			break
		}

		select {
		case <-time.After(cfg.ConnectionCooldown.ToDuration()):
		case <-ctx.Done():
			_ = rdb.Close()

			return nil, fmt.Errorf("can't connect to redis %s: %w", cfg.Address, ctx.Err())
		}
	}

	if err != nil {
		_ = rdb.Close()

		return nil, fmt.Errorf("can't connect to redis %s: %w", cfg.Address, err)
	}

	res := &Client{
		config:       cfg,
		client:       rdb,
		l:            log.PrefixedLog("redis"),
		sendBuffer:   make(chan *syncMessage, chanCap),
		DrainChannel: make(chan struct{}, 1),
	}

	if err := res.startup(ctx); err != nil {
		_ = rdb.Close()

		return nil, err
	}

	return res, nil
}

// PublishDrain tells the other instances to drain their session cache. It never blocks,
// the request is dropped if the send buffer is full.
func (c *Client) PublishDrain() {
	select {
	case c.sendBuffer <- &syncMessage{Client: instanceid.Bytes(), Type: messageTypeDrain}:
	default:
		c.l.Warn("send buffer is full, drain request is not published")
	}
}

func (c *Client) startup(ctx context.Context) error {
	ps := c.client.Subscribe(ctx, SyncChannelName)

	// wait for the subscription, messages published before would be lost
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()

		return fmt.Errorf("can't subscribe channel '%s': %w", SyncChannelName, err)
	}

	msgs := ps.Channel()

	go func() {
		defer c.client.Close()
		defer ps.Close()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				c.processMessage(msg)

			case m := <-c.sendBuffer:
				if err := c.client.Publish(ctx, SyncChannelName, m).Err(); err != nil {
					c.l.Error("can't publish message: ", err)
				}

			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (c *Client) processMessage(msg *redis.Message) {
	var m syncMessage

	if err := m.UnmarshalBinary([]byte(msg.Payload)); err != nil {
		c.l.Error("can't parse message: ", err)

		return
	}

	if instanceid.Is(m.Client) {
		// own message
		return
	}

	switch m.Type {
	case messageTypeDrain:
		c.l.Debug("received drain request from other instance")

		select {
		case c.DrainChannel <- struct{}{}:
		default:
			// a drain is already pending
		}
	default:
		c.l.Warnf("unknown message type '%s'", log.EscapeInput(m.Type))
	}
}
