package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/groundworks/estimator/model"
)

// ChangeEvent is the cross-instance config change message. Origin identifies
// the publishing instance so it can skip its own events; locally the change
// has already been applied by the time the event is published.
type ChangeEvent struct {
	ServiceID string `json:"serviceId"`
	CompanyID string `json:"companyId"`
	Origin    string `json:"origin"`
}

// Relay propagates config change events between instances over a redis
// pub/sub channel. A remote event means another instance persisted a config,
// so the local cache entry for that key is stale.
type Relay struct {
	client   *redis.Client
	channel  string
	origin   string
	onRemote func(serviceID, companyID string)
	logger   *zap.Logger
}

// NewRelay creates a Relay. onRemote is invoked for every event published by
// a different instance, typically to evict the local cache entry.
func NewRelay(client *redis.Client, channel string, onRemote func(serviceID, companyID string), logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		client:   client,
		channel:  channel,
		origin:   uuid.NewString(),
		onRemote: onRemote,
		logger:   logger,
	}
}

// Notify publishes a change event for the key to all instances.
func (r *Relay) Notify(ctx context.Context, serviceID, companyID string) error {
	data, err := json.Marshal(ChangeEvent{
		ServiceID: serviceID,
		CompanyID: companyID,
		Origin:    r.origin,
	})
	if err != nil {
		return fmt.Errorf("relay: marshal change event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("relay: publish to %q: %w", r.channel, err)
	}
	return nil
}

// Run subscribes to the relay channel and dispatches remote events until ctx
// is canceled.
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.logger.Warn("relay: malformed change event", zap.Error(err))
				continue
			}
			if ev.Origin == r.origin {
				continue
			}
			r.logger.Debug("remote config change received",
				zap.String("service_id", ev.ServiceID),
				zap.String("company_id", ev.CompanyID),
			)
			r.onRemote(ev.ServiceID, ev.CompanyID)
		}
	}
}

// RelayedPublisher publishes locally and then notifies other instances.
// Relay failures are logged, not surfaced: the local save already succeeded
// and remote caches converge on their next reload.
type RelayedPublisher struct {
	local  *Broadcaster
	relay  *Relay
	logger *zap.Logger
}

// NewRelayedPublisher wraps a local broadcaster with cross-instance fanout.
func NewRelayedPublisher(local *Broadcaster, relay *Relay, logger *zap.Logger) *RelayedPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelayedPublisher{local: local, relay: relay, logger: logger}
}

// Publish delivers to local subscribers and relays the event.
func (p *RelayedPublisher) Publish(serviceID, companyID string, cfg model.ServiceConfig) {
	p.local.Publish(serviceID, companyID, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.relay.Notify(ctx, serviceID, companyID); err != nil {
		p.logger.Warn("config change relay failed",
			zap.String("service_id", serviceID),
			zap.String("company_id", companyID),
			zap.Error(err),
		)
	}
}
