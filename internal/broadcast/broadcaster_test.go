package broadcast

import (
	"testing"

	"github.com/groundworks/estimator/model"
)

func cfgNamed(updatedBy string) model.ServiceConfig {
	return model.ServiceConfig{ServiceID: "paver_patio", UpdatedBy: updatedBy}
}

func TestBroadcaster_PublishFansOutToAllSubscribers(t *testing.T) {
	b := NewBroadcaster(nil)

	var first, second []string
	b.Subscribe("paver_patio", "company-1", func(cfg model.ServiceConfig) {
		first = append(first, cfg.UpdatedBy)
	})
	b.Subscribe("paver_patio", "company-1", func(cfg model.ServiceConfig) {
		second = append(second, cfg.UpdatedBy)
	})

	b.Publish("paver_patio", "company-1", cfgNamed("v1"))

	if len(first) != 1 || first[0] != "v1" {
		t.Errorf("first = %v", first)
	}
	if len(second) != 1 || second[0] != "v1" {
		t.Errorf("second = %v", second)
	}
}

func TestBroadcaster_PublishIsKeyScoped(t *testing.T) {
	b := NewBroadcaster(nil)

	var calls int
	b.Subscribe("paver_patio", "company-2", func(model.ServiceConfig) { calls++ })

	b.Publish("paver_patio", "company-1", cfgNamed("v1"))
	b.Publish("excavation", "company-2", cfgNamed("v1"))

	if calls != 0 {
		t.Errorf("calls = %d, want 0 for other keys", calls)
	}
}

func TestBroadcaster_Unsubscribe(t *testing.T) {
	b := NewBroadcaster(nil)

	var calls int
	unsub := b.Subscribe("paver_patio", "company-1", func(model.ServiceConfig) { calls++ })

	b.Publish("paver_patio", "company-1", cfgNamed("v1"))
	unsub()
	b.Publish("paver_patio", "company-1", cfgNamed("v2"))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.SubscriberCount("paver_patio", "company-1") != 0 {
		t.Error("subscription slot leaked after unsubscribe")
	}

	unsub() // second call is a no-op
}

func TestBroadcaster_UnsubscribeDuringDelivery(t *testing.T) {
	b := NewBroadcaster(nil)

	var calls int
	var unsub func()
	unsub = b.Subscribe("paver_patio", "company-1", func(model.ServiceConfig) {
		calls++
		unsub() // must not deadlock or panic mid-delivery
	})

	b.Publish("paver_patio", "company-1", cfgNamed("v1"))
	b.Publish("paver_patio", "company-1", cfgNamed("v2"))

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBroadcaster_PanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	b := NewBroadcaster(nil)

	var healthyCalls int
	b.Subscribe("paver_patio", "company-1", func(model.ServiceConfig) {
		panic("subscriber bug")
	})
	b.Subscribe("paver_patio", "company-1", func(model.ServiceConfig) {
		healthyCalls++
	})

	b.Publish("paver_patio", "company-1", cfgNamed("v1"))

	if healthyCalls != 1 {
		t.Errorf("healthy subscriber calls = %d, want 1", healthyCalls)
	}
}
