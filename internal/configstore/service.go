package configstore

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/groundworks/estimator/internal/catalog"
	"github.com/groundworks/estimator/model"
)

// Invalidator evicts a cache entry for a (service, company) key.
type Invalidator interface {
	Invalidate(serviceID, companyID string)
}

// Publisher fans a config change out to subscribed sessions.
type Publisher interface {
	Publish(serviceID, companyID string, cfg model.ServiceConfig)
}

// Service is the single authority for config reads and writes. Get resolves
// the company document over the built-in template; Save persists and then --
// in this order, and only on a successful write -- evicts the cache entry
// and publishes the change event. Eviction before publish is a hard
// contract: a subscriber reacting to the event must never be able to load
// the pre-save value.
type Service struct {
	store       Store
	invalidator Invalidator
	publisher   Publisher
	logger      *zap.Logger
}

// NewService creates a config Service. invalidator and publisher may be nil
// in tests that exercise only reads.
func NewService(store Store, invalidator Invalidator, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		invalidator: invalidator,
		publisher:   publisher,
		logger:      logger,
	}
}

// Get returns the resolved config for (serviceID, companyID): the persisted
// company document merged over the built-in template, or the template alone
// when nothing is persisted.
func (s *Service) Get(ctx context.Context, serviceID, companyID string) (model.ServiceConfig, error) {
	template, ok := catalog.Template(serviceID)
	if !ok {
		return model.ServiceConfig{}, model.NewNotFoundError("unknown service " + serviceID)
	}

	doc, err := s.store.Read(ctx, serviceID, companyID)
	if err != nil {
		return model.ServiceConfig{}, model.NewConfigLoadError(err)
	}

	return MergeOverTemplate(template, doc), nil
}

// Save validates, persists, evicts, and publishes. A failed write neither
// evicts nor publishes, so subscribers are never told about a change that
// did not happen.
func (s *Service) Save(ctx context.Context, serviceID, companyID string, cfg model.ServiceConfig, actor string) error {
	serviceID = strings.TrimSpace(serviceID)
	companyID = strings.TrimSpace(companyID)
	if serviceID == "" {
		return model.NewBadRequestError("serviceId is required")
	}
	if companyID == "" {
		return model.NewBadRequestError("companyId is required")
	}
	if _, ok := catalog.Template(serviceID); !ok {
		return model.NewNotFoundError("unknown service " + serviceID)
	}

	cfg.ServiceID = serviceID
	cfg.UpdatedAt = time.Now().UTC()
	cfg.UpdatedBy = actor
	doc := DocumentFromConfig(companyID, cfg)

	if err := s.store.Write(ctx, serviceID, companyID, doc); err != nil {
		s.logger.Error("config save failed",
			zap.String("service_id", serviceID),
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return model.NewConfigSaveError(err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(serviceID, companyID)
	}
	if s.publisher != nil {
		resolved, err := s.Get(ctx, serviceID, companyID)
		if err != nil {
			// The write landed and the cache is already evicted; subscribers
			// re-pulling will still converge. Log and move on.
			s.logger.Warn("post-save config reload failed",
				zap.String("service_id", serviceID),
				zap.String("company_id", companyID),
				zap.Error(err),
			)
		} else {
			s.publisher.Publish(serviceID, companyID, resolved)
		}
	}

	s.logger.Info("config saved",
		zap.String("service_id", serviceID),
		zap.String("company_id", companyID),
		zap.String("actor", actor),
	)
	return nil
}
