package configstore

import (
	"context"
	"errors"
	"testing"

	"github.com/groundworks/estimator/internal/catalog"
	"github.com/groundworks/estimator/model"
)

// recorder captures the mutation side effects of Save in call order.
type recorder struct {
	calls []string
}

func (r *recorder) Invalidate(serviceID, companyID string) {
	r.calls = append(r.calls, "invalidate:"+serviceID+"/"+companyID)
}

func (r *recorder) Publish(serviceID, companyID string, _ model.ServiceConfig) {
	r.calls = append(r.calls, "publish:"+serviceID+"/"+companyID)
}

// failingStore fails writes, reads, or both.
type failingStore struct {
	Store
	failRead  bool
	failWrite bool
}

func (s *failingStore) Read(ctx context.Context, serviceID, companyID string) (*ConfigDocument, error) {
	if s.failRead {
		return nil, errors.New("backend unreachable")
	}
	return s.Store.Read(ctx, serviceID, companyID)
}

func (s *failingStore) Write(ctx context.Context, serviceID, companyID string, doc ConfigDocument) error {
	if s.failWrite {
		return errors.New("backend unreachable")
	}
	return s.Store.Write(ctx, serviceID, companyID, doc)
}

func TestService_Get_templateFallback(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, nil)

	cfg, err := svc.Get(context.Background(), catalog.ServicePaverPatio, "company-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	rate, _ := cfg.BaseSettings.Lookup(model.SettingHourlyRate)
	if rate != 25 {
		t.Errorf("hourlyRate = %v, want template default", rate)
	}
}

func TestService_Get_unknownService(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, nil)

	_, err := svc.Get(context.Background(), "nonexistent", "company-1")
	if err == nil {
		t.Fatal("expected not found error")
	}
	if model.CodeOf(err) != model.ErrNotFound {
		t.Errorf("code = %s", model.CodeOf(err))
	}
}

func TestService_Get_loadFailure(t *testing.T) {
	svc := NewService(&failingStore{Store: NewMemoryStore(), failRead: true}, nil, nil, nil)

	_, err := svc.Get(context.Background(), catalog.ServicePaverPatio, "company-1")
	if err == nil {
		t.Fatal("expected load failure")
	}
	if model.CodeOf(err) != model.ErrConfigLoadFailure {
		t.Errorf("code = %s", model.CodeOf(err))
	}
}

func TestService_Save_persistsThenEvictsThenPublishes(t *testing.T) {
	rec := &recorder{}
	store := NewMemoryStore()
	svc := NewService(store, rec, rec, nil)

	cfg, _ := catalog.Template(catalog.ServicePaverPatio)
	cfg.BaseSettings.Labor["hourlyRate"] = model.Setting{Value: 31, Unit: "$/hour"}

	err := svc.Save(context.Background(), catalog.ServicePaverPatio, "company-1", cfg, "admin@example.com")
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if store.Len() != 1 {
		t.Fatal("document was not persisted")
	}
	if len(rec.calls) != 2 {
		t.Fatalf("side effects = %v, want invalidate then publish", rec.calls)
	}
	if rec.calls[0] != "invalidate:paver_patio/company-1" {
		t.Errorf("first side effect = %s, want invalidate", rec.calls[0])
	}
	if rec.calls[1] != "publish:paver_patio/company-1" {
		t.Errorf("second side effect = %s, want publish", rec.calls[1])
	}

	// The saved value is what a fresh Get resolves.
	got, err := svc.Get(context.Background(), catalog.ServicePaverPatio, "company-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	rate, _ := got.BaseSettings.Lookup(model.SettingHourlyRate)
	if rate != 31 {
		t.Errorf("hourlyRate after save = %v, want 31", rate)
	}
	if got.UpdatedBy != "admin@example.com" {
		t.Errorf("UpdatedBy = %q", got.UpdatedBy)
	}
}

func TestService_Save_failureNeitherEvictsNorPublishes(t *testing.T) {
	rec := &recorder{}
	svc := NewService(&failingStore{Store: NewMemoryStore(), failWrite: true}, rec, rec, nil)

	cfg, _ := catalog.Template(catalog.ServicePaverPatio)
	err := svc.Save(context.Background(), catalog.ServicePaverPatio, "company-1", cfg, "admin")
	if err == nil {
		t.Fatal("expected save failure")
	}
	if model.CodeOf(err) != model.ErrConfigSaveFailure {
		t.Errorf("code = %s", model.CodeOf(err))
	}
	if len(rec.calls) != 0 {
		t.Errorf("side effects after failed save = %v, want none", rec.calls)
	}
}

func TestService_Save_validatesIdentifiers(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, nil, nil)
	cfg, _ := catalog.Template(catalog.ServicePaverPatio)

	cases := []struct {
		name      string
		serviceID string
		companyID string
		wantCode  string
	}{
		{"empty service", "", "company-1", model.ErrBadRequest},
		{"empty company", catalog.ServicePaverPatio, "  ", model.ErrBadRequest},
		{"unknown service", "nonexistent", "company-1", model.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Save(context.Background(), tc.serviceID, tc.companyID, cfg, "admin")
			if model.CodeOf(err) != tc.wantCode {
				t.Errorf("code = %s, want %s", model.CodeOf(err), tc.wantCode)
			}
		})
	}
}
