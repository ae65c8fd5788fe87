package eventstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/ignite/outreach-gateway/internal/domain"
)

// MemoryStore is an in-memory Store used by unit tests.
type MemoryStore struct {
	mu     sync.Mutex
	byID   map[string]*domain.WebhookEvent
	byKey  map[string]string // "provider|event_key" -> id
}

// NewMemoryStore creates an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]*domain.WebhookEvent),
		byKey: make(map[string]string),
	}
}

func keyFor(providerSlug, eventKey string) string { return providerSlug + "|" + eventKey }

func (s *MemoryStore) Insert(_ context.Context, event *domain.WebhookEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyFor(event.ProviderSlug, event.EventKey)
	if _, exists := s.byKey[k]; exists {
		return "", ErrDuplicate
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	cp := *event
	s.byID[cp.ID] = &cp
	s.byKey[k] = cp.ID
	return cp.ID, nil
}

func (s *MemoryStore) Get(_ context.Context, providerSlug, eventKey string) (*domain.WebhookEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[keyFor(providerSlug, eventKey)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.WebhookEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) UpdateByKey(_ context.Context, providerSlug, eventKey string, u UpdateFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byKey[keyFor(providerSlug, eventKey)]
	if !ok {
		return ErrNotFound
	}
	e := s.byID[id]
	if u.Status != nil {
		e.Status = *u.Status
	}
	if u.Payload != nil {
		e.Payload = u.Payload
	}
	if u.ReplayCount != nil {
		e.ReplayCount = *u.ReplayCount
	}
	if u.LastReplayAt != nil {
		e.LastReplayAt = u.LastReplayAt
	}
	if u.LastError != nil {
		e.LastError = u.LastError
	}
	if u.ProcessedAt != nil {
		e.ProcessedAt = u.ProcessedAt
	}
	if u.OrgID != nil {
		e.OrgID = u.OrgID
	}
	if u.CompanyID != nil {
		e.CompanyID = u.CompanyID
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context, f ListFilter) ([]domain.WebhookEvent, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WebhookEvent
	for _, e := range s.byID {
		if f.ProviderSlug != "" && e.ProviderSlug != f.ProviderSlug {
			continue
		}
		if f.EventType != "" && e.EventType != f.EventType {
			continue
		}
		if f.OrgID != "" && (e.OrgID == nil || *e.OrgID != f.OrgID) {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		switch f.ReplayStatus {
		case "pending":
			if e.Status != domain.EventDeadLetter {
				continue
			}
		case "replayed":
			if e.Status != domain.EventReplayed {
				continue
			}
		}
		if !f.FromTS.IsZero() && e.CreatedAt.Before(f.FromTS) {
			continue
		}
		if !f.ToTS.IsZero() && e.CreatedAt.After(f.ToTS) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := len(out)
	limit := f.Limit
	if limit <= 0 {
		limit = len(out)
	}
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	end := f.Offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[f.Offset:end], total, nil
}
