package provider

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carepoint/intake/internal/platform/db"
	"github.com/carepoint/intake/internal/platform/validation"
)

type mockRepo struct {
	store   map[uuid.UUID]*Provider
	byEmail map[string]uuid.UUID
	failOn  string
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Provider), byEmail: make(map[string]uuid.UUID)}
}

func (m *mockRepo) Upsert(_ context.Context, p *Provider) error {
	if m.failOn != "" && p.Email == m.failOn {
		return errors.New("connection reset")
	}
	now := time.Now().UTC()
	if id, ok := m.byEmail[p.Email]; ok {
		existing := m.store[id]
		p.ID = id
		p.CreatedAt = existing.CreatedAt
		p.UpdatedAt = now
	} else {
		p.ID = uuid.New()
		p.CreatedAt = now
		p.UpdatedAt = now
		m.byEmail[p.Email] = p.ID
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Provider, error) {
	p, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) List(_ context.Context) ([]*Provider, error) {
	items := []*Provider{}
	for _, p := range m.store {
		cp := *p
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.store[id]
	return ok, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, db.NoTx{}), repo
}

func sampleEntries() []SeedEntry {
	return []SeedEntry{
		{Name: "Dr. Sarah Johnson", Specialty: "Family Medicine", Email: "sarah@example.com", Phone: "555-0101", Availability: []string{"09:00", "10:00"}},
		{Name: "Dr. Michael Chen", Specialty: "Cardiology", Email: "michael@example.com"},
	}
}

func TestService_Seed(t *testing.T) {
	svc, repo := newTestService()

	n, err := svc.Seed(context.Background(), sampleEntries())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 seeded, got %d", n)
	}
	if len(repo.store) != 2 {
		t.Errorf("expected 2 stored, got %d", len(repo.store))
	}
}

func TestService_Seed_IsIdempotentByEmail(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.Seed(ctx, sampleEntries()); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	entries := sampleEntries()
	entries[1].Specialty = "Interventional Cardiology"
	if _, err := svc.Seed(ctx, entries); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	if len(repo.store) != 2 {
		t.Fatalf("expected 2 providers after re-seed, got %d", len(repo.store))
	}
	p, _ := repo.GetByID(ctx, repo.byEmail["michael@example.com"])
	if p.Specialty != "Interventional Cardiology" {
		t.Errorf("expected specialty updated, got %q", p.Specialty)
	}
}

func TestService_Seed_ValidationAbortsBeforeWriting(t *testing.T) {
	svc, repo := newTestService()
	entries := sampleEntries()
	entries = append(entries,
		SeedEntry{Name: "", Specialty: "Neurology", Email: "bad-email", Availability: []string{"9am"}},
		SeedEntry{Name: "Dup", Specialty: "X", Email: "sarah@example.com"},
	)

	_, err := svc.Seed(context.Background(), entries)
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation.Errors, got %v", err)
	}
	for _, field := range []string{"providers.2.name", "providers.2.email", "providers.2.availability.0", "providers.3.email"} {
		if len(verrs[field]) == 0 {
			t.Errorf("expected error for %s, got %v", field, verrs)
		}
	}
	if len(repo.store) != 0 {
		t.Errorf("expected nothing written, got %d", len(repo.store))
	}
}

func TestService_Seed_RepoError(t *testing.T) {
	svc, repo := newTestService()
	repo.failOn = "michael@example.com"

	_, err := svc.Seed(context.Background(), sampleEntries())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestService_Get_NotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestService_List_SortedByName(t *testing.T) {
	svc, _ := newTestService()
	svc.Seed(context.Background(), sampleEntries())

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Dr. Michael Chen" {
		t.Errorf("unexpected order: %v", items)
	}
}
