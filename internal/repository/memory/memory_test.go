package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/requisition"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/stock"
)

func TestReceive_CreatesThenIncrements(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository(NewDB())

	if err := repo.Create(ctx, &stock.Item{Name: "Paracetamol", Quantity: 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item, err := repo.Receive(ctx, "Paracetamol", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 50 {
		t.Errorf("expected 50, got %d", item.Quantity)
	}

	item, err = repo.Receive(ctx, "Paracetamol", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 70 {
		t.Errorf("expected 70, got %d", item.Quantity)
	}
	if item.Version != 3 {
		t.Errorf("expected version 3, got %d", item.Version)
	}

	created, err := repo.Receive(ctx, "paracetamol", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == item.ID {
		t.Error("expected case-sensitive names to be distinct items")
	}

	all, _ := repo.List(ctx)
	if len(all) != 2 {
		t.Errorf("expected 2 items, got %d", len(all))
	}
}

func TestReceive_ConcurrentSum(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository(NewDB())

	const workers = 50
	var wg sync.WaitGroup
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			if _, err := repo.Receive(ctx, "Ibuprofen", qty); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected a single item, got %d", len(all))
	}
	if want := workers * (workers + 1) / 2; all[0].Quantity != want {
		t.Errorf("expected %d, got %d", want, all[0].Quantity)
	}
}

func TestStore_UpdateVersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository(NewDB())

	item := &stock.Item{Name: "Aspirin", Quantity: 1}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, _ := repo.GetByID(ctx, item.ID)
	second, _ := repo.GetByID(ctx, item.ID)

	first.Quantity = 5
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Version != 2 {
		t.Errorf("expected version 2, got %d", first.Version)
	}

	second.Quantity = 9
	if err := repo.Update(ctx, second); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	stored, _ := repo.GetByID(ctx, item.ID)
	if stored.Quantity != 5 {
		t.Errorf("expected 5, got %d", stored.Quantity)
	}
}

func TestStore_MissingID(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository(NewDB())

	ghost := &stock.Item{Name: "Ghost"}
	ghost.ID = uuid.New()
	ghost.Version = 1

	if err := repo.Update(ctx, ghost); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found on update, got %v", err)
	}
	if err := repo.Delete(ctx, ghost.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found on delete, got %v", err)
	}
	if _, err := repo.GetByID(ctx, ghost.ID); !errors.Is(err, stock.ErrItemNotFound) {
		t.Errorf("expected item not found, got %v", err)
	}
}

func TestStore_UniqueName(t *testing.T) {
	ctx := context.Background()
	repo := NewStockRepository(NewDB())

	a := &stock.Item{Name: "A"}
	b := &stock.Item{Name: "B"}
	for _, it := range []*stock.Item{a, b} {
		if err := repo.Create(ctx, it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := repo.Create(ctx, &stock.Item{Name: "A"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected duplicate, got %v", err)
	}

	b.Name = "A"
	if err := repo.Update(ctx, b); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected duplicate on rename, got %v", err)
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Update(ctx, b); err != nil {
		t.Errorf("expected rename to freed name to succeed, got %v", err)
	}
}

func TestStore_ListKeepsCreationOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepository(NewDB())

	names := []string{"Ada", "Grace", "Linus"}
	var ids []uuid.UUID
	for _, n := range names {
		p := &patient.Patient{FirstName: n, LastName: "Test"}
		p.ApplyDefaults()
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, p.ID)
	}
	if err := repo.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].FirstName != "Ada" || all[1].FirstName != "Linus" {
		t.Errorf("unexpected order: %+v", all)
	}
	if all[0].Allergies == nil {
		t.Error("expected empty allergies slice, got nil")
	}

	found, err := repo.GetByIDs(ctx, []uuid.UUID{ids[0], ids[1]})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 || found[ids[0]] == nil {
		t.Errorf("expected only the surviving patient, got %v", found)
	}
}

func TestRequisition_IssueItem(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	stocks := NewStockRepository(db)
	reqs := NewRequisitionRepository(db, stocks)

	if _, err := stocks.Receive(ctx, "Paracetamol", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := &requisition.Requisition{
		From: "Ward A",
		Items: []requisition.Item{
			{Medicine: "Paracetamol", Qty: 8},
			{Medicine: "Paracetamol", Qty: 5},
			{Medicine: "Unknown", Qty: 1},
		},
	}
	req.ApplyDefaults()
	if err := reqs.Create(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := reqs.IssueItem(ctx, req.ID, req.Items[0].ID, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Items[0].Status != requisition.ItemIssued || updated.Items[0].IssuedQty != 8 {
		t.Errorf("expected Issued/8, got %s/%d", updated.Items[0].Status, updated.Items[0].IssuedQty)
	}
	if updated.Version != 2 {
		t.Errorf("expected version 2, got %d", updated.Version)
	}

	if _, err := reqs.IssueItem(ctx, req.ID, req.Items[1].ID, 5); !errors.Is(err, stock.ErrInsufficientStock) {
		t.Errorf("expected insufficient stock, got %v", err)
	}
	if _, err := reqs.IssueItem(ctx, req.ID, req.Items[2].ID, 1); !errors.Is(err, stock.ErrItemNotFound) {
		t.Errorf("expected stock item not found, got %v", err)
	}

	stored, _ := reqs.GetByID(ctx, req.ID)
	if stored.Items[1].Status != requisition.ItemPending || stored.Items[2].Status != requisition.ItemPending {
		t.Error("expected failed issues to leave items pending")
	}

	all, _ := stocks.List(ctx)
	if all[0].Quantity != 2 {
		t.Errorf("expected 2 left in stock, got %d", all[0].Quantity)
	}
}

func TestUserRepository_LoginAttempts(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(NewDB())

	u := &domain.User{Email: "Nurse@Example.com", Name: "N", Role: domain.RoleNurse, PasswordHash: "x", IsActive: true}
	u.ApplyDefaults()
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "nurse@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PasswordHash != "x" {
		t.Error("expected password hash to survive storage")
	}

	for i := 0; i < domain.MaxFailedLogins; i++ {
		if err := repo.UpdateLoginAttempt(ctx, u.ID, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	got, _ = repo.GetByID(ctx, u.ID)
	if !got.IsLocked() {
		t.Error("expected account to be locked")
	}

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
