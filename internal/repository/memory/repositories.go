package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/dispensing"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/invoice"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/requisition"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/stock"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/visit"
)

type StockRepository struct {
	*Store[stock.Item, *stock.Item]
}

func NewStockRepository(db *DB) *StockRepository {
	s := newStore[stock.Item](db, "stock_items", stock.ErrItemNotFound).
		unique(func(i *stock.Item) string { return i.Name }, stock.ErrItemExists)
	return &StockRepository{Store: s}
}

func (r *StockRepository) Receive(ctx context.Context, name string, qty int) (*stock.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	item, found, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if !found {
		item = &stock.Item{Name: name, Quantity: qty}
		if err := r.insert(item); err != nil {
			return nil, err
		}
		return item, nil
	}

	item.Quantity += qty
	if err := r.replace(item); err != nil {
		return nil, err
	}
	return item, nil
}

// withdraw returns the named item with qty removed without storing it. The
// caller must hold db.mu.
func (r *StockRepository) withdraw(name string, qty int) (*stock.Item, error) {
	item, found, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, stock.ErrItemNotFound
	}
	if item.Quantity < qty {
		return nil, stock.ErrInsufficientStock
	}
	item.Quantity -= qty
	return item, nil
}

type RequisitionRepository struct {
	*Store[requisition.Requisition, *requisition.Requisition]
	stock *StockRepository
}

func NewRequisitionRepository(db *DB, stockRepo *StockRepository) *RequisitionRepository {
	return &RequisitionRepository{
		Store: newStore[requisition.Requisition](db, "requisitions", requisition.ErrRequisitionNotFound),
		stock: stockRepo,
	}
}

func (r *RequisitionRepository) IssueItem(ctx context.Context, requisitionID, itemID uuid.UUID, qty int) (*requisition.Requisition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	req, err := r.get(requisitionID)
	if err != nil {
		return nil, err
	}
	item, err := req.IssueItem(itemID, qty)
	if err != nil {
		return nil, err
	}
	stockItem, err := r.stock.withdraw(item.Medicine, qty)
	if err != nil {
		return nil, err
	}

	if err := r.replace(req); err != nil {
		return nil, err
	}
	if err := r.stock.replace(stockItem); err != nil {
		return nil, err
	}
	return req, nil
}

type PatientRepository struct {
	*Store[patient.Patient, *patient.Patient]
}

func NewPatientRepository(db *DB) *PatientRepository {
	return &PatientRepository{Store: newStore[patient.Patient](db, "patients", patient.ErrPatientNotFound)}
}

func (r *PatientRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*patient.Patient, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := make(map[uuid.UUID]*patient.Patient, len(ids))
	for _, id := range ids {
		if _, ok := r.coll.docs[id]; !ok {
			continue
		}
		p, err := r.get(id)
		if err != nil {
			return nil, err
		}
		out[id] = p
	}
	return out, nil
}

func NewInvoiceRepository(db *DB) *Store[invoice.Invoice, *invoice.Invoice] {
	return newStore[invoice.Invoice](db, "invoices", invoice.ErrInvoiceNotFound)
}

func NewVisitRepository(db *DB) *Store[visit.Visit, *visit.Visit] {
	return newStore[visit.Visit](db, "visits", visit.ErrVisitNotFound)
}

func NewDispensingRepository(db *DB) *Store[dispensing.Dispensing, *dispensing.Dispensing] {
	return newStore[dispensing.Dispensing](db, "dispensings", dispensing.ErrDispensingNotFound)
}

func NewDirectDispensingRepository(db *DB) *Store[dispensing.DirectDispensing, *dispensing.DirectDispensing] {
	return newStore[dispensing.DirectDispensing](db, "direct_dispensings", dispensing.ErrDirectDispensingNotFound)
}

type UserRepository struct {
	*Store[domain.User, *domain.User]
}

func NewUserRepository(db *DB) *UserRepository {
	s := newStore[domain.User](db, "users", domain.ErrUserNotFound).
		unique(func(u *domain.User) string { return u.Email }, domain.ErrEmailTaken)
	return &UserRepository{Store: s}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	u, found, err := r.lookup(email)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) UpdateLoginAttempt(ctx context.Context, id uuid.UUID, success bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, err := r.get(id)
	if err != nil {
		return err
	}
	u.RegisterLoginAttempt(success, time.Now().UTC())
	return r.replace(u)
}

// AuditRepository keeps audit rows in insertion order.
type AuditRepository struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	r.mu.Lock()
	r.entries = append(r.entries, *entry)
	r.mu.Unlock()
	return nil
}

func (r *AuditRepository) Entries() []domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}
