package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/hms/internal/config"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/dispensing"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/requisition"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/stock"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/domain/visit"
	"github.com/dmehra2102/prod-golang-projects/hms/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/hms/pkg/metrics"
)

type testEnv struct {
	db        *memory.DB
	metrics   *metrics.Collector
	auditRepo *memory.AuditRepository
	audit     *AuditService
	log       *zap.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	m := metrics.NewCollector("hms", prometheus.NewRegistry())
	repo := memory.NewAuditRepository()
	log := zap.NewNop()
	return &testEnv{
		db:        memory.NewDB(),
		metrics:   m,
		auditRepo: repo,
		audit:     NewAuditService(repo, m, log),
		log:       log,
	}
}

var admin = Actor{Role: domain.RoleAdmin, IPAddress: "127.0.0.1", RequestID: "test"}

func intPtr(v int) *int { return &v }

func counterValue(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("reading metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestStockService_ReceiveScenario(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStockService(memory.NewStockRepository(env.db), env.audit, env.metrics, env.log)
	ctx := context.Background()

	if _, err := svc.Create(ctx, &stock.Item{Name: "Paracetamol", Quantity: 0}, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	item, err := svc.Receive(ctx, stock.ReceiveCommand{Medicine: "Paracetamol", Qty: 50}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 50 {
		t.Errorf("expected 50, got %d", item.Quantity)
	}

	item, err = svc.Receive(ctx, stock.ReceiveCommand{Medicine: "Paracetamol", Qty: 20}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 70 {
		t.Errorf("expected 70, got %d", item.Quantity)
	}

	items, _ := svc.List(ctx)
	if len(items) != 1 {
		t.Errorf("expected 1 stock item, got %d", len(items))
	}
	if got := counterValue(t, env.metrics.StockReceivedUnits); got != 70 {
		t.Errorf("expected 70 units received, got %v", got)
	}
}

func TestStockService_ReceiveValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStockService(memory.NewStockRepository(env.db), env.audit, env.metrics, env.log)

	tests := []stock.ReceiveCommand{
		{Medicine: "", Qty: 5},
		{Medicine: "   ", Qty: 5},
		{Medicine: "Paracetamol", Qty: 0},
		{Medicine: "Paracetamol", Qty: -3},
	}
	for _, cmd := range tests {
		var verr *domain.ValidationError
		if _, err := svc.Receive(context.Background(), cmd, admin); !errors.As(err, &verr) {
			t.Errorf("%+v: expected validation error, got %v", cmd, err)
		}
	}
}

func TestResourceService_Update(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPatientService(memory.NewPatientRepository(env.db), env.audit, env.metrics, env.log)
	ctx := context.Background()

	p, err := svc.Create(ctx, &patient.Patient{FirstName: "Ada", LastName: "Lovelace", Phone: "555"}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bogusID := uuid.New()
	patch := []byte(`{"phone":"777","_id":"` + bogusID.String() + `","version":42}`)
	updated, err := svc.Update(ctx, p.ID, patch, nil, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Phone != "777" || updated.FirstName != "Ada" {
		t.Errorf("expected merged patch, got %+v", updated)
	}
	if updated.ID != p.ID || updated.Version != 2 {
		t.Errorf("expected header kept with version 2, got id %s version %d", updated.ID, updated.Version)
	}

	if _, err := svc.Update(ctx, p.ID, []byte(`{"phone":"1"}`), intPtr(1), admin); !errors.Is(err, domain.ErrVersionConflict) {
		t.Errorf("expected version conflict for stale If-Match, got %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, []byte(`{"firstName":""}`), nil, admin); err == nil {
		t.Error("expected validation error for emptied required field")
	}
	if _, err := svc.Update(ctx, p.ID, []byte(`[1,2]`), nil, admin); err == nil {
		t.Error("expected error for non-object patch")
	}
	if _, err := svc.Update(ctx, uuid.New(), []byte(`{"phone":"1"}`), nil, admin); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New(), admin); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found on delete, got %v", err)
	}

	stored, _ := svc.Get(ctx, p.ID)
	if stored.Phone != "777" {
		t.Errorf("expected failed updates to leave document untouched, got phone %q", stored.Phone)
	}
}

func TestResourceService_CreateIgnoresClientHeader(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStockService(memory.NewStockRepository(env.db), env.audit, env.metrics, env.log)

	item := &stock.Item{Name: "Aspirin"}
	item.ID = uuid.New()
	item.Version = 9
	clientID := item.ID

	created, err := svc.Create(context.Background(), item, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == clientID || created.Version != 1 {
		t.Errorf("expected server-assigned id and version 1, got %s/%d", created.ID, created.Version)
	}
}

func newRequisitionEnv(t *testing.T) (*RequisitionService, *StockService) {
	env := newTestEnv(t)
	stockRepo := memory.NewStockRepository(env.db)
	reqRepo := memory.NewRequisitionRepository(env.db, stockRepo)
	return NewRequisitionService(reqRepo, env.audit, env.metrics, env.log),
		NewStockService(stockRepo, env.audit, env.metrics, env.log)
}

func TestRequisitionService_Defaults(t *testing.T) {
	svc, _ := newRequisitionEnv(t)

	req, err := svc.Create(context.Background(), &requisition.Requisition{
		From:  "Ward B",
		Items: []requisition.Item{{Medicine: "Paracetamol", Qty: 3}},
	}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != requisition.StatusSent {
		t.Errorf("expected Sent, got %s", req.Status)
	}
	if req.Items[0].Status != requisition.ItemPending || req.Items[0].IssuedQty != 0 {
		t.Errorf("expected Pending/0, got %s/%d", req.Items[0].Status, req.Items[0].IssuedQty)
	}
	if _, err := svc.Create(context.Background(), &requisition.Requisition{Items: req.Items}, admin); err == nil {
		t.Error("expected validation error for missing from")
	}
}

func TestRequisitionService_UpdateRules(t *testing.T) {
	svc, _ := newRequisitionEnv(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, &requisition.Requisition{
		From:  "Ward B",
		Items: []requisition.Item{{Medicine: "Paracetamol", Qty: 3}},
	}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	itemID := req.Items[0].ID.String()

	rejected, err := svc.Update(ctx, req.ID, []byte(`{"items":[{"_id":"`+itemID+`","medicine":"Paracetamol","qty":3,"status":"Rejected"}]}`), nil, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejected.Items[0].Status != requisition.ItemRejected {
		t.Errorf("expected Rejected, got %s", rejected.Items[0].Status)
	}
	if rejected.Status != requisition.StatusSent {
		t.Errorf("expected header untouched, got %s", rejected.Status)
	}

	_, err = svc.Update(ctx, req.ID, []byte(`{"items":[{"_id":"`+itemID+`","medicine":"Paracetamol","qty":3,"status":"Pending"}]}`), nil, admin)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected invalid state reopening a rejected item, got %v", err)
	}

	_, err = svc.Update(ctx, req.ID, []byte(`{"items":[{"_id":"`+itemID+`","medicine":"Ibuprofen","qty":3,"status":"Rejected"}]}`), nil, admin)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected invalid state renaming a rejected item, got %v", err)
	}
	_, err = svc.Update(ctx, req.ID, []byte(`{"items":[{"_id":"`+itemID+`","medicine":"Paracetamol","qty":9,"status":"Rejected"}]}`), nil, admin)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected invalid state changing qty of a rejected item, got %v", err)
	}
	_, err = svc.Update(ctx, req.ID, []byte(`{"items":[{"medicine":"Paracetamol","qty":3}]}`), nil, admin)
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected invalid state dropping a rejected item, got %v", err)
	}

	closed, err := svc.Update(ctx, req.ID, []byte(`{"status":"Closed"}`), nil, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed.Status != requisition.StatusClosed || len(closed.Items) != 1 {
		t.Errorf("expected Closed with items kept, got %s with %d items", closed.Status, len(closed.Items))
	}
	if closed.Items[0].Medicine != "Paracetamol" || closed.Items[0].Qty != 3 {
		t.Errorf("expected rejected item unchanged, got %s/%d", closed.Items[0].Medicine, closed.Items[0].Qty)
	}
}

func TestRequisitionService_UpdateReplacesItemArray(t *testing.T) {
	svc, _ := newRequisitionEnv(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, &requisition.Requisition{
		From: "Ward C",
		Items: []requisition.Item{
			{Medicine: "Paracetamol", Qty: 3},
			{Medicine: "Gauze", Qty: 1},
		},
	}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, err := svc.Update(ctx, req.ID, []byte(`{"items":[{"medicine":"Saline","qty":2}]}`), nil, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(updated.Items))
	}
	item := updated.Items[0]
	if item.Medicine != "Saline" || item.Qty != 2 {
		t.Errorf("expected Saline/2, got %s/%d", item.Medicine, item.Qty)
	}
	if item.ID == req.Items[0].ID || item.ID == uuid.Nil {
		t.Errorf("expected a new item id, got %s", item.ID)
	}
	if item.Status != requisition.ItemPending {
		t.Errorf("expected Pending, got %s", item.Status)
	}
}

func TestRequisitionService_IssueAndReject(t *testing.T) {
	svc, stockSvc := newRequisitionEnv(t)
	ctx := context.Background()

	if _, err := stockSvc.Receive(ctx, stock.ReceiveCommand{Medicine: "Paracetamol", Qty: 10}, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req, err := svc.Create(ctx, &requisition.Requisition{
		From: "Ward C",
		Items: []requisition.Item{
			{Medicine: "Paracetamol", Qty: 4},
			{Medicine: "Paracetamol", Qty: 4},
		},
	}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.IssueItem(ctx, req.ID, req.Items[0].ID, 0, admin); err == nil {
		t.Error("expected validation error for zero qty")
	}

	issued, err := svc.IssueItem(ctx, req.ID, req.Items[0].ID, 4, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issued.Items[0].IssuedQty != 4 {
		t.Errorf("expected issuedQty 4, got %d", issued.Items[0].IssuedQty)
	}

	rejected, err := svc.RejectItem(ctx, req.ID, req.Items[1].ID, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejected.Items[1].Status != requisition.ItemRejected {
		t.Errorf("expected Rejected, got %s", rejected.Items[1].Status)
	}
	if _, err := svc.RejectItem(ctx, req.ID, req.Items[1].ID, admin); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected invalid state, got %v", err)
	}

	items, _ := stockSvc.List(ctx)
	if items[0].Quantity != 6 {
		t.Errorf("expected 6 units left, got %d", items[0].Quantity)
	}
}

func TestVisitService_Scenario(t *testing.T) {
	env := newTestEnv(t)
	svc := NewVisitService(memory.NewVisitRepository(env.db), env.audit, env.metrics, env.log)
	ctx := context.Background()

	v, err := svc.Create(ctx, &visit.Visit{
		Patient:         uuid.New(),
		Doctor:          uuid.New(),
		PaymentRequired: true,
		Status:          visit.StatusCompleted,
	}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != visit.StatusPendingPayment {
		t.Fatalf("expected %q, got %q", visit.StatusPendingPayment, v.Status)
	}

	v, err = svc.ConfirmPayment(ctx, v.ID, nil, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != visit.StatusPending {
		t.Errorf("expected %q, got %q", visit.StatusPending, v.Status)
	}

	if _, err := svc.ConfirmPayment(ctx, v.ID, nil, admin); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected invalid state on second confirm, got %v", err)
	}

	if _, err := svc.RecordVitals(ctx, v.ID, visit.Vitals{BloodPressure: "120/80", Pulse: 72}, nil, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddLabOrder(ctx, v.ID, visit.LabOrder{Test: "CBC"}, nil, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, err = svc.End(ctx, v.ID, "discharged", nil, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != visit.StatusCompleted || v.Notes != "discharged" {
		t.Errorf("expected Completed with notes, got %q / %q", v.Status, v.Notes)
	}
	if v.Vitals == nil || v.Vitals.Pulse != 72 || len(v.LabOrders) != 1 {
		t.Errorf("expected vitals and lab order kept, got %+v", v)
	}

	if _, err := svc.End(ctx, v.ID, "overwrite", nil, admin); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected invalid state ending a completed visit, got %v", err)
	}
	stored, _ := svc.Get(ctx, v.ID)
	if stored.Notes != "discharged" {
		t.Errorf("expected notes unchanged, got %q", stored.Notes)
	}

	if got := counterValue(t, env.metrics.VisitTransitionsTotal.WithLabelValues(string(visit.StatusCompleted))); got != 1 {
		t.Errorf("expected one completed transition, got %v", got)
	}
}

func TestVisitService_StaleVersion(t *testing.T) {
	env := newTestEnv(t)
	svc := NewVisitService(memory.NewVisitRepository(env.db), env.audit, env.metrics, env.log)
	ctx := context.Background()

	v, err := svc.Create(ctx, &visit.Visit{Patient: uuid.New(), Doctor: uuid.New()}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Start(ctx, v.ID, intPtr(v.Version+1), admin); !errors.Is(err, domain.ErrVersionConflict) {
		t.Errorf("expected version conflict, got %v", err)
	}
	started, err := svc.Start(ctx, v.ID, intPtr(v.Version), admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if started.Status != visit.StatusInProgress {
		t.Errorf("expected In-Progress, got %s", started.Status)
	}
}

func TestVisitService_CreateValidatesClinicalData(t *testing.T) {
	env := newTestEnv(t)
	svc := NewVisitService(memory.NewVisitRepository(env.db), env.audit, env.metrics, env.log)
	ctx := context.Background()

	_, err := svc.Create(ctx, &visit.Visit{
		Patient:       uuid.New(),
		Doctor:        uuid.New(),
		Vitals:        &visit.Vitals{OxygenSaturation: 500, Pulse: -3},
		LabOrders:     []visit.LabOrder{{Test: ""}},
		Prescriptions: []visit.Prescription{{Medicine: "Amoxicillin", Qty: -5}},
	}, admin)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 4 {
		t.Errorf("expected 4 failing fields, got %v", verr.Fields)
	}

	visits, _ := svc.List(ctx)
	if len(visits) != 0 {
		t.Errorf("expected nothing stored, got %d visits", len(visits))
	}
}

func TestDispensingService_ExpandsPatient(t *testing.T) {
	env := newTestEnv(t)
	patients := memory.NewPatientRepository(env.db)
	patientSvc := NewPatientService(patients, env.audit, env.metrics, env.log)
	svc := NewDispensingService(memory.NewDispensingRepository(env.db), patients, env.audit, env.metrics, env.log)
	ctx := context.Background()

	p, err := patientSvc.Create(ctx, &patient.Patient{FirstName: "Grace", LastName: "Hopper"}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, &dispensing.Dispensing{Patient: p.ID, Medicine: "Ibuprofen", Qty: 2}, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, &dispensing.Dispensing{Patient: p.ID, Medicine: "Ibuprofen", Qty: 0}, admin); err == nil {
		t.Error("expected validation error for zero qty")
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Patient == nil || list[0].Patient.FirstName != "Grace" {
		t.Fatalf("expected one record with patient expanded, got %+v", list)
	}
	if got := counterValue(t, env.metrics.DispensingsTotal.WithLabelValues("patient")); got != 1 {
		t.Errorf("expected 1 dispensing counted, got %v", got)
	}
}

func newAuthEnv(t *testing.T) (*UserService, *AuthService, *memory.UserRepository) {
	env := newTestEnv(t)
	users := memory.NewUserRepository(env.db)
	jwt := auth.NewJWTManager(config.JWTConfig{
		Secret:          "service-test-secret-service-test",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "hms-test",
	})
	return NewUserService(users, env.audit, env.metrics, env.log),
		NewAuthService(users, jwt, env.audit, env.metrics, env.log),
		users
}

func TestAuthService_LoginAndLockout(t *testing.T) {
	userSvc, authSvc, _ := newAuthEnv(t)
	ctx := context.Background()

	if _, err := userSvc.Register(ctx, CreateUserInput{Email: "pharm@example.com", Name: "P", Role: domain.RolePharmacist, Password: "short"}, admin); err == nil {
		t.Fatal("expected weak password to be rejected")
	}
	u, err := userSvc.Register(ctx, CreateUserInput{Email: "Pharm@Example.com", Name: "P", Role: domain.RolePharmacist, Password: "correct-horse-battery"}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !u.IsActive {
		t.Error("expected user active by default")
	}
	if _, err := userSvc.Register(ctx, CreateUserInput{Email: "pharm@example.com", Name: "Q", Role: domain.RoleNurse, Password: "another-long-password"}, admin); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected duplicate email, got %v", err)
	}

	pair, err := authSvc.Login(ctx, "pharm@example.com", "correct-horse-battery", admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := authSvc.Authenticate(pair.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != domain.RolePharmacist {
		t.Errorf("unexpected claims %+v", claims)
	}
	if _, err := authSvc.RefreshToken(ctx, pair.RefreshToken); err != nil {
		t.Errorf("unexpected refresh error: %v", err)
	}

	if _, err := authSvc.Login(ctx, "nobody@example.com", "whatever-password", admin); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected invalid credentials for unknown email, got %v", err)
	}
	for i := 0; i < domain.MaxFailedLogins; i++ {
		if _, err := authSvc.Login(ctx, "pharm@example.com", "wrong-password!", admin); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected invalid credentials, got %v", err)
		}
	}
	if _, err := authSvc.Login(ctx, "pharm@example.com", "correct-horse-battery", admin); !errors.Is(err, ErrAccountLocked) {
		t.Errorf("expected locked account, got %v", err)
	}
}

func TestUserService_PasswordChangeViaUpdate(t *testing.T) {
	userSvc, authSvc, _ := newAuthEnv(t)
	ctx := context.Background()

	u, err := userSvc.Register(ctx, CreateUserInput{Email: "doc@example.com", Name: "D", Role: domain.RoleDoctor, Password: "first-password-123"}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := userSvc.Update(ctx, u.ID, []byte(`{"password":"tiny"}`), nil, admin); err == nil {
		t.Error("expected weak password to be rejected")
	}
	updated, err := userSvc.Update(ctx, u.ID, []byte(`{"name":"Dr D","password":"second-password-456"}`), nil, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Dr D" {
		t.Errorf("expected name updated, got %q", updated.Name)
	}

	if _, err := authSvc.Login(ctx, "doc@example.com", "first-password-123", admin); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected old password rejected, got %v", err)
	}
	if _, err := authSvc.Login(ctx, "doc@example.com", "second-password-456", admin); err != nil {
		t.Errorf("expected new password accepted, got %v", err)
	}

	if _, err := userSvc.Update(ctx, u.ID, []byte(`{"name":"No Hash Loss"}`), nil, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := authSvc.Login(ctx, "doc@example.com", "second-password-456", admin); err != nil {
		t.Errorf("expected password hash kept across plain updates, got %v", err)
	}
}

func TestUserService_CannotDeleteSelf(t *testing.T) {
	userSvc, _, _ := newAuthEnv(t)
	ctx := context.Background()

	u, err := userSvc.Register(ctx, CreateUserInput{Email: "root@example.com", Name: "Root", Role: domain.RoleAdmin, Password: "root-password-123"}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	self := admin
	self.UserID = &u.ID
	if err := userSvc.Delete(ctx, u.ID, self); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := userSvc.Delete(ctx, u.ID, admin); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuditService_PersistsWrites(t *testing.T) {
	env := newTestEnv(t)
	svc := NewStockService(memory.NewStockRepository(env.db), env.audit, env.metrics, env.log)
	ctx := context.Background()

	item, err := svc.Create(ctx, &stock.Item{Name: "Zinc"}, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Delete(ctx, item.ID, admin); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.audit.Shutdown()

	entries := env.auditRepo.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Action != domain.ActionCreate || entries[1].Action != domain.ActionDelete {
		t.Errorf("unexpected actions %s, %s", entries[0].Action, entries[1].Action)
	}
	if entries[0].ResourceType != "stock_item" || entries[0].RequestID != "test" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if got := counterValue(t, env.metrics.AuditEntriesTotal); got != 2 {
		t.Errorf("expected 2 audit entries counted, got %v", got)
	}
}

func TestAuditService_LogAfterShutdownIsDropped(t *testing.T) {
	env := newTestEnv(t)
	env.audit.LogAsync(context.Background(), AuditEntry{Actor: admin, Action: domain.ActionCreate, ResourceType: "patient"})
	env.audit.Shutdown()

	env.audit.LogAsync(context.Background(), AuditEntry{Actor: admin, Action: domain.ActionDelete, ResourceType: "patient"})
	env.audit.Shutdown()

	if n := len(env.auditRepo.Entries()); n != 1 {
		t.Errorf("expected 1 persisted entry, got %d", n)
	}
	if got := counterValue(t, env.metrics.AuditBufferDropped); got != 1 {
		t.Errorf("expected 1 dropped entry, got %v", got)
	}
}
