package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/require"

	"github.com/imkarn-it/my-village-sub003/backend/services/village-service/internal/config"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-models"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-repositories"
	"github.com/imkarn-it/my-village-sub003/backend/shared/go-utils"
)

// In-memory repositories. Each embeds its interface so calling a method a
// test did not expect panics loudly.

type fakeBills struct {
	repositories.BillRepository
	byID    map[uuid.UUID]*models.Bill
	summary []repositories.BillStatusTotal
}

func newFakeBills() *fakeBills { return &fakeBills{byID: map[uuid.UUID]*models.Bill{}} }

func (f *fakeBills) put(b *models.Bill) {
	c := *b
	f.byID[b.ID] = &c
}

func (f *fakeBills) CreateMany(_ context.Context, bills []*models.Bill) error {
	for _, b := range bills {
		f.put(b)
	}
	return nil
}

func (f *fakeBills) GetByID(_ context.Context, id uuid.UUID) (*models.Bill, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (f *fakeBills) GetByPaymentIntent(_ context.Context, intentID string) (*models.Bill, error) {
	for _, b := range f.byID {
		if b.StripePaymentIntentID != nil && *b.StripePaymentIntentID == intentID {
			c := *b
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeBills) List(_ context.Context, flt repositories.BillFilter) ([]*models.Bill, int, error) {
	var out []*models.Bill
	for _, b := range f.byID {
		if b.ProjectID != flt.ProjectID || (flt.UnitID != nil && *flt.UnitID != b.UnitID) {
			continue
		}
		c := *b
		out = append(out, &c)
	}
	return out, len(out), nil
}

func (f *fakeBills) Summary(context.Context, uuid.UUID, *uuid.UUID) ([]repositories.BillStatusTotal, error) {
	return f.summary, nil
}

func (f *fakeBills) MarkOverdue(_ context.Context, before time.Time) ([]*models.Bill, error) {
	var out []*models.Bill
	for _, b := range f.byID {
		if b.Status == models.BillStatusPending && b.DueDate.Before(before) {
			b.Status = models.BillStatusOverdue
			b.RowVersion++
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeBills) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Bill) error) error {
	b, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c := *b
	if err := mutate(&c); err != nil {
		return err
	}
	c.RowVersion++
	f.put(&c)
	return nil
}

// fakePayments shares the bill store so the transactional methods can
// apply both sides or neither.
type fakePayments struct {
	repositories.PaymentRepository
	bills      *fakeBills
	byID       map[uuid.UUID]*models.Payment
	createErr  error
	slipChecks map[uuid.UUID][]byte
}

func newFakePayments(bills *fakeBills) *fakePayments {
	return &fakePayments{bills: bills, byID: map[uuid.UUID]*models.Payment{}, slipChecks: map[uuid.UUID][]byte{}}
}

func (f *fakePayments) CreateWithBill(_ context.Context, p *models.Payment, mutate func(*models.Bill) error) (*models.Bill, error) {
	b, ok := f.bills.byID[p.BillID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *b
	if err := mutate(&c); err != nil {
		return nil, err
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	c.RowVersion++
	f.bills.put(&c)
	stored := *p
	f.byID[p.ID] = &stored
	return &c, nil
}

func (f *fakePayments) UpdateWithBill(_ context.Context, id uuid.UUID, mutate func(*models.Payment, *models.Bill) error) (*models.Payment, *models.Bill, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	b, ok := f.bills.byID[p.BillID]
	if !ok {
		return nil, nil, pgx.ErrNoRows
	}
	pc, bc := *p, *b
	if err := mutate(&pc, &bc); err != nil {
		return nil, nil, err
	}
	pc.RowVersion++
	bc.RowVersion++
	storedP, storedB := pc, bc
	f.byID[id] = &storedP
	f.bills.put(&storedB)
	return &pc, &bc, nil
}

// withStatus returns the stored payments for a bill in the given status.
func (f *fakePayments) withStatus(billID uuid.UUID, status models.PaymentStatus) []*models.Payment {
	var out []*models.Payment
	for _, p := range f.byID {
		if p.BillID == billID && p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakePayments) Create(_ context.Context, p *models.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	c := *p
	f.byID[p.ID] = &c
	return nil
}

func (f *fakePayments) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (f *fakePayments) List(_ context.Context, flt repositories.PaymentFilter) ([]*models.Payment, int, error) {
	var out []*models.Payment
	for _, p := range f.byID {
		switch {
		case p.ProjectID != flt.ProjectID,
			flt.PaidBy != nil && *flt.PaidBy != p.PaidBy,
			flt.BillID != nil && *flt.BillID != p.BillID,
			flt.Status != "" && flt.Status != p.Status,
			flt.Method != "" && flt.Method != p.Method,
			flt.Reference != nil && (p.Reference == nil || *p.Reference != *flt.Reference):
			continue
		}
		c := *p
		out = append(out, &c)
	}
	return out, len(out), nil
}

func (f *fakePayments) SetSlipCheck(_ context.Context, id uuid.UUID, result []byte) error {
	f.slipChecks[id] = result
	return nil
}

func (f *fakePayments) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Payment) error) error {
	p, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c := *p
	if err := mutate(&c); err != nil {
		return err
	}
	c.RowVersion++
	stored := c
	f.byID[id] = &stored
	return nil
}

type fakeUnits struct {
	repositories.UnitRepository
	list []*models.Unit
}

func (f *fakeUnits) GetByID(_ context.Context, id uuid.UUID) (*models.Unit, error) {
	for _, u := range f.list {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUnits) List(_ context.Context, flt repositories.UnitFilter) ([]*models.Unit, int, error) {
	var out []*models.Unit
	for _, u := range f.list {
		if u.ProjectID == flt.ProjectID {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

type fakeUsers struct {
	repositories.UserRepository
	list []*models.User
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.list {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) ListByRoles(_ context.Context, projectID uuid.UUID, roles ...models.UserRole) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.list {
		if u.ProjectID == nil || *u.ProjectID != projectID {
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (f *fakeUsers) ListActiveByUnit(_ context.Context, unitID uuid.UUID) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.list {
		if u.UnitID != nil && *u.UnitID == unitID && u.Status == models.UserStatusActive {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeProjects struct {
	repositories.ProjectRepository
	list []*models.Project
}

func (f *fakeProjects) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	for _, p := range f.list {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

type fakeNotifications struct {
	repositories.NotificationRepository
	rows        []*models.Notification
	purgeBefore time.Time
}

func (f *fakeNotifications) CreateMany(_ context.Context, list []*models.Notification) error {
	f.rows = append(f.rows, list...)
	return nil
}

func (f *fakeNotifications) PurgeReadBefore(_ context.Context, before time.Time) (int64, error) {
	f.purgeBefore = before
	return 3, nil
}

// recipients returns the user IDs notified with the given title.
func (f *fakeNotifications) recipients(title string) []uuid.UUID {
	var ids []uuid.UUID
	for _, n := range f.rows {
		if n.Title == title {
			ids = append(ids, n.UserID)
		}
	}
	return ids
}

type fakeAuditLogs struct {
	repositories.AuditLogRepository
	entries []*models.AuditLog
}

func (f *fakeAuditLogs) Create(_ context.Context, e *models.AuditLog) error {
	f.entries = append(f.entries, e)
	return nil
}

type fakeFeatures struct {
	repositories.ProjectFeatureRepository
	overrides map[models.FeatureKey]bool
}

func (f *fakeFeatures) Get(_ context.Context, projectID uuid.UUID, key models.FeatureKey) (*models.ProjectFeature, error) {
	v, ok := f.overrides[key]
	if !ok {
		return nil, nil
	}
	return &models.ProjectFeature{ProjectID: projectID, Key: key, Enabled: v}, nil
}

// testEnv is one project with a unit, an admin and an active resident.
type testEnv struct {
	project  *models.Project
	unit     *models.Unit
	admin    *models.User
	resident *models.User

	bills    *fakeBills
	payments *fakePayments
	units    *fakeUnits
	users    *fakeUsers
	projects *fakeProjects
	notifs   *fakeNotifications
	audits   *fakeAuditLogs
	features *fakeFeatures

	audit         *AuditService
	featureSvc    *FeatureService
	notifications *NotificationService
	billSvc       *BillService
	paymentSvc    *PaymentService
	now           time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{now: time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)}

	e.project = &models.Project{ID: uuid.New(), Name: "Baan Suan", Code: "BSN", Latitude: 13.7563, Longitude: 100.5018, GeofenceRadiusM: 300}
	e.unit = &models.Unit{ID: uuid.New(), ProjectID: e.project.ID, HouseNumber: "99/1"}
	e.admin = &models.User{ID: uuid.New(), ProjectID: &e.project.ID, Role: models.RoleAdmin, Status: models.UserStatusActive, Email: "office@example.com"}
	e.resident = &models.User{ID: uuid.New(), ProjectID: &e.project.ID, UnitID: &e.unit.ID, Role: models.RoleResident, Status: models.UserStatusActive, Email: "resident@example.com"}

	e.bills = newFakeBills()
	e.payments = newFakePayments(e.bills)
	e.units = &fakeUnits{list: []*models.Unit{e.unit}}
	e.users = &fakeUsers{list: []*models.User{e.admin, e.resident}}
	e.projects = &fakeProjects{list: []*models.Project{e.project}}
	e.notifs = &fakeNotifications{}
	e.audits = &fakeAuditLogs{}
	e.features = &fakeFeatures{overrides: map[models.FeatureKey]bool{}}

	cfg := &config.Config{OrganizationName: "My Village", AppName: "village-service"}
	e.audit = NewAuditService(e.audits)
	e.featureSvc = NewFeatureService(e.features, nil, e.audit)
	e.notifications = NewNotificationService(e.notifs, e.users, e.featureSvc, NewEmailService(cfg, nil), NewSMSService(nil))

	e.billSvc = NewBillService(e.bills, e.units, e.users, e.projects, e.notifications, e.audit)
	e.billSvc.now = func() time.Time { return e.now }
	e.paymentSvc = NewPaymentService(e.payments, e.billSvc, e.featureSvc, NewSlipCheckService(""), e.notifications, e.audit)
	e.paymentSvc.now = func() time.Time { return e.now }
	return e
}

func (e *testEnv) adminActor() Actor {
	return Actor{UserID: e.admin.ID, Role: models.RoleAdmin, ProjectID: e.project.ID}
}

func (e *testEnv) residentActor() Actor {
	return Actor{UserID: e.resident.ID, Role: models.RoleResident, ProjectID: e.project.ID}
}

func (e *testEnv) addBill(status models.BillStatus, amount int64, due time.Time) *models.Bill {
	b := &models.Bill{
		ID:            uuid.New(),
		ProjectID:     e.project.ID,
		UnitID:        e.unit.ID,
		Type:          models.BillTypeCommonFee,
		AmountSatang:  amount,
		BillingPeriod: "2025-03",
		DueDate:       due,
		Status:        status,
		IssuedBy:      e.admin.ID,
	}
	e.bills.put(b)
	return b
}

func (e *testEnv) addPayment(bill *models.Bill, status models.PaymentStatus) *models.Payment {
	p := &models.Payment{
		ID:           uuid.New(),
		ProjectID:    bill.ProjectID,
		BillID:       bill.ID,
		PaidBy:       e.resident.ID,
		AmountSatang: bill.AmountSatang,
		Method:       models.PaymentMethodTransfer,
		Status:       status,
	}
	c := *p
	e.payments.byID[p.ID] = &c
	return p
}

func (e *testEnv) bill(id uuid.UUID) *models.Bill {
	return e.bills.byID[id]
}

func requireAppError(t *testing.T, err error, status int, code string) *utils.AppError {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected *utils.AppError, got %v", err)
	require.Equal(t, status, appErr.StatusCode)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

type fakeAttendance struct {
	repositories.AttendanceRepository
	byID    map[uuid.UUID]*models.Attendance
	lastFlt repositories.AttendanceFilter
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{byID: map[uuid.UUID]*models.Attendance{}}
}

func (f *fakeAttendance) Create(_ context.Context, a *models.Attendance) error {
	c := *a
	f.byID[a.ID] = &c
	return nil
}

func (f *fakeAttendance) GetOpenByUser(_ context.Context, userID uuid.UUID) (*models.Attendance, error) {
	for _, a := range f.byID {
		if a.UserID == userID && a.IsOpen() {
			c := *a
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendance) List(_ context.Context, flt repositories.AttendanceFilter) ([]*models.Attendance, int, error) {
	f.lastFlt = flt
	return nil, 0, nil
}

func (f *fakeAttendance) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Attendance) error) error {
	a, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c := *a
	if err := mutate(&c); err != nil {
		return err
	}
	c.RowVersion++
	stored := c
	f.byID[id] = &stored
	return nil
}

type fakePatrol struct {
	repositories.PatrolRepository
	checkpoints map[uuid.UUID]*models.PatrolCheckpoint
	logs        []*models.PatrolLog
	createErr   error
}

func newFakePatrol() *fakePatrol {
	return &fakePatrol{checkpoints: map[uuid.UUID]*models.PatrolCheckpoint{}}
}

func (f *fakePatrol) CreateCheckpoint(_ context.Context, c *models.PatrolCheckpoint) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *c
	f.checkpoints[c.ID] = &cp
	return nil
}

func (f *fakePatrol) GetCheckpoint(_ context.Context, id uuid.UUID) (*models.PatrolCheckpoint, error) {
	c, ok := f.checkpoints[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakePatrol) GetCheckpointByCode(_ context.Context, projectID uuid.UUID, code string) (*models.PatrolCheckpoint, error) {
	for _, c := range f.checkpoints {
		if c.ProjectID == projectID && c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePatrol) UpdateCheckpointWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.PatrolCheckpoint) error) error {
	c, ok := f.checkpoints[id]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *c
	if err := mutate(&cp); err != nil {
		return err
	}
	f.checkpoints[id] = &cp
	return nil
}

func (f *fakePatrol) CreateLog(_ context.Context, l *models.PatrolLog) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeUsers) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.User) error) error {
	for i, u := range f.list {
		if u.ID != id {
			continue
		}
		c := *u
		if err := mutate(&c); err != nil {
			return err
		}
		c.RowVersion++
		f.list[i] = &c
		return nil
	}
	return pgx.ErrNoRows
}

type fakeMaintenance struct {
	repositories.MaintenanceRepository
	byID map[uuid.UUID]*models.MaintenanceRequest
}

func newFakeMaintenance() *fakeMaintenance {
	return &fakeMaintenance{byID: map[uuid.UUID]*models.MaintenanceRequest{}}
}

func (f *fakeMaintenance) Create(_ context.Context, m *models.MaintenanceRequest) error {
	c := *m
	f.byID[m.ID] = &c
	return nil
}

func (f *fakeMaintenance) GetByID(_ context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (f *fakeMaintenance) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.MaintenanceRequest) error) error {
	m, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c := *m
	if err := mutate(&c); err != nil {
		return err
	}
	c.RowVersion++
	f.byID[id] = &c
	return nil
}

func (f *fakeMaintenance) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeFacilities struct {
	repositories.FacilityRepository
	byID map[uuid.UUID]*models.Facility
}

func (f *fakeFacilities) GetByID(_ context.Context, id uuid.UUID) (*models.Facility, error) {
	fac, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *fac
	return &c, nil
}

type fakeBookings struct {
	repositories.BookingRepository
	byID map[uuid.UUID]*models.Booking
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{byID: map[uuid.UUID]*models.Booking{}}
}

func (f *fakeBookings) CreateIfFree(_ context.Context, b *models.Booking) (*models.Booking, error) {
	for _, existing := range f.byID {
		if existing.FacilityID == b.FacilityID && existing.Status.Holds() && existing.Overlaps(b.StartTime, b.EndTime) {
			c := *existing
			return &c, nil
		}
	}
	c := *b
	f.byID[b.ID] = &c
	return nil, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (f *fakeBookings) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Booking) error) error {
	b, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c := *b
	if err := mutate(&c); err != nil {
		return err
	}
	c.RowVersion++
	f.byID[id] = &c
	return nil
}

type fakeVisitors struct {
	repositories.VisitorRepository
	byID map[uuid.UUID]*models.Visitor
}

func newFakeVisitors() *fakeVisitors {
	return &fakeVisitors{byID: map[uuid.UUID]*models.Visitor{}}
}

func (f *fakeVisitors) Create(_ context.Context, v *models.Visitor) error {
	c := *v
	f.byID[v.ID] = &c
	return nil
}

func (f *fakeVisitors) GetByID(_ context.Context, id uuid.UUID) (*models.Visitor, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (f *fakeVisitors) GetByQRToken(_ context.Context, projectID uuid.UUID, token string) (*models.Visitor, error) {
	for _, v := range f.byID {
		if v.ProjectID == projectID && v.QRToken == token {
			c := *v
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeVisitors) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Visitor) error) error {
	v, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	c := *v
	if err := mutate(&c); err != nil {
		return err
	}
	c.RowVersion++
	f.byID[id] = &c
	return nil
}

// fakeFlags stands in for the LaunchDarkly client.
type fakeFlags struct {
	values   map[string]bool
	err      error
	contexts []ldcontext.Context
}

func (f *fakeFlags) BoolVariation(key string, c ldcontext.Context, defaultVal bool) (bool, error) {
	f.contexts = append(f.contexts, c)
	if f.err != nil {
		return defaultVal, f.err
	}
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return defaultVal, nil
}

type recordingEmail struct {
	sent []*mail.SGMailV3
}

func (r *recordingEmail) Send(m *mail.SGMailV3) (*rest.Response, error) {
	r.sent = append(r.sent, m)
	return &rest.Response{StatusCode: 202}, nil
}

type recordingSMS struct {
	to []string
}

func (r *recordingSMS) SendSMS(_ context.Context, to, _ string) error {
	r.to = append(r.to, to)
	return nil
}
