package services

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Govind-619/DomainDesk/metrics"
	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/repository"
	"github.com/Govind-619/DomainDesk/testutil"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "rzp_test_secret"

type fakeGateway struct {
	mu       sync.Mutex
	orders   []OrderRequest
	opened   map[string]*Order
	err      error
	fetchErr error
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	g.orders = append(g.orders, req)
	order := &Order{ID: "order_Test123", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created", Notes: req.Notes}
	g.open(order)
	return order, nil
}

func (g *fakeGateway) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	order, ok := g.opened[orderID]
	if !ok {
		return nil, errors.New("The id provided does not exist")
	}
	return order, nil
}

// open records an order as if the provider had created it; callers hold mu
func (g *fakeGateway) open(order *Order) {
	if g.opened == nil {
		g.opened = map[string]*Order{}
	}
	g.opened[order.ID] = order
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(orderID, paymentID, signature, testSecret)
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

type sentMail struct {
	to, subject, text string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, textBody, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, text: textBody})
	return nil
}

type failingDocs struct{}

func (failingDocs) EnsureFolder(title string) (string, error) { return "", errors.New("disk full") }
func (failingDocs) RenameFolder(string, string) (string, error) {
	return "", errors.New("disk full")
}
func (failingDocs) Generate(*models.Project, string, string) (string, error) {
	return "", errors.New("disk full")
}
func (failingDocs) Delete(string) error { return nil }

// brokenWriter has a folder but cannot write new files. It records deletes.
type brokenWriter struct {
	mu      sync.Mutex
	deleted []string
}

func (d *brokenWriter) EnsureFolder(title string) (string, error) { return "/projects/site", nil }
func (d *brokenWriter) RenameFolder(string, string) (string, error) {
	return "/projects/site", nil
}
func (d *brokenWriter) Generate(*models.Project, string, string) (string, error) {
	return "", errors.New("disk full")
}
func (d *brokenWriter) Delete(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, path)
	return nil
}

type renewalFixture struct {
	db       *gorm.DB
	svc      *RenewalService
	gateway  *fakeGateway
	mailer   *fakeMailer
	registry *prometheus.Registry
	user     *models.User
	now      time.Time
}

func newRenewalFixture(t *testing.T, docs DocumentGenerator) *renewalFixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	f := &renewalFixture{
		db:       db,
		gateway:  &fakeGateway{},
		mailer:   &fakeMailer{},
		registry: prometheus.NewRegistry(),
		user:     testutil.CreateTestUser(t, db),
		now:      time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
	}
	if docs == nil {
		gen := NewFileDocumentGenerator(t.TempDir())
		gen.now = func() time.Time { return f.now }
		docs = gen
	}
	f.svc = NewRenewalService(RenewalDeps{
		Projects: repository.NewProjectRepository(db),
		Users:    repository.NewUserRepository(db),
		Gateway:  f.gateway,
		Docs:     docs,
		Mailer:   f.mailer,
		Locker:   NewLocalLocker(),
		Metrics:  metrics.NewRenewalMetrics(f.registry),
		Currency: "INR",
		Now:      func() time.Time { return f.now },
	})
	return f
}

// confirmInput opens a provider order for project and years and returns a
// correctly signed callback for it
func (f *renewalFixture) confirmInput(project *models.Project, paymentID string, years int) ConfirmInput {
	orderID := "order_" + paymentID
	f.gateway.mu.Lock()
	f.gateway.open(&Order{
		ID:     orderID,
		Amount: RenewalAmount(project, years),
		Status: "paid",
		Notes:  map[string]interface{}{"projectId": project.ID, "userId": f.user.ID, "duration": years},
	})
	f.gateway.mu.Unlock()

	return ConfirmInput{
		ProjectID: project.ID,
		UserID:    f.user.ID,
		PaymentID: paymentID,
		OrderID:   orderID,
		Signature: PaymentSignature(orderID, paymentID, testSecret),
		Duration:  years,
	}
}

func (f *renewalFixture) reload(t *testing.T, id string) *models.Project {
	t.Helper()
	project, err := repository.NewProjectRepository(f.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return project
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
		for _, m := range fam.GetMetric() {
			if hasLabel(m, label, value) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) *utils.AppError {
	t.Helper()
	require.Error(t, err)
	appErr := utils.GetAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	return appErr
}

func TestInitiate(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user)

	order, err := f.svc.Initiate(context.Background(), InitiateInput{ProjectID: project.ID, UserID: f.user.ID, Duration: 2})
	require.NoError(t, err)

	assert.Equal(t, "order_Test123", order.OrderID)
	assert.Equal(t, int64(100000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_key", order.KeyID)

	require.Len(t, f.gateway.orders, 1)
	req := f.gateway.orders[0]
	assert.Equal(t, int64(100000), req.Amount)
	assert.Equal(t, BuildReceipt(project.ID, f.now), req.Receipt)
	assert.Equal(t, project.ID, req.Notes["projectId"])
	assert.Equal(t, f.user.ID, req.Notes["userId"])
	assert.Equal(t, 2, req.Notes["duration"])

	assert.Equal(t, 1.0, counterValue(t, f.registry, "domaindesk_renewal_orders_total", "result", metrics.ResultSuccess))

	// nothing is persisted by an order
	assert.Empty(t, f.reload(t, project.ID).RenewalHistory)
}

func TestInitiateFallsBackToDefaultPrice(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) { p.RenewalPrice = 0 })

	order, err := f.svc.Initiate(context.Background(), InitiateInput{ProjectID: project.ID, UserID: f.user.ID, Duration: 1})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultRenewalPrice, order.Amount)
}

func TestInitiateRejections(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user)
	cheap := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) { p.RenewalPrice = 40 })

	cases := []struct {
		name string
		in   InitiateInput
		kind utils.ErrorKind
		code int
	}{
		{"malformed id", InitiateInput{ProjectID: "not-an-id", Duration: 1}, utils.KindInvalidArgument, http.StatusBadRequest},
		{"unknown project", InitiateInput{ProjectID: "0b7c3f52-8f57-4c39-9d7e-1f2a3b4c5d6e", Duration: 1}, utils.KindNotFound, http.StatusNotFound},
		{"zero duration", InitiateInput{ProjectID: project.ID, Duration: 0}, utils.KindInvalidArgument, http.StatusBadRequest},
		{"negative duration", InitiateInput{ProjectID: project.ID, Duration: -3}, utils.KindInvalidArgument, http.StatusBadRequest},
		{"below provider minimum", InitiateInput{ProjectID: cheap.ID, Duration: 2}, utils.KindInvalidArgument, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.UserID = f.user.ID
			_, err := f.svc.Initiate(context.Background(), tc.in)
			appErr := assertKind(t, err, tc.kind)
			assert.Equal(t, tc.code, appErr.Code)
		})
	}
	assert.Empty(t, f.gateway.orders)
}

func TestInitiateProviderFailure(t *testing.T) {
	f := newRenewalFixture(t, nil)
	f.gateway.err = errors.New("The amount must be atleast INR 1.00")
	project := testutil.CreateTestProject(t, f.db, f.user)

	_, err := f.svc.Initiate(context.Background(), InitiateInput{ProjectID: project.ID, UserID: f.user.ID, Duration: 1})
	appErr := assertKind(t, err, utils.KindUpstream)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Failed to create payment order: The amount must be atleast INR 1.00", appErr.Message)
	assert.Equal(t, 1.0, counterValue(t, f.registry, "domaindesk_renewal_orders_total", "result", metrics.ResultUpstreamError))
}

func TestConfirmExtendsExistingExpiry(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) {
		p.DomainEndDate = testutil.Date(2024, time.June, 15)
		p.Status = models.ProjectStatusCompleted
		p.IsActive = false
	})

	result, err := f.svc.Confirm(context.Background(), f.confirmInput(project, "pay_A", 2))
	require.NoError(t, err)
	assert.Nil(t, result.FileError)
	assert.Equal(t, utils.MsgProjectRenewed, result.Message())

	stored := f.reload(t, project.ID)
	require.NotNil(t, stored.DomainEndDate)
	assert.Equal(t, "2026-06-15", stored.DomainEndDate.UTC().Format("2006-01-02"))
	assert.True(t, stored.IsActive)
	assert.Equal(t, models.ProjectStatusInProgress, stored.Status)

	require.Len(t, stored.RenewalHistory, 1)
	record := stored.RenewalHistory[0]
	assert.Equal(t, "pay_A", record.PaymentID)
	assert.Equal(t, "order_pay_A", record.OrderID)
	assert.Equal(t, f.user.ID, record.RenewedByID)
	assert.Equal(t, int64(100000), record.Amount)
	assert.Equal(t, 2, record.Duration)
	assert.Equal(t, "2026-06-15", record.NewEndDate.UTC().Format("2006-01-02"))

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, f.user.Email, f.mailer.sent[0].to)
	assert.Equal(t, "Project Renewal Confirmation", f.mailer.sent[0].subject)
	assert.Contains(t, f.mailer.sent[0].text, "pay_A")
	assert.Contains(t, f.mailer.sent[0].text, "₹1000.00")

	assert.Equal(t, 1.0, counterValue(t, f.registry, "domaindesk_renewal_confirmations_total", "result", metrics.ResultSuccess))
}

func TestConfirmWithoutExpiryStartsFromNow(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) {
		p.DomainEndDate = nil
		p.Status = models.ProjectStatusOnHold
	})

	result, err := f.svc.Confirm(context.Background(), f.confirmInput(project, "pay_B", 1))
	require.NoError(t, err)
	require.NotNil(t, result.Project.DomainEndDate)
	assert.Equal(t, "2026-01-10", result.Project.DomainEndDate.UTC().Format("2006-01-02"))
	// only completed projects move back to in-progress
	assert.Equal(t, models.ProjectStatusOnHold, result.Project.Status)
}

func TestConfirmIsIdempotentPerPayment(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) {
		p.DomainEndDate = testutil.Date(2024, time.June, 15)
	})
	in := f.confirmInput(project, "pay_C", 1)

	_, err := f.svc.Confirm(context.Background(), in)
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), in)
	appErr := assertKind(t, err, utils.KindConflict)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, utils.ErrPaymentProcessed, appErr.Message)

	stored := f.reload(t, project.ID)
	assert.Len(t, stored.RenewalHistory, 1)
	assert.Equal(t, "2025-06-15", stored.DomainEndDate.UTC().Format("2006-01-02"))
	assert.Equal(t, 1.0, counterValue(t, f.registry, "domaindesk_renewal_confirmations_total", "result", metrics.ResultDuplicate))
}

func TestConfirmRejectsTamperedSignature(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user)
	good := f.confirmInput(project, "pay_D", 1)

	mutate := func(s string) string {
		b := []byte(s)
		if b[0] == 'a' {
			b[0] = 'b'
		} else {
			b[0] = 'a'
		}
		return string(b)
	}

	tampered := []ConfirmInput{good, good, good, good}
	tampered[0].Signature = mutate(good.Signature)
	tampered[1].PaymentID = "pay_E"
	tampered[2].OrderID = "order_other"
	tampered[3].Signature = good.Signature[:len(good.Signature)-2]

	for _, in := range tampered {
		_, err := f.svc.Confirm(context.Background(), in)
		appErr := assertKind(t, err, utils.KindAuthenticationFailed)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Equal(t, utils.ErrInvalidSignature, appErr.Message)
	}

	stored := f.reload(t, project.ID)
	assert.Empty(t, stored.RenewalHistory)
	assert.Empty(t, f.mailer.sent)
	assert.Equal(t, 4.0, counterValue(t, f.registry, "domaindesk_renewal_confirmations_total", "result", metrics.ResultBadSignature))
}

func TestConfirmValidationOrder(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user)

	valid := f.confirmInput(project, "pay_F", 1)

	cases := []struct {
		name   string
		mutate func(in *ConfirmInput)
		kind   utils.ErrorKind
		msg    string
	}{
		{"malformed id beats everything", func(in *ConfirmInput) {
			in.ProjectID = "123"
			in.PaymentID = ""
			in.Duration = 0
		}, utils.KindInvalidArgument, utils.ErrInvalidProjectID},
		{"missing project", func(in *ConfirmInput) {
			in.ProjectID = "0b7c3f52-8f57-4c39-9d7e-1f2a3b4c5d6e"
		}, utils.KindNotFound, utils.ErrProjectNotFound},
		{"missing payment id", func(in *ConfirmInput) {
			in.PaymentID = ""
			in.Duration = 0
		}, utils.KindInvalidArgument, utils.ErrPaymentDetails},
		{"missing signature", func(in *ConfirmInput) { in.Signature = "" }, utils.KindInvalidArgument, utils.ErrPaymentDetails},
		{"bad duration before bad format", func(in *ConfirmInput) {
			in.Duration = 0
			in.DocumentFormat = "docx"
		}, utils.KindInvalidArgument, utils.ErrInvalidDuration},
		{"bad format before signature", func(in *ConfirmInput) {
			in.DocumentFormat = "docx"
			in.Signature = "deadbeef"
		}, utils.KindInvalidArgument, "Invalid file format. Allowed: pdf, xlsx, txt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := f.svc.Confirm(context.Background(), in)
			appErr := assertKind(t, err, tc.kind)
			assert.Equal(t, tc.msg, appErr.Message)
		})
	}
	assert.Empty(t, f.reload(t, project.ID).RenewalHistory)
}

func TestConfirmDocumentFailureStillCommits(t *testing.T) {
	f := newRenewalFixture(t, failingDocs{})
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) {
		p.DomainEndDate = testutil.Date(2024, time.June, 15)
	})

	in := f.confirmInput(project, "pay_G", 1)
	in.DocumentFormat = FormatPDF
	result, err := f.svc.Confirm(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, result.FileError)
	assert.Equal(t, "Failed to generate project file: disk full", *result.FileError)
	assert.Equal(t, "Project renewed, but Failed to generate project file: disk full", result.Message())
	assert.Nil(t, result.FilePath)

	stored := f.reload(t, project.ID)
	assert.Len(t, stored.RenewalHistory, 1)
	assert.Equal(t, "2025-06-15", stored.DomainEndDate.UTC().Format("2006-01-02"))
	assert.Len(t, f.mailer.sent, 1)
	assert.Equal(t, 1.0, counterValue(t, f.registry, "domaindesk_renewal_post_commit_failures_total", "step", metrics.StepDocument))
}

func TestConfirmKeepsPreviousDocumentWhenGenerationFails(t *testing.T) {
	docs := &brokenWriter{}
	f := newRenewalFixture(t, docs)
	oldPath := "/projects/site/old.pdf"
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) {
		p.FilePath = &oldPath
	})

	in := f.confirmInput(project, "pay_GX", 1)
	in.DocumentFormat = FormatPDF
	result, err := f.svc.Confirm(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, result.FileError)
	assert.Equal(t, "Failed to generate project file: disk full", *result.FileError)
	assert.Empty(t, docs.deleted)
	require.NotNil(t, result.FilePath)
	assert.Equal(t, oldPath, *result.FilePath)

	stored := f.reload(t, project.ID)
	require.NotNil(t, stored.FilePath)
	assert.Equal(t, oldPath, *stored.FilePath)
	assert.Len(t, stored.RenewalHistory, 1)
}

func TestConfirmJoinsPostCommitFailures(t *testing.T) {
	f := newRenewalFixture(t, failingDocs{})
	f.mailer.err = errors.New("smtp: connection refused")
	project := testutil.CreateTestProject(t, f.db, f.user)

	in := f.confirmInput(project, "pay_H", 1)
	in.DocumentFormat = FormatTXT
	result, err := f.svc.Confirm(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, result.FileError)
	assert.Equal(t, "Failed to generate project file: disk full; Email failed: smtp: connection refused", *result.FileError)
	assert.Len(t, f.reload(t, project.ID).RenewalHistory, 1)
}

func TestConfirmEmailFailureOnly(t *testing.T) {
	f := newRenewalFixture(t, nil)
	f.mailer.err = errors.New("smtp: auth failed")
	project := testutil.CreateTestProject(t, f.db, f.user)

	result, err := f.svc.Confirm(context.Background(), f.confirmInput(project, "pay_I", 1))
	require.NoError(t, err)
	require.NotNil(t, result.FileError)
	assert.Equal(t, "Email failed: smtp: auth failed", *result.FileError)
}

func TestConfirmRegeneratesDocument(t *testing.T) {
	f := newRenewalFixture(t, nil)
	customer := testutil.CreateTestCustomer(t, f.db)
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) {
		p.CustomerID = &customer.ID
	})

	first := f.confirmInput(project, "pay_J", 1)
	first.DocumentFormat = FormatTXT
	result, err := f.svc.Confirm(context.Background(), first)
	require.NoError(t, err)
	require.NotNil(t, result.FilePath)
	oldPath := *result.FilePath

	content, err := os.ReadFile(oldPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Corporate Website")
	assert.Contains(t, string(content), customer.Name)
	assert.Contains(t, string(content), "pay_J")

	f.now = f.now.Add(time.Minute)
	second := f.confirmInput(project, "pay_K", 1)
	second.DocumentFormat = FormatPDF
	result, err = f.svc.Confirm(context.Background(), second)
	require.NoError(t, err)
	require.NotNil(t, result.FilePath)
	assert.NotEqual(t, oldPath, *result.FilePath)
	assert.FileExists(t, *result.FilePath)
	assert.NoFileExists(t, oldPath)

	stored := f.reload(t, project.ID)
	require.NotNil(t, stored.FilePath)
	assert.Equal(t, *result.FilePath, *stored.FilePath)
	assert.Len(t, stored.RenewalHistory, 2)
}

func TestConfirmStoresRenewalTime(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user)

	result, err := f.svc.Confirm(context.Background(), f.confirmInput(project, "pay_TS", 1))
	require.NoError(t, err)
	assert.True(t, result.Project.UpdatedAt.Equal(f.now))

	stored := f.reload(t, project.ID)
	assert.True(t, stored.UpdatedAt.Equal(f.now), "updated_at = %s", stored.UpdatedAt)
	require.Len(t, stored.RenewalHistory, 1)
	assert.True(t, stored.RenewalHistory[0].RenewedAt.Equal(stored.UpdatedAt))
}

func TestConfirmRejectsPaymentForDifferentOrderTerms(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) {
		p.DomainEndDate = testutil.Date(2024, time.June, 15)
	})
	other := testutil.CreateTestProject(t, f.db, f.user)

	order, err := f.svc.Initiate(context.Background(), InitiateInput{ProjectID: project.ID, UserID: f.user.ID, Duration: 1})
	require.NoError(t, err)

	signed := func(projectID string, years int) ConfirmInput {
		return ConfirmInput{
			ProjectID: projectID,
			UserID:    f.user.ID,
			PaymentID: "pay_N",
			OrderID:   order.OrderID,
			Signature: PaymentSignature(order.OrderID, "pay_N", testSecret),
			Duration:  years,
		}
	}

	// a one year payment claimed as ten years
	_, err = f.svc.Confirm(context.Background(), signed(project.ID, 10))
	appErr := assertKind(t, err, utils.KindInvalidArgument)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, utils.ErrOrderMismatch, appErr.Message)

	// the same payment replayed against another project
	_, err = f.svc.Confirm(context.Background(), signed(other.ID, 1))
	appErr = assertKind(t, err, utils.KindInvalidArgument)
	assert.Equal(t, utils.ErrOrderMismatch, appErr.Message)

	assert.Empty(t, f.reload(t, project.ID).RenewalHistory)
	assert.Empty(t, f.reload(t, other.ID).RenewalHistory)
	assert.Equal(t, 2.0, counterValue(t, f.registry, "domaindesk_renewal_confirmations_total", "result", metrics.ResultInvalid))

	result, err := f.svc.Confirm(context.Background(), signed(project.ID, 1))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", result.Project.DomainEndDate.UTC().Format("2006-01-02"))
}

func TestConfirmOrderLookupFailure(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user)
	in := f.confirmInput(project, "pay_O", 1)
	f.gateway.fetchErr = errors.New("Bad gateway")

	_, err := f.svc.Confirm(context.Background(), in)
	appErr := assertKind(t, err, utils.KindUpstream)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Failed to verify payment order: Bad gateway", appErr.Message)
	assert.Empty(t, f.reload(t, project.ID).RenewalHistory)
	assert.Empty(t, f.mailer.sent)
}

func TestConfirmConcurrentSamePayment(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user, func(p *models.Project) {
		p.DomainEndDate = testutil.Date(2024, time.June, 15)
	})
	in := f.confirmInput(project, "pay_L", 1)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Confirm(context.Background(), in)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case utils.IsKind(err, utils.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	stored := f.reload(t, project.ID)
	assert.Len(t, stored.RenewalHistory, 1)
	assert.Equal(t, "2025-06-15", stored.DomainEndDate.UTC().Format("2006-01-02"))
}

func TestConfirmSurvivesCallerCancellationDuringCommit(t *testing.T) {
	f := newRenewalFixture(t, nil)
	project := testutil.CreateTestProject(t, f.db, f.user)

	// hold the project lock so the confirmation parks after validation
	unlock, err := f.svc.locker.Lock(context.Background(), "project:"+project.ID)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Confirm(ctx, f.confirmInput(project, "pay_M", 1))
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	unlock()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("confirmation did not finish")
	}
	assert.Len(t, f.reload(t, project.ID).RenewalHistory, 1)
}

func TestRenewalMessageWithoutProblems(t *testing.T) {
	r := &RenewalResult{}
	assert.Equal(t, "Project renewed successfully", r.Message())
}
