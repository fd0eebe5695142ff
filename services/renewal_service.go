package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Govind-619/DomainDesk/metrics"
	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/repository"
	"github.com/Govind-619/DomainDesk/utils"
	"go.uber.org/zap"
)

const defaultLockWait = 10 * time.Second

// RenewalDeps wires a RenewalService
type RenewalDeps struct {
	Projects repository.ProjectRepository
	Users    repository.UserRepository
	Gateway  PaymentGateway
	Docs     DocumentGenerator
	Mailer   utils.Mailer
	Locker   Locker
	Metrics  *metrics.RenewalMetrics
	Currency string
	// LockWait bounds how long a confirmation waits for another one on the
	// same project. Zero means 10s.
	LockWait time.Duration
	Now      func() time.Time
}

// RenewalService runs the paid domain renewal flow: opening a provider order
// and applying a verified payment to a project.
type RenewalService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	gateway  PaymentGateway
	docs     DocumentGenerator
	mailer   utils.Mailer
	locker   Locker
	metrics  *metrics.RenewalMetrics
	currency string
	lockWait time.Duration
	now      func() time.Time
}

// NewRenewalService builds the service. Locker defaults to an in-process
// LocalLocker and Now to time.Now.
func NewRenewalService(deps RenewalDeps) *RenewalService {
	s := &RenewalService{
		projects: deps.Projects,
		users:    deps.Users,
		gateway:  deps.Gateway,
		docs:     deps.Docs,
		mailer:   deps.Mailer,
		locker:   deps.Locker,
		metrics:  deps.Metrics,
		currency: deps.Currency,
		lockWait: deps.LockWait,
		now:      deps.Now,
	}
	if s.locker == nil {
		s.locker = NewLocalLocker()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.currency == "" {
		s.currency = utils.DefaultCurrency
	}
	if s.lockWait <= 0 {
		s.lockWait = defaultLockWait
	}
	return s
}

// InitiateInput is a request to open a renewal payment order
type InitiateInput struct {
	ProjectID string
	UserID    string
	Duration  int
}

// PaymentOrder is what the browser checkout needs to collect the payment
type PaymentOrder struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// ConfirmInput carries the checkout callback for a renewal
type ConfirmInput struct {
	ProjectID      string
	UserID         string
	PaymentID      string
	OrderID        string
	Signature      string
	Duration       int
	DocumentFormat string
}

// RenewalResult is the outcome of a committed renewal. FileError holds the
// advisory message for post-commit steps that failed.
type RenewalResult struct {
	Project   *models.Project `json:"project"`
	FilePath  *string         `json:"filePath"`
	FileError *string         `json:"fileError"`
}

// Message is the user facing summary of the result
func (r *RenewalResult) Message() string {
	if r.FileError != nil {
		return "Project renewed, but " + *r.FileError
	}
	return utils.MsgProjectRenewed
}

// Initiate prices the renewal and opens a provider order. Nothing is stored.
func (s *RenewalService) Initiate(ctx context.Context, in InitiateInput) (*PaymentOrder, error) {
	project, err := s.loadProject(ctx, in.ProjectID)
	if err != nil {
		s.metrics.OrderRequested(resultFor(err))
		return nil, err
	}
	if in.Duration < 1 {
		s.metrics.OrderRequested(metrics.ResultInvalid)
		return nil, utils.InvalidArgumentError(utils.ErrInvalidDuration, nil)
	}

	amount := RenewalAmount(project, in.Duration)
	if amount < MinChargeableAmount {
		s.metrics.OrderRequested(metrics.ResultInvalid)
		return nil, utils.InvalidArgumentError(utils.ErrAmountTooLow, nil)
	}

	req := OrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  BuildReceipt(project.ID, s.now()),
		Notes: map[string]interface{}{
			"projectId": project.ID,
			"userId":    in.UserID,
			"duration":  in.Duration,
		},
	}
	utils.LogDebug("Creating payment order for project %s: amount=%d receipt=%s", project.ID, amount, req.Receipt)

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		utils.LogError("Payment order creation failed for project %s: %v", project.ID, err)
		s.metrics.OrderRequested(metrics.ResultUpstreamError)
		return nil, utils.UpstreamError("Failed to create payment order: "+err.Error(), err)
	}

	utils.LogInfo("Payment order %s created for project %s (%d %s)", order.ID, project.ID, amount, s.currency)
	s.metrics.OrderRequested(metrics.ResultSuccess)
	return &PaymentOrder{
		OrderID:  order.ID,
		Amount:   amount,
		Currency: s.currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// Confirm verifies a checkout callback and applies the renewal. Once the
// signature checks out the commit no longer follows ctx cancellation.
func (s *RenewalService) Confirm(ctx context.Context, in ConfirmInput) (*RenewalResult, error) {
	result, err := s.confirm(ctx, in)
	if err != nil {
		s.metrics.ConfirmationProcessed(resultFor(err))
		return nil, err
	}
	s.metrics.ConfirmationProcessed(metrics.ResultSuccess)
	return result, nil
}

func (s *RenewalService) confirm(ctx context.Context, in ConfirmInput) (*RenewalResult, error) {
	project, err := s.loadProject(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if in.PaymentID == "" || in.OrderID == "" || in.Signature == "" {
		return nil, utils.InvalidArgumentError(utils.ErrPaymentDetails, nil)
	}
	if in.Duration < 1 {
		return nil, utils.InvalidArgumentError(utils.ErrInvalidDuration, nil)
	}
	if in.DocumentFormat != "" && !IsAllowedDocumentFormat(in.DocumentFormat) {
		return nil, utils.InvalidArgumentError(
			"Invalid file format. Allowed: "+strings.Join(AllowedDocumentFormats, ", "), nil)
	}
	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		utils.Logger().Warn("payment signature mismatch, possible tampering",
			zap.String("module", "security"),
			zap.String("project_id", project.ID),
			zap.String("order_id", in.OrderID),
			zap.String("payment_id", in.PaymentID),
			zap.String("user_id", in.UserID),
		)
		return nil, utils.AuthenticationFailedError(utils.ErrInvalidSignature, nil)
	}
	if project.HasPayment(in.PaymentID) {
		return nil, duplicatePayment()
	}
	if err := s.checkOrder(ctx, project.ID, in); err != nil {
		return nil, err
	}

	// The payment is verified; a client hanging up must not abort the commit.
	commitCtx := context.WithoutCancel(ctx)

	lockCtx, cancel := context.WithTimeout(commitCtx, s.lockWait)
	unlock, err := s.locker.Lock(lockCtx, "project:"+project.ID)
	cancel()
	if err != nil {
		utils.LogError("Failed to lock project %s for renewal: %v", project.ID, err)
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	defer unlock()

	committed, record, err := s.commit(commitCtx, project.ID, in)
	if err != nil {
		return nil, err
	}
	committed.Customer = project.Customer
	committed.CreatedBy = project.CreatedBy

	utils.LogInfo("Project %s renewed by %s: payment=%s order=%s years=%d new_end=%s",
		committed.ID, in.UserID, record.PaymentID, record.OrderID, record.Duration,
		record.NewEndDate.Format(time.RFC3339))

	var problems []string
	if in.DocumentFormat != "" {
		if err := attachDocument(commitCtx, s.docs, s.projects, committed, in.DocumentFormat); err != nil {
			utils.LogWarn("Document regeneration failed for project %s: %v", committed.ID, err)
			s.metrics.PostCommitFailed(metrics.StepDocument)
			problems = append(problems, "Failed to generate project file: "+err.Error())
		}
	}
	if err := s.notify(commitCtx, in.UserID, committed, record); err != nil {
		utils.LogWarn("Renewal email failed for project %s: %v", committed.ID, err)
		s.metrics.PostCommitFailed(metrics.StepEmail)
		problems = append(problems, "Email failed: "+err.Error())
	}

	result := &RenewalResult{Project: committed, FilePath: committed.FilePath}
	if len(problems) > 0 {
		msg := strings.Join(problems, "; ")
		result.FileError = &msg
	}
	return result, nil
}

// checkOrder fetches the paid order and requires that it was opened for this
// project and duration. The signature only binds payment to order.
func (s *RenewalService) checkOrder(ctx context.Context, projectID string, in ConfirmInput) error {
	order, err := s.gateway.FetchOrder(ctx, in.OrderID)
	if err != nil {
		utils.LogError("Failed to fetch payment order %s for project %s: %v", in.OrderID, projectID, err)
		return utils.UpstreamError("Failed to verify payment order: "+err.Error(), err)
	}

	orderProject := fmt.Sprint(order.Notes["projectId"])
	orderDuration := fmt.Sprint(order.Notes["duration"])
	if orderProject != projectID || orderDuration != strconv.Itoa(in.Duration) {
		utils.Logger().Warn("payment order does not match renewal request",
			zap.String("module", "security"),
			zap.String("project_id", projectID),
			zap.String("order_id", in.OrderID),
			zap.String("order_project_id", orderProject),
			zap.String("order_duration", orderDuration),
			zap.Int("duration", in.Duration),
			zap.String("user_id", in.UserID),
		)
		return utils.InvalidArgumentError(utils.ErrOrderMismatch, nil)
	}
	return nil
}

// commit applies the renewal under the project row lock and returns the
// fresh project state with its complete history.
func (s *RenewalService) commit(ctx context.Context, projectID string, in ConfirmInput) (*models.Project, *models.RenewalRecord, error) {
	var committed *models.Project
	now := s.now()
	started := time.Now()

	record, err := s.projects.ApplyRenewal(ctx, projectID, func(p *models.Project) (*models.RenewalRecord, error) {
		if p.HasPayment(in.PaymentID) {
			return nil, repository.ErrDuplicatePayment
		}

		newEnd := ExtendDomainEnd(p.DomainEndDate, now, in.Duration)
		p.DomainEndDate = &newEnd
		p.IsActive = true
		if p.Status == models.ProjectStatusCompleted {
			p.Status = models.ProjectStatusInProgress
		}
		p.UpdatedAt = now
		committed = p

		return &models.RenewalRecord{
			PaymentID:   in.PaymentID,
			OrderID:     in.OrderID,
			RenewedAt:   now,
			NewEndDate:  newEnd,
			RenewedByID: in.UserID,
			Amount:      RenewalAmount(p, in.Duration),
			Duration:    in.Duration,
		}, nil
	})
	s.metrics.ObserveCommit(time.Since(started))

	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicatePayment):
		utils.LogWarn("Payment %s already applied to project %s", in.PaymentID, projectID)
		return nil, nil, duplicatePayment()
	case repository.IsNotFound(err):
		return nil, nil, utils.NotFoundError(utils.ErrProjectNotFound, err)
	default:
		utils.LogError("Renewal commit failed for project %s: %v", projectID, err)
		return nil, nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}

	committed.RenewalHistory = append(committed.RenewalHistory, *record)
	return committed, record, nil
}

// notify emails the acting user a receipt for the renewal
func (s *RenewalService) notify(ctx context.Context, userID string, project *models.Project, record *models.RenewalRecord) error {
	if s.mailer == nil {
		return errors.New("mailer is not configured")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %v", err)
	}
	subject, text, html := RenewalEmail(user, project, record)
	return s.mailer.Send(user.Email, subject, text, html)
}

// loadProject checks the id format and loads the populated project
func (s *RenewalService) loadProject(ctx context.Context, id string) (*models.Project, error) {
	if !utils.IsValidID(id) {
		return nil, utils.InvalidArgumentError(utils.ErrInvalidProjectID, nil)
	}
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFoundError(utils.ErrProjectNotFound, err)
		}
		utils.LogError("Failed to load project %s: %v", id, err)
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	return project, nil
}

// duplicatePayment is reported with 400 on the renewal endpoints
func duplicatePayment() *utils.AppError {
	return utils.ConflictError(utils.ErrPaymentProcessed, repository.ErrDuplicatePayment).WithStatus(http.StatusBadRequest)
}

func resultFor(err error) string {
	appErr := utils.GetAppError(err)
	if appErr == nil {
		return metrics.ResultTransient
	}
	switch appErr.Kind {
	case utils.KindNotFound:
		return metrics.ResultNotFound
	case utils.KindAuthenticationFailed:
		return metrics.ResultBadSignature
	case utils.KindConflict:
		return metrics.ResultDuplicate
	case utils.KindUpstream:
		return metrics.ResultUpstreamError
	case utils.KindTransient:
		return metrics.ResultTransient
	}
	return metrics.ResultInvalid
}
