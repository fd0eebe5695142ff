package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/repository"
	"github.com/Govind-619/DomainDesk/utils"
)

// CreateProjectInput is a validated request body for a new project
type CreateProjectInput struct {
	Title           string
	Description     string
	CustomerID      *string
	DomainName      string
	DomainStartDate *time.Time
	DomainEndDate   *time.Time
	Status          string
	Budget          *float64
	RenewalPrice    *int64
	DocumentFormat  string
	UserID          string
}

// UpdateProjectInput is a partial edit of a project. Nil fields and blank
// strings leave the stored value alone. CustomerSet with a nil or empty
// CustomerID detaches the customer.
type UpdateProjectInput struct {
	Title           *string
	Description     *string
	CustomerSet     bool
	CustomerID      *string
	DomainName      *string
	DomainStartDate *time.Time
	DomainEndDate   *time.Time
	Status          *string
	Budget          *float64
	RenewalPrice    *int64
	IsActive        *bool
	DocumentFormat  string
	UserID          string
}

// ProjectResult is a stored project plus the outcome of its document step
type ProjectResult struct {
	Project   *models.Project `json:"project"`
	FilePath  *string         `json:"filePath"`
	FileError *string         `json:"fileError"`

	updated bool
}

// Message is the user facing summary of the result
func (r *ProjectResult) Message() string {
	if r.updated {
		if r.FileError != nil {
			return "Project updated, but " + *r.FileError
		}
		return utils.MsgProjectUpdated
	}
	if r.FileError != nil {
		return "Project created, but " + *r.FileError
	}
	return utils.MsgProjectCreated
}

// ProjectService creates and reads projects
type ProjectService struct {
	projects  repository.ProjectRepository
	customers repository.CustomerRepository
	docs      DocumentGenerator
	now       func() time.Time
}

// NewProjectService wires a ProjectService
func NewProjectService(projects repository.ProjectRepository, customers repository.CustomerRepository, docs DocumentGenerator) *ProjectService {
	return &ProjectService{projects: projects, customers: customers, docs: docs, now: time.Now}
}

// Create validates and stores a project. A document is generated when a
// format is given; failing to do so does not undo the project.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*ProjectResult, error) {
	project, err := s.buildProject(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := s.projects.Create(ctx, project); err != nil {
		utils.LogError("Failed to create project %q: %v", project.Title, err)
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	utils.LogInfo("Project %s created by %s", project.ID, in.UserID)

	populated, err := s.projects.FindByID(ctx, project.ID)
	if err != nil {
		utils.LogWarn("Failed to reload project %s: %v", project.ID, err)
		populated = project
	}

	result := &ProjectResult{Project: populated}
	if in.DocumentFormat != "" {
		if err := attachDocument(ctx, s.docs, s.projects, populated, in.DocumentFormat); err != nil {
			utils.LogWarn("Document generation failed for project %s: %v", project.ID, err)
			msg := "Failed to generate project file: " + err.Error()
			result.FileError = &msg
		}
	}
	result.FilePath = populated.FilePath
	return result, nil
}

// Get returns a project with its customer, creator and renewal history
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	if !utils.IsValidID(id) {
		return nil, utils.InvalidArgumentError(utils.ErrInvalidProjectID, nil)
	}
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFoundError(utils.ErrProjectNotFound, err)
		}
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	return project, nil
}

// Update applies a partial edit. A title change moves the document folder
// and drops the old document; a format regenerates it. Document problems are
// reported in FileError and never undo the edit.
func (s *ProjectService) Update(ctx context.Context, id string, in UpdateProjectInput) (*ProjectResult, error) {
	if !utils.IsValidID(id) {
		return nil, utils.InvalidArgumentError(utils.ErrInvalidProjectID, nil)
	}
	if err := checkDocumentFormat(in.DocumentFormat); err != nil {
		return nil, err
	}
	var customerID *string
	if in.CustomerSet {
		var err error
		if customerID, err = s.resolveCustomer(ctx, in.CustomerID); err != nil {
			return nil, err
		}
	}

	var before models.Project
	_, err := s.projects.Update(ctx, id, func(p *models.Project) error {
		before = *p
		if err := s.applyEdits(p, in, customerID); err != nil {
			return err
		}
		p.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		if appErr := utils.GetAppError(err); appErr != nil {
			return nil, appErr
		}
		if repository.IsNotFound(err) {
			return nil, utils.NotFoundError(utils.ErrProjectNotFound, err)
		}
		utils.LogError("Failed to update project %s: %v", id, err)
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	utils.LogInfo("Project %s updated by %s", id, in.UserID)

	populated, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}

	result := &ProjectResult{Project: populated, updated: true}
	if err := s.refreshDocuments(ctx, &before, populated, in.DocumentFormat); err != nil {
		utils.LogWarn("Document update failed for project %s: %v", id, err)
		msg := "Failed to update project file: " + err.Error()
		result.FileError = &msg
	}
	result.FilePath = populated.FilePath
	return result, nil
}

func (s *ProjectService) buildProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, utils.InvalidArgumentError("Title is required", nil)
	}
	if err := checkTitle(title); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if err := checkDescription(description); err != nil {
		return nil, err
	}

	customerID, err := s.resolveCustomer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	domain := strings.TrimSpace(in.DomainName)
	if err := checkDomain(domain); err != nil {
		return nil, err
	}
	if err := s.checkDomainDates(in.DomainStartDate, in.DomainEndDate); err != nil {
		return nil, err
	}

	status := models.ProjectStatusPending
	if in.Status != "" {
		if status, err = parseStatus(in.Status); err != nil {
			return nil, err
		}
	}

	if err := checkBudget(in.Budget); err != nil {
		return nil, err
	}
	price := models.DefaultRenewalPrice
	if in.RenewalPrice != nil {
		if err := checkRenewalPrice(*in.RenewalPrice); err != nil {
			return nil, err
		}
		price = *in.RenewalPrice
	}

	if err := checkDocumentFormat(in.DocumentFormat); err != nil {
		return nil, err
	}

	return &models.Project{
		Title:           title,
		Description:     description,
		CustomerID:      customerID,
		CreatedByID:     in.UserID,
		Status:          status,
		StartDate:       s.now(),
		Budget:          in.Budget,
		DomainName:      domain,
		DomainStartDate: in.DomainStartDate,
		DomainEndDate:   in.DomainEndDate,
		IsActive:        true,
		RenewalPrice:    price,
	}, nil
}

// applyEdits validates in against the stored project p and changes p
func (s *ProjectService) applyEdits(p *models.Project, in UpdateProjectInput, customerID *string) error {
	if title := trimmed(in.Title); title != "" {
		if err := checkTitle(title); err != nil {
			return err
		}
		p.Title = title
	}
	if description := trimmed(in.Description); description != "" {
		if err := checkDescription(description); err != nil {
			return err
		}
		p.Description = description
	}
	if in.CustomerSet {
		p.CustomerID = customerID
	}
	if domain := trimmed(in.DomainName); domain != "" {
		if err := checkDomain(domain); err != nil {
			return err
		}
		p.DomainName = domain
	}

	if in.DomainStartDate != nil || in.DomainEndDate != nil {
		start, end := p.DomainStartDate, p.DomainEndDate
		if in.DomainStartDate != nil {
			start = in.DomainStartDate
		}
		if in.DomainEndDate != nil {
			end = in.DomainEndDate
		}
		if in.DomainStartDate != nil && in.DomainStartDate.After(s.now()) {
			return utils.InvalidArgumentError("Domain start date cannot be in the future", nil)
		}
		if start != nil && end != nil && end.Before(*start) {
			return utils.InvalidArgumentError("Domain end date must be on or after the start date", nil)
		}
		p.DomainStartDate, p.DomainEndDate = start, end
	}

	if status := trimmed(in.Status); status != "" {
		parsed, err := parseStatus(status)
		if err != nil {
			return err
		}
		p.Status = parsed
	}
	if in.Budget != nil {
		if err := checkBudget(in.Budget); err != nil {
			return err
		}
		p.Budget = in.Budget
	}
	if in.RenewalPrice != nil {
		if err := checkRenewalPrice(*in.RenewalPrice); err != nil {
			return err
		}
		p.RenewalPrice = *in.RenewalPrice
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	return nil
}

// resolveCustomer checks that a referenced customer exists. Nil or empty
// means no customer.
func (s *ProjectService) resolveCustomer(ctx context.Context, id *string) (*string, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	if !utils.IsValidID(*id) {
		return nil, utils.InvalidArgumentError(utils.ErrInvalidCustomerID, nil)
	}
	if _, err := s.customers.FindByID(ctx, *id); err != nil {
		if repository.IsNotFound(err) {
			return nil, utils.NotFoundError(utils.ErrCustomerNotFound, err)
		}
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	customerID := *id
	return &customerID, nil
}

func (s *ProjectService) checkDomainDates(start, end *time.Time) error {
	if start != nil && start.After(s.now()) {
		return utils.InvalidArgumentError("Domain start date cannot be in the future", nil)
	}
	if start != nil && end != nil && end.Before(*start) {
		return utils.InvalidArgumentError("Domain end date must be on or after the start date", nil)
	}
	return nil
}

// refreshDocuments follows a title change on disk and regenerates the
// document when a format is given
func (s *ProjectService) refreshDocuments(ctx context.Context, before, project *models.Project, format string) error {
	if before.Title != project.Title && s.docs != nil {
		if project.FilePath != nil {
			if err := s.docs.Delete(*project.FilePath); err != nil {
				return fmt.Errorf("failed to remove previous file: %v", err)
			}
			if err := s.projects.UpdateFilePath(ctx, project.ID, nil); err != nil {
				return fmt.Errorf("failed to clear file path: %v", err)
			}
			project.FilePath = nil
		}
		if _, err := s.docs.RenameFolder(before.Title, project.Title); err != nil {
			return err
		}
	}
	if format == "" {
		return nil
	}
	return attachDocument(ctx, s.docs, s.projects, project, format)
}

func checkTitle(title string) error {
	if len(title) < utils.MinTitleLength || len(title) > utils.MaxTitleLength {
		return utils.InvalidArgumentError(
			fmt.Sprintf("Title must be between %d and %d characters", utils.MinTitleLength, utils.MaxTitleLength), nil)
	}
	return nil
}

func checkDescription(description string) error {
	if len(description) > utils.MaxDescriptionLength {
		return utils.InvalidArgumentError(
			fmt.Sprintf("Description cannot exceed %d characters", utils.MaxDescriptionLength), nil)
	}
	return nil
}

func checkDomain(domain string) error {
	if domain != "" && !utils.IsValidDomainName(domain) {
		return utils.InvalidArgumentError("Invalid domain name", nil)
	}
	return nil
}

func parseStatus(value string) (models.ProjectStatus, error) {
	status := models.ProjectStatus(value)
	if !status.IsValid() {
		return "", utils.InvalidArgumentError("Invalid project status", nil)
	}
	return status, nil
}

func checkBudget(budget *float64) error {
	if budget != nil && *budget < 0 {
		return utils.InvalidArgumentError("Budget cannot be negative", nil)
	}
	return nil
}

func checkRenewalPrice(price int64) error {
	if price < 0 {
		return utils.InvalidArgumentError("Renewal price cannot be negative", nil)
	}
	return nil
}

func checkDocumentFormat(format string) error {
	if format != "" && !IsAllowedDocumentFormat(format) {
		return utils.InvalidArgumentError(
			"Invalid file format. Allowed: "+strings.Join(AllowedDocumentFormats, ", "), nil)
	}
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// attachDocument generates a new document for the project and records its
// path. The previous document is removed only once the new one is stored, so
// a failure leaves the old path pointing at an existing file.
func attachDocument(ctx context.Context, docs DocumentGenerator, projects repository.ProjectRepository, project *models.Project, format string) error {
	if docs == nil {
		return errors.New("document generation is not configured")
	}
	folder, err := docs.EnsureFolder(project.Title)
	if err != nil {
		return err
	}
	path, err := docs.Generate(project, format, folder)
	if err != nil {
		return err
	}
	if err := projects.UpdateFilePath(ctx, project.ID, &path); err != nil {
		_ = docs.Delete(path)
		return fmt.Errorf("failed to save file path: %v", err)
	}

	previous := project.FilePath
	project.FilePath = &path
	if previous != nil && *previous != path {
		if err := docs.Delete(*previous); err != nil {
			utils.LogWarn("Failed to remove previous document %s: %v", *previous, err)
		}
	}
	return nil
}
