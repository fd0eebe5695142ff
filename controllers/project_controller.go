package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Govind-619/DomainDesk/middleware"
	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/services"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gin-gonic/gin"
)

// CreateProjectRequest represents the create project request body. Dates
// accept YYYY-MM-DD or RFC 3339.
type CreateProjectRequest struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description"`
	Customer        *string  `json:"customer"`
	DomainName      string   `json:"domainName"`
	DomainStartDate string   `json:"domainStartDate"`
	DomainEndDate   string   `json:"domainEndDate"`
	Status          string   `json:"status"`
	Budget          *float64 `json:"budget"`
	RenewalPrice    *int64   `json:"renewalPrice"`
	DocumentFormat  string   `json:"documentFormat"`
	FileFormat      string   `json:"fileFormat"`
}

// UpdateProjectRequest is a partial project edit. Omitted fields keep their
// value; "customer": null detaches the customer.
type UpdateProjectRequest struct {
	Title           *string         `json:"title"`
	Description     *string         `json:"description"`
	Customer        json.RawMessage `json:"customer"`
	DomainName      *string         `json:"domainName"`
	DomainStartDate string          `json:"domainStartDate"`
	DomainEndDate   string          `json:"domainEndDate"`
	Status          *string         `json:"status"`
	Budget          *float64        `json:"budget"`
	RenewalPrice    *int64          `json:"renewalPrice"`
	IsActive        *bool           `json:"isActive"`
	DocumentFormat  string          `json:"documentFormat"`
	FileFormat      string          `json:"fileFormat"`
}

type ProjectService interface {
	Create(ctx context.Context, in services.CreateProjectInput) (*services.ProjectResult, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, id string, in services.UpdateProjectInput) (*services.ProjectResult, error)
}

type ProjectController struct {
	projects ProjectService
}

func NewProjectController(projects ProjectService) *ProjectController {
	return &ProjectController{projects: projects}
}

// CreateProject handles POST /projects
func (pc *ProjectController) CreateProject(c *gin.Context) {
	utils.LogInfo("CreateProject called")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Please login for access")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid project request: %v", err)
		utils.BadRequest(c, "Invalid request format", "Title is required")
		return
	}

	start, err := parseDate(req.DomainStartDate)
	if err != nil {
		utils.BadRequest(c, "Invalid domain start date", err.Error())
		return
	}
	end, err := parseDate(req.DomainEndDate)
	if err != nil {
		utils.BadRequest(c, "Invalid domain end date", err.Error())
		return
	}

	result, err := pc.projects.Create(c.Request.Context(), services.CreateProjectInput{
		Title:           req.Title,
		Description:     req.Description,
		CustomerID:      req.Customer,
		DomainName:      req.DomainName,
		DomainStartDate: start,
		DomainEndDate:   end,
		Status:          req.Status,
		Budget:          req.Budget,
		RenewalPrice:    req.RenewalPrice,
		DocumentFormat:  firstNonEmpty(req.DocumentFormat, req.FileFormat),
		UserID:          user.ID,
	})
	if err != nil {
		utils.LogError("Project creation failed: %v", err)
		utils.RespondError(c, err)
		return
	}

	utils.Created(c, result.Message(), result)
}

// GetProject handles GET /projects/:id
func (pc *ProjectController) GetProject(c *gin.Context) {
	utils.LogInfo("GetProject called for %s", c.Param("id"))

	project, err := pc.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgProjectFetched, project)
}

// UpdateProject handles PATCH /projects/:id
func (pc *ProjectController) UpdateProject(c *gin.Context) {
	utils.LogInfo("UpdateProject called for %s", c.Param("id"))

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.Unauthorized(c, "Please login for access")
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid project update request: %v", err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	customerSet, customerID, err := optionalID(req.Customer)
	if err != nil {
		utils.BadRequest(c, utils.ErrInvalidCustomerID, err.Error())
		return
	}
	start, err := parseDate(req.DomainStartDate)
	if err != nil {
		utils.BadRequest(c, "Invalid domain start date", err.Error())
		return
	}
	end, err := parseDate(req.DomainEndDate)
	if err != nil {
		utils.BadRequest(c, "Invalid domain end date", err.Error())
		return
	}

	result, err := pc.projects.Update(c.Request.Context(), c.Param("id"), services.UpdateProjectInput{
		Title:           req.Title,
		Description:     req.Description,
		CustomerSet:     customerSet,
		CustomerID:      customerID,
		DomainName:      req.DomainName,
		DomainStartDate: start,
		DomainEndDate:   end,
		Status:          req.Status,
		Budget:          req.Budget,
		RenewalPrice:    req.RenewalPrice,
		IsActive:        req.IsActive,
		DocumentFormat:  firstNonEmpty(req.DocumentFormat, req.FileFormat),
		UserID:          user.ID,
	})
	if err != nil {
		utils.LogError("Project update failed: %v", err)
		utils.RespondError(c, err)
		return
	}

	utils.Success(c, result.Message(), result)
}

// optionalID reads a field that may be absent, null or a string id
func optionalID(raw json.RawMessage) (bool, *string, error) {
	if len(raw) == 0 {
		return false, nil, nil
	}
	var id *string
	if err := json.Unmarshal(raw, &id); err != nil {
		return false, nil, fmt.Errorf("customer must be a string id or null")
	}
	return true, id, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("expected YYYY-MM-DD or RFC 3339, got %q", s)
}
