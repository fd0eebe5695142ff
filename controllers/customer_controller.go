package controllers

import (
	"context"

	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/services"
	"github.com/Govind-619/DomainDesk/utils"
	"github.com/gin-gonic/gin"
)

// CreateCustomerRequest represents the create customer request body
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

// UpdateCustomerRequest is a partial customer edit
type UpdateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Company *string `json:"company"`
	Notes   *string `json:"notes"`
}

type CustomerService interface {
	Create(ctx context.Context, in services.CreateCustomerInput) (*models.Customer, error)
	Get(ctx context.Context, id string) (*models.Customer, error)
	Update(ctx context.Context, id string, in services.UpdateCustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id, action string) error
}

type CustomerController struct {
	customers CustomerService
}

func NewCustomerController(customers CustomerService) *CustomerController {
	return &CustomerController{customers: customers}
}

// CreateCustomer handles POST /customers
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	utils.LogInfo("CreateCustomer called")

	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid customer request: %v", err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	customer, err := cc.customers.Create(c.Request.Context(), services.CreateCustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Company: req.Company,
		Notes:   req.Notes,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, utils.MsgCustomerCreated, customer)
}

// GetCustomer handles GET /customers/:id
func (cc *CustomerController) GetCustomer(c *gin.Context) {
	customer, err := cc.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgCustomerFetched, customer)
}

// UpdateCustomer handles PATCH /customers/:id
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	utils.LogInfo("UpdateCustomer called for %s", c.Param("id"))

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid customer update request: %v", err)
		utils.BadRequest(c, "Invalid request format", err.Error())
		return
	}

	customer, err := cc.customers.Update(c.Request.Context(), c.Param("id"), services.UpdateCustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Company: req.Company,
		Notes:   req.Notes,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, utils.MsgCustomerUpdated, customer)
}

// DeleteCustomer handles DELETE /customers/:id?action=soft|hard. Soft is the
// default.
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	action := c.Query("action")
	utils.LogInfo("DeleteCustomer called for %s (action=%s)", c.Param("id"), action)

	if err := cc.customers.Delete(c.Request.Context(), c.Param("id"), action); err != nil {
		utils.RespondError(c, err)
		return
	}

	if action == services.DeleteHard {
		utils.Success(c, utils.MsgCustomerDeleted, nil)
		return
	}
	utils.Success(c, utils.MsgCustomerDeactivated, nil)
}
