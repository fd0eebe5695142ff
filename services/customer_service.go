package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Govind-619/DomainDesk/models"
	"github.com/Govind-619/DomainDesk/repository"
	"github.com/Govind-619/DomainDesk/utils"
)

// Customer delete actions
const (
	DeleteSoft = "soft"
	DeleteHard = "hard"
)

// CreateCustomerInput is the body of a new customer request
type CreateCustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Company string
	Notes   string
}

// UpdateCustomerInput is a partial edit of a customer. Nil or blank fields
// keep their stored value.
type UpdateCustomerInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Company *string
	Notes   *string
}

// CustomerService manages the customers projects belong to
type CustomerService struct {
	customers repository.CustomerRepository
	docs      DocumentGenerator
}

// NewCustomerService wires a CustomerService. docs removes the documents of
// projects a hard delete takes with it and may be nil.
func NewCustomerService(customers repository.CustomerRepository, docs DocumentGenerator) *CustomerService {
	return &CustomerService{customers: customers, docs: docs}
}

// Create stores a new active customer; emails are unique ignoring case
func (s *CustomerService) Create(ctx context.Context, in CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, utils.InvalidArgumentError("Name and email are required", nil)
	}
	if !utils.IsValidEmail(email) {
		return nil, utils.InvalidArgumentError("Invalid email format", nil)
	}

	customer := &models.Customer{
		Name:     name,
		Email:    email,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Company:  strings.TrimSpace(in.Company),
		Notes:    strings.TrimSpace(in.Notes),
		IsActive: true,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, utils.ConflictError(utils.ErrDuplicateCustomer, err)
		}
		utils.LogError("Failed to create customer %s: %v", email, err)
		return nil, utils.TransientError(utils.ErrServiceUnavailable, err)
	}
	utils.LogInfo("Customer %s created", customer.ID)
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (*models.Customer, error) {
	if !utils.IsValidID(id) {
		return nil, utils.InvalidArgumentError(utils.ErrInvalidCustomerID, nil)
	}
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, customerLookupError(err)
	}
	return customer, nil
}

// Update edits a customer and reactivates it. A changed email must still be
// unique.
func (s *CustomerService) Update(ctx context.Context, id string, in UpdateCustomerInput) (*models.Customer, error) {
	customer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if email := utils.NormalizeEmail(trimmed(in.Email)); email != "" && email != customer.Email {
		if !utils.IsValidEmail(email) {
			return nil, utils.InvalidArgumentError("Invalid email format", nil)
		}
		customer.Email = email
	}
	keep := func(field *string, value *string) {
		if v := trimmed(value); v != "" {
			*field = v
		}
	}
	keep(&customer.Name, in.Name)
	keep(&customer.Phone, in.Phone)
	keep(&customer.Address, in.Address)
	keep(&customer.Company, in.Company)
	keep(&customer.Notes, in.Notes)
	customer.IsActive = true

	if err := s.customers.Update(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, utils.ConflictError(utils.ErrDuplicateCustomer, err)
		}
		return nil, customerLookupError(err)
	}
	utils.LogInfo("Customer %s updated", customer.ID)
	return customer, nil
}

// Delete deactivates (soft, the default) or removes (hard) a customer. A hard
// delete takes the customer's projects, their renewal history and their
// documents with it.
func (s *CustomerService) Delete(ctx context.Context, id, action string) error {
	if !utils.IsValidID(id) {
		return utils.InvalidArgumentError(utils.ErrInvalidCustomerID, nil)
	}
	if action == "" {
		action = DeleteSoft
	}

	switch action {
	case DeleteSoft:
		if err := s.customers.Deactivate(ctx, id); err != nil {
			return customerLookupError(err)
		}
		utils.LogInfo("Customer %s deactivated", id)
	case DeleteHard:
		removed, err := s.customers.DeleteWithProjects(ctx, id)
		if err != nil {
			return customerLookupError(err)
		}
		utils.LogInfo("Customer %s deleted with %d projects", id, len(removed))
		s.removeDocuments(removed)
	default:
		return utils.InvalidArgumentError(utils.ErrInvalidDeleteAction, nil)
	}
	return nil
}

// removeDocuments deletes the files of removed projects. The rows are already
// gone, so a failure is only logged.
func (s *CustomerService) removeDocuments(projects []models.Project) {
	if s.docs == nil {
		return
	}
	for _, p := range projects {
		if p.FilePath == nil {
			continue
		}
		if err := s.docs.Delete(*p.FilePath); err != nil {
			utils.LogWarn("Failed to remove document %s of deleted project %s: %v", *p.FilePath, p.ID, err)
		}
	}
}

func customerLookupError(err error) error {
	if repository.IsNotFound(err) {
		return utils.NotFoundError(utils.ErrCustomerNotFound, err)
	}
	utils.LogError("Customer storage error: %v", err)
	return utils.TransientError(utils.ErrServiceUnavailable, err)
}
