package repository

import (
	"context"

	"github.com/Govind-619/DomainDesk/models"
	"gorm.io/gorm"
)

// CustomerRepository persists customers
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	FindByID(ctx context.Context, id string) (*models.Customer, error)
	// Update saves the customer's contact fields and active flag
	Update(ctx context.Context, customer *models.Customer) error
	Deactivate(ctx context.Context, id string) error
	// DeleteWithProjects removes the customer together with its projects and
	// their renewal records in a single transaction. It returns the removed
	// projects with their id and file path set.
	DeleteWithProjects(ctx context.Context, id string) ([]models.Project, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository returns a gorm backed CustomerRepository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		if IsDuplicateKeyErr(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *customerRepository) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	res := r.db.WithContext(ctx).Model(customer).
		Select("name", "email", "phone", "address", "company", "notes", "is_active", "updated_at").
		Updates(customer)
	if res.Error != nil {
		if IsDuplicateKeyErr(res.Error) {
			return ErrDuplicateEmail
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *customerRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *customerRepository) DeleteWithProjects(ctx context.Context, id string) ([]models.Project, error) {
	var removed []models.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "file_path").Where("customer_id = ?", id).Find(&removed).Error; err != nil {
			return err
		}

		if len(removed) > 0 {
			ids := make([]string, len(removed))
			for i, p := range removed {
				ids[i] = p.ID
			}
			if err := tx.Where("project_id IN ?", ids).Delete(&models.RenewalRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", ids).Delete(&models.Project{}).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", id).Delete(&models.Customer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
