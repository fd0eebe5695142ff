package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Govind-619/DomainDesk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EditFunc changes a freshly locked project. Returning an error aborts the
// transaction with no change.
type EditFunc func(project *models.Project) error

// RenewalFunc mutates a freshly locked project and returns the record to
// append. Returning an error aborts the transaction with no change.
type RenewalFunc func(project *models.Project) (*models.RenewalRecord, error)

// ProjectRepository persists projects and their renewal history
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	// FindByID loads a project with its customer, creator and renewal history
	FindByID(ctx context.Context, id string) (*models.Project, error)
	// ApplyRenewal re-reads the project under a row lock, lets apply mutate it
	// and appends the returned record, all in one transaction.
	ApplyRenewal(ctx context.Context, id string, apply RenewalFunc) (*models.RenewalRecord, error)
	// Update re-reads the project under a row lock, lets edit change it and
	// saves the editable columns.
	Update(ctx context.Context, id string, edit EditFunc) (*models.Project, error)
	UpdateFilePath(ctx context.Context, id string, path *string) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository returns a gorm backed ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("CreatedBy").
		Preload("RenewalHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("renewed_at ASC, id ASC")
		}).
		Where("id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &project, nil
}

func (r *projectRepository) ApplyRenewal(ctx context.Context, id string, apply RenewalFunc) (*models.RenewalRecord, error) {
	var applied *models.RenewalRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&project).Error; err != nil {
			return translateNotFound(err)
		}
		if err := tx.Where("project_id = ?", id).Order("renewed_at ASC, id ASC").Find(&project.RenewalHistory).Error; err != nil {
			return err
		}

		record, err := apply(&project)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"is_active":  project.IsActive,
			"status":     project.Status,
			"updated_at": touchedAt(project.UpdatedAt),
		}
		if project.DomainEndDate != nil {
			updates["domain_end_date"] = *project.DomainEndDate
		}
		if err := tx.Model(&models.Project{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		record.ProjectID = id
		if err := tx.Create(record).Error; err != nil {
			if IsDuplicateKeyErr(err) {
				return ErrDuplicatePayment
			}
			return err
		}
		applied = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

func (r *projectRepository) Update(ctx context.Context, id string, edit EditFunc) (*models.Project, error) {
	var project models.Project

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&project).Error; err != nil {
			return translateNotFound(err)
		}
		if err := edit(&project); err != nil {
			return err
		}

		project.UpdatedAt = touchedAt(project.UpdatedAt)
		return tx.Model(&models.Project{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":             project.Title,
			"description":       project.Description,
			"customer_id":       project.CustomerID,
			"domain_name":       project.DomainName,
			"domain_start_date": project.DomainStartDate,
			"domain_end_date":   project.DomainEndDate,
			"status":            project.Status,
			"budget":            project.Budget,
			"is_active":         project.IsActive,
			"renewal_price":     project.RenewalPrice,
			"updated_at":        project.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) UpdateFilePath(ctx context.Context, id string, path *string) error {
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Update("file_path", path)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// touchedAt keeps the modification time chosen by the caller so the stored
// row and the returned project agree. Zero means now.
func touchedAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
