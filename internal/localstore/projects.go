// Package localstore holds the employer's local project rows, kept
// consistent with the remote backend when it is reachable and used as
// the listing fallback when it is not.
package localstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worklog-backend/internal/model"
)

// Projects defines the local project store operations consumed by the
// sync repository.
type Projects interface {
	// Create inserts a local-only project with a locally assigned id.
	Create(ctx context.Context, employerNo int64, name, location string) (model.Project, error)
	// MirrorRemote upserts a remote-created row into the local store
	// so offline listings stay consistent.
	MirrorRemote(ctx context.Context, row model.ProjectRow) error
	// List returns the employer's projects, newest first.
	List(ctx context.Context, employerNo int64) ([]model.Project, error)
	// Replace deletes the provisional local row and installs the
	// remote-assigned one in its place.
	Replace(ctx context.Context, localID int64, row model.ProjectRow) error
}

// gormProjects implements Projects using GORM.
type gormProjects struct {
	db *gorm.DB
}

// NewGormProjects creates a new GORM-backed project store.
func NewGormProjects(db *gorm.DB) Projects {
	return &gormProjects{db: db}
}

func (s *gormProjects) Create(ctx context.Context, employerNo int64, name, location string) (model.Project, error) {
	project := model.Project{
		EmployerNo: employerNo,
		Name:       name,
		Location:   location,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return model.Project{}, fmt.Errorf("failed to create local project: %w", err)
	}
	return project, nil
}

func (s *gormProjects) MirrorRemote(ctx context.Context, row model.ProjectRow) error {
	if row.ID == nil {
		return fmt.Errorf("cannot mirror a project row without an id")
	}
	project := model.LocalFromProjectRow(row)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"employer_no", "name", "location", "created_at"}),
	}).Create(&project).Error
	if err != nil {
		return fmt.Errorf("failed to mirror remote project %d: %w", project.ID, err)
	}
	return nil
}

func (s *gormProjects) List(ctx context.Context, employerNo int64) ([]model.Project, error) {
	var projects []model.Project
	err := s.db.WithContext(ctx).
		Where("employer_no = ?", employerNo).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list local projects: %w", err)
	}
	return projects, nil
}

func (s *gormProjects) Replace(ctx context.Context, localID int64, row model.ProjectRow) error {
	if row.ID == nil {
		return fmt.Errorf("cannot replace local project %d with a row missing an id", localID)
	}
	project := model.LocalFromProjectRow(row)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Project{}, localID).Error; err != nil {
			return fmt.Errorf("failed to delete provisional project %d: %w", localID, err)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"employer_no", "name", "location", "created_at"}),
		}).Create(&project).Error; err != nil {
			return fmt.Errorf("failed to install remote project %d: %w", project.ID, err)
		}
		return nil
	})
}
