// Package accounts handles employer and worker registration, login and
// profile updates against the cloud backend. Unlike punch recording,
// these calls have no offline fallback: backend errors propagate to
// the caller.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"worklog-backend/internal/model"
	"worklog-backend/internal/remote"
)

var (
	ErrNotFound           = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service performs account operations through the remote client.
type Service struct {
	remote remote.Client
	logger *logrus.Logger
}

// NewService creates an accounts service.
func NewService(client remote.Client, logger *logrus.Logger) *Service {
	return &Service{remote: client, logger: logger}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// passwordMatches accepts a bcrypt hash or, for rows written before
// hashing was introduced, the plain stored value.
func passwordMatches(stored, provided string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(provided)) == nil {
		return true
	}
	return stored == provided
}

// RegisterEmployer creates an employer account and returns the backend
// row with its assigned employer number.
func (s *Service) RegisterEmployer(ctx context.Context, name, email, password string) (model.EmployerRow, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return model.EmployerRow{}, errors.New("name is required")
	}
	if !emailPattern.MatchString(email) {
		return model.EmployerRow{}, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < 8 {
		return model.EmployerRow{}, errors.New("password must be at least 8 characters")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return model.EmployerRow{}, err
	}

	payload := model.EmployerRow{Name: name, Email: email, PasswordHash: hash, PunchMode: model.PunchModeSite}
	var created model.EmployerRow
	if err := s.remote.InsertReturning(ctx, "employers", payload, &created); err != nil {
		return model.EmployerRow{}, fmt.Errorf("failed to register employer: %w", err)
	}
	s.logger.Infof("registered employer %d (%s)", created.EmployerNo, created.Email)
	return created, nil
}

// LoginEmployer verifies credentials and returns the employer row.
func (s *Service) LoginEmployer(ctx context.Context, employerNo int64, password string) (model.EmployerRow, error) {
	var row model.EmployerRow
	found, err := s.remote.SelectSingle(ctx, "employers", map[string]any{"employer_no": employerNo}, &row)
	if err != nil {
		return model.EmployerRow{}, fmt.Errorf("failed to look up employer %d: %w", employerNo, err)
	}
	if !found {
		return model.EmployerRow{}, ErrNotFound
	}
	if !passwordMatches(row.PasswordHash, password) {
		return model.EmployerRow{}, ErrInvalidCredentials
	}
	return row, nil
}

// RegisterWorker creates a worker account under an employer.
func (s *Service) RegisterWorker(ctx context.Context, employerNo int64, fullName, tz, password string) (model.WorkerRow, error) {
	fullName = strings.TrimSpace(fullName)
	tz = strings.TrimSpace(tz)
	if fullName == "" || tz == "" {
		return model.WorkerRow{}, errors.New("full name and tz are required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return model.WorkerRow{}, err
	}

	payload := model.WorkerRow{
		EmployerNo:   employerNo,
		FullName:     fullName,
		Tz:           tz,
		PasswordHash: hash,
		PunchMode:    model.PunchModeSite,
	}
	var created model.WorkerRow
	if err := s.remote.InsertReturning(ctx, "workers", payload, &created); err != nil {
		return model.WorkerRow{}, fmt.Errorf("failed to register worker: %w", err)
	}
	s.logger.Infof("registered worker %d under employer %d", created.EmpNo, employerNo)
	return created, nil
}

// LoginWorker verifies credentials and returns the worker row.
func (s *Service) LoginWorker(ctx context.Context, empNo int64, password string) (model.WorkerRow, error) {
	var row model.WorkerRow
	found, err := s.remote.SelectSingle(ctx, "workers", map[string]any{"emp_no": empNo}, &row)
	if err != nil {
		return model.WorkerRow{}, fmt.Errorf("failed to look up worker %d: %w", empNo, err)
	}
	if !found {
		return model.WorkerRow{}, ErrNotFound
	}
	if !passwordMatches(row.PasswordHash, password) {
		return model.WorkerRow{}, ErrInvalidCredentials
	}
	return row, nil
}

// ChangeEmployerPassword verifies the old password before storing a
// hash of the new one.
func (s *Service) ChangeEmployerPassword(ctx context.Context, employerNo int64, oldPassword, newPassword string) error {
	if _, err := s.LoginEmployer(ctx, employerNo, oldPassword); err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	err = s.remote.Update(ctx, "employers",
		map[string]any{"employer_no": employerNo},
		map[string]any{"password_hash": hash})
	if err != nil {
		return fmt.Errorf("failed to update employer password: %w", err)
	}
	return nil
}

// ResetWorkerPassword resets a worker's password to their tz number.
func (s *Service) ResetWorkerPassword(ctx context.Context, empNo int64) error {
	var row model.WorkerRow
	found, err := s.remote.SelectSingle(ctx, "workers", map[string]any{"emp_no": empNo}, &row)
	if err != nil {
		return fmt.Errorf("failed to look up worker %d: %w", empNo, err)
	}
	if !found {
		return ErrNotFound
	}
	hash, err := hashPassword(row.Tz)
	if err != nil {
		return err
	}
	err = s.remote.Update(ctx, "workers",
		map[string]any{"emp_no": empNo},
		map[string]any{"password_hash": hash})
	if err != nil {
		return fmt.Errorf("failed to reset worker password: %w", err)
	}
	return nil
}

// UpdateEmployerPunchMode sets whether the employer may punch from
// anywhere or only on site.
func (s *Service) UpdateEmployerPunchMode(ctx context.Context, employerNo int64, mode model.PunchMode) error {
	err := s.remote.Update(ctx, "employers",
		map[string]any{"employer_no": employerNo},
		map[string]any{"punch_mode": mode})
	if err != nil {
		return fmt.Errorf("failed to update employer punch mode: %w", err)
	}
	return nil
}

// UpdateWorkerPunchMode sets the worker's punch mode.
func (s *Service) UpdateWorkerPunchMode(ctx context.Context, empNo int64, mode model.PunchMode) error {
	err := s.remote.Update(ctx, "workers",
		map[string]any{"emp_no": empNo},
		map[string]any{"punch_mode": mode})
	if err != nil {
		return fmt.Errorf("failed to update worker punch mode: %w", err)
	}
	return nil
}

// ListWorkers returns the employer's workers, oldest first.
func (s *Service) ListWorkers(ctx context.Context, employerNo int64) ([]model.WorkerRow, error) {
	var workers []model.WorkerRow
	err := s.remote.Select(ctx, "workers", map[string]any{"employer_no": employerNo}, "created_at.asc", &workers)
	if err != nil {
		return nil, fmt.Errorf("failed to list workers: %w", err)
	}
	return workers, nil
}

// WorkerPunchTotals returns the summed duration_ms of completed
// punches per worker of the employer.
func (s *Service) WorkerPunchTotals(ctx context.Context, employerNo int64) (map[int64]int64, error) {
	workers, err := s.ListWorkers(ctx, employerNo)
	if err != nil {
		return nil, err
	}

	totals := make(map[int64]int64, len(workers))
	for _, worker := range workers {
		var rows []struct {
			DurationMs *int64 `json:"duration_ms"`
		}
		err := s.remote.Select(ctx, "punches", map[string]any{
			"subject_type": model.SubjectWorker,
			"subject_id":   worker.EmpNo,
			"kind":         model.PunchOut,
		}, "", &rows)
		if err != nil {
			return nil, fmt.Errorf("failed to load punches for worker %d: %w", worker.EmpNo, err)
		}
		var total int64
		for _, row := range rows {
			if row.DurationMs != nil {
				total += *row.DurationMs
			}
		}
		totals[worker.EmpNo] = total
	}
	return totals, nil
}
