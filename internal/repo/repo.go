// Package repo is the offline-tolerant write path. Remote writes are
// attempted immediately; on failure the row is queued for retry and
// the caller still gets a success, because the punch or project also
// lives in local storage from the moment it is recorded.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"worklog-backend/internal/localstore"
	"worklog-backend/internal/mirror"
	"worklog-backend/internal/model"
	"worklog-backend/internal/queue"
	"worklog-backend/internal/remote"
)

// Repo coordinates the remote client, the pending queue and the local
// stores.
type Repo struct {
	remote   remote.Client
	queue    *queue.Service
	mirror   *mirror.Store
	projects localstore.Projects
	logger   *logrus.Logger
}

// New creates a sync repository.
func New(client remote.Client, q *queue.Service, m *mirror.Store, projects localstore.Projects, logger *logrus.Logger) *Repo {
	return &Repo{
		remote:   client,
		queue:    q,
		mirror:   m,
		projects: projects,
		logger:   logger,
	}
}

// Status is a snapshot of the sync backlog.
type Status struct {
	Pending int `json:"pending"`
	Dead    int `json:"dead"`
}

// RecordPunchWorker records a punch for a worker. The returned bool
// reports whether the punch had to be queued for later delivery.
func (r *Repo) RecordPunchWorker(ctx context.Context, empNo int64, in model.PunchInput) (model.PunchRow, bool, error) {
	return r.recordPunch(ctx, model.SubjectWorker, empNo, in)
}

// RecordPunchEmployer records a punch for an employer.
func (r *Repo) RecordPunchEmployer(ctx context.Context, employerNo int64, in model.PunchInput) (model.PunchRow, bool, error) {
	return r.recordPunch(ctx, model.SubjectEmployer, employerNo, in)
}

// writeWithFallback attempts the remote write, and on any backend
// error runs the fallback instead. It reports whether the fallback
// path was taken. Only a fallback failure surfaces as an error.
func (r *Repo) writeWithFallback(what string, remoteOp, fallback func() error) (bool, error) {
	err := remoteOp()
	if err == nil {
		return false, nil
	}
	r.logger.Warnf("%s not delivered, falling back: %v", what, err)
	if err := fallback(); err != nil {
		return true, err
	}
	return true, nil
}

// recordPunch never fails on a backend error: the remote procedure is
// attempted, and on failure the row is queued as a plain table insert.
// The local mirror is written in both cases.
func (r *Repo) recordPunch(ctx context.Context, subject model.SubjectType, subjectID int64, in model.PunchInput) (model.PunchRow, bool, error) {
	if err := in.Validate(); err != nil {
		return model.PunchRow{}, false, err
	}
	row := model.NewPunchRow(subject, subjectID, in)

	queued, err := r.writeWithFallback(
		fmt.Sprintf("punch for %s %d", subject, subjectID),
		func() error {
			return r.remote.Rpc(ctx, punchProcedure(subject), punchParams(subject, row))
		},
		func() error {
			op, err := queue.NewOperation(queue.TablePunches, row)
			if err != nil {
				return err
			}
			if err := r.queue.Enqueue(ctx, op); err != nil {
				return fmt.Errorf("failed to queue punch: %w", err)
			}
			return nil
		})
	if err != nil {
		return model.PunchRow{}, queued, err
	}

	if err := r.mirror.Append(ctx, subject, subjectID, row); err != nil {
		return model.PunchRow{}, queued, err
	}
	return row, queued, nil
}

func punchProcedure(subject model.SubjectType) string {
	if subject == model.SubjectEmployer {
		return "punch_employer"
	}
	return "punch_worker"
}

func punchParams(subject model.SubjectType, row model.PunchRow) map[string]any {
	params := map[string]any{
		"_kind":          row.Kind,
		"_ts":            row.Ts,
		"_started_at":    row.StartedAt,
		"_duration_ms":   row.DurationMs,
		"_lat":           row.Lat,
		"_lng":           row.Lng,
		"_accuracy":      row.Accuracy,
		"_address_label": row.AddressLabel,
	}
	if subject == model.SubjectEmployer {
		params["_employer_no"] = row.SubjectID
	} else {
		params["_emp_no"] = row.SubjectID
	}
	return params
}

// CreateProject creates a project on the backend, falling back to a
// local-only row with a provisional id when the backend is
// unreachable. The returned bool reports whether the create had to be
// queued.
func (r *Repo) CreateProject(ctx context.Context, employerNo int64, name, location string) (model.ProjectRow, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ProjectRow{}, false, errors.New("project name is required")
	}

	payload := model.ProjectRow{EmployerNo: employerNo, Name: name, Location: location}

	var created model.ProjectRow
	var local model.Project
	queued, err := r.writeWithFallback(
		fmt.Sprintf("project create for employer %d", employerNo),
		func() error {
			return r.remote.InsertReturning(ctx, "projects", payload, &created)
		},
		func() error {
			var err error
			local, err = r.projects.Create(ctx, employerNo, name, location)
			if err != nil {
				return err
			}
			op, err := queue.NewOperation(queue.TableProjects, payload)
			if err != nil {
				return err
			}
			op.LocalProjectID = local.ID
			if err := r.queue.Enqueue(ctx, op); err != nil {
				return fmt.Errorf("failed to queue project create: %w", err)
			}
			return nil
		})
	if err != nil {
		return model.ProjectRow{}, queued, err
	}
	if queued {
		return model.ProjectRowFromLocal(local), true, nil
	}

	if err := r.projects.MirrorRemote(ctx, created); err != nil {
		r.logger.Warnf("failed to mirror project %q locally: %v", created.Name, err)
	}
	return created, false, nil
}

// ListProjects returns the employer's projects from the backend,
// newest first, mirroring them locally. When the backend is
// unreachable the local rows are returned instead.
func (r *Repo) ListProjects(ctx context.Context, employerNo int64) ([]model.ProjectRow, error) {
	var rows []model.ProjectRow
	err := r.remote.Select(ctx, "projects", map[string]any{"employer_no": employerNo}, "created_at.desc", &rows)
	if err == nil {
		for _, row := range rows {
			if err := r.projects.MirrorRemote(ctx, row); err != nil {
				r.logger.Warnf("failed to mirror project %q locally: %v", row.Name, err)
			}
		}
		return rows, nil
	}
	r.logger.Warnf("falling back to local projects for employer %d: %v", employerNo, err)

	local, err := r.projects.List(ctx, employerNo)
	if err != nil {
		return nil, err
	}
	rows = make([]model.ProjectRow, 0, len(local))
	for _, p := range local {
		rows = append(rows, model.ProjectRowFromLocal(p))
	}
	return rows, nil
}

// FlushPending redelivers every queued operation. Punches become plain
// table inserts; project creates additionally replace their
// provisional local row with the remote-assigned one.
func (r *Repo) FlushPending(ctx context.Context) (queue.Result, error) {
	return r.queue.DrainAndRetry(ctx, r.deliver)
}

func (r *Repo) deliver(ctx context.Context, op queue.Operation) error {
	switch op.Table {
	case queue.TablePunches:
		return r.remote.Insert(ctx, string(op.Table), op.Payload)
	case queue.TableProjects:
		var payload model.ProjectRow
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal queued project: %w", err)
		}
		var created model.ProjectRow
		if err := r.remote.InsertReturning(ctx, string(op.Table), payload, &created); err != nil {
			return err
		}
		if op.LocalProjectID != 0 {
			// The remote insert already happened; a local swap
			// failure must not requeue the operation.
			if err := r.projects.Replace(ctx, op.LocalProjectID, created); err != nil {
				r.logger.Errorf("failed to replace provisional project %d: %v", op.LocalProjectID, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown queued table %q", op.Table)
	}
}

// Punches returns the subject's locally mirrored punch history.
func (r *Repo) Punches(ctx context.Context, subject model.SubjectType, subjectID int64) ([]model.PunchRow, error) {
	return r.mirror.List(ctx, subject, subjectID)
}

// Status reports the pending and dead-lettered operation counts.
func (r *Repo) Status(ctx context.Context) (Status, error) {
	pending, err := r.queue.Depth(ctx)
	if err != nil {
		return Status{}, err
	}
	dead, err := r.queue.DeadCount(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{Pending: pending, Dead: dead}, nil
}
