package model

import "time"

// Project is the locally stored project row (embedded sqlite). When a
// project is created offline the ID is assigned locally; once the
// queued remote insert succeeds the row is replaced with the
// remote-assigned one.
type Project struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	EmployerNo int64     `gorm:"index;not null" json:"employer_no"`
	Name       string    `gorm:"size:256;not null" json:"name"`
	Location   string    `gorm:"size:256" json:"location"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

// ProjectRow is the remote representation of a project. ID and
// CreatedAt are remote-assigned on insert.
type ProjectRow struct {
	ID         *int64 `json:"id,omitempty"`
	EmployerNo int64  `json:"employer_no"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// LocalFromProjectRow converts a remote row into the local shape.
func LocalFromProjectRow(row ProjectRow) Project {
	p := Project{
		EmployerNo: row.EmployerNo,
		Name:       row.Name,
		Location:   row.Location,
	}
	if row.ID != nil {
		p.ID = *row.ID
	}
	if t, err := time.Parse(time.RFC3339, row.CreatedAt); err == nil {
		p.CreatedAt = t
	}
	return p
}

// ProjectRowFromLocal converts a local row into the remote shape, used
// when a fallback-created project is returned to the caller.
func ProjectRowFromLocal(p Project) ProjectRow {
	id := p.ID
	return ProjectRow{
		ID:         &id,
		EmployerNo: p.EmployerNo,
		Name:       p.Name,
		Location:   p.Location,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
