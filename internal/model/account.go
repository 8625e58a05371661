package model

// PunchMode controls where a subject is allowed to punch from.
type PunchMode string

const (
	PunchModeSite     PunchMode = "site"
	PunchModeAnywhere PunchMode = "anywhere"
)

// EmployerRow is the remote employers table row.
type EmployerRow struct {
	EmployerNo   int64     `json:"employer_no,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	PunchMode    PunchMode `json:"punch_mode,omitempty"`
	CreatedAt    string    `json:"created_at,omitempty"`
}

// WorkerRow is the remote workers table row. Tz is the worker's
// national id number, also used as the password-reset fallback.
type WorkerRow struct {
	EmpNo        int64     `json:"emp_no,omitempty"`
	EmployerNo   int64     `json:"employer_no"`
	FullName     string    `json:"full_name"`
	Tz           string    `json:"tz"`
	PasswordHash string    `json:"password_hash,omitempty"`
	PunchMode    PunchMode `json:"punch_mode,omitempty"`
	CreatedAt    string    `json:"created_at,omitempty"`
}
