package model

import (
	"fmt"
	"time"
)

// SubjectType identifies who a punch belongs to.
type SubjectType string

const (
	SubjectWorker   SubjectType = "worker"
	SubjectEmployer SubjectType = "employer"
)

// ParseSubjectType validates a subject type coming from an API path.
func ParseSubjectType(s string) (SubjectType, error) {
	switch SubjectType(s) {
	case SubjectWorker, SubjectEmployer:
		return SubjectType(s), nil
	}
	return "", fmt.Errorf("unknown subject type %q", s)
}

// PunchKind is the direction of a clock event.
type PunchKind string

const (
	PunchIn  PunchKind = "in"
	PunchOut PunchKind = "out"
)

// PunchInput is what a caller supplies when recording a punch.
// StartedAt and DurationMs are expected only on "out" punches, where
// StartedAt equals the ts of the paired "in" punch.
type PunchInput struct {
	Kind         PunchKind `json:"kind" binding:"required"`
	Ts           string    `json:"ts" binding:"required"`
	StartedAt    string    `json:"started_at,omitempty"`
	DurationMs   int64     `json:"duration_ms,omitempty"`
	Lat          *float64  `json:"lat,omitempty"`
	Lng          *float64  `json:"lng,omitempty"`
	Accuracy     *float64  `json:"accuracy,omitempty"`
	AddressLabel string    `json:"address_label,omitempty"`
}

// Validate checks the parts of the input this layer owns. In/out
// alternation is the caller's responsibility; out-of-order punches are
// accepted.
func (in PunchInput) Validate() error {
	switch in.Kind {
	case PunchIn, PunchOut:
	default:
		return fmt.Errorf("unknown punch kind %q", in.Kind)
	}
	if _, err := time.Parse(time.RFC3339, in.Ts); err != nil {
		return fmt.Errorf("invalid ts %q: %w", in.Ts, err)
	}
	if in.DurationMs < 0 {
		return fmt.Errorf("negative duration_ms %d", in.DurationMs)
	}
	return nil
}

// PunchRow is the canonical remote representation of a punch, shaped
// for the backend's punches table.
type PunchRow struct {
	ID           *int64      `json:"id,omitempty"`
	SubjectType  SubjectType `json:"subject_type"`
	SubjectID    int64       `json:"subject_id"`
	Kind         PunchKind   `json:"kind"`
	Ts           string      `json:"ts"`
	StartedAt    *string     `json:"started_at"`
	DurationMs   *int64      `json:"duration_ms"`
	Lat          *float64    `json:"lat"`
	Lng          *float64    `json:"lng"`
	Accuracy     *float64    `json:"accuracy"`
	AddressLabel *string     `json:"address_label"`
}

// NewPunchRow builds the remote row from caller input. This is the
// single input-to-row conversion point.
func NewPunchRow(subject SubjectType, subjectID int64, in PunchInput) PunchRow {
	row := PunchRow{
		SubjectType: subject,
		SubjectID:   subjectID,
		Kind:        in.Kind,
		Ts:          in.Ts,
		Lat:         in.Lat,
		Lng:         in.Lng,
		Accuracy:    in.Accuracy,
	}
	if in.StartedAt != "" {
		row.StartedAt = &in.StartedAt
	}
	// An "out" punch always carries its duration, zero included.
	if in.Kind == PunchOut {
		d := in.DurationMs
		row.DurationMs = &d
	}
	if in.AddressLabel != "" {
		row.AddressLabel = &in.AddressLabel
	}
	return row
}
