package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPunchRowKeepsZeroDurationOnOut(t *testing.T) {
	started := "2025-06-02T08:00:00Z"
	row := NewPunchRow(SubjectWorker, 101, PunchInput{
		Kind:      PunchOut,
		Ts:        "2025-06-02T08:00:00Z",
		StartedAt: started,
	})

	require.NotNil(t, row.DurationMs)
	assert.Zero(t, *row.DurationMs)
	require.NotNil(t, row.StartedAt)
	assert.Equal(t, started, *row.StartedAt)
}

func TestNewPunchRowLeavesDurationUnsetOnIn(t *testing.T) {
	row := NewPunchRow(SubjectWorker, 101, PunchInput{
		Kind: PunchIn,
		Ts:   "2025-06-02T08:00:00Z",
	})

	assert.Nil(t, row.DurationMs)
	assert.Nil(t, row.StartedAt)
	assert.Equal(t, SubjectWorker, row.SubjectType)
	assert.Equal(t, int64(101), row.SubjectID)
}
