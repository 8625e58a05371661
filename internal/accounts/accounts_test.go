package accounts

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"worklog-backend/internal/model"
)

// fakeClient scripts remote.Client behavior per table.
type fakeClient struct {
	insertReturning func(table string, payload, dest any) error
	selectSingle    func(table string, filters map[string]any, dest any) (bool, error)
	selectRows      func(table string, filters map[string]any, dest any) error
	updates         []map[string]any
}

func (f *fakeClient) Insert(ctx context.Context, table string, payload any) error { return nil }

func (f *fakeClient) InsertReturning(ctx context.Context, table string, payload, dest any) error {
	return f.insertReturning(table, payload, dest)
}

func (f *fakeClient) Select(ctx context.Context, table string, filters map[string]any, order string, dest any) error {
	return f.selectRows(table, filters, dest)
}

func (f *fakeClient) SelectSingle(ctx context.Context, table string, filters map[string]any, dest any) (bool, error) {
	return f.selectSingle(table, filters, dest)
}

func (f *fakeClient) Update(ctx context.Context, table string, filters map[string]any, patch any) error {
	patchMap, _ := patch.(map[string]any)
	f.updates = append(f.updates, patchMap)
	return nil
}

func (f *fakeClient) Rpc(ctx context.Context, fn string, params any) error { return nil }

func copyJSON(t *testing.T, src, dest any) {
	t.Helper()
	raw, err := json.Marshal(src)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRegisterEmployerHashesPassword(t *testing.T) {
	var sentHash string
	client := &fakeClient{
		insertReturning: func(table string, payload, dest any) error {
			assert.Equal(t, "employers", table)
			row := payload.(model.EmployerRow)
			sentHash = row.PasswordHash
			created := row
			created.EmployerNo = 5001
			created.CreatedAt = "2025-06-01T10:00:00Z"
			copyJSON(t, created, dest)
			return nil
		},
	}
	svc := NewService(client, testLogger())

	created, err := svc.RegisterEmployer(context.Background(), " Topwear ", "Boss@Topwear.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, int64(5001), created.EmployerNo)
	assert.Equal(t, "Topwear", created.Name)
	assert.Equal(t, "boss@topwear.com", created.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(sentHash), []byte("secret-pass")))
}

func TestRegisterEmployerValidation(t *testing.T) {
	svc := NewService(&fakeClient{}, testLogger())
	ctx := context.Background()

	_, err := svc.RegisterEmployer(ctx, "", "a@b.co", "secret-pass")
	assert.Error(t, err)
	_, err = svc.RegisterEmployer(ctx, "Topwear", "not-an-email", "secret-pass")
	assert.Error(t, err)
	_, err = svc.RegisterEmployer(ctx, "Topwear", "a@b.co", "short")
	assert.Error(t, err)
}

func TestLoginEmployer(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := model.EmployerRow{EmployerNo: 5001, Name: "Topwear", PasswordHash: string(hash)}

	client := &fakeClient{
		selectSingle: func(table string, filters map[string]any, dest any) (bool, error) {
			if filters["employer_no"] != int64(5001) {
				return false, nil
			}
			copyJSON(t, stored, dest)
			return true, nil
		},
	}
	svc := NewService(client, testLogger())
	ctx := context.Background()

	row, err := svc.LoginEmployer(ctx, 5001, "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Topwear", row.Name)

	_, err = svc.LoginEmployer(ctx, 5001, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.LoginEmployer(ctx, 9999, "secret-pass")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoginWorkerAcceptsLegacyPlaintext(t *testing.T) {
	stored := model.WorkerRow{EmpNo: 101, FullName: "Yoav", PasswordHash: "legacy-plain"}
	client := &fakeClient{
		selectSingle: func(table string, filters map[string]any, dest any) (bool, error) {
			copyJSON(t, stored, dest)
			return true, nil
		},
	}
	svc := NewService(client, testLogger())

	row, err := svc.LoginWorker(context.Background(), 101, "legacy-plain")
	require.NoError(t, err)
	assert.Equal(t, "Yoav", row.FullName)
}

func TestChangeEmployerPasswordVerifiesOldFirst(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	stored := model.EmployerRow{EmployerNo: 5001, PasswordHash: string(hash)}

	client := &fakeClient{
		selectSingle: func(table string, filters map[string]any, dest any) (bool, error) {
			copyJSON(t, stored, dest)
			return true, nil
		},
	}
	svc := NewService(client, testLogger())
	ctx := context.Background()

	err = svc.ChangeEmployerPassword(ctx, 5001, "wrong-old", "new-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, client.updates)

	err = svc.ChangeEmployerPassword(ctx, 5001, "old-password", "new-password")
	require.NoError(t, err)
	require.Len(t, client.updates, 1)
	newHash := client.updates[0]["password_hash"].(string)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password")))
}

func TestWorkerPunchTotals(t *testing.T) {
	workers := []model.WorkerRow{
		{EmpNo: 101, EmployerNo: 1, FullName: "W1"},
		{EmpNo: 102, EmployerNo: 1, FullName: "W2"},
	}
	durations := map[int64][]int64{
		101: {5000, 7000},
		102: {},
	}

	client := &fakeClient{
		selectRows: func(table string, filters map[string]any, dest any) error {
			switch table {
			case "workers":
				copyJSON(t, workers, dest)
			case "punches":
				empNo := filters["subject_id"].(int64)
				rows := make([]map[string]any, 0, len(durations[empNo]))
				for _, d := range durations[empNo] {
					rows = append(rows, map[string]any{"duration_ms": d})
				}
				copyJSON(t, rows, dest)
			}
			return nil
		},
	}
	svc := NewService(client, testLogger())

	totals, err := svc.WorkerPunchTotals(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(12000), totals[101])
	assert.Zero(t, totals[102])
}
