package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	records  map[int64]*Record
	getCalls int
	getErr   error
}

func (m *mockRepo) Get(ctx context.Context, branchID int64) (*Record, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[branchID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRepo) Upsert(ctx context.Context, req UpdateRequest) (*Record, error) {
	if m.records == nil {
		m.records = make(map[int64]*Record)
	}
	rec := &Record{
		BranchID:           req.BranchID,
		AnnualInterestPct:  req.AnnualInterestPct,
		ChequeGraceDays:    req.ChequeGraceDays,
		DocumentsGraceDays: req.DocumentsGraceDays,
		UpdatedBy:          req.UpdatedBy,
		UpdatedAt:          time.Now(),
	}
	m.records[req.BranchID] = rec
	cp := *rec
	return &cp, nil
}

func newTestService(t *testing.T, repo RepositoryPort) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, NewCache(client, time.Minute), nil)
}

func TestResolveCaches(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{records: map[int64]*Record{
		3: {BranchID: 3, AnnualInterestPct: 72, ChequeGraceDays: 30, DocumentsGraceDays: 45},
	}}
	svc := newTestService(t, repo)

	rec, err := svc.Resolve(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 72.0, rec.AnnualInterestPct)
	require.Equal(t, 1, repo.getCalls)

	rec, err = svc.Resolve(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 72.0, rec.AnnualInterestPct)
	require.Equal(t, 1, repo.getCalls)
}

func TestResolveFallsBackToCompanyRow(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{records: map[int64]*Record{
		0: {BranchID: 0, AnnualInterestPct: 84, ChequeGraceDays: 45, DocumentsGraceDays: 45},
	}}
	svc := newTestService(t, repo)

	rec, err := svc.Resolve(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, 84.0, rec.AnnualInterestPct)
	require.Equal(t, int64(9), rec.BranchID)
}

func TestResolveFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockRepo{})

	rec, err := svc.Resolve(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, 96.0, rec.AnnualInterestPct)
	require.Equal(t, 45, rec.ChequeGraceDays)
	require.Equal(t, 45, rec.DocumentsGraceDays)
}

func TestResolveRepoError(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, &mockRepo{getErr: errors.New("connection refused")})

	_, err := svc.Resolve(ctx, 1)
	require.Error(t, err)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{records: map[int64]*Record{
		3: {BranchID: 3, AnnualInterestPct: 72, ChequeGraceDays: 30, DocumentsGraceDays: 45},
	}}
	svc := newTestService(t, repo)

	_, err := svc.Resolve(ctx, 3)
	require.NoError(t, err)

	_, err = svc.Update(ctx, UpdateRequest{BranchID: 3, AnnualInterestPct: 120, ChequeGraceDays: 15, DocumentsGraceDays: 30})
	require.NoError(t, err)

	rec, err := svc.Resolve(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, 120.0, rec.AnnualInterestPct)
	require.Equal(t, 15, rec.ChequeGraceDays)
}

func TestGetConvertsToEngineSettings(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{records: map[int64]*Record{
		1: {BranchID: 1, AnnualInterestPct: 96, ChequeGraceDays: 40, DocumentsGraceDays: 45},
	}}
	svc := newTestService(t, repo)

	st, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 96.0, st.AnnualInterestPct)
	require.NotNil(t, st.ChequeGraceDays)
	require.Equal(t, 40, *st.ChequeGraceDays)
}

func TestWarmupLoadsCache(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{records: map[int64]*Record{
		1: {BranchID: 1, AnnualInterestPct: 96, ChequeGraceDays: 45, DocumentsGraceDays: 45},
		2: {BranchID: 2, AnnualInterestPct: 72, ChequeGraceDays: 30, DocumentsGraceDays: 30},
	}}
	svc := newTestService(t, repo)

	require.NoError(t, svc.Warmup(ctx, []int64{1, 2}))
	calls := repo.getCalls

	_, err := svc.Resolve(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, calls, repo.getCalls)
}
