package logger_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"service-exchange/internal"
	"service-exchange/internal/service/logger"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) InsertRequest(ctx context.Context, e logger.RequestEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockStorage) InsertFetch(ctx context.Context, e logger.FetchEntry) error {
	return m.Called(ctx, e).Error(0)
}

func TestDBRequestLogger_LogRequest_Normalizes(t *testing.T) {
	st := &mockStorage{}
	date := internal.Date{Time: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
	st.On("InsertRequest", mock.Anything, logger.RequestEntry{
		Path:     "api/v1/rates",
		Driver:   "ecb",
		Status:   200,
		DateAsOf: &date,
	}).Return(nil).Once()

	err := logger.New(st).LogRequest(context.Background(), logger.RequestEntry{
		Path:     " /api/v1/rates/ ",
		Driver:   " ECB ",
		Status:   200,
		DateAsOf: &date,
	})

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestDBRequestLogger_LogRequest_EmptyPath(t *testing.T) {
	st := &mockStorage{}
	st.On("InsertRequest", mock.Anything, mock.MatchedBy(func(e logger.RequestEntry) bool {
		return e.Path == "unknown" && e.Driver == ""
	})).Return(nil).Once()

	require.NoError(t, logger.New(st).LogRequest(context.Background(), logger.RequestEntry{Path: "/", Status: 405}))
	st.AssertExpectations(t)
}

func TestDBRequestLogger_LogRequest_StorageError(t *testing.T) {
	st := &mockStorage{}
	st.On("InsertRequest", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	err := logger.New(st).LogRequest(context.Background(), logger.RequestEntry{Path: "/api/v1/rates"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestDBFetchLogger_LogFetch(t *testing.T) {
	st := &mockStorage{}
	date := internal.Date{Time: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)}
	st.On("InsertFetch", mock.Anything, mock.MatchedBy(func(e logger.FetchEntry) bool {
		return e.Driver == "cnb" && e.Status == "success" && e.Records == 31 && e.DateAsOf.Equal(date.Time)
	})).Return(nil).Once()

	err := logger.NewFetchLogger(st).LogFetch(context.Background(), logger.FetchEntry{
		CycleID:  "c1",
		Driver:   " cnb ",
		Status:   "success",
		DateAsOf: &date,
		Records:  31,
	})

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestDBFetchLogger_LogFetch_TruncatesError(t *testing.T) {
	st := &mockStorage{}
	st.On("InsertFetch", mock.Anything, mock.MatchedBy(func(e logger.FetchEntry) bool {
		return len([]rune(e.Error)) == 512 && e.Status == "unknown"
	})).Return(nil).Once()

	err := logger.NewFetchLogger(st).LogFetch(context.Background(), logger.FetchEntry{
		Driver: "ecb",
		Error:  strings.Repeat("é", 600),
	})

	require.NoError(t, err)
	st.AssertExpectations(t)
}

func TestDBFetchLogger_LogFetch_NoDriver(t *testing.T) {
	err := logger.NewFetchLogger(&mockStorage{}).LogFetch(context.Background(), logger.FetchEntry{})
	require.Error(t, err)
}
