package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storefront/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	consumeRefreshQ = `(?s)DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING`
	consumeResetQ   = `(?s)DELETE\s+FROM\s+password_reset_tokens\s+WHERE\s+token_hash\s*=\s*\$1\s+RETURNING`
	insertRefreshQ  = `(?s)INSERT\s+INTO\s+refresh_tokens`
)

var (
	refreshCols = []string{"user_id", "session_id", "expires_at"}
	resetCols   = []string{"user_id", "expires_at", "created_at"}
)

// newSQLAccountService runs the service on postgres repositories over sqlmock.
func newSQLAccountService(t *testing.T) (*AccountService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	s := NewAccountService(db, repomanager.NewPostgresRepositoryManager(), sessions.NewMemoryStore(), &fakeMailer{}, testConfig())
	return s, mock
}

func TestRefreshToken_ConsumedRowRejected(t *testing.T) {
	s, mock := newSQLAccountService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(consumeRefreshQ).WithArgs("rt").WillReturnRows(sqlmock.NewRows(refreshCols))
	mock.ExpectRollback()

	pair, err := s.RefreshToken(context.Background(), "rt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
	assert.Nil(t, pair)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_SecondRedemptionRejected(t *testing.T) {
	s, mock := newSQLAccountService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(consumeRefreshQ).WithArgs("rt").
		WillReturnRows(sqlmock.NewRows(refreshCols).AddRow("u-1", "s-1", time.Now().Add(time.Hour)))
	mock.ExpectExec(insertRefreshQ).
		WithArgs("u-1", "s-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(consumeRefreshQ).WithArgs("rt").WillReturnRows(sqlmock.NewRows(refreshCols))
	mock.ExpectRollback()

	pair, err := s.RefreshToken(context.Background(), "rt")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, "rt", pair.RefreshToken)

	_, err = s.RefreshToken(context.Background(), "rt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_ExpiredRowRolledBack(t *testing.T) {
	s, mock := newSQLAccountService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(consumeRefreshQ).WithArgs("rt").
		WillReturnRows(sqlmock.NewRows(refreshCols).AddRow("u-1", "s-1", time.Now().Add(-time.Minute)))
	mock.ExpectRollback()

	_, err := s.RefreshToken(context.Background(), "rt")
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_ConsumedRowRejected(t *testing.T) {
	s, mock := newSQLAccountService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(consumeResetQ).WithArgs(common.HashToken("tok")).WillReturnRows(sqlmock.NewRows(resetCols))
	mock.ExpectRollback()

	err := s.ResetPassword(context.Background(), "tok", "new-pass")
	require.ErrorIs(t, err, common.ErrInvalidToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword_ExpiredRowRolledBack(t *testing.T) {
	s, mock := newSQLAccountService(t)
	past := time.Now().Add(-time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(consumeResetQ).WithArgs(common.HashToken("tok")).
		WillReturnRows(sqlmock.NewRows(resetCols).AddRow("u-1", past, past.Add(-time.Hour)))
	mock.ExpectRollback()

	err := s.ResetPassword(context.Background(), "tok", "new-pass")
	require.ErrorIs(t, err, common.ErrTokenExpired)
	require.NoError(t, mock.ExpectationsWereMet())
}
