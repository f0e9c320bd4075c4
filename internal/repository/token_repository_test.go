package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRevokeAndCheck(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	exp := time.Now().Add(time.Hour).UTC()

	mock.ExpectExec("INSERT INTO revoked_tokens").
		WithArgs("jti-1", "u1", exp, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM revoked_tokens WHERE jti=?")).WithArgs("jti-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := repo.Revoke(context.Background(), "jti-1", "u1", exp); err != nil {
		t.Fatal(err)
	}
	revoked, err := repo.IsRevoked(context.Background(), "jti-1")
	if err != nil || !revoked {
		t.Fatalf("revoked=%v err=%v", revoked, err)
	}
}

func TestPurgeExpired(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM revoked_tokens WHERE expires_at < ?")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := NewTokenRepo(db).PurgeExpired(context.Background())
	if err != nil || n != 4 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}
