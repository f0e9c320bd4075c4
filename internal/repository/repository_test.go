package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
		db.Close()
	})
	return db, mock
}

func duplicateErr(key string) error {
	return &mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry 'x' for key '" + key + "'"}
}

func TestIsDuplicateMatchesKeyName(t *testing.T) {
	err := duplicateErr("users.uq_users_email")
	if !isDuplicate(err) {
		t.Fatal("expected duplicate")
	}
	if !isDuplicate(err, "uq_users_email") {
		t.Fatal("expected key match")
	}
	if isDuplicate(err, "uq_users_username") {
		t.Fatal("matched the wrong key")
	}
	if isDuplicate(sql.ErrNoRows) {
		t.Fatal("non-mysql error reported as duplicate")
	}
}
