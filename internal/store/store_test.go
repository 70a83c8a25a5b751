package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
)

// createMockStore builds a store on top of a mock database and returns the mock object for
// defining our expected SQL calls.
func createMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	mock.ExpectPrepare(regexp.QuoteMeta(selectByID))
	mock.ExpectPrepare(regexp.QuoteMeta(deleteByID))
	s, err := New(db)
	if err != nil {
		t.Fatalf("an error '%s' was not expected when creating the store", err)
	}
	return s, mock, db
}

func personRows(mock sqlmock.Sqlmock) *sqlmock.Rows {
	return mock.NewRows([]string{"id", "first_name", "last_name", "email", "age"})
}

func TestNewPrepareFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	mock.ExpectPrepare(regexp.QuoteMeta(selectByID)).WillReturnError(errors.New("boom"))

	s, err := New(db)
	assert.Nil(t, s)
	assert.ErrorContains(t, err, "prepare select statement")
}

func TestFindByID(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectByID)).
		WithArgs(7).
		WillReturnRows(personRows(mock).AddRow(7, "Erika", "Mustermann", "erika@example.com", 54))

	person, err := s.FindByID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Equal(t, model.Person{Id: 7, FirstName: "Erika", LastName: "Mustermann", Email: "erika@example.com", Age: 54}, person)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(selectByID)).
		WithArgs(9999).
		WillReturnRows(personRows(mock))

	_, err := s.FindByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(deleteByID)).
		WithArgs(42).
		WillReturnResult(sqlmock.NewResult(-1, 1))

	assert.NoError(t, s.Delete(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(deleteByID)).
		WithArgs(9999).
		WillReturnResult(sqlmock.NewResult(-1, 0))

	assert.ErrorIs(t, s.Delete(context.Background(), 9999), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommitsInsert(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectByEmail)).
		WithArgs("erika@example.com", 0).
		WillReturnRows(mock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO people").
		WithArgs("Erika", "Mustermann", "erika@example.com", 54).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	person := model.Person{FirstName: "Erika", LastName: "Mustermann", Email: "erika@example.com", Age: 54}
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		taken, err := tx.EmailTaken(context.Background(), person.Email, 0)
		if err != nil {
			return err
		}
		assert.False(t, taken)
		return tx.Insert(context.Background(), &person)
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(12), person.Id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnDuplicateKey(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO people").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'erika@example.com' for key 'email'"})
	mock.ExpectRollback()

	person := model.Person{FirstName: "Erika", LastName: "Mustermann", Email: "erika@example.com", Age: 54}
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		return tx.Insert(context.Background(), &person)
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = s.WithTx(context.Background(), func(tx *Tx) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailTakenExcludesOwnRow(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectByEmail)).
		WithArgs("rudi@example.com", 17).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	var taken bool
	err := s.WithTx(context.Background(), func(tx *Tx) error {
		var err error
		taken, err = tx.EmailTaken(context.Background(), "rudi@example.com", 17)
		return err
	})
	assert.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestUpdatePartial verifies that only the fields present in the patch end up in the statement.
func TestUpdatePartial(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	age := 31
	email := "rudi@example.com"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE people SET email = ?, age = ? WHERE id = ?")).
		WithArgs("rudi@example.com", 31, 35).
		WillReturnResult(sqlmock.NewResult(-1, 1))
	mock.ExpectCommit()

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		return tx.Update(context.Background(), 35, model.PersonPatch{Email: &email, Age: &age})
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmptyPatch(t *testing.T) {
	s, mock, db := createMockStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectCommit()

	err := s.WithTx(context.Background(), func(tx *Tx) error {
		return tx.Update(context.Background(), 35, model.PersonPatch{})
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapWriteErrorKeepsOtherErrors(t *testing.T) {
	cause := &mysql.MySQLError{Number: 1406, Message: "Data too long for column 'first_name'"}
	err := mapWriteError(cause)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
	assert.ErrorIs(t, err, cause)
}
