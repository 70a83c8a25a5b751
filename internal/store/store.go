// Package store gives access to the people table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
)

// erDupEntry is the MySQL server error number for a violated unique key.
const erDupEntry = 1062

const (
	selectByID    = `SELECT id, first_name, last_name, email, age FROM people WHERE id = ?`
	deleteByID    = `DELETE FROM people WHERE id = ?`
	selectByEmail = `SELECT id FROM people WHERE email = ? AND id <> ? LIMIT 1`
	insertPerson  = `INSERT INTO people (first_name, last_name, email, age) VALUES (:first_name, :last_name, :email, :age)`
)

var (
	// ErrNotFound is returned when no row exists for the requested id.
	ErrNotFound = errors.New("person not found")

	// ErrDuplicateEmail is returned when a write would store an email address that another row
	// already holds. It is reported both by the explicit pre-check and by the unique key on the
	// email column.
	ErrDuplicateEmail = errors.New("email address already used by another person")
)

// Store wraps the database handle together with the prepared statements for the single statement
// operations.
type Store struct {
	db *sqlx.DB

	// selectWhereId is a prepared statement for selecting the person with a given id.
	selectWhereId *sqlx.Stmt

	// deleteWhereId is a prepared statement for deleting the person with a given id.
	deleteWhereId *sqlx.Stmt
}

// New initializes the sqlx database wrapper with the specified sql database and prepares all
// statements. The database argument can be a real database for production use or a mock
// database within unit tests.
func New(sqlDB *sql.DB) (*Store, error) {
	var err error
	s := &Store{db: sqlx.NewDb(sqlDB, "mysql")}
	s.selectWhereId, err = s.db.Preparex(selectByID)
	if err != nil {
		return nil, fmt.Errorf("prepare select statement: %w", err)
	}
	s.deleteWhereId, err = s.db.Preparex(deleteByID)
	if err != nil {
		s.selectWhereId.Close()
		return nil, fmt.Errorf("prepare delete statement: %w", err)
	}
	return s, nil
}

// Close releases the prepared statements. The underlying database handle is owned by the caller.
func (s *Store) Close() error {
	return errors.Join(s.selectWhereId.Close(), s.deleteWhereId.Close())
}

// FindByID returns the person with the given id, or ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id int64) (model.Person, error) {
	var person model.Person
	err := s.selectWhereId.GetContext(ctx, &person, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Person{}, ErrNotFound
	}
	if err != nil {
		return model.Person{}, fmt.Errorf("select person %d: %w", id, err)
	}
	return person, nil
}

// Delete removes the person with the given id, or returns ErrNotFound if there is none.
func (s *Store) Delete(ctx context.Context, id int64) error {
	result, err := s.deleteWhereId.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("delete person %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// WithTx runs fn inside a database transaction. The transaction is committed if fn returns nil
// and rolled back otherwise, including when fn panics.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		if errCommit := sqlTx.Commit(); errCommit != nil {
			err = fmt.Errorf("commit transaction: %w", errCommit)
		}
	}()
	return fn(&Tx{tx: sqlTx})
}

// Tx is a unit of work against the people table.
type Tx struct {
	tx *sqlx.Tx
}

// EmailTaken reports whether a person other than the one with excludeID holds the email address.
// Ids start at 1, so an excludeID of 0 checks against all rows.
func (t *Tx) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var id int64
	err := t.tx.GetContext(ctx, &id, selectByEmail, email, excludeID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("select person by email: %w", err)
	}
	return true, nil
}

// FindByID returns the person with the given id, or ErrNotFound.
func (t *Tx) FindByID(ctx context.Context, id int64) (model.Person, error) {
	var person model.Person
	err := t.tx.GetContext(ctx, &person, selectByID, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Person{}, ErrNotFound
	}
	if err != nil {
		return model.Person{}, fmt.Errorf("select person %d: %w", id, err)
	}
	return person, nil
}

// Insert stores a new person and sets its Id to the value assigned by the database.
func (t *Tx) Insert(ctx context.Context, person *model.Person) error {
	result, err := t.tx.NamedExecContext(ctx, insertPerson, person)
	if err != nil {
		return mapWriteError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert person: %w", err)
	}
	person.Id = id
	return nil
}

// Update writes the fields present in the patch to the person with the given id. A patch without
// any field is a no-op.
func (t *Tx) Update(ctx context.Context, id int64, patch model.PersonPatch) error {
	var assignments []string
	var args []interface{}
	if patch.FirstName != nil {
		assignments = append(assignments, "first_name = ?")
		args = append(args, *patch.FirstName)
	}
	if patch.LastName != nil {
		assignments = append(assignments, "last_name = ?")
		args = append(args, *patch.LastName)
	}
	if patch.Email != nil {
		assignments = append(assignments, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Age != nil {
		assignments = append(assignments, "age = ?")
		args = append(args, *patch.Age)
	}
	if len(assignments) == 0 {
		return nil
	}
	query := "UPDATE people SET " + strings.Join(assignments, ", ") + " WHERE id = ?"
	args = append(args, id)
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// mapWriteError translates a violated unique key into ErrDuplicateEmail. The email column holds
// the only unique key besides the primary key.
func mapWriteError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == erDupEntry {
		return ErrDuplicateEmail
	}
	return fmt.Errorf("write person: %w", err)
}
