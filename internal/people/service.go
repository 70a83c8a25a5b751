// Package people implements the create, read, update and delete operations on person records,
// combining payload validation, the email uniqueness rule and the record store.
package people

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/people-service/internal/model"
	"gitlab.com/dirk.krummacker/people-service/internal/store"
)

// Service executes the business rules around person records.
type Service struct {
	store *store.Store
	log   zerolog.Logger
}

// New returns a service backed by the given store.
func New(s *store.Store, logger zerolog.Logger) *Service {
	return &Service{
		store: s,
		log:   logger.With().Str("pkg", "people").Logger(),
	}
}

// Create validates the payload and stores a new person. It fails with a *ConflictError if the
// email address is already in use.
func (s *Service) Create(ctx context.Context, in model.NewPerson) (model.Person, error) {
	if err := Validate(in); err != nil {
		return model.Person{}, err
	}
	person := model.Person{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Age:       in.Age,
	}
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		// The unique key on the email column is the real guard, this check only saves the
		// insert in the common case.
		taken, err := tx.EmailTaken(ctx, person.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return store.ErrDuplicateEmail
		}
		return tx.Insert(ctx, &person)
	})
	if err != nil {
		return model.Person{}, s.translate(err, 0, person.Email)
	}
	s.log.Info().Int64("id", person.Id).Msg("person created")
	return person, nil
}

// Get returns the person with the given id, or a *NotFoundError.
func (s *Service) Get(ctx context.Context, id int64) (model.Person, error) {
	person, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Person{}, s.translate(err, id, "")
	}
	return person, nil
}

// Update overwrites the fields present in the patch and returns the full record afterwards.
//
// The email rule is checked before the existence of the record: a patch carrying an email
// address used by a different person fails with a *ConflictError even if id does not exist.
// Keeping one's own email address is not a conflict.
func (s *Service) Update(ctx context.Context, id int64, patch model.PersonPatch) (model.Person, error) {
	if err := Validate(patch); err != nil {
		return model.Person{}, err
	}
	var person model.Person
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		if patch.Email != nil {
			taken, err := tx.EmailTaken(ctx, *patch.Email, id)
			if err != nil {
				return err
			}
			if taken {
				return store.ErrDuplicateEmail
			}
		}
		var err error
		person, err = tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err = tx.Update(ctx, id, patch); err != nil {
			return err
		}
		patch.ApplyTo(&person)
		return nil
	})
	if err != nil {
		email := ""
		if patch.Email != nil {
			email = *patch.Email
		}
		return model.Person{}, s.translate(err, id, email)
	}
	if !patch.IsEmpty() {
		s.log.Info().Int64("id", id).Msg("person updated")
	}
	return person, nil
}

// Delete removes the person with the given id, or returns a *NotFoundError.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.translate(err, id, "")
	}
	s.log.Info().Int64("id", id).Msg("person deleted")
	return nil
}

// translate maps store errors to the error kinds of this package.
func (s *Service) translate(err error, id int64, email string) error {
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		s.log.Debug().Int64("id", id).Str("email", email).Msg("email address already in use")
		return &ConflictError{Email: email}
	case errors.Is(err, store.ErrNotFound):
		return &NotFoundError{Id: id}
	}
	return fmt.Errorf("people: %w", err)
}
