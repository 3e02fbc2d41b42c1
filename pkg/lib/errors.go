package lib

import (
	"errors"

	"github.com/slok/pomo/internal/model"
)

var (
	// ErrNotFound is returned when a task does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input, like an empty title or an
	// ambiguous task reference.
	ErrNotValid = errors.New("not valid")
	// ErrUnauthorized is returned when the account does not own the task.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBackend is returned when the storage failed. The operation had no
	// effect and can be retried.
	ErrBackend = errors.New("backend failure")
)

var errMapping = []struct {
	internal error
	public   error
}{
	{model.ErrNotFound, ErrNotFound},
	{model.ErrAlreadyExists, ErrAlreadyExists},
	{model.ErrNotValid, ErrNotValid},
	{model.ErrUnauthorized, ErrUnauthorized},
	{model.ErrBackend, ErrBackend},
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	for _, m := range errMapping {
		if errors.Is(err, m.internal) {
			return &mappedError{original: err, sentinel: m.public}
		}
	}
	return err
}

type mappedError struct {
	original error
	sentinel error
}

func (e *mappedError) Error() string { return e.original.Error() }

func (e *mappedError) Is(target error) bool { return target == e.sentinel }

func (e *mappedError) Unwrap() error { return e.original }
