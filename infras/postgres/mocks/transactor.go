package mocks

import (
	"context"

	"github.com/jmoiron/sqlx"

	"rally/infras/postgres"
)

type transactorImpl struct {
}

// WithinTransaction implements postgres.Transactor. It runs the function with
// a nil transaction; repository calls inside it are expected to be mocked.
func (t *transactorImpl) WithinTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}
