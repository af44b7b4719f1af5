package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"duplicate entry", &mysql.MySQLError{Number: 1062}, ErrDuplicate},
		{"lock wait timeout", &mysql.MySQLError{Number: 1205}, ErrTxConflict},
		{"deadlock", &mysql.MySQLError{Number: 1213}, ErrTxConflict},
		{"row referenced", &mysql.MySQLError{Number: 1451}, ErrInUse},
		{"missing reference", &mysql.MySQLError{Number: 1452}, ErrReferenceMissing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}
}

func TestClassifyWrappedDriverError(t *testing.T) {
	wrapped := fmt.Errorf("commit: %w", &mysql.MySQLError{Number: 1213})
	assert.ErrorIs(t, Classify(wrapped), ErrTxConflict)
}

func TestClassifyPassesUnknownThrough(t *testing.T) {
	unknown := errors.New("connection reset")
	assert.Equal(t, unknown, Classify(unknown))

	other := &mysql.MySQLError{Number: 1045}
	assert.Equal(t, error(other), Classify(other))
}
