package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil error", nil, "", false},
		{"postgres message", errors.New(`duplicate key value violates unique constraint "batches_batch_code_key"`), "", true},
		{"sqlite message", errors.New("UNIQUE constraint failed: batches.batch_code"), "", true},
		{"named constraint match", errors.New(`violates unique constraint "batches_batch_code_key"`), "batches_batch_code_key", true},
		{"named constraint miss", errors.New(`violates unique constraint "batches_transaction_id_key"`), "batches_batch_code_key", false},
		{"unrelated error", errors.New("connection refused"), "", false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
			t.Fatalf("%s: expected %v got %v", tc.name, tc.want, got)
		}
	}
}
