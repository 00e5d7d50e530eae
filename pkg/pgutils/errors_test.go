package pgutils

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{
			"sqlstate in message",
			errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"),
			true,
		},
		{
			"wrapped",
			fmt.Errorf("insert conversation: %w", errors.New("SQLSTATE 23505")),
			true,
		},
		{"unrelated error", errors.New("connection refused"), false},
		{"different code", errors.New("SQLSTATE 23503"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(errors.New("pq: SQLSTATE 23503 violates foreign key")) {
		t.Error("expected true for 23503")
	}
	if IsForeignKeyViolation(errors.New("SQLSTATE 23505")) {
		t.Error("expected false for 23505")
	}
}
