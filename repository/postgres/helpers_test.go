package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "   ", want: ""},
		{in: " milk ", want: "%milk%"},
		{in: "50%", want: `%50\%%`},
		{in: "snake_case", want: `%snake\_case%`},
		{in: `C:\tmp`, want: `%C:\\tmp%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, likePattern(tt.in), "input %q", tt.in)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: uniqueViolation}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(nil))
}

func TestNullTime(t *testing.T) {
	assert.Nil(t, nullTime(nil))
	assert.Nil(t, nullTime(&time.Time{}))

	due := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, due, nullTime(&due))
}
