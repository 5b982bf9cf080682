package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	createdAt := time.Date(2024, 3, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeToken(date, createdAt, "mov-1")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedDate, decodedCreatedAt, id, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, date, decodedDate)
	assert.Equal(t, createdAt, decodedCreatedAt)
	assert.Equal(t, "mov-1", id)

	// Zero time values
	zeroToken := EncodeToken(time.Time{}, time.Time{}, "")
	decodedZeroDate, decodedZeroTime, zeroID, err := DecodeToken(zeroToken)
	require.NoError(t, err)
	assert.True(t, decodedZeroDate.IsZero())
	assert.True(t, decodedZeroTime.IsZero())
	assert.Empty(t, zeroID)
}

func TestDecodeTokenError(t *testing.T) {
	_, _, _, err := DecodeToken("this is not base64!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	_, _, _, err = DecodeToken(base64.StdEncoding.EncodeToString([]byte("2024-03-15T00:00:00Z")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "split")

	_, _, _, err = DecodeToken(base64.StdEncoding.EncodeToString([]byte("notadate|2024-03-15T00:00:00Z|x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "date parse")

	_, _, _, err = DecodeToken(base64.StdEncoding.EncodeToString([]byte("2024-03-15T00:00:00Z|nope|x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at parse")
}

func TestMultiFieldToken(t *testing.T) {
	token := EncodeMultiFieldToken("a", "b", "c")
	parts, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, parts)
}

func TestAfter(t *testing.T) {
	d1 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	assert.True(t, After(d0, c, "z", d1, c, "a"), "older date sorts after")
	assert.False(t, After(d1, c, "a", d0, c, "z"))
	assert.True(t, After(d1, c.Add(-time.Second), "z", d1, c, "a"), "older creation sorts after")
	assert.True(t, After(d1, c, "a", d1, c, "b"), "smaller id sorts after")
	assert.False(t, After(d1, c, "b", d1, c, "b"), "cursor row itself is excluded")
}
