package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// EncodeToken creates a base64 encoded cursor from a movement date, its creation
// time and its id. The id breaks ties between rows created in the same instant.
func EncodeToken(date time.Time, createdAt time.Time, id string) string {
	return EncodeMultiFieldToken(date.Format(timeFormat), createdAt.Format(timeFormat), id)
}

// DecodeToken parses the base64 encoded cursor back into its parts.
func DecodeToken(token string) (time.Time, time.Time, string, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return time.Time{}, time.Time{}, "", err
	}
	if len(parts) != 3 {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}

	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, "", fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return date, createdAt, parts[2], nil
}

// EncodeMultiFieldToken creates a token with any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	tokenStr := strings.Join(fields, "|")
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}

	tokenStr := string(decodedBytes)
	parts := strings.Split(tokenStr, "|")
	return parts, nil
}

// After reports whether a row sorts strictly after the cursor in
// (date desc, created_at desc, id desc) order.
func After(date, createdAt time.Time, id string, curDate, curCreatedAt time.Time, curID string) bool {
	if !date.Equal(curDate) {
		return date.Before(curDate)
	}
	if !createdAt.Equal(curCreatedAt) {
		return createdAt.Before(curCreatedAt)
	}
	return id < curID
}
