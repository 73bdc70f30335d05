package domain

import (
	"bytes"
	"encoding/json"
)

// UserData is the opaque user object issued by the auth service.
type UserData = json.RawMessage

// AuthState is the locally observed authentication state.
type AuthState int

const (
	Unauthenticated AuthState = iota
	Authenticated
)

func (s AuthState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

type VerifyResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HasUser reports whether the response carries a non-empty user payload.
func (r *VerifyResponse) HasUser() bool {
	return !IsEmptyUserData(r.Data)
}

type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CacheChange is emitted when another writer modifies the session cache.
// Value is nil when the entry was cleared.
type CacheChange struct {
	Key   string
	Value UserData
}

func (c CacheChange) Cleared() bool {
	return IsEmptyUserData(c.Value)
}

// IsEmptyUserData treats missing, null and blank payloads as empty.
func IsEmptyUserData(data UserData) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
