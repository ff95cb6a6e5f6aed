package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JSON is a generic JSON object column type.
type JSON map[string]interface{}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, j)
}

// StringArray stores string slices (image URLs, area names) as JSON.
type StringArray []string

// Value implements driver.Valuer.
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, s)
}

// ActorRef identifies who performed an admin-ish action: either the
// environment-configured admin singleton or a real user record. Stored as
// "admin" or "user:<id>".
type ActorRef string

// ActorAdmin is the sentinel for the env-credentialed admin identity.
const ActorAdmin ActorRef = "admin"

// ActorUser builds a reference to a stored user.
func ActorUser(id uint) ActorRef {
	return ActorRef(fmt.Sprintf("user:%d", id))
}

// IsAdmin reports whether the reference is the admin sentinel.
func (a ActorRef) IsAdmin() bool {
	return a == ActorAdmin
}

// UserID returns the referenced user id, or 0 when the reference is the
// admin sentinel or malformed.
func (a ActorRef) UserID() uint {
	raw, ok := strings.CutPrefix(string(a), "user:")
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
