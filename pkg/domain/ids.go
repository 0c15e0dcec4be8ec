// Package domain holds the shared primitives of the system: strongly typed
// entity IDs and the closed role enumeration. Parsing enforces validity at
// trust boundaries so downstream code never re-validates shape.
package domain

import (
	"github.com/google/uuid"

	dErrors "projecthub/pkg/domain-errors"
)

// Typed entity IDs. Distinct types keep a TaskID from ever being passed
// where a ProjectID is expected.
type (
	UserID    uuid.UUID
	TenantID  uuid.UUID
	ProjectID uuid.UUID
	TaskID    uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+kind)
	}
	return u, nil
}

// ParseUserID validates and returns a UserID. Rejects empty, malformed and
// nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParseTenantID(s string) (TenantID, error) {
	u, err := parseUUID(s, "tenant id")
	return TenantID(u), err
}

func ParseProjectID(s string) (ProjectID, error) {
	u, err := parseUUID(s, "project id")
	return ProjectID(u), err
}

func ParseTaskID(s string) (TaskID, error) {
	u, err := parseUUID(s, "task id")
	return TaskID(u), err
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id TenantID) String() string  { return uuid.UUID(id).String() }
func (id ProjectID) String() string { return uuid.UUID(id).String() }
func (id TaskID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TaskID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// MarshalText/UnmarshalText keep the defined types rendering as canonical
// UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }
func (id TenantID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id ProjectID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id TaskID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = UserID(u)
	return nil
}

func (id *TenantID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = TenantID(u)
	return nil
}

func (id *ProjectID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ProjectID(u)
	return nil
}

func (id *TaskID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = TaskID(u)
	return nil
}

func NewUserID() UserID       { return UserID(uuid.New()) }
func NewTenantID() TenantID   { return TenantID(uuid.New()) }
func NewProjectID() ProjectID { return ProjectID(uuid.New()) }
func NewTaskID() TaskID       { return TaskID(uuid.New()) }
