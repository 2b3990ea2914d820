// internal/repository/entities.go
package repository

import (
	"time"

	"github.com/charted-dev/charted/internal/common"
)

// User owns charts and organizations.
type User struct {
	ID                uint64
	Name              common.Name
	DisplayName       *string
	Email             string
	PasswordHash      *string
	Description       *string
	AvatarHash        *string
	GravatarEmail     *string
	Admin             bool
	VerifiedPublisher bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u User) EntityID() uint64 { return u.ID }

// Organization is a group account owned by a User.
type Organization struct {
	ID                uint64
	Name              common.Name
	DisplayName       *string
	OwnerID           uint64
	GravatarEmail     *string
	IconHash          *string
	Private           bool
	VerifiedPublisher bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (o Organization) EntityID() uint64 { return o.ID }

// ChartType is the Helm chart family kind.
type ChartType string

const (
	ChartTypeApplication ChartType = "application"
	ChartTypeLibrary     ChartType = "library"
)

// Repository is a chart family owned by a User or Organization.
type Repository struct {
	ID          uint64
	Name        common.Name
	OwnerID     uint64
	Description *string
	IconHash    *string
	ChartType   ChartType
	Private     bool
	Deprecated  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (r Repository) EntityID() uint64 { return r.ID }

// RepositoryRelease is one published version of a Repository.
type RepositoryRelease struct {
	ID           uint64
	RepositoryID uint64
	Tag          string
	UpdateText   *string
	Prerelease   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r RepositoryRelease) EntityID() uint64 { return r.ID }

// ApiKey is a personal token belonging to a User.
type ApiKey struct {
	ID          uint64
	OwnerID     uint64
	Name        common.Name
	Description *string
	TokenHash   string
	Scopes      uint64
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (k ApiKey) EntityID() uint64 { return k.ID }
