// Package repository declares what the service layer needs from the stores.
// The implementations live in internal/store; services depend only on these
// interfaces.
package repository

import (
	"context"

	"github.com/sakif/truassets/internal/model"
)

// Sessions is the single-identity session holder.
type Sessions interface {
	Login(ctx context.Context, u model.AuthenticatedUser)
	Logout(ctx context.Context)
	Current() (model.AuthenticatedUser, bool)
}

// Properties is the property catalog.
type Properties interface {
	Add(ctx context.Context, d model.PropertyDraft) model.Property
	Update(ctx context.Context, id string, patch model.PropertyPatch) (model.Property, bool)
	Remove(ctx context.Context, id string) bool
	Get(id string) (model.Property, bool)
	All() []model.Property
	Statistics() model.PropertyStats
}

// Directory is the platform-user directory.
type Directory interface {
	AddIfAbsent(ctx context.Context, d model.UserDraft) (model.PlatformUser, bool)
	UpdateUnique(ctx context.Context, id string, patch model.UserPatch) (u model.PlatformUser, found bool, holder string)
	Remove(ctx context.Context, id string) bool
	Block(ctx context.Context, id string) (model.PlatformUser, bool)
	Unblock(ctx context.Context, id string) (model.PlatformUser, bool)
	Hold(ctx context.Context, id string) (model.PlatformUser, bool)
	Get(id string) (model.PlatformUser, bool)
	FindByEmail(email string) (model.PlatformUser, bool)
	All() []model.PlatformUser
	Stats() model.UserStats
}
