package service

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/truassets/internal/apperror"
	"github.com/sakif/truassets/internal/model"
	"github.com/sakif/truassets/internal/repository"
)

// DirectoryService is the admin view of the platform-user directory.
type DirectoryService struct {
	dir    repository.Directory
	logger *slog.Logger
}

func NewDirectoryService(dir repository.Directory, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{dir: dir, logger: logger}
}

func (s *DirectoryService) List() []model.PlatformUser {
	return s.dir.All()
}

func (s *DirectoryService) Stats() model.UserStats {
	return s.dir.Stats()
}

func (s *DirectoryService) Get(id string) (model.PlatformUser, error) {
	u, ok := s.dir.Get(id)
	if !ok {
		return model.PlatformUser{}, apperror.NotFound("user", id)
	}
	return u, nil
}

// Add creates a directory entry. Emails are the sync identity, so a second
// entry with the same email is a conflict.
func (s *DirectoryService) Add(ctx context.Context, d model.UserDraft) (model.PlatformUser, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	if d.Name == "" {
		return model.PlatformUser{}, apperror.ValidationFailed("name", "name is required")
	}
	if err := validateEmail(d.Email); err != nil {
		return model.PlatformUser{}, err
	}
	if err := validateRoleStatus(d.Role, d.Status); err != nil {
		return model.PlatformUser{}, err
	}
	u, created := s.dir.AddIfAbsent(ctx, d)
	if !created {
		return model.PlatformUser{}, apperror.Conflict("user", u.ID)
	}
	return u, nil
}

func (s *DirectoryService) Update(ctx context.Context, id string, patch model.UserPatch) (model.PlatformUser, error) {
	if patch.Email != nil {
		if err := validateEmail(*patch.Email); err != nil {
			return model.PlatformUser{}, err
		}
	}
	// A present field must name a value; "" only means unset on a draft.
	if patch.Role != nil && *patch.Role == "" {
		return model.PlatformUser{}, apperror.ValidationFailed("role", "role must be user or admin")
	}
	if patch.Status != nil && *patch.Status == "" {
		return model.PlatformUser{}, apperror.ValidationFailed("status", "status must be active, blocked or on-hold")
	}
	var role model.Role
	var status model.UserStatus
	if patch.Role != nil {
		role = *patch.Role
	}
	if patch.Status != nil {
		status = *patch.Status
	}
	if err := validateRoleStatus(role, status); err != nil {
		return model.PlatformUser{}, err
	}

	u, found, holder := s.dir.UpdateUnique(ctx, id, patch)
	switch {
	case !found:
		return model.PlatformUser{}, apperror.NotFound("user", id)
	case holder != "":
		return model.PlatformUser{}, apperror.Conflict("user", holder)
	}
	return u, nil
}

func (s *DirectoryService) Delete(ctx context.Context, id string) error {
	if !s.dir.Remove(ctx, id) {
		return apperror.NotFound("user", id)
	}
	return nil
}

// Moderation actions.
const (
	ActionBlock   = "block"
	ActionUnblock = "unblock"
	ActionHold    = "hold"
)

// Moderate applies one of the moderation actions to the entry.
func (s *DirectoryService) Moderate(ctx context.Context, id, action string) (model.PlatformUser, error) {
	var op func(context.Context, string) (model.PlatformUser, bool)
	switch action {
	case ActionBlock:
		op = s.dir.Block
	case ActionUnblock:
		op = s.dir.Unblock
	case ActionHold:
		op = s.dir.Hold
	default:
		return model.PlatformUser{}, apperror.ValidationFailed("action", "unknown moderation action "+action)
	}

	u, ok := op(ctx, id)
	if !ok {
		return model.PlatformUser{}, apperror.NotFound("user", id)
	}
	s.logger.Info("user moderated",
		slog.String("userID", id),
		slog.String("action", action),
		slog.String("status", string(u.Status)),
	)
	return u, nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperror.ValidationFailed("email", "email is not a valid address")
	}
	return nil
}

// validateRoleStatus accepts the zero values, which mean "unset".
func validateRoleStatus(role model.Role, status model.UserStatus) error {
	switch role {
	case "", model.RoleUser, model.RoleAdmin:
	default:
		return apperror.ValidationFailed("role", "role must be user or admin")
	}
	switch status {
	case "", model.UserActive, model.UserBlocked, model.UserOnHold:
	default:
		return apperror.ValidationFailed("status", "status must be active, blocked or on-hold")
	}
	return nil
}
