package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/petrijr/socialflow/internal/persistence"
	"github.com/petrijr/socialflow/pkg/api"
)

// CreateUser persists a user with empty reference lists. Emails are unique.
func (e *engineImpl) CreateUser(ctx context.Context, nu api.NewUser) (api.UserID, error) {
	email := strings.TrimSpace(nu.Email)
	if email == "" {
		return "", fmt.Errorf("%w: user requires an email", api.ErrInvalidRequest)
	}

	n, err := e.records.Count(ctx, api.KindUser, persistence.Where(api.FieldEmail, email))
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", api.ErrEmailAlreadyExists
	}

	now := e.timestamp()
	u := &api.User{
		Name:            nu.Name,
		Email:           email,
		Avatar:          nu.Avatar,
		CreateAt:        now,
		Friends:         []string{},
		Groups:          []string{},
		Notifications:   []string{},
		Tasks:           []string{},
		Tracking:        []string{},
		LastUpdatedTime: now,
	}
	if err := e.records.Save(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func (e *engineImpl) GetUser(ctx context.Context, id api.UserID) (*api.User, error) {
	var u api.User
	if err := e.records.Fetch(ctx, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
