package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/intellidetect/dashboard/pkg/domain"
	"github.com/intellidetect/dashboard/pkg/session"
)

// Login authenticates and stores the returned token (and profile, when the
// server sends one) in the session store.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.LoginResult, error) {
	var result domain.LoginResult
	if err := c.post(ctx, "/users/login", creds, &result); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if result.Token == "" {
		return nil, fmt.Errorf("client.Login: %w", &Error{Kind: KindServer, Message: "login response carried no token"})
	}
	if err := session.SaveLogin(c.store, result.Token, result.User); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &result, nil
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	var u domain.User
	if err := c.post(ctx, "/users/register", reg, &u); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &u, nil
}

// GetUser fetches a user by ID.
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/"+strconv.FormatInt(id, 10), nil, &u); err != nil {
		return nil, fmt.Errorf("client.GetUser: %w", err)
	}
	return &u, nil
}

// GetUserByUsername fetches a user by login name.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/users/info/"+url.PathEscape(username), nil, &u); err != nil {
		return nil, fmt.Errorf("client.GetUserByUsername: %w", err)
	}
	return &u, nil
}

// UpdateUser saves profile changes and refreshes the cached profile.
func (c *Client) UpdateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	var updated domain.User
	if err := c.put(ctx, "/users/update", u, &updated); err != nil {
		return nil, fmt.Errorf("client.UpdateUser: %w", err)
	}
	if session.LoggedIn(c.store) {
		if err := session.SaveUser(c.store, &updated); err != nil {
			c.log.Warn().Err(err).Msg("cache updated profile")
		}
	}
	return &updated, nil
}

// UpdatePassword changes the current user's password.
func (c *Client) UpdatePassword(ctx context.Context, change domain.PasswordChange) error {
	if err := c.put(ctx, "/users/updatePassword", change, nil); err != nil {
		return fmt.Errorf("client.UpdatePassword: %w", err)
	}
	return nil
}

// DeleteUser deletes the current account and clears the session.
func (c *Client) DeleteUser(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/users/delete", nil, nil, nil); err != nil {
		return fmt.Errorf("client.DeleteUser: %w", err)
	}
	if err := session.Logout(c.store); err != nil {
		return fmt.Errorf("client.DeleteUser: %w", err)
	}
	return nil
}

// Logout clears the session. The server keeps no session state to revoke.
func (c *Client) Logout() error {
	return session.Logout(c.store)
}
