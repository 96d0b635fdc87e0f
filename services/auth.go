package services

import (
	"context"
	"fmt"

	"github.com/lborres/ticketflow/core"
	"github.com/lborres/ticketflow/pkg/task"
)

// MinPasswordLength is the shortest password Signup accepts.
const MinPasswordLength = 6

// Login authenticates against the registered-users ledger once the
// simulated latency has passed. On success the session is persisted and
// the manager becomes authenticated; otherwise state is left untouched
// and the future fails with ErrInvalidCredentials.
func (m *SessionManager) Login(ctx context.Context, email, password string) *task.Future[*core.Session] {
	ctx = context.WithoutCancel(ctx)
	return task.Run(m.runner, func() (*core.Session, error) {
		users, err := m.loadUsers(ctx)
		if err != nil {
			m.notify.Show(msgAuthUnavailable, core.SeverityError, 0)
			return nil, fmt.Errorf("failed to load users: %w", err)
		}

		for _, u := range users {
			if u.Email != email || u.Password != password {
				continue
			}
			session := core.Session{ID: u.ID, Email: u.Email}
			m.persistSession(ctx, session)
			m.setSession(session)
			m.notify.Show(msgLoginSuccess, core.SeveritySuccess, 0)
			m.logger.Info().Str("user_id", u.ID).Msg("login succeeded")
			return &session, nil
		}

		m.notify.Show(msgInvalidCredentials, core.SeverityError, 0)
		m.logger.Info().Msg("login rejected")
		return nil, core.ErrInvalidCredentials
	})
}

// Signup registers a new user and logs them in. Checks run in a fixed
// order and the first failure wins: password confirmation, duplicate
// email, empty fields, then password length.
func (m *SessionManager) Signup(ctx context.Context, email, password, confirmPassword string) *task.Future[*core.Session] {
	ctx = context.WithoutCancel(ctx)
	return task.Run(m.runner, func() (*core.Session, error) {
		if password != confirmPassword {
			return nil, m.reject(msgPasswordMismatch, core.ErrPasswordMismatch)
		}

		users, err := m.loadUsers(ctx)
		if err != nil {
			m.notify.Show(msgAuthUnavailable, core.SeverityError, 0)
			return nil, fmt.Errorf("failed to load users: %w", err)
		}
		for _, u := range users {
			if u.Email == email {
				return nil, m.reject(msgUserExists, core.ErrUserExists)
			}
		}

		if email == "" || password == "" {
			return nil, m.reject(msgMissingFields, core.ErrMissingFields)
		}
		if len(password) < MinPasswordLength {
			return nil, m.reject(msgPasswordTooShort, core.ErrPasswordTooShort)
		}

		id, err := m.newID()
		if err != nil {
			m.notify.Show(msgAuthUnavailable, core.SeverityError, 0)
			return nil, fmt.Errorf("failed to generate user id: %w", err)
		}
		user := core.User{
			ID:        id,
			Email:     email,
			Password:  password,
			CreatedAt: timestamp(m.clock.Now()),
		}

		if err := m.store.Save(ctx, core.KeyUsers, append(users, user)); err != nil {
			m.notify.Show(msgAuthUnavailable, core.SeverityError, 0)
			return nil, fmt.Errorf("failed to save users: %w", err)
		}

		session := core.Session{ID: user.ID, Email: user.Email}
		m.persistSession(ctx, session)
		m.setSession(session)
		m.notify.Show(msgSignupSuccess, core.SeveritySuccess, 0)
		m.logger.Info().Str("user_id", user.ID).Msg("user registered")
		return &session, nil
	})
}

func (m *SessionManager) reject(message string, err error) error {
	m.notify.Show(message, core.SeverityError, 0)
	m.logger.Debug().Err(err).Msg("signup rejected")
	return err
}

// persistSession mirrors the session to storage. Write failures are
// logged and otherwise ignored.
func (m *SessionManager) persistSession(ctx context.Context, s core.Session) {
	if err := m.store.Save(ctx, core.KeySession, s); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist session")
	}
}
