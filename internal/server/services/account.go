package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/storefront/internal/common"
	"github.com/dmitrijs2005/storefront/internal/dbx"
	"github.com/dmitrijs2005/storefront/internal/server/auth"
	"github.com/dmitrijs2005/storefront/internal/server/config"
	"github.com/dmitrijs2005/storefront/internal/server/mailer"
	"github.com/dmitrijs2005/storefront/internal/server/models"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storefront/internal/server/repositories/users"
	"github.com/dmitrijs2005/storefront/internal/server/sessions"
	"github.com/google/uuid"
)

// Failure messages returned to callers.
const (
	MsgRoleRequired       = "Role is required."
	MsgEmailRequired      = "Email is required."
	MsgUsernameRequired   = "Username is required."
	MsgPasswordRequired   = "Password is required."
	MsgEmailTaken         = "Email is already registered."
	MsgUsernameTaken      = "Username is already taken."
	MsgInvalidCredentials = "Invalid email or password."
	MsgUserNotFound       = "User not found."
	MsgWrongOldPassword   = "Old password is incorrect."
	MsgInvalidRefresh     = "Invalid refresh token."
	MsgRefreshExpired     = "Refresh token has expired."
	MsgInvalidReset       = "Invalid reset token."
	MsgResetExpired       = "Reset token has expired."
	MsgInvalidAccess      = "Invalid access token."
	MsgAccessExpired      = "Access token has expired."
	MsgSessionRevoked     = "Session has been revoked."
)

// ErrResetDelivery marks a reset token that was stored but could not be mailed.
var ErrResetDelivery = errors.New("deliver reset link")

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AccountService implements the user lifecycle over the credential store:
// registration, sign-in sessions, profile changes and password reset.
type AccountService struct {
	db          *sql.DB
	withTx      txRunner
	repomanager repomanager.RepositoryManager
	sessions    sessions.Store
	mailer      mailer.Mailer

	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	resetTokenValidityDuration   time.Duration
	resetURL                     string
	bcryptCost                   int
	now                          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, st sessions.Store, ml mailer.Mailer, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                           db,
		withTx:                       sqlTx(db),
		repomanager:                  m,
		sessions:                     st,
		mailer:                       ml,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		resetTokenValidityDuration:   cfg.ResetTokenValidityDuration,
		resetURL:                     cfg.ResetURL,
		bcryptCost:                   cfg.BcryptCost,
		now:                          time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, username, email, password, role string) (*models.User, error) {
	switch {
	case role == "":
		return nil, common.NewValidationError(MsgRoleRequired)
	case email == "":
		return nil, common.NewValidationError(MsgEmailRequired)
	case username == "":
		return nil, common.NewValidationError(MsgUsernameRequired)
	case password == "":
		return nil, common.NewValidationError(MsgPasswordRequired)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash, Role: role}

	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		if err := ensureAbsent(repo.FindByEmail(ctx, email)); err != nil {
			return conflictOr(err, MsgEmailTaken)
		}
		if err := ensureAbsent(repo.FindByUsername(ctx, username)); err != nil {
			return conflictOr(err, MsgUsernameTaken)
		}

		created, err := repo.Create(ctx, user)
		if err != nil {
			return uniqueViolation(err, "create user")
		}
		user = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies the credentials and starts a new session. Unknown email and
// wrong password fail identically.
func (s *AccountService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// keep the response time of unknown emails in line with real ones
			_, _ = auth.CheckPassword(s.dummyPasswordHash(), password)
			return nil, common.NewAuthError(nil, MsgInvalidCredentials)
		}
		return nil, storeErr("find user", err)
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, common.NewAuthError(nil, MsgInvalidCredentials)
	}

	return s.generateTokenPair(ctx, s.repomanager.RefreshTokens(s.db), user.ID, uuid.NewString())
}

// Logout ends every session of the user: refresh tokens are deleted and their
// sessions are revoked so outstanding access tokens stop validating.
func (s *AccountService) Logout(ctx context.Context, username string) error {
	user, err := s.repomanager.Users(s.db).FindByUsername(ctx, username)
	if err != nil {
		return userLookupErr(err)
	}

	sessionIDs, err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, user.ID)
	if err != nil {
		return storeErr("delete refresh tokens", err)
	}

	return s.revokeSessions(ctx, sessionIDs)
}

// RefreshToken rotates a refresh token within one transaction. The new pair
// belongs to the same session as the old token.
func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var tokenPair *TokenPair

	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		// the DELETE is the claim: a replayed token finds no row
		token, err := repo.Consume(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewAuthError(common.ErrInvalidToken, MsgInvalidRefresh)
			}
			return storeErr("consume refresh token", err)
		}

		// rollback keeps the expired row for the cleanup job
		if token.Expires.Before(s.now()) {
			return common.NewAuthError(common.ErrRefreshTokenExpired, MsgRefreshExpired)
		}

		tokenPair, err = s.generateTokenPair(ctx, repo, token.UserID, token.SessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return tokenPair, nil
}

func (s *AccountService) GetUser(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		return nil, userLookupErr(err)
	}
	return user, nil
}

// DeleteUser removes the user and revokes its sessions. Deletion is terminal.
func (s *AccountService) DeleteUser(ctx context.Context, email string) error {
	var sessionIDs []string

	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByEmail(ctx, email)
		if err != nil {
			return userLookupErr(err)
		}

		sessionIDs, err = s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, user.ID)
		if err != nil {
			return storeErr("delete refresh tokens", err)
		}

		if err := repo.Delete(ctx, user.ID); err != nil {
			return userLookupErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.revokeSessions(ctx, sessionIDs)
}

// UpdateUser changes username and/or role. A nil field keeps the stored
// value; with both nil the call only checks that the user exists.
func (s *AccountService) UpdateUser(ctx context.Context, email string, newUsername, newRole *string) (*models.User, error) {
	if newUsername != nil && *newUsername == "" {
		return nil, common.NewValidationError(MsgUsernameRequired)
	}
	if newRole != nil && *newRole == "" {
		return nil, common.NewValidationError(MsgRoleRequired)
	}

	var user *models.User

	err := s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		var err error
		user, err = repo.FindByEmail(ctx, email)
		if err != nil {
			return userLookupErr(err)
		}

		if newUsername == nil && newRole == nil {
			return nil
		}

		// a change of case only keeps the user's own name
		if newUsername != nil && !strings.EqualFold(*newUsername, user.Username) {
			if err := ensureAbsent(repo.FindByUsername(ctx, *newUsername)); err != nil {
				return conflictOr(err, MsgUsernameTaken)
			}
		}
		if newUsername != nil {
			user.Username = *newUsername
		}
		if newRole != nil {
			user.Role = *newRole
		}

		if err := repo.Update(ctx, user); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewNotFoundError(MsgUserNotFound)
			}
			return uniqueViolation(err, "update user")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword replaces the password after verifying the old one. A wrong
// old password leaves the stored hash untouched.
func (s *AccountService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	if newPassword == "" {
		return common.NewValidationError(MsgPasswordRequired)
	}

	return s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.FindByEmail(ctx, email)
		if err != nil {
			return userLookupErr(err)
		}

		ok, err := auth.CheckPassword(user.PasswordHash, oldPassword)
		if err != nil || !ok {
			return common.NewAuthError(nil, MsgWrongOldPassword)
		}

		hash, err := auth.HashPassword(newPassword, s.bcryptCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash

		if err := repo.Update(ctx, user); err != nil {
			return userLookupErr(err)
		}
		return nil
	})
}

// RequestPasswordReset issues a single-use reset token for the user and
// mails a link carrying it. Unknown emails succeed silently so the call
// cannot be used to enumerate accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return common.NewValidationError(MsgEmailRequired)
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return storeErr("find user", err)
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.ResetTokens(tx)
		if err := repo.DeleteByUser(ctx, user.ID); err != nil {
			return storeErr("delete reset tokens", err)
		}
		if err := repo.Create(ctx, user.ID, common.HashToken(token), s.now().Add(s.resetTokenValidityDuration)); err != nil {
			return storeErr("create reset token", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	link, err := mailer.ResetLink(s.resetURL, token)
	if err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return fmt.Errorf("%w: %w", ErrResetDelivery, err)
	}
	return nil
}

// ResetPassword redeems a reset token: the password is replaced, the token is
// consumed and every session of the user is ended.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if newPassword == "" {
		return common.NewValidationError(MsgPasswordRequired)
	}
	if token == "" {
		return common.NewAuthError(common.ErrInvalidToken, MsgInvalidReset)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tokenHash := common.HashToken(token)
	var sessionIDs []string

	err = s.withTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		resets := s.repomanager.ResetTokens(tx)

		rt, err := resets.Consume(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewAuthError(common.ErrInvalidToken, MsgInvalidReset)
			}
			return storeErr("consume reset token", err)
		}
		if !s.now().Before(rt.Expires) {
			return common.NewAuthError(common.ErrTokenExpired, MsgResetExpired)
		}

		repo := s.repomanager.Users(tx)
		user, err := repo.FindByID(ctx, rt.UserID)
		if err != nil {
			return userLookupErr(err)
		}

		user.PasswordHash = hash
		if err := repo.Update(ctx, user); err != nil {
			return userLookupErr(err)
		}

		sessionIDs, err = s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, user.ID)
		if err != nil {
			return storeErr("delete refresh tokens", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.revokeSessions(ctx, sessionIDs)
}

// ValidateAccessToken checks signature, expiry and session revocation.
func (s *AccountService) ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, common.NewAuthError(err, MsgAccessExpired)
		}
		return nil, common.NewAuthError(err, MsgInvalidAccess)
	}

	if claims.SessionID != "" {
		revoked, err := s.sessions.IsRevoked(ctx, claims.SessionID)
		if err != nil {
			return nil, storeErr("check session", err)
		}
		if revoked {
			return nil, common.NewAuthError(common.ErrSessionRevoked, MsgSessionRevoked)
		}
	}

	return claims, nil
}

// Ping checks the database and the session store.
func (s *AccountService) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return storeErr("ping database", err)
	}
	if err := s.sessions.Ping(ctx); err != nil {
		return storeErr("ping session store", err)
	}
	return nil
}

func (s *AccountService) generateTokenPair(ctx context.Context, repo refreshtokens.Repository, userID, sessionID string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, sessionID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := repo.Create(ctx, userID, sessionID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, storeErr("create refresh token", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AccountService) revokeSessions(ctx context.Context, sessionIDs []string) error {
	for _, id := range sessionIDs {
		if err := s.sessions.Revoke(ctx, id, s.accessTokenValidityDuration); err != nil {
			return storeErr("revoke session", err)
		}
	}
	return nil
}

func (s *AccountService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword(uuid.NewString(), s.bcryptCost)
	})
	return s.dummyHash
}

// ensureAbsent turns a finder result into nil when nothing was found,
// common.ErrorAlreadyExists when something was, and passes store errors on.
func ensureAbsent(_ *models.User, err error) error {
	if err == nil {
		return common.ErrorAlreadyExists
	}
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	return err
}

func conflictOr(err error, msg string) error {
	if errors.Is(err, common.ErrorAlreadyExists) {
		return common.NewConflictError(msg)
	}
	return storeErr("find user", err)
}

func uniqueViolation(err error, op string) error {
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		return common.NewConflictError(MsgEmailTaken)
	case errors.Is(err, users.ErrUsernameTaken):
		return common.NewConflictError(MsgUsernameTaken)
	}
	return storeErr(op, err)
}

func userLookupErr(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewNotFoundError(MsgUserNotFound)
	}
	return storeErr("user store", err)
}
