package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rafaelcosta/filantropia-api/model"
	"github.com/rafaelcosta/filantropia-api/utils/auth"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

// LocalProvider implements Provider against the application's own user
// table: bcrypt password hashes, JWT token pairs and a DB-backed
// blacklist for revocation.
type LocalProvider struct {
	db        *gorm.DB
	jwt       *auth.JWTManager
	blacklist *auth.BlacklistService

	events    chan AuthEvent
	closeOnce sync.Once
	closed    chan struct{}
}

// NewLocalProvider creates a provider over the given database and JWT manager
func NewLocalProvider(db *gorm.DB, jwtManager *auth.JWTManager) *LocalProvider {
	return &LocalProvider{
		db:        db,
		jwt:       jwtManager,
		blacklist: auth.NewBlacklistService(db),
		events:    make(chan AuthEvent, 16),
		closed:    make(chan struct{}),
	}
}

// SignUp registers a new user and issues a session
func (p *LocalProvider) SignUp(ctx context.Context, email, password string, metadata *UserMetadata) (*User, *Session, error) {
	var existing model.User
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         email,
		Role:         "member",
	}
	if metadata != nil {
		if metadata.FullName != "" {
			user.Name = metadata.FullName
		}
		if err := user.SetMetadata(model.UserMetadata(*metadata)); err != nil {
			return nil, nil, err
		}
	}

	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := p.issueSession(&user)
	if err != nil {
		return nil, nil, err
	}

	return toIdentityUser(&user), session, nil
}

// SignIn authenticates by email/password and issues a session
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*User, *Session, error) {
	var user model.User
	if err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := p.issueSession(&user)
	if err != nil {
		return nil, nil, err
	}

	return toIdentityUser(&user), session, nil
}

// SignOut revokes the access token and pushes a SIGNED_OUT event
func (p *LocalProvider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.jwt.ValidateToken(accessToken)
	if err != nil {
		return err
	}

	expiry := time.Now().Add(p.jwt.AccessExpiry())
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	if err := p.blacklist.RevokeToken(ctx, claims.ID, claims.UserID, expiry, "logout"); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	p.publish(AuthEvent{Type: EventSignedOut, UserID: claims.UserID})
	return nil
}

// GetSession resolves a token; an invalid or empty token is anonymous, not an error
func (p *LocalProvider) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, nil
	}

	claims, err := p.jwt.ValidateToken(accessToken)
	if err != nil {
		return nil, nil
	}

	revoked, err := p.blacklist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token status: %w", err)
	}
	if revoked {
		return nil, nil
	}

	session := &Session{AccessToken: accessToken}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// GetUser resolves a token to its user row; anonymous tokens yield (nil, nil)
func (p *LocalProvider) GetUser(ctx context.Context, accessToken string) (*User, error) {
	session, err := p.GetSession(ctx, accessToken)
	if err != nil || session == nil {
		return nil, err
	}

	claims, err := p.jwt.ValidateToken(accessToken)
	if err != nil {
		return nil, nil
	}

	var user model.User
	if err := p.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.TokenVersion != claims.TokenVersion {
		return nil, nil
	}

	return toIdentityUser(&user), nil
}

// Refresh exchanges a refresh token for a new session and pushes a
// TOKEN_REFRESHED event.
func (p *LocalProvider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := p.jwt.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := p.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, auth.ErrInvalidToken
	}

	accessToken, _, err := p.jwt.RefreshAccessToken(refreshToken, user.TokenVersion)
	if err != nil {
		return nil, err
	}

	session := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(p.jwt.AccessExpiry()),
	}

	p.publish(AuthEvent{Type: EventTokenRefreshed, UserID: user.ID, Session: session})
	return session, nil
}

// Events exposes the provider's push-event stream
func (p *LocalProvider) Events() <-chan AuthEvent {
	return p.events
}

// Close tears down the event stream
// Close stops event publication. The events channel is left open so a
// publish racing Close can never send on a closed channel; consumers
// stop via their own shutdown signal.
func (p *LocalProvider) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	return nil
}

func (p *LocalProvider) issueSession(user *model.User) (*Session, error) {
	accessToken, _, err := p.jwt.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, _, err := p.jwt.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(p.jwt.AccessExpiry()),
	}, nil
}

// publish drops events when nobody is draining the stream rather than
// blocking a request on a slow subscriber.
func (p *LocalProvider) publish(ev AuthEvent) {
	select {
	case <-p.closed:
	case p.events <- ev:
	default:
	}
}

func toIdentityUser(u *model.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Metadata:  UserMetadata(u.ParsedMetadata()),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
