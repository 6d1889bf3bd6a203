package auth

import (
	"context"
	"errors"
	"log/slog"

	"amdb/proj/internal/domain/models"
	"amdb/proj/internal/storage"
)

type UsersStorage interface {
	Get(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Insert(ctx context.Context, user *models.User) (*models.User, error)
}

type AuthService struct {
	log     *slog.Logger
	storage UsersStorage
	tokens  *TokenIssuer
}

func New(log *slog.Logger, storage UsersStorage, tokens *TokenIssuer) *AuthService {
	return &AuthService{
		log:     log,
		storage: storage,
		tokens:  tokens,
	}
}

// Register creates the user and logs them in. The existence check only gives a
// clean error early; the unique index on username is what rejects racing signups.
func (a *AuthService) Register(ctx context.Context, username, password string) (*models.AuthToken, error) {
	const op = "auth.AuthService.Register"
	log := a.log.With("op", op, "username", username)
	exists, err := a.storage.ExistsByUsername(ctx, username)
	if err != nil {
		log.Error("Error checking username", "errMsg", err.Error())
		return nil, err
	}
	if exists {
		log.Info("username already taken")
		return nil, ErrUsernameTaken
	}
	salt, err := GenerateSalt()
	if err != nil {
		log.Error("Error generating salt", "errMsg", err.Error())
		return nil, err
	}
	user, err := a.storage.Insert(ctx, &models.User{
		Username:     username,
		PasswordHash: HashPassword(password, salt),
		Salt:         salt,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("username taken by a concurrent signup")
			return nil, ErrUsernameTaken
		}
		log.Error("Error inserting user", "errMsg", err.Error())
		return nil, err
	}
	log.Info("user registered", "user_id", user.ID)
	return a.issue(user)
}

func (a *AuthService) Login(ctx context.Context, username, password string) (*models.AuthToken, error) {
	const op = "auth.AuthService.Login"
	log := a.log.With("op", op, "username", username)
	user, err := a.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return nil, ErrInvalidCredentials
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, err
	}
	if !VerifyPassword(password, user.PasswordHash, user.Salt) {
		log.Info("wrong password")
		return nil, ErrInvalidCredentials
	}
	return a.issue(user)
}

func (a *AuthService) issue(user *models.User) (*models.AuthToken, error) {
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		a.log.Error("Error signing token", "errMsg", err.Error(), "user_id", user.ID)
		return nil, err
	}
	return &models.AuthToken{
		Token:    token.Value,
		Expires:  token.ExpiresAt.UnixMilli(),
		UserID:   user.ID,
		Username: user.Username,
	}, nil
}

// UserFromToken verifies a raw token and resolves its subject to a stored user.
func (a *AuthService) UserFromToken(ctx context.Context, rawToken string) (*models.User, error) {
	const op = "auth.AuthService.UserFromToken"
	log := a.log.With("op", op)
	userID, err := a.tokens.Verify(rawToken)
	if err != nil {
		log.Debug("token rejected", "reason", err.Error())
		return nil, ErrInvalidToken
	}
	user, err := a.storage.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("token subject does not exist", "user_id", userID)
			return nil, ErrUserNotFound
		}
		log.Error("Error getting user", "errMsg", err.Error())
		return nil, err
	}
	return user, nil
}
