package usecase

import (
	"context"
	"errors"
	"time"

	"erp/internal/apperr"
	"erp/internal/config"
	"erp/internal/domain/model"
	repo "erp/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthUsecase struct {
	tx       repo.TransactionManager
	cfg      config.Config
	tokenTTL time.Duration
}

func NewAuthUsecase(tx repo.TransactionManager, cfg config.Config) *AuthUsecase {
	return &AuthUsecase{tx: tx, cfg: cfg, tokenTTL: 12 * time.Hour}
}

type RegisterInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if in.Username == "" {
		return 0, apperr.Validation("username is required")
	}
	if len(in.Password) < 8 {
		return 0, apperr.Validation("password must be at least 8 characters")
	}
	role := model.Role(in.Role)
	switch role {
	case model.RoleAdmin, model.RoleOperator, model.RoleViewer:
	case "":
		role = model.RoleViewer
	default:
		return 0, apperr.Validation("role must be ADMIN, OPERATOR or VIEWER")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	var id int64
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, err := r.Users().FindByUsername(ctx, in.Username)
		if err == nil {
			return apperr.Conflict("username already exists")
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return err
		}

		id, err = r.Users().Create(ctx, model.User{
			Username:     in.Username,
			PasswordHash: string(hash),
			Name:         in.Name,
			Role:         role,
			IsActive:     true,
		})
		return err
	})
	return id, err
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginOutput struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	if in.Username == "" || in.Password == "" {
		return LoginOutput{}, apperr.Validation("username and password are required")
	}

	var user model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		found, err := r.Users().FindByUsername(ctx, in.Username)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.Unauthorized("invalid credentials")
		}
		if err != nil {
			return err
		}
		if !found.IsActive {
			return apperr.Forbidden("user disabled")
		}
		if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(in.Password)) != nil {
			return apperr.Unauthorized("invalid credentials")
		}

		now := time.Now().UTC()
		found.LastLoginAt = &now
		if err := r.Users().Save(ctx, &found); err != nil {
			return err
		}
		user = found
		return nil
	})
	if err != nil {
		return LoginOutput{}, err
	}

	token, err := u.issueToken(user)
	if err != nil {
		return LoginOutput{}, err
	}
	return LoginOutput{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Role:     string(user.Role),
	}, nil
}

func (u *AuthUsecase) issueToken(user model.User) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(u.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(u.cfg.JWTSecret))
}

func (u *AuthUsecase) ListUsers(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var users []model.User
	var total int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		users, total, err = r.Users().List(ctx, page, limit)
		return err
	})
	return users, total, err
}

// SetActiveはユーザーの有効/無効切り替え（管理者のみ）
func (u *AuthUsecase) SetActive(ctx context.Context, userID int64, active bool) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.NotFound("user")
		}
		if err != nil {
			return err
		}
		user.IsActive = active
		return r.Users().Save(ctx, &user)
	})
}
