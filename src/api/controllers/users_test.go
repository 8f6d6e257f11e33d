package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/utils"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUserRepo struct {
	nextID uint
	users  []*models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1}
}

func (r *memoryUserRepo) Create(u *models.User) error {
	u.ID = r.nextID
	u.CreatedAt = time.Now().UTC()
	r.nextID++
	copied := *u
	r.users = append(r.users, &copied)
	return nil
}

func (r *memoryUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByUsername(username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) List() ([]models.User, error) {
	out := []models.User{}
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func newUserController() *Controller {
	return &Controller{
		UsersRepo: newMemoryUserRepo(),
		TokenAuth: jwtauth.New("HS256", []byte("test-secret"), nil),
		TokenTTL:  time.Hour,
	}
}

func TestRegisterUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with a hashed password", func(t *testing.T) {
		controller := newUserController()
		res, err := controller.RegisterUser(ctx, &schemas.CreateUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "hunter22",
		})
		require.NoError(t, err)
		assert.Equal(t, uint(1), res.UserID)

		stored, err := controller.UsersRepo.GetByUsername("alice")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.NotEqual(t, "hunter22", stored.PasswordHash)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		controller := newUserController()
		_, err := controller.RegisterUser(ctx, &schemas.CreateUserRequest{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "abc",
		})
		require.Error(t, err)
		httpErr, ok := err.(*utils.HTTPError)
		require.True(t, ok)
		assert.Equal(t, 422, httpErr.Code)
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		controller := newUserController()
		_, err := controller.RegisterUser(ctx, &schemas.CreateUserRequest{
			Username: "alice", Email: "alice@example.com", Password: "hunter22",
		})
		require.NoError(t, err)

		_, err = controller.RegisterUser(ctx, &schemas.CreateUserRequest{
			Username: "alice", Email: "other@example.com", Password: "hunter22",
		})
		require.Error(t, err)
		httpErr, ok := err.(*utils.HTTPError)
		require.True(t, ok)
		assert.Equal(t, 400, httpErr.Code)
	})

	t.Run("rejects duplicate emails", func(t *testing.T) {
		controller := newUserController()
		_, err := controller.RegisterUser(ctx, &schemas.CreateUserRequest{
			Username: "alice", Email: "alice@example.com", Password: "hunter22",
		})
		require.NoError(t, err)

		_, err = controller.RegisterUser(ctx, &schemas.CreateUserRequest{
			Username: "bob", Email: "alice@example.com", Password: "hunter22",
		})
		require.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	controller := newUserController()
	_, err := controller.RegisterUser(ctx, &schemas.CreateUserRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	t.Run("issues a decodable token", func(t *testing.T) {
		res, err := controller.Login(ctx, &schemas.LoginRequest{
			Username: "alice", Password: "hunter22",
		})
		require.NoError(t, err)
		assert.Equal(t, uint(1), res.UserID)
		require.NotEmpty(t, res.Token)

		token, err := controller.TokenAuth.Decode(res.Token)
		require.NoError(t, err)
		claims, err := token.AsMap(ctx)
		require.NoError(t, err)
		assert.Equal(t, float64(1), claims["user_id"])
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, err := controller.Login(ctx, &schemas.LoginRequest{
			Username: "alice", Password: "wrong",
		})
		require.Error(t, err)
		httpErr, ok := err.(*utils.HTTPError)
		require.True(t, ok)
		assert.Equal(t, 401, httpErr.Code)
	})

	t.Run("rejects an unknown user", func(t *testing.T) {
		_, err := controller.Login(ctx, &schemas.LoginRequest{
			Username: "nobody", Password: "hunter22",
		})
		require.Error(t, err)
	})
}

func TestGetCurrentUser(t *testing.T) {
	ctx := context.Background()
	controller := newUserController()
	_, err := controller.RegisterUser(ctx, &schemas.CreateUserRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	user, err := controller.GetCurrentUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = controller.GetCurrentUser(ctx, 99)
	require.Error(t, err)
	httpErr, ok := err.(*utils.HTTPError)
	require.True(t, ok)
	assert.Equal(t, 404, httpErr.Code)
}
