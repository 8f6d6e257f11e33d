package controllers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gmgifpe/asset-tracker/src/models"
	"github.com/gmgifpe/asset-tracker/src/schemas"
	"github.com/gmgifpe/asset-tracker/src/utils"

	"golang.org/x/crypto/bcrypt"
)

func (c *Controller) RegisterUser(ctx context.Context, req *schemas.CreateUserRequest) (*schemas.CreateUserResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" {
		return nil, utils.Validationf("username", "must not be empty")
	}
	if email == "" {
		return nil, utils.Validationf("email", "must not be empty")
	}
	if len(req.Password) < 6 {
		return nil, utils.Validationf("password", "must be at least 6 characters")
	}

	if existing, err := c.UsersRepo.GetByUsername(username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, utils.BadRequest("username already taken")
	}
	if existing, err := c.UsersRepo.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, utils.BadRequest("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := c.UsersRepo.Create(user); err != nil {
		return nil, err
	}

	return &schemas.CreateUserResponse{
		Message: "user created",
		UserID:  user.ID,
	}, nil
}

func (c *Controller) Login(ctx context.Context, req *schemas.LoginRequest) (*schemas.LoginResponse, error) {
	user, err := c.UsersRepo.GetByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.Unauthorized("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, utils.Unauthorized("invalid username or password")
	}

	now := time.Now().UTC()
	_, tokenString, err := c.TokenAuth.Encode(map[string]interface{}{
		"user_id": user.ID,
		"iat":     now.Unix(),
		"exp":     now.Add(c.TokenTTL).Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &schemas.LoginResponse{
		Message: "login successful",
		UserID:  user.ID,
		Token:   tokenString,
	}, nil
}

func (c *Controller) GetUsers(ctx context.Context) ([]schemas.UserResponse, error) {
	users, err := c.UsersRepo.List()
	if err != nil {
		return nil, err
	}
	responses := make([]schemas.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, schemas.UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		})
	}
	return responses, nil
}

func (c *Controller) GetCurrentUser(ctx context.Context, userID uint) (*schemas.UserResponse, error) {
	user, err := c.UsersRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.NotFound("user not found")
	}
	return &schemas.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}, nil
}
