package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go-auth-dashboard/internal/model"
	"go-auth-dashboard/internal/service"
)

type mockFlow struct {
	mock.Mock
}

func (m *mockFlow) State() service.SessionState {
	return m.Called().Get(0).(service.SessionState)
}

func (m *mockFlow) CheckEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockFlow) Login(ctx context.Context, req model.LoginRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockFlow) Register(ctx context.Context, req model.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockFlow) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockFlow) RefreshProfile(ctx context.Context) (model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockFlow) UpdateProfile(ctx context.Context, req model.UpdateProfileRequest) (model.User, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.User), args.Error(1)
}
