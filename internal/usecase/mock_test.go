package usecase

import (
	"context"

	"github.com/rocketscienceinc/caro-backend/internal/entity"
	"github.com/stretchr/testify/mock"
)

type mockRoomRepo struct {
	mock.Mock
}

func (m *mockRoomRepo) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *mockRoomRepo) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	args := m.Called(ctx, id)
	room, _ := args.Get(0).(*entity.Room)
	return room, args.Error(1)
}

func (m *mockRoomRepo) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRoomRepo) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRoomRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockRoomRepo) Purge(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
