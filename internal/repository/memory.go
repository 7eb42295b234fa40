package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/caro-backend/internal/apperror"
	"github.com/rocketscienceinc/caro-backend/internal/entity"
)

type memoryRoom struct {
	mu    sync.RWMutex
	rooms map[string]*entity.Room
}

// NewMemoryRoomRepository - process local room storage. Rooms are copied on
// the way in and out so callers never share state with the store.
func NewMemoryRoomRepository() RoomRepository {
	return &memoryRoom{
		rooms: make(map[string]*entity.Room),
	}
}

func (that *memoryRoom) CreateOrUpdate(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = room.Clone()

	return nil
}

func (that *memoryRoom) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room.Clone(), nil
}

func (that *memoryRoom) Exists(_ context.Context, id string) (bool, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	_, ok := that.rooms[id]

	return ok, nil
}

func (that *memoryRoom) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[id]; !ok {
		return apperror.ErrRoomNotFound
	}

	delete(that.rooms, id)

	return nil
}

func (that *memoryRoom) Count(_ context.Context) (int, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms), nil
}

func (that *memoryRoom) Purge(_ context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms = make(map[string]*entity.Room)

	return nil
}
