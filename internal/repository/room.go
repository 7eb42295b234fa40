package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/caro-backend/internal/apperror"
	"github.com/rocketscienceinc/caro-backend/internal/entity"
)

const (
	roomKeyPrefix = "room:"
	scanBatch     = 100
)

type RoomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	Exists(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Purge(ctx context.Context) error
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomRepository - room snapshots stored as JSON in Redis. A zero ttl keeps keys forever.
func NewRoomRepository(client *redis.Client, ttl time.Duration) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbRoom) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	err = that.client.Set(ctx, roomKeyPrefix+room.ID, roomJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+id).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal([]byte(response), &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	if existingRoom.Players == nil {
		existingRoom.Players = make(map[string]*entity.Player, entity.MaxPlayers)
	}

	return &existingRoom, nil
}

func (that *dbRoom) Exists(ctx context.Context, id string) (bool, error) {
	n, err := that.client.Exists(ctx, roomKeyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check room: %w", err)
	}

	return n > 0, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	n, err := that.client.Del(ctx, roomKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room by ID: %w", err)
	}

	if n == 0 {
		return apperror.ErrRoomNotFound
	}

	return nil
}

func (that *dbRoom) Count(ctx context.Context) (int, error) {
	count := 0

	err := that.scan(ctx, func(keys []string) error {
		count += len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Purge - removes every stored room.
func (that *dbRoom) Purge(ctx context.Context) error {
	return that.scan(ctx, func(keys []string) error {
		if err := that.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete rooms: %w", err)
		}
		return nil
	})
}

func (that *dbRoom) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64

	for {
		keys, next, err := that.client.Scan(ctx, cursor, roomKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan rooms: %w", err)
		}

		if len(keys) > 0 {
			if err = fn(keys); err != nil {
				return err
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
