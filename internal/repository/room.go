package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
)

const (
	roomKeyPrefix = "room:"
	roomIndexKey  = "rooms:index"
)

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	Update(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	ListWaiting(ctx context.Context) ([]*entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

// Create - stores a new room and appends its id to the creation-order index.
func (that *dbRoom) Create(ctx context.Context, room *entity.Room) error {
	if err := that.set(ctx, room); err != nil {
		return err
	}

	if err := that.client.RPush(ctx, roomIndexKey, room.ID).Err(); err != nil {
		return fmt.Errorf("failed to index room: %w", err)
	}

	return nil
}

func (that *dbRoom) Update(ctx context.Context, room *entity.Room) error {
	return that.set(ctx, room)
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+id).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var room entity.Room
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// ListWaiting - returns rooms still open to a guest, in creation order.
func (that *dbRoom) ListWaiting(ctx context.Context) ([]*entity.Room, error) {
	ids, err := that.client.LRange(ctx, roomIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read room index: %w", err)
	}

	rooms := make([]*entity.Room, 0, len(ids))

	for _, id := range ids {
		room, err := that.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrRoomNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get indexed room: %w", err)
		}

		if room.IsWaiting() {
			rooms = append(rooms, room)
		}
	}

	return rooms, nil
}

func (that *dbRoom) set(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKeyPrefix+room.ID, roomJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}
