package points

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

const pointsKey = "chat_bot:points"

// RedisStore хранит записи в одном хэше: в поле id пользователя, в значении JSON.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisStore(redisURL, password string, db int, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return &RedisStore{
		client: client,
		logger: logger,
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (models.UserInfo, bool, error) {
	data, err := s.client.HGet(ctx, pointsKey, userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return models.UserInfo{}, false, nil
		}

		s.logger.Error("Ошибка при получении очков из Redis",
			"error", err,
			"userID", userID,
		)

		return models.UserInfo{}, false, fmt.Errorf("ошибка при получении очков из Redis: %w", err)
	}

	var info models.UserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return models.UserInfo{}, false, fmt.Errorf("ошибка при десериализации очков из Redis: %w", err)
	}

	return info, true, nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.UserInfo, error) {
	values, err := s.client.HGetAll(ctx, pointsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка очков из Redis: %w", err)
	}

	infos := make([]models.UserInfo, 0, len(values))

	for userID, raw := range values {
		var info models.UserInfo
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			s.logger.Warn("Пропущена повреждённая запись очков", "userID", userID, "error", err)
			continue
		}

		infos = append(infos, info)
	}

	return infos, nil
}

func (s *RedisStore) Upsert(ctx context.Context, infos ...models.UserInfo) error {
	if len(infos) == 0 {
		return nil
	}

	fields := make([]any, 0, len(infos)*2)

	for _, info := range infos {
		data, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("ошибка при сериализации очков для Redis: %w", err)
		}

		fields = append(fields, info.UserID, data)
	}

	if err := s.client.HSet(ctx, pointsKey, fields...).Err(); err != nil {
		s.logger.Error("Ошибка при сохранении очков в Redis", "error", err)
		return fmt.Errorf("ошибка при сохранении очков в Redis: %w", err)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
