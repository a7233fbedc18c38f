package points

import (
	"context"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

// Store хранит записи баланса очков.
type Store interface {
	Get(ctx context.Context, userID string) (models.UserInfo, bool, error)
	List(ctx context.Context) ([]models.UserInfo, error)
	Upsert(ctx context.Context, infos ...models.UserInfo) error
}
