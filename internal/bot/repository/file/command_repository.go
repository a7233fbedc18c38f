package file

import (
	"context"
	"sync"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
	"github.com/Matthew11K/TwitchBot/internal/storage/jsonfile"
)

// CommandRepository хранит пользовательские команды JSON массивом в одном файле.
// Отсутствующий файл создаётся пустым при первой загрузке.
type CommandRepository struct {
	mu   sync.Mutex
	path string
}

func NewCommandRepository(path string) *CommandRepository {
	return &CommandRepository{path: path}
}

func (r *CommandRepository) Load(_ context.Context) ([]models.CommandRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []models.CommandRecord

	if err := jsonfile.LoadOrCreate(r.path, &records, []models.CommandRecord{}); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *CommandRepository) Save(_ context.Context, records []models.CommandRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if records == nil {
		records = []models.CommandRecord{}
	}

	return jsonfile.Save(r.path, records)
}
