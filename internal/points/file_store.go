package points

import (
	"context"
	"sync"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
	"github.com/Matthew11K/TwitchBot/internal/storage/jsonfile"
)

// FileStore держит записи в памяти и переписывает файл целиком при каждом изменении.
type FileStore struct {
	mu    sync.Mutex
	path  string
	infos []models.UserInfo
}

func NewFileStore(path string) (*FileStore, error) {
	var infos []models.UserInfo

	if err := jsonfile.LoadOrCreate(path, &infos, []models.UserInfo{}); err != nil {
		return nil, err
	}

	return &FileStore{path: path, infos: infos}, nil
}

func (s *FileStore) Get(_ context.Context, userID string) (models.UserInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, info := range s.infos {
		if info.UserID == userID {
			return info, true, nil
		}
	}

	return models.UserInfo{}, false, nil
}

func (s *FileStore) List(_ context.Context) ([]models.UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.UserInfo(nil), s.infos...), nil
}

func (s *FileStore) Upsert(_ context.Context, infos ...models.UserInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, info := range infos {
		s.upsertLocked(info)
	}

	return jsonfile.Save(s.path, s.infos)
}

func (s *FileStore) upsertLocked(info models.UserInfo) {
	for i := range s.infos {
		if s.infos[i].UserID == info.UserID {
			s.infos[i] = info
			return
		}
	}

	s.infos = append(s.infos, info)
}
