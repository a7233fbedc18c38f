package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
)

var errNullDocument = errors.New("документ равен null")

// Load читает JSON документ из path в v. Отсутствующий файл возвращается
// как ошибка, удовлетворяющая errors.Is(err, os.ErrNotExist).
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения %s: %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return &domainerrors.ErrMalformedPersistedState{Source: path, Cause: errNullDocument}
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return &domainerrors.ErrMalformedPersistedState{Source: path, Cause: err}
	}

	return nil
}

// Save атомарно заменяет path: пишет во временный файл рядом и переименовывает.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации %s: %w", path, err)
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла для %s: %w", path, err)
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("ошибка записи %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("ошибка закрытия %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("ошибка замены %s: %w", path, err)
	}

	return nil
}

// LoadOrCreate загружает документ, а при отсутствии файла сохраняет empty
// и копирует его в v.
func LoadOrCreate(path string, v any, empty any) error {
	err := Load(path, v)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := Save(path, empty); err != nil {
		return err
	}

	return Load(path, v)
}
