// Package config загружает описания workflow из YAML/JSON файлов.
//
// Движок сам никогда не обращается к файловой системе: он получает
// уже распарсенный WorkflowSpec от вызывающей стороны.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Cascade/internal/domain"
)

// Ошибки загрузки конфигурации.
var (
	// ErrNotFound — файл конфигурации не существует.
	ErrNotFound = errors.New("config file not found")

	// ErrUnsupportedFormat — расширение файла не поддерживается.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Load читает файл по пути и парсит его в WorkflowSpec.
//
// Формат определяется по расширению: .yaml/.yml — YAML, .json — JSON.
// Отсутствующий файл и неизвестное расширение — разные виды ошибок
// (ErrNotFound и ErrUnsupportedFormat).
func Load(path string) (*domain.WorkflowSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var spec domain.WorkflowSpec

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("parse json %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	return &spec, nil
}

// LoadRaw читает файл в необработанное дерево (map).
//
// Используется инструментами (tool registry), которым нужен доступ
// к произвольным полям конфигурации за пределами WorkflowSpec.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw map[string]any

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse json %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	return raw, nil
}
