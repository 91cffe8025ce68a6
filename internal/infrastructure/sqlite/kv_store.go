package sqlite

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jhoicas/pharma-erp-api/internal/domain/repository"
)

var _ repository.KeyValueStore = (*KVStore)(nil)

// kvEntry fila de la tabla kv_entries.
type kvEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// KVStore almacén clave-valor embebido en un archivo SQLite (instalaciones sin Postgres).
type KVStore struct {
	db *gorm.DB
}

// Open abre (o crea) la base en path y migra la tabla.
func Open(path string) (*KVStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite %s: %w", path, err)
	}
	return New(db)
}

// New usa una conexión gorm existente.
func New(db *gorm.DB) (*KVStore, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrar kv_entries: %w", err)
	}
	return &KVStore{db: db}, nil
}

// byKey condición con la columna citada ("key" es palabra clave en SQLite).
func byKey(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (s *KVStore) Get(key string) (string, bool, error) {
	var e kvEntry
	err := s.db.Where(byKey(key)).Take(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get kv %s: %w", key, err)
	}
	return e.Value, true, nil
}

func (s *KVStore) Set(key, value string) error {
	e := kvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("set kv %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) Remove(key string) error {
	if err := s.db.Where(byKey(key)).Delete(&kvEntry{}).Error; err != nil {
		return fmt.Errorf("remove kv %s: %w", key, err)
	}
	return nil
}

// Close cierra la conexión subyacente.
func (s *KVStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
