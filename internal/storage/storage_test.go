package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := Open(Config{Path: ":memory:", MaxConnections: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.CloseAll() })
	return engine
}

type probe struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	Name string
}

func TestWithinTxCommitsOnNilReturn(t *testing.T) {
	engine := setupTestEngine(t)
	require.NoError(t, engine.DB().AutoMigrate(&probe{}))

	err := engine.WithinTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&probe{Name: "a"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, engine.DB().Model(&probe{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	engine := setupTestEngine(t)
	require.NoError(t, engine.DB().AutoMigrate(&probe{}))

	err := engine.WithinTx(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&probe{Name: "b"}).Error; err != nil {
			return err
		}
		return context.DeadlineExceeded
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, engine.DB().Model(&probe{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestOpenDefaultsPoolSize(t *testing.T) {
	engine, err := Open(Config{Path: ":memory:"})
	require.NoError(t, err)
	defer engine.CloseAll()
	require.Equal(t, 5, engine.cfg.MaxConnections)
}
