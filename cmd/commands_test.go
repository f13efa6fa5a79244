package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"firstbites/config"
	"firstbites/models"
	"firstbites/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDispatcher struct {
	mu   sync.Mutex
	sent []services.Notification
}

func (d *captureDispatcher) Dispatch(_ context.Context, n services.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Environment: "development",
		DBDriver:    "sqlite",
		DBPath:      filepath.Join(t.TempDir(), "firstbites.db"),
		LogLevel:    "error",
		SessionTTL:  time.Minute,
	}
}

func TestSeedCatalog(t *testing.T) {
	ctx := context.Background()
	db, err := config.InitDB(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	builtin, err := services.DefaultCatalog()
	require.NoError(t, err)
	n, err := seedCatalog(ctx, db, "")
	require.NoError(t, err)
	assert.Equal(t, len(builtin), n)

	file := filepath.Join(t.TempDir(), "foods.yaml")
	require.NoError(t, os.WriteFile(file, []byte("foods:\n  - {id: 2, name: Ripe Banana, category: Fruits}\n"), 0o600))
	n, err = seedCatalog(ctx, db, file)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	foods, err := services.NewGormStore(db).ListFoods(ctx)
	require.NoError(t, err)
	assert.Len(t, foods, len(builtin), "reseeding updates rows in place")
	var renamed string
	for _, f := range foods {
		if f.ID == 2 {
			renamed = f.Name
		}
	}
	assert.Equal(t, "Ripe Banana", renamed)

	_, err = seedCatalog(ctx, db, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSendReminders(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(t))
	require.NoError(t, err)
	t.Cleanup(a.close)

	_, err = seedCatalog(ctx, a.db, "")
	require.NoError(t, err)

	store := services.NewGormStore(a.db)
	for _, u := range []models.User{
		{ID: 1, Email: "ada@example.com", BabyName: "Ada"},
		{ID: 2, Email: "ben@example.com"},
		{ID: 3, Email: "cy@example.com"},
	} {
		require.NoError(t, store.CreateUser(ctx, &u))
	}
	muted, err := store.GetUser(ctx, 3)
	require.NoError(t, err)
	muted.ReminderAlerts = false
	require.NoError(t, store.SaveUser(ctx, muted))

	// users 1 and 3 cleared Egg a month ago; user 2 has nothing due
	lastEaten := time.Now().Add(-30 * 24 * time.Hour)
	for _, uid := range []uint{1, 3} {
		st := models.FoodState{
			ID:            fmt.Sprintf("state-%d", uid),
			UserID:        uid,
			FoodID:        32,
			Status:        models.StatusSafe,
			ExposureCount: 3,
			LastEaten:     &lastEaten,
		}
		require.NoError(t, store.SaveFoodState(ctx, &st))
	}

	disp := &captureDispatcher{}
	a.reminders = services.NewReminderService(nil, disp, nil)

	sent, err := a.sendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, disp.sent, 1)
	assert.Equal(t, uint(1), disp.sent[0].UserID)
	assert.Equal(t, models.NotificationMaintenance, disp.sent[0].Type)
	assert.Contains(t, disp.sent[0].Body, "Ada")
	assert.Contains(t, disp.sent[0].Body, "Egg")
	assert.Zero(t, a.sessions.Active(), "every session is closed again")
}
