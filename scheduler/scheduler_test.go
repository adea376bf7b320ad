package scheduler

import (
	"context"
	"testing"
	"time"

	"projectdesk/model"
	"projectdesk/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestPruneTokensJob(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:scheduler?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.PersonalAccessToken{}))

	u := &model.User{Username: "ann", Email: "ann@example.test", Password: "x", Role: model.RoleTeamMember}
	require.NoError(t, db.Create(u).Error)
	_, err = services.NewTokenService(db, "s", -time.Minute).Issue(context.Background(), u, "old")
	require.NoError(t, err)
	_, err = services.NewTokenService(db, "s", time.Hour).Issue(context.Background(), u, "new")
	require.NoError(t, err)

	PruneTokensJob(services.NewTokenService(db, "s", time.Hour))

	var names []string
	require.NoError(t, db.Model(&model.PersonalAccessToken{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"new"}, names)
}

func TestStartScheduler(t *testing.T) {
	c, err := StartScheduler(services.NewTokenService(nil, "s", time.Hour))
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
