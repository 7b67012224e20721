package migrations_test

import (
	"context"
	"testing"
	"time"

	"flowerstand/migrations"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MigratorIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	dsn       string
}

func (suite *MigratorIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	suite.dsn, err = container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)
}

func (suite *MigratorIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *MigratorIntegrationTestSuite) TestUpCreatesEveryTableAndIsRepeatable() {
	m, err := migrations.Open(suite.dsn, zap.NewNop())
	suite.Require().NoError(err)
	defer func() { _ = m.Close() }()

	_, ok, err := m.Version()
	suite.Require().NoError(err)
	suite.False(ok)

	suite.Require().NoError(m.Up())
	suite.Require().NoError(m.Up())

	version, ok, err := m.Version()
	suite.Require().NoError(err)
	suite.True(ok)
	suite.Equal(uint(4), version)

	db, err := gorm.Open(gormpostgres.Open(suite.dsn), &gorm.Config{})
	suite.Require().NoError(err)
	for _, table := range []string{"projects", "pledges", "outbox_entries", "refund_requests"} {
		suite.True(db.Migrator().HasTable(table), table)
	}
	suite.True(db.Migrator().HasColumn("projects", "settlement_refund_amount"))

	suite.Require().NoError(m.Down())
	suite.False(db.Migrator().HasTable("projects"))
}

func TestMigratorIntegration(t *testing.T) {
	suite.Run(t, new(MigratorIntegrationTestSuite))
}
