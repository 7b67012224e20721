package outboxrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flowerstand/internal/adapters/out/postgres/outboxrepo"
	"flowerstand/internal/core/domain/model/kernel"
	"flowerstand/internal/core/domain/model/outbox"
	"flowerstand/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type noteEvent struct {
	ID      kernel.UUID `json:"eventId"`
	Project kernel.UUID `json:"projectId"`
}

func (e noteEvent) EventID() kernel.UUID { return e.ID }
func (e noteEvent) AggregateID() kernel.UUID { return e.Project }
func (e noteEvent) EventType() string { return "test.noted" }

type OutboxRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	now       time.Time
}

func (suite *OutboxRepositoryIntegrationTestSuite) SetupSuite() {
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

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&outboxrepo.EntryDTO{}))
	suite.now = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *OutboxRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE outbox_entries").Error)
}

func (suite *OutboxRepositoryIntegrationTestSuite) repo(db *gorm.DB) *outboxrepo.GormOutboxRepository {
	return outboxrepo.NewGormOutboxRepository(db, time.Minute)
}

func (suite *OutboxRepositoryIntegrationTestSuite) addEntries(n int, at time.Time) []*outbox.Entry {
	entries := make([]*outbox.Entry, 0, n)
	for range n {
		e, err := outbox.NewEntry(noteEvent{ID: kernel.NewUUID(), Project: kernel.NewUUID()}, at)
		suite.Require().NoError(err)
		entries = append(entries, e)
	}
	suite.Require().NoError(suite.repo(suite.db).Add(context.Background(), entries...))
	return entries
}

func (suite *OutboxRepositoryIntegrationTestSuite) claim(limit int, at time.Time) []*outbox.Entry {
	var claimed []*outbox.Entry
	err := suite.db.Transaction(func(tx *gorm.DB) error {
		var err error
		claimed, err = suite.repo(tx).Claim(context.Background(), at, limit)
		return err
	})
	suite.Require().NoError(err)
	return claimed
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	entries := suite.addEntries(1, suite.now)

	got, err := suite.repo(suite.db).Get(context.Background(), entries[0].ID())

	suite.Require().NoError(err)
	suite.Equal(entries[0].EventID(), got.EventID())
	suite.Equal("test.noted", got.EventType())
	suite.Equal(outbox.StatusPending, got.Status())
	suite.JSONEq(string(entries[0].Payload()), string(got.Payload()))
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestAdd_DuplicateEventIsRejected() {
	entries := suite.addEntries(1, suite.now)
	dup, err := outbox.RestoreEntry(outbox.Snapshot{
		ID:          kernel.NewUUID(),
		EventID:     entries[0].EventID(),
		EventType:   entries[0].EventType(),
		AggregateID: entries[0].AggregateID(),
		Payload:     entries[0].Payload(),
		Status:      outbox.StatusPending,
		MaxRetries:  outbox.DefaultMaxRetries,
		CreatedAt:   suite.now,
		UpdatedAt:   suite.now,
	})
	suite.Require().NoError(err)

	err = suite.repo(suite.db).Add(context.Background(), dup)

	suite.Require().Error(err)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestClaim_MarksPendingAsProcessing() {
	entries := suite.addEntries(3, suite.now)

	claimed := suite.claim(2, suite.now)

	suite.Require().Len(claimed, 2)
	for _, e := range claimed {
		suite.Equal(outbox.StatusProcessing, e.Status())
	}

	rest := suite.claim(10, suite.now.Add(30*time.Second))
	suite.Require().Len(rest, 1, "leased entries stay hidden")
	suite.Empty(suite.claim(10, suite.now.Add(30*time.Second)))

	ids := map[kernel.UUID]bool{claimed[0].ID(): true, claimed[1].ID(): true, rest[0].ID(): true}
	for _, e := range entries {
		suite.True(ids[e.ID()])
	}
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestClaim_FailedEntriesWaitForBackoff() {
	ctx := context.Background()
	suite.addEntries(1, suite.now)
	claimed := suite.claim(1, suite.now)
	suite.Require().Len(claimed, 1)

	claimed[0].MarkFailed(errors.New("boom"), suite.now, 10*time.Second)
	suite.Require().NoError(suite.repo(suite.db).Update(ctx, claimed[0]))

	suite.Empty(suite.claim(10, suite.now.Add(5*time.Second)))
	due := suite.claim(10, suite.now.Add(10*time.Second))
	suite.Require().Len(due, 1)
	suite.Equal(1, due[0].RetryCount())
	suite.Equal("boom", due[0].LastError())
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestClaim_ReclaimsAbandonedLease() {
	suite.addEntries(1, suite.now)
	suite.Require().Len(suite.claim(1, suite.now), 1)

	suite.Empty(suite.claim(1, suite.now.Add(59*time.Second)))
	suite.Len(suite.claim(1, suite.now.Add(time.Minute)), 1)
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestClaim_SentAndDeadAreNeverClaimed() {
	ctx := context.Background()
	suite.addEntries(2, suite.now)
	claimed := suite.claim(2, suite.now)
	suite.Require().Len(claimed, 2)

	claimed[0].MarkSent(suite.now)
	for !claimed[1].IsDead() {
		claimed[1].MarkFailed(errors.New("boom"), suite.now, 0)
	}
	suite.Require().NoError(suite.repo(suite.db).Update(ctx, claimed[0]))
	suite.Require().NoError(suite.repo(suite.db).Update(ctx, claimed[1]))

	suite.Empty(suite.claim(10, suite.now.Add(24*time.Hour)))
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestClaim_ConcurrentDispatchersAreSerialized() {
	ctx := context.Background()
	suite.addEntries(4, suite.now)

	first := suite.db.Begin()
	suite.Require().NoError(first.Error)
	defer first.Rollback()

	a, err := suite.repo(first).Claim(ctx, suite.now, 2)
	suite.Require().NoError(err)
	suite.Require().Len(a, 2)

	type claimResult struct {
		entries []*outbox.Entry
		err     error
	}
	done := make(chan claimResult, 1)
	go func() {
		var claimed []*outbox.Entry
		err := suite.db.Transaction(func(tx *gorm.DB) error {
			var err error
			claimed, err = suite.repo(tx).Claim(ctx, suite.now, 10)
			return err
		})
		done <- claimResult{entries: claimed, err: err}
	}()

	select {
	case <-done:
		suite.FailNow("second claim did not wait for the first")
	case <-time.After(300 * time.Millisecond):
	}

	suite.Require().NoError(first.Commit().Error)

	var b claimResult
	select {
	case b = <-done:
	case <-time.After(10 * time.Second):
		suite.FailNow("second claim never finished")
	}
	suite.Require().NoError(b.err)
	suite.Require().Len(b.entries, 2)
	for _, x := range a {
		for _, y := range b.entries {
			suite.NotEqual(x.ID(), y.ID())
		}
	}
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestClaim_KeepsAggregateOrder() {
	ctx := context.Background()
	projectID := kernel.NewUUID()
	ordered := make([]*outbox.Entry, 0, 3)
	for i := range 3 {
		e, err := outbox.NewEntry(noteEvent{ID: kernel.NewUUID(), Project: projectID}, suite.now.Add(time.Duration(i)*time.Second))
		suite.Require().NoError(err)
		ordered = append(ordered, e)
	}
	suite.Require().NoError(suite.repo(suite.db).Add(ctx, ordered...))

	claimed := suite.claim(10, suite.now)
	suite.Require().Len(claimed, 3)
	for i := range ordered {
		suite.Equal(ordered[i].ID(), claimed[i].ID())
	}

	claimed[0].MarkFailed(errors.New("notifier down"), suite.now, 10*time.Second)
	suite.Require().NoError(suite.repo(suite.db).Update(ctx, claimed[0]))
	for _, e := range claimed[1:] {
		suite.Require().NoError(e.Release(suite.now))
		suite.Require().NoError(suite.repo(suite.db).Update(ctx, e))
	}
	other := suite.addEntries(1, suite.now)

	waiting := suite.claim(10, suite.now.Add(5*time.Second))
	suite.Require().Len(waiting, 1, "successors wait behind the failed entry")
	suite.Equal(other[0].ID(), waiting[0].ID())

	retried := suite.claim(10, suite.now.Add(10*time.Second))
	suite.Require().Len(retried, 1)
	suite.Equal(ordered[0].ID(), retried[0].ID())

	retried[0].MarkSent(suite.now.Add(10 * time.Second))
	suite.Require().NoError(suite.repo(suite.db).Update(ctx, retried[0]))

	rest := suite.claim(10, suite.now.Add(11*time.Second))
	suite.Require().Len(rest, 2)
	suite.Equal(ordered[1].ID(), rest[0].ID())
	suite.Equal(ordered[2].ID(), rest[1].ID())
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestClaim_DeadEntryReleasesSuccessors() {
	ctx := context.Background()
	projectID := kernel.NewUUID()
	head, err := outbox.NewEntry(noteEvent{ID: kernel.NewUUID(), Project: projectID}, suite.now)
	suite.Require().NoError(err)
	next, err := outbox.NewEntry(noteEvent{ID: kernel.NewUUID(), Project: projectID}, suite.now.Add(time.Second))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo(suite.db).Add(ctx, head, next))

	claimed := suite.claim(1, suite.now)
	suite.Require().Len(claimed, 1)
	for !claimed[0].IsDead() {
		claimed[0].MarkFailed(errors.New("boom"), suite.now, 0)
	}
	suite.Require().NoError(suite.repo(suite.db).Update(ctx, claimed[0]))

	rest := suite.claim(10, suite.now)
	suite.Require().Len(rest, 1)
	suite.Equal(next.ID(), rest[0].ID())
}

func (suite *OutboxRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repo(suite.db).Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestOutboxRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(OutboxRepositoryIntegrationTestSuite))
}
