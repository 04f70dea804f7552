//go:build integration

package store_test

import (
	"context"
	"testing"

	"india-heatmap/internal/stats"
	"india-heatmap/internal/store"
	"india-heatmap/internal/testutil/containers"

	"github.com/stretchr/testify/suite"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	st, err := store.Open(s.postgres.DSN)
	s.Require().NoError(err)
	s.store = st
	s.Require().NoError(s.store.Prepare(context.Background()))
	s.Require().NoError(s.store.Prepare(context.Background()), "schema creation is idempotent")
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.store.ClearRegions(context.Background()))
}

func (s *PostgresStoreSuite) TestEmptyTable() {
	out, err := s.store.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(out)
}

func (s *PostgresStoreSuite) TestUpsertLoadRoundTrip() {
	ctx := context.Background()
	in := stats.Table{
		{Name: "Kerala", Metric: 859},
		{Name: "Goa", Missing: true},
		{Name: "Delhi", Metric: 11297},
	}
	n, err := s.store.UpsertRegions(ctx, in)
	s.Require().NoError(err)
	s.Equal(3, n)

	out, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Equal(in, out, "NULL metric comes back as Missing, order preserved")
}

func (s *PostgresStoreSuite) TestUpsertOverwritesInPlace() {
	ctx := context.Background()
	_, err := s.store.UpsertRegions(ctx, stats.Table{{Name: "Kerala", Metric: 859}, {Name: "Goa", Metric: 394}})
	s.Require().NoError(err)
	_, err = s.store.UpsertRegions(ctx, stats.Table{{Name: "Kerala", Missing: true}, {Name: "Bihar", Metric: 1102}})
	s.Require().NoError(err)

	out, err := s.store.Load(ctx)
	s.Require().NoError(err)
	s.Equal(stats.Table{
		{Name: "Kerala", Missing: true},
		{Name: "Goa", Metric: 394},
		{Name: "Bihar", Metric: 1102},
	}, out)
}

func (s *PostgresStoreSuite) TestLoadFeedsPrepare() {
	ctx := context.Background()
	_, err := s.store.UpsertRegions(ctx, stats.Table{{Name: "A", Metric: 100}, {Name: "B", Missing: true}, {Name: "C", Metric: 300}})
	s.Require().NoError(err)
	raw, err := s.store.Load(ctx)
	s.Require().NoError(err)

	t, rep := stats.Prepare(raw)
	s.Equal([]string{"B"}, rep.Filled)
	s.Equal(200.0, t[1].Metric)
}
