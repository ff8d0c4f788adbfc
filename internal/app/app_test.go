package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/GlebRadaev/vpnshop/internal/config"
	"github.com/GlebRadaev/vpnshop/pkg/lock"
)

type ApplicationSuite struct {
	suite.Suite
	app *Application
}

func TestApplication(t *testing.T) {
	suite.Run(t, &ApplicationSuite{})
}

func (s *ApplicationSuite) SetupTest() {
	s.app = New()
}

func (s *ApplicationSuite) TestWait() {
	ctx, cancel := context.WithCancel(context.Background())

	s.app.errCh = make(chan error)
	go func() {
		s.app.errCh <- fmt.Errorf("mock error")
	}()

	err := s.app.Wait(ctx, cancel)

	s.Require().Error(err)
	s.Contains(err.Error(), "mock error")
}

func (s *ApplicationSuite) TestWait_RunsClosersInReverse() {
	ctx, cancel := context.WithCancel(context.Background())
	var order []int
	s.app.closers = []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}

	cancel()
	s.Require().NoError(s.app.Wait(ctx, cancel))
	s.Equal([]int{2, 1}, order)
}

func (s *ApplicationSuite) TestReviewLock_WithoutRedis() {
	l, err := s.app.reviewLock(context.Background(), &config.Config{})

	s.Require().NoError(err)
	s.IsType(lock.Noop{}, l)
	s.Empty(s.app.closers)
}

func (s *ApplicationSuite) TestReviewLock_Unreachable() {
	_, err := s.app.reviewLock(context.Background(), &config.Config{RedisAddress: "127.0.0.1:1"})

	s.Error(err)
}

func (s *ApplicationSuite) TestGetPgxpool_BadDSN() {
	_, err := getPgxpool(context.Background(), &config.Config{Database: "::not a dsn::"})

	s.Error(err)
}
