package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/GlebRadaev/projecthub/internal/config"
	"github.com/GlebRadaev/projecthub/internal/notify"
	"github.com/GlebRadaev/projecthub/internal/otp"
	"github.com/GlebRadaev/projecthub/internal/storage"
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

func (s *ApplicationSuite) TestBuildStorage() {
	dir := s.T().TempDir()

	store, uploadsDir, err := buildStorage(&config.Config{StorageBackend: "disk", UploadsDir: dir})
	s.Require().NoError(err)
	s.IsType(&storage.Disk{}, store)
	s.Equal(dir, uploadsDir)

	store, uploadsDir, err = buildStorage(&config.Config{StorageBackend: "s3", S3Bucket: "projecthub", AWSRegion: "ap-south-1"})
	s.Require().NoError(err)
	s.IsType(&storage.S3{}, store)
	s.Empty(uploadsDir)

	_, _, err = buildStorage(&config.Config{StorageBackend: "ftp"})
	s.Error(err)
}

func (s *ApplicationSuite) TestBuildOTPStore() {
	ctx := context.Background()

	store, err := s.app.buildOTPStore(ctx, &config.Config{})
	s.Require().NoError(err)
	s.IsType(&otp.MemoryStore{}, store)
	s.Empty(s.app.closers)

	mr := miniredis.RunT(s.T())
	store, err = s.app.buildOTPStore(ctx, &config.Config{RedisURL: "redis://" + mr.Addr()})
	s.Require().NoError(err)
	s.IsType(&otp.RedisStore{}, store)
	s.Len(s.app.closers, 1)

	s.Require().NoError(store.Put(ctx, "a@b.c", "123456", time.Minute))
	ok, err := store.Consume(ctx, "a@b.c", "123456")
	s.Require().NoError(err)
	s.True(ok)
	s.app.closers[0]()

	_, err = s.app.buildOTPStore(ctx, &config.Config{RedisURL: "://bad"})
	s.Error(err)
}

func (s *ApplicationSuite) TestBuildSender() {
	s.IsType(notify.LogSender{}, buildSender(&config.Config{}))
	s.IsType(&notify.SMTPSender{}, buildSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: "587"}))
}
