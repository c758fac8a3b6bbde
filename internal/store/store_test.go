package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HamedShams/pulse-reports/internal/config"
)

func TestConnect_NotConfigured(t *testing.T) {
	s := New(config.Config{}, zerolog.Nop())
	if err := s.Connect(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCollection_BeforeConnect(t *testing.T) {
	s := New(config.Config{MongoURI: "mongodb://localhost:27017", MongoDatabase: "reports"}, zerolog.Nop())
	if _, err := s.Collection(ReportsCollection); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestConnect_SingleInitializationUnderRace(t *testing.T) {
	s := New(config.Config{MongoURI: "mongodb://localhost:27017", MongoDatabase: "reports"}, zerolog.Nop())
	var dials int32
	s.dial = func(ctx context.Context) (*mongo.Client, error) {
		atomic.AddInt32(&dials, 1)
		time.Sleep(20 * time.Millisecond)
		return nil, nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Connect(context.Background())
		}(i)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Fatalf("expected exactly one dial, got %d", n)
	}
	for i, err := range errs {
		if err != nil {
			t.Fatalf("connect %d failed: %v", i, err)
		}
	}
}

func TestConnect_FailureIsSticky(t *testing.T) {
	s := New(config.Config{MongoURI: "mongodb://localhost:27017", MongoDatabase: "reports"}, zerolog.Nop())
	boom := errors.New("dial timeout")
	s.dial = func(ctx context.Context) (*mongo.Client, error) { return nil, boom }

	if err := s.Connect(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected dial error, got %v", err)
	}
	if err := s.Connect(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected same error on retry, got %v", err)
	}
	if _, err := s.Collection(ReportsCollection); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected after failed connect, got %v", err)
	}
}
