package hxlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestSingleFlight_InProcess_SerializesSameKey(t *testing.T) {
	sf := New(nil)
	var running int32
	var sawOverlap bool
	var wg sync.WaitGroup

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sf.Do(context.Background(), "same-key", func() error {
				if atomic.AddInt32(&running, 1) > 1 {
					sawOverlap = true
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	require.False(t, sawOverlap)
}

func TestSingleFlight_InProcess_DifferentKeysDoNotBlockEachOther(t *testing.T) {
	sf := New(nil)
	start := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = sf.Do(context.Background(), "key-a", func() error {
			close(start)
			<-done
			return nil
		})
	}()

	<-start
	ran := false
	_ = sf.Do(context.Background(), "key-b", func() error {
		ran = true
		return nil
	})
	require.True(t, ran)
	close(done)
}

func TestSingleFlight_WithDB_UsesAdvisoryLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectQuery("SELECT RELEASE_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"RELEASE_LOCK"}).AddRow(1))

	sf := New(db)
	called := false
	err = sf.Do(context.Background(), "parentVariation", func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}
