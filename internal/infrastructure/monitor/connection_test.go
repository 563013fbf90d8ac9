package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisInfra "github.com/fastygo/taskmanager/internal/infrastructure/redis"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type fixedSize int

func (s fixedSize) Size() (int, error) { return int(s), nil }

func TestMonitor_Refresh(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	up := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("down") })

	t.Run("all required up", func(t *testing.T) {
		m := New([]Check{
			{Name: "store", Pinger: up},
			{Name: "redis", Pinger: redisInfra.Pinger{Client: client}, Optional: true},
		}, fixedSize(3), 0, nil)

		status := m.Refresh(context.Background())
		assert.True(t, status.Online)
		assert.True(t, status.Dependencies["redis"])
		assert.Equal(t, 3, status.JournalSize)
		assert.True(t, m.IsOnline())
	})

	t.Run("optional down stays online", func(t *testing.T) {
		m := New([]Check{
			{Name: "store", Pinger: up},
			{Name: "journal", Pinger: down, Optional: true},
		}, nil, 0, nil)

		status := m.Refresh(context.Background())
		assert.True(t, status.Online)
		assert.False(t, status.Dependencies["journal"])
	})

	t.Run("required down goes offline", func(t *testing.T) {
		m := New([]Check{{Name: "store", Pinger: down}, {Name: "none"}}, nil, 0, nil)
		status := m.Refresh(context.Background())
		assert.False(t, status.Online)
		assert.False(t, status.Dependencies["none"])

		snapshot := m.GetStatus()
		snapshot.Dependencies["store"] = true
		assert.False(t, m.GetStatus().Dependencies["store"])
	})

	t.Run("redis outage detected", func(t *testing.T) {
		m := New([]Check{{Name: "redis", Pinger: redisInfra.Pinger{Client: client}}}, nil, 0, nil)
		require.True(t, m.Refresh(context.Background()).Online)
		mr.Close()
		assert.False(t, m.Refresh(context.Background()).Online)
	})
}

func TestMonitor_StartStop(t *testing.T) {
	m := New(nil, nil, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
