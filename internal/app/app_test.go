package app

import (
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benidevo/mentormatch/internal/config"
)

var testHost = "http://localhost"

func testConfig() config.Settings {
	cfg := config.NewTestSettings()
	// Each subtest below calls Setup independently; leaving metrics on
	// would have every one of them register the same Prometheus
	// collector names on the default registry and collide.
	cfg.MetricsEnabled = false
	return cfg
}

func TestAppLifecycle(t *testing.T) {
	t.Run("new_initializes_router_without_touching_dependencies", func(t *testing.T) {
		cfg := testConfig()
		a := New(cfg)

		assert.NotNil(t, a)
		assert.Equal(t, cfg, a.config)
		assert.NotNil(t, a.router)
		assert.Nil(t, a.db)
		assert.Nil(t, a.server)
		assert.NotNil(t, a.done)
	})

	t.Run("run_starts_the_server", func(t *testing.T) {
		cfg := testConfig()
		a := New(cfg)

		err := a.Run()
		require.NoError(t, err)
		time.Sleep(100 * time.Millisecond)
		assert.NotNil(t, a.server)

		resp, err := http.Get(testHost + cfg.ServerPort + "/health")
		if err == nil {
			defer resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}

		a.done <- os.Interrupt
		time.Sleep(100 * time.Millisecond)
	})

	t.Run("shutdown_on_signal_clears_dependencies", func(t *testing.T) {
		cfg := testConfig()
		a := New(cfg)
		require.NoError(t, a.Setup())
		a.server = &http.Server{Addr: cfg.ServerPort, Handler: a.router}

		done := make(chan struct{})
		go func() {
			a.WaitForShutdown()
			done <- struct{}{}
		}()

		a.done <- syscall.SIGTERM

		select {
		case <-done:
			assert.Nil(t, a.server)
			assert.Nil(t, a.db)
			assert.Nil(t, a.cache)
		case <-time.After(2 * time.Second):
			t.Fatal("WaitForShutdown did not complete in time")
		}
	})
}

func TestRateFromRunsPerMinute(t *testing.T) {
	assert.Equal(t, "10-M", rateFromRunsPerMinute(10))
	assert.Equal(t, "25-M", rateFromRunsPerMinute(25))
	assert.Equal(t, "10-M", rateFromRunsPerMinute(0))
	assert.Equal(t, "10-M", rateFromRunsPerMinute(-3))
}
