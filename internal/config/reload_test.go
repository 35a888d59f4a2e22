// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHolderWithFile(t *testing.T, content string) (*Holder, string) {
	t.Helper()
	path := writeConfig(t, content)
	loader := NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	return NewHolder(cfg, loader, path), path
}

func TestHolder_ReloadSwapsConfig(t *testing.T) {
	holder, path := newHolderWithFile(t, "logLevel: info\n")
	require.Equal(t, "info", holder.Get().LogLevel)

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background()))

	assert.Equal(t, "debug", holder.Get().LogLevel)
}

func TestHolder_ReloadKeepsOldConfigOnFailure(t *testing.T) {
	holder, path := newHolderWithFile(t, "logLevel: info\n")

	require.NoError(t, os.WriteFile(path, []byte("store: cassandra\n"), 0o600))
	err := holder.Reload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store has incorrect value")

	// Old config stays active.
	assert.Equal(t, "info", holder.Get().LogLevel)
	assert.Equal(t, "memory", holder.Get().Store)
}

func TestHolder_NotifiesListeners(t *testing.T) {
	holder, path := newHolderWithFile(t, "logLevel: info\n")

	ch := make(chan AppConfig, 1)
	holder.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte("logLevel: warn\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background()))

	select {
	case cfg := <-ch:
		assert.Equal(t, "warn", cfg.LogLevel)
	case <-time.After(time.Second):
		t.Fatal("listener was not notified")
	}
}

func TestHolder_WatcherReloadsOnWrite(t *testing.T) {
	holder, path := newHolderWithFile(t, "logLevel: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, holder.StartWatcher(ctx))
	defer holder.Stop()

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o600))

	require.Eventually(t, func() bool {
		return holder.Get().LogLevel == "debug"
	}, 5*time.Second, 50*time.Millisecond, "watcher did not pick up the change")
}

func TestHolder_WatcherDisabledWithoutPath(t *testing.T) {
	loader := NewLoader("", "test")
	cfg, err := loader.Load()
	require.NoError(t, err)

	holder := NewHolder(cfg, loader, "")
	require.NoError(t, holder.StartWatcher(context.Background()))
	holder.Stop()
}
