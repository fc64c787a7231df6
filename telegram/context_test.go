package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateStoreDefaults(t *testing.T) {
	store := NewStateStore("/work")

	state := store.Get(1)
	assert.Equal(t, "/work", state.CurrentDir)
	assert.Empty(t, state.SessionID)
}

func TestStateStorePerChatIsolation(t *testing.T) {
	store := NewStateStore("/work")
	store.SetSessionID(1, "sess-a")
	store.SetCurrentDir(2, "/work/sub")

	assert.Equal(t, "sess-a", store.Get(1).SessionID)
	assert.Equal(t, "/work", store.Get(1).CurrentDir)
	assert.Empty(t, store.Get(2).SessionID)
	assert.Equal(t, "/work/sub", store.Get(2).CurrentDir)
}

func TestStateStoreResetKeepsDirectory(t *testing.T) {
	store := NewStateStore("/work")
	store.SetSessionID(1, "sess-a")
	store.SetCurrentDir(1, "/work/sub")

	store.ResetSession(1)

	state := store.Get(1)
	assert.Empty(t, state.SessionID)
	assert.Equal(t, "/work/sub", state.CurrentDir)
}
