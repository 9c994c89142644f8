package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handoff-ai/relay/internal/types"
)

type stub struct {
	name string
}

func (s stub) Name() string           { return s.name }
func (s stub) Description() string    { return "stub scenario " + s.name }
func (s stub) Setup() (*Setup, error) { return &Setup{}, nil }

func TestRegistryRegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(stub{name: "alpha"}))

	s, err := registry.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", s.Name())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(stub{name: "alpha"}))

	err := registry.Register(stub{name: "alpha"})
	require.Error(t, err)

	var relayErr *types.RelayError
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, types.SCENARIO_ALREADY_EXISTS, relayErr.Code)
}

func TestRegistryRejectsUnnamed(t *testing.T) {
	registry := NewRegistry()
	assert.Error(t, registry.Register(stub{}))
	assert.Error(t, registry.Register(nil))
}

func TestRegistryGetUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("missing")
	require.Error(t, err)

	var relayErr *types.RelayError
	require.ErrorAs(t, err, &relayErr)
	assert.Equal(t, types.SCENARIO_NOT_FOUND, relayErr.Code)
}

func TestRegistryListSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"gamma", "alpha", "beta"} {
		require.NoError(t, registry.Register(stub{name: name}))
	}

	listed := registry.List()
	require.Len(t, listed, 3)
	assert.Equal(t, "alpha", listed[0].Name())
	assert.Equal(t, "beta", listed[1].Name())
	assert.Equal(t, "gamma", listed[2].Name())
}
