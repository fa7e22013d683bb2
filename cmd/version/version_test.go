package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasmhost/wasm/app"
	"github.com/wasmhost/wasm/cmd/test"
)

func TestNewCmdVersion(t *testing.T) {
	cmd := NewCmdVersion()

	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Show version information", cmd.Short)
	assert.Contains(t, cmd.Long, "Display version information for wasm")
	assert.NotNil(t, cmd.RunE)
	assert.Empty(t, cmd.Commands())
}

func TestVersionOutput(t *testing.T) {
	assert.Equal(t, "dev", app.Version)

	out, err := test.Execute(NewCmdVersion())
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	_, err = test.Execute(NewCmdVersion(), "extra")
	assert.Error(t, err)
}
