package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasmhost/wasm/cmd/output"
	"github.com/wasmhost/wasm/cmd/test"
	"github.com/wasmhost/wasm/validators"
)

func TestNewCmdValidate(t *testing.T) {
	cmd := NewCmdValidate()

	assert.Equal(t, "validate", cmd.Use)
	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"domain", "port", "source"}, names)
}

func TestValidateDomain(t *testing.T) {
	output.InitColors(true)

	out, err := test.Execute(NewCmdValidate(), "domain", "  API.Example.com ")
	require.NoError(t, err)
	assert.Contains(t, out, "Valid domain: api.example.com")
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "true")

	_, err = test.Execute(NewCmdValidate(), "domain", "bad_domain.com")
	require.Error(t, err)
	var validationErr *validators.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestValidatePort(t *testing.T) {
	output.InitColors(true)

	out, err := test.Execute(NewCmdValidate(), "port", "8080")
	require.NoError(t, err)
	assert.Equal(t, "Valid port: 8080\n", out)

	for _, input := range []string{"0", "70000", "http"} {
		_, err := test.Execute(NewCmdValidate(), "port", input)
		assert.Error(t, err, input)
	}
}

func TestValidateSource(t *testing.T) {
	output.InitColors(true)

	out, err := test.Execute(NewCmdValidate(), "source", "user/repo")
	require.NoError(t, err)
	assert.Contains(t, out, "Valid git source")
	assert.Contains(t, out, "https://github.com/user/repo")

	out, err = test.Execute(NewCmdValidate(), "source", "./site")
	require.NoError(t, err)
	assert.Contains(t, out, "Valid local source")
	assert.Contains(t, out, "./site")

	_, err = test.Execute(NewCmdValidate(), "source", "   ")
	assert.Error(t, err)
}
