package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasmhost/wasm/validators"
)

func TestParseAppType(t *testing.T) {
	tests := []struct {
		input   string
		want    AppType
		wantErr bool
	}{
		{input: "nextjs", want: AppTypeNextJS},
		{input: "NodeJS", want: AppTypeNodeJS},
		{input: " vite ", want: AppTypeVite},
		{input: "python", want: AppTypePython},
		{input: "static", want: AppTypeStatic},
		{input: "php", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAppType(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "nextjs, nodejs, python, static, vite")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppType_DefaultPort(t *testing.T) {
	assert.Equal(t, 3000, AppTypeNextJS.DefaultPort())
	assert.Equal(t, 5173, AppTypeVite.DefaultPort())
	assert.Equal(t, 8000, AppTypePython.DefaultPort())
	assert.Equal(t, 80, AppTypeStatic.DefaultPort())
	assert.True(t, AppTypeStatic.ServedByProxy())
	assert.False(t, AppTypeNodeJS.ServedByProxy())
}

func TestAppStatus_RoundTrip(t *testing.T) {
	for _, status := range []AppStatus{AppStatusPending, AppStatusFetched, AppStatusFailed, AppStatusUnknown} {
		parsed, err := ParseAppStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := ParseAppStatus("running")
	assert.Error(t, err)
}

func TestNewApp(t *testing.T) {
	source := validators.ParseSource("user/repo")
	app := NewApp("api-example-com", "api.example.com", 3000, AppTypeNodeJS, source, "/var/www/apps")

	assert.NotEqual(t, uuid.Nil, app.ID)
	assert.Equal(t, "/var/www/apps/api-example-com", app.Dir)
	assert.Equal(t, AppStatusPending, app.Status)
	assert.Equal(t, "https://api.example.com", app.URL())
}

func TestGitAuthConfig_Type(t *testing.T) {
	var none *GitAuthConfig
	assert.Equal(t, GitAuthType(""), none.Type())
	assert.Equal(t, GitAuthType(""), (&GitAuthConfig{}).Type())
	assert.Equal(t, GitAuthTypeHTTP, (&GitAuthConfig{HTTPAuth: &GitHTTPAuthConfig{}}).Type())
	assert.Equal(t, GitAuthTypeSSH, (&GitAuthConfig{SSHAuth: &GitSSHAuthConfig{}}).Type())

	parsed, err := ParseGitAuthType("ssh")
	require.NoError(t, err)
	assert.Equal(t, GitAuthTypeSSH, parsed)
	_, err = ParseGitAuthType("oauth")
	assert.Error(t, err)
}
