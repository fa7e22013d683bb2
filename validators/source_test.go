package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGitURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"github ssh", "git@github.com:user/repo.git", true},
		{"gitlab ssh", "git@gitlab.com:user/repo.git", true},
		{"bitbucket ssh", "git@bitbucket.org:user/repo.git", true},
		{"custom host ssh without suffix", "deploy@git.internal.example:team/app", true},
		{"github https with suffix", "https://github.com/user/repo.git", true},
		{"github https", "https://github.com/user/repo", true},
		{"gitlab https", "https://gitlab.com/user/repo.git", true},
		{"plain word", "not-a-url", false},
		{"http scheme", "http://example.com", false},
		{"http repo", "http://github.com/user/repo", false},
		{"ftp scheme", "ftp://example.com/repo", false},
		{"https without repo", "https://github.com/user", false},
		{"shorthand", "user/repo", false},
		{"empty", "", false},
		{"padded ssh", "  git@github.com:user/repo.git\n", true},
		{"padded https", "\thttps://github.com/user/repo ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGitURL(tt.input))
		})
	}
}

func TestIsGitHubShorthand(t *testing.T) {
	assert.True(t, IsGitHubShorthand("user/repo"))
	assert.True(t, IsGitHubShorthand("my-org/my-repo"))
	assert.True(t, IsGitHubShorthand("user123/repo_name"))

	assert.False(t, IsGitHubShorthand("user"))
	assert.False(t, IsGitHubShorthand("user/repo/extra"))
	assert.False(t, IsGitHubShorthand("/repo"))
	assert.False(t, IsGitHubShorthand("user/"))
	assert.False(t, IsGitHubShorthand("./app"))
	assert.False(t, IsGitHubShorthand(""))
}

func TestPredicates_AgreeWithParseSource(t *testing.T) {
	inputs := []string{
		" git@github.com:user/repo.git",
		"https://github.com/user/repo.git  ",
		"  user/repo ",
		" ./site ",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			source := ParseSource(input)
			isGit := IsGitURL(input) || IsGitHubShorthand(input)
			assert.Equal(t, source.IsGit(), isGit)
			assert.Equal(t, !source.IsGit(), IsLocalPath(input))
			assert.Equal(t, IsSSHGitURL(input), isSSHGitURL(source.URL))
		})
	}
}

func TestIsLocalPath(t *testing.T) {
	assert.True(t, IsLocalPath("/opt/apps/myapp"))
	assert.True(t, IsLocalPath("./site"))
	assert.True(t, IsLocalPath("~/projects/blog"))
	assert.True(t, IsLocalPath("not-a-url"))

	assert.False(t, IsLocalPath(""))
	assert.False(t, IsLocalPath("   "))
	assert.False(t, IsLocalPath("user/repo"))
	assert.False(t, IsLocalPath("git@github.com:user/repo.git"))
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  SourceDescriptor
	}{
		{
			name:  "ssh url kept verbatim",
			input: "git@github.com:user/repo.git",
			want:  SourceDescriptor{Kind: SourceKindGit, URL: "git@github.com:user/repo.git"},
		},
		{
			name:  "https url kept verbatim",
			input: "https://github.com/user/repo.git",
			want:  SourceDescriptor{Kind: SourceKindGit, URL: "https://github.com/user/repo.git"},
		},
		{
			name:  "shorthand expands to github",
			input: "user/repo",
			want:  SourceDescriptor{Kind: SourceKindGit, URL: "https://github.com/user/repo"},
		},
		{
			name:  "absolute path",
			input: "/opt/apps/myapp",
			want:  SourceDescriptor{Kind: SourceKindLocal, Path: "/opt/apps/myapp"},
		},
		{
			name:  "nested relative path is not shorthand",
			input: "user/repo/extra",
			want:  SourceDescriptor{Kind: SourceKindLocal, Path: "user/repo/extra"},
		},
		{
			name:  "http url falls through to local",
			input: "http://example.com",
			want:  SourceDescriptor{Kind: SourceKindLocal, Path: "http://example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseSource(tt.input)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Kind.IsValid())
		})
	}
}

func TestParseSource_ExactlyOneLocation(t *testing.T) {
	inputs := []string{
		"git@github.com:user/repo.git",
		"https://gitlab.com/group/app",
		"org/app",
		"relative/dir/app",
		"app",
		".",
		"C:\\apps\\site",
	}
	for _, input := range inputs {
		d := ParseSource(input)
		switch d.Kind {
		case SourceKindGit:
			assert.NotEmpty(t, d.URL, input)
			assert.Empty(t, d.Path, input)
		case SourceKindLocal:
			assert.NotEmpty(t, d.Path, input)
			assert.Empty(t, d.URL, input)
		default:
			t.Fatalf("unexpected kind %q for %q", d.Kind, input)
		}
	}
}

func TestValidateSource(t *testing.T) {
	info, err := ValidateSource("git@github.com:user/repo.git")
	require.NoError(t, err)
	assert.Equal(t, SourceKindGit, info.Kind)

	info, err = ValidateSource("user/repo")
	require.NoError(t, err)
	assert.Equal(t, SourceKindGit, info.Kind)

	info, err = ValidateSource("/srv/site")
	require.NoError(t, err)
	assert.Equal(t, SourceKindLocal, info.Kind)

	for _, empty := range []string{"", "   ", "\t\n"} {
		_, err := ValidateSource(empty)
		require.Error(t, err)
		ve, ok := IsValidationError(err)
		require.True(t, ok)
		assert.Equal(t, FieldSource, ve.Field)
	}
}

func TestSourceDescriptor_BaseName(t *testing.T) {
	tests := map[string]string{
		"git@github.com:user/repo.git":    "repo",
		"https://github.com/user/app.git": "app",
		"user/site":                       "site",
		"/opt/apps/myapp/":                "myapp",
		"./blog":                          "blog",
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseSource(input).BaseName(), input)
	}
}
