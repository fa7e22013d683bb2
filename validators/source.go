package validators

import (
	"path"
	"regexp"
	"strings"
)

// SourceKind tells how an application source is fetched.
type SourceKind string

const (
	SourceKindGit   SourceKind = "git"
	SourceKindLocal SourceKind = "local"
)

func (k SourceKind) String() string {
	return string(k)
}

// IsValid checks if the SourceKind is one of the known kinds
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindGit, SourceKindLocal:
		return true
	default:
		return false
	}
}

const githubBaseURL = "https://github.com/"

var (
	// user@host:owner/repo[.git]
	sshGitURLRegex = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)
	// https://host/owner/repo[.git]
	httpsGitURLRegex = regexp.MustCompile(`^https://[A-Za-z0-9.-]+/[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)
	// owner/repo
	githubShorthandRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+/[A-Za-z0-9_-]+$`)
)

// SourceDescriptor is a classified application source. URL is set for git
// sources, Path for local ones; never both.
type SourceDescriptor struct {
	Kind SourceKind
	URL  string
	Path string
}

// IsGit reports whether the source is fetched with git.
func (d SourceDescriptor) IsGit() bool {
	return d.Kind == SourceKindGit
}

// Location returns the URL or the path, whichever the kind uses.
func (d SourceDescriptor) Location() string {
	if d.IsGit() {
		return d.URL
	}
	return d.Path
}

// BaseName is the last path element of the source without a trailing .git,
// e.g. "repo" for git@github.com:user/repo.git.
func (d SourceDescriptor) BaseName() string {
	loc := strings.TrimRight(d.Location(), "/")
	if d.IsGit() {
		if i := strings.LastIndexAny(loc, "/:"); i >= 0 {
			loc = loc[i+1:]
		}
		return strings.TrimSuffix(loc, ".git")
	}
	return path.Base(loc)
}

func (d SourceDescriptor) String() string {
	return d.Kind.String() + ":" + d.Location()
}

// IsGitURL matches SSH (user@host:owner/repo) and HTTPS git URLs.
// Like every predicate here it ignores surrounding whitespace.
func IsGitURL(s string) bool {
	s = strings.TrimSpace(s)
	return isSSHGitURL(s) || isHTTPSGitURL(s)
}

// IsSSHGitURL matches user@host:owner/repo.
func IsSSHGitURL(s string) bool {
	return isSSHGitURL(strings.TrimSpace(s))
}

// IsGitHubShorthand matches exactly owner/repo.
func IsGitHubShorthand(s string) bool {
	return githubShorthandRegex.MatchString(strings.TrimSpace(s))
}

// IsLocalPath reports whether s would be treated as a local filesystem path.
// Any non-empty string that is neither a git URL nor GitHub shorthand qualifies.
func IsLocalPath(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && !IsGitURL(s) && !IsGitHubShorthand(s)
}

// ParseSource classifies s. The checks run SSH, HTTPS, shorthand, local, and
// the first match wins. Surrounding whitespace is ignored.
func ParseSource(s string) SourceDescriptor {
	s = strings.TrimSpace(s)

	switch {
	case isSSHGitURL(s), isHTTPSGitURL(s):
		return SourceDescriptor{Kind: SourceKindGit, URL: s}
	case IsGitHubShorthand(s):
		return SourceDescriptor{Kind: SourceKindGit, URL: githubBaseURL + s}
	default:
		return SourceDescriptor{Kind: SourceKindLocal, Path: s}
	}
}

// ValidateSource rejects empty input and classifies everything else.
func ValidateSource(s string) (SourceDescriptor, error) {
	if strings.TrimSpace(s) == "" {
		return SourceDescriptor{}, newValidationError(FieldSource, s, "source cannot be empty")
	}
	return ParseSource(s), nil
}

func isSSHGitURL(s string) bool {
	return sshGitURLRegex.MatchString(s)
}

func isHTTPSGitURL(s string) bool {
	return httpsGitURLRegex.MatchString(s)
}
