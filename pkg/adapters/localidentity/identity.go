// Package localidentity resolves the job's user from local configuration.
package localidentity

import (
	"context"
	"os"
	"strings"

	"github.com/user/screenreel/pkg/pipeline"
	"github.com/user/screenreel/pkg/ports"
)

// EnvUser is the environment variable consulted by FromEnv.
const EnvUser = "SCREENREEL_USER"

// Static always reports the same user. An empty user is signed out.
type Static struct {
	User string
}

// New creates a Static identity.
func New(user string) *Static {
	return &Static{User: strings.TrimSpace(user)}
}

// FromEnv uses explicit when set, then SCREENREEL_USER, then the OS user name.
func FromEnv(explicit string) *Static {
	for _, u := range []string{explicit, os.Getenv(EnvUser), os.Getenv("USER"), os.Getenv("USERNAME")} {
		if strings.TrimSpace(u) != "" {
			return New(u)
		}
	}
	return New("")
}

// CurrentUser returns the configured user.
func (s *Static) CurrentUser(ctx context.Context) (string, error) {
	if s.User == "" {
		return "", pipeline.ErrAuthenticationRequired
	}
	return s.User, nil
}

var _ ports.Identity = (*Static)(nil)
