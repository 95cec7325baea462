package sessionstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/kasyus/kasyus-go/session"
	"github.com/kasyus/kasyus-go/users"
)

const (
	tokenFileName = "token"
	userFileName  = "user.json"
)

var _ session.Store = (*File)(nil)

// File persists the session under a data directory, one file per entry:
// the raw token and the JSON-encoded profile. Files are written 0600 since
// the token is a live credential.
type File struct {
	dir string
}

// NewFile returns a file-backed store rooted at dir. The directory is
// created lazily on the first write.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (s *File) Read(_ context.Context) (string, *users.User, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, tokenFileName))
	if os.IsNotExist(err) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "[File.Read] token file")
	}
	token := string(raw)

	rawUser, err := os.ReadFile(filepath.Join(s.dir, userFileName))
	if os.IsNotExist(err) {
		return token, nil, nil
	}
	if err != nil {
		return token, nil, errors.Wrap(err, "[File.Read] user file")
	}

	var user users.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		// A corrupt cached profile is not fatal; the verifier re-fetches it.
		return token, nil, nil
	}
	return token, &user, nil
}

func (s *File) WriteToken(_ context.Context, token string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "[File.WriteToken] creating data dir")
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFileName), []byte(token), 0o600); err != nil {
		return errors.Wrap(err, "[File.WriteToken] writing token")
	}
	return nil
}

func (s *File) WriteUser(_ context.Context, user *users.User) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return errors.Wrap(err, "[File.WriteUser] creating data dir")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "[File.WriteUser] encoding profile")
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFileName), data, 0o600); err != nil {
		return errors.Wrap(err, "[File.WriteUser] writing profile")
	}
	return nil
}

func (s *File) Clear(_ context.Context) error {
	for _, name := range []string{tokenFileName, userFileName} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "[File.Clear] removing %s", name)
		}
	}
	return nil
}
