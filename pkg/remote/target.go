// Package remote runs administrative commands on a network device over SSH.
//
// A Session is a scoped resource: once Connect succeeds the caller owns the
// transport and must Close it on every exit path. Commands are executed
// synchronously, one at a time, each in its own SSH channel.
package remote

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/fabriclab-net/fabriclab/pkg/util"
)

// Credential is the authentication material for a Target: a password or a
// private-key file, never both. The zero value means "no credential".
type Credential struct {
	password string
	keyFile  string
}

// PasswordAuth returns a password credential.
func PasswordAuth(secret string) Credential {
	return Credential{password: secret}
}

// KeyFileAuth returns a credential referencing an SSH private-key file.
// The file is read and parsed at connect time, not here.
func KeyFileAuth(path string) Credential {
	return Credential{keyFile: path}
}

// IsZero reports whether no credential was provided.
func (c Credential) IsZero() bool {
	return c.password == "" && c.keyFile == ""
}

// authMethod builds the ssh.AuthMethod for this credential.
func (c Credential) authMethod() (ssh.AuthMethod, error) {
	if c.keyFile != "" {
		data, err := os.ReadFile(c.keyFile)
		if err != nil {
			return nil, fmt.Errorf("reading key file %s: %w", c.keyFile, err)
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			return nil, fmt.Errorf("parsing key file %s: %w", c.keyFile, err)
		}
		return ssh.PublicKeys(signer), nil
	}
	if c.password != "" {
		return ssh.Password(c.password), nil
	}
	return nil, fmt.Errorf("no credential: %w", util.ErrInvalidConfig)
}

// Target identifies the device an invocation runs against. Immutable once
// constructed; built from configuration, never persisted.
type Target struct {
	Host           string
	Port           int
	User           string
	Credential     Credential
	ConnectTimeout time.Duration
	CommandTimeout time.Duration
}

// Addr returns the dial address, defaulting the port to 22.
func (t Target) Addr() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", t.Host, port)
}

// String renders the target as user@host:port for diagnostics.
func (t Target) String() string {
	return fmt.Sprintf("%s@%s", t.User, t.Addr())
}
