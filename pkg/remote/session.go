package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/fabriclab-net/fabriclab/pkg/util"
)

// Result is the captured outcome of one executed command (or batch).
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandRunner is the interface the scenario driver executes against.
// *Session implements it; tests substitute a fake.
type CommandRunner interface {
	Run(ctx context.Context, command string, timeout time.Duration) (Result, error)
	RunBatch(ctx context.Context, batch Batch, timeout time.Duration) (Result, error)
}

// Session is an open SSH connection to a target. One SSH channel is created
// per command (stateless per-call); the connection itself is reused.
type Session struct {
	client *ssh.Client
	target Target
}

// Connect establishes the SSH transport to the target. Failures (dial,
// auth, negotiation) are reported as *util.ConnectError with a kind.
func Connect(target Target) (*Session, error) {
	auth, err := target.Credential.authMethod()
	if err != nil {
		return nil, &util.ConnectError{Target: target.String(), Kind: util.ConnectAuth, Err: err}
	}

	config := &ssh.ClientConfig{
		User: target.User,
		Auth: []ssh.AuthMethod{auth},
		// Lab/test environment — production would need known_hosts verification.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         target.ConnectTimeout,
	}

	util.Warnf("SSH to %s: host key verification disabled (InsecureIgnoreHostKey)", target.Addr())
	client, err := ssh.Dial("tcp", target.Addr(), config)
	if err != nil {
		return nil, util.NewConnectError(target.String(), err)
	}

	util.WithDevice(target.Host).Debugf("connected as %s", target.User)
	return &Session{client: client, target: target}, nil
}

// Target returns the target this session is connected to.
func (s *Session) Target() Target { return s.target }

// Close tears down the SSH transport.
func (s *Session) Close() error {
	return s.client.Close()
}

// Run executes exactly one command in the remote shell, blocking until it
// completes or timeout elapses. A zero timeout means no local limit.
//
// On timeout the session channel is killed and *util.TimeoutError is
// returned; the remote side may or may not have finished the command.
// A non-zero exit status returns the captured Result alongside
// *util.CommandError.
func (s *Session) Run(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return Result{}, util.NewConnectError(s.target.String(), err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	util.WithDevice(s.target.Host).Debugf("exec: %s", command)
	if err := sess.Start(command); err != nil {
		return Result{}, util.NewConnectError(s.target.String(), err)
	}

	done := make(chan error, 1)
	go func() {
		done <- sess.Wait()
	}()

	select {
	case <-ctx.Done():
		sess.Signal(ssh.SIGKILL)
		sess.Close()
		<-done
		res := Result{ExitCode: -1, Stdout: stdout.String(), Stderr: stderr.String()}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return res, &util.TimeoutError{Command: command, Timeout: timeout}
		}
		return res, fmt.Errorf("exec %q: %w", command, ctx.Err())
	case err := <-done:
		res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err != nil {
			var exitErr *ssh.ExitError
			if errors.As(err, &exitErr) {
				res.ExitCode = exitErr.ExitStatus()
				return res, &util.CommandError{
					Command:  command,
					ExitCode: res.ExitCode,
					Stderr:   res.Stderr,
				}
			}
			// Channel died without an exit status: transport-level failure.
			return res, util.NewConnectError(s.target.String(), err)
		}
		return res, nil
	}
}

// RunBatch executes an ordered command batch as a single remote invocation.
// One aggregate Result is returned; a non-zero exit means at least one
// sub-command failed, with no per-command attribution. Side effects of
// sub-commands that ran before the failure are not rolled back.
func (s *Session) RunBatch(ctx context.Context, batch Batch, timeout time.Duration) (Result, error) {
	if batch.Empty() {
		return Result{}, nil
	}
	return s.Run(ctx, batch.Render(), timeout)
}
