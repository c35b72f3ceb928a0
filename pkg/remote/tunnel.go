package remote

import (
	"fmt"
	"io"
	"net"
	"sync"
)

// Tunnel forwards a local TCP port to an address inside the SSH host.
// Used to reach SONiC's Redis (127.0.0.1:6379), which has no
// authentication and is not exposed outside the device.
type Tunnel struct {
	localAddr  string // "127.0.0.1:<port>"
	remoteAddr string
	session    *Session
	listener   net.Listener
	done       chan struct{}
	wg         sync.WaitGroup
}

// Forward opens a local listener on a random port; connections to it are
// forwarded to remoteAddr inside the SSH host. The tunnel borrows the
// session's transport — closing the tunnel does not close the session.
func (s *Session) Forward(remoteAddr string) (*Tunnel, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("local listen: %w", err)
	}

	t := &Tunnel{
		localAddr:  listener.Addr().String(),
		remoteAddr: remoteAddr,
		session:    s,
		listener:   listener,
		done:       make(chan struct{}),
	}

	t.wg.Add(1)
	go t.acceptLoop()

	return t, nil
}

// LocalAddr returns the local address (e.g. "127.0.0.1:54321") that
// forwards to remoteAddr inside the SSH host.
func (t *Tunnel) LocalAddr() string {
	return t.localAddr
}

// Close stops the listener and waits for forwarding goroutines to finish.
func (t *Tunnel) Close() error {
	close(t.done)
	t.listener.Close()
	t.wg.Wait()
	return nil
}

func (t *Tunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *Tunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.session.client.Dial("tcp", t.remoteAddr)
	if err != nil {
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	<-done
}
