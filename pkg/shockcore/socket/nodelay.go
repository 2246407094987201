//go:build unix

package socket

import (
	"net"

	"golang.org/x/sys/unix"
)

// LazyEnableNoDelay sets TCP_NODELAY on conn. The connection engine calls
// this once, on a connection's first transition into its keepalive-reuse
// state rather than at accept time — mirroring nginx unit's lazy enabling of
// TCP_NODELAY only once a connection proves it will be reused, instead of
// paying the setsockopt cost on every accepted connection up front.
//
// Non-TCP connections are a no-op.
func LazyEnableNoDelay(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return err
	}

	var setErr error
	err = rawConn.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	})
	if err != nil {
		return err
	}
	return setErr
}
