//go:build !unix

package socket

import "net"

// LazyEnableNoDelay is the non-unix fallback: Go's net package already
// enables TCP_NODELAY by default on platforms without a raw-syscall path
// wired here, so there is nothing additional to do.
func LazyEnableNoDelay(conn net.Conn) error {
	return nil
}
