//go:build unix

// Package launch allocates the PTY, forks the slave shell, and carries it
// through the two-phase handshake described in the handshake package.
package launch

import (
	"golang.org/x/sys/unix"
)

// Defaults mirrors the subset of termios flags the slave applies to its own
// controlling terminal right after the master hands control back via SIGUSR1.
// Unlike generic raw-mode setup, these flags are layered onto whatever the
// PTY driver already configured — they tune editing behavior, not strip it.
type Defaults struct {
	// Erase is the byte bound to VERASE. The reference slave used ASCII DEL.
	Erase byte
	// ExtraIflag / ExtraLflag are OR'd onto the slave's termios after erase
	// is applied. The reference slave sets IXANY|IMAXBEL and
	// ECHOE|ECHOK|ECHOCTL|ECHOKE respectively.
	ExtraIflag uint32
	ExtraLflag uint32
}

// StandardDefaults matches the termios tweaks the reference slave setup applies
// when no bridgecfg override is supplied.
func StandardDefaults() Defaults {
	return Defaults{
		Erase:      0x7f, // DEL
		ExtraIflag: unix.IXANY | unix.IMAXBEL,
		ExtraLflag: unix.ECHOE | unix.ECHOK | unix.ECHOCTL | unix.ECHOKE,
	}
}

// Apply layers d onto the termios currently active on fd (expected to be the
// slave's own stdin once it has become the controlling terminal).
func (d Defaults) Apply(fd int) error {
	t, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return err
	}
	t.Cc[unix.VERASE] = d.Erase
	t.Iflag |= d.ExtraIflag
	t.Lflag |= d.ExtraLflag
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, t)
}

// IsTerminal reports whether fd refers to a terminal device.
func IsTerminal(fd int) bool {
	_, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	return err == nil
}
