package board

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/term"
	"golang.org/x/sys/unix"
)

// UART wraps a real serial port as an io.Writer trace sink, the role
// bsp.c's MY_PRINTF macro played when wired to a physical debug UART
// rather than a semihosted console. RTS/DTR are exposed separately
// since a board's reset/boot-select lines are often wired through
// them, the same TIOCM ioctl pattern a PTT driver uses for its own
// pair of modem control lines.
type UART struct {
	t  *term.Term
	bw *bufio.Writer
}

// OpenUART opens path (e.g. "/dev/ttyUSB0") at the given baud rate in
// raw mode with no flow control, matching a typical microcontroller
// debug console.
func OpenUART(path string, baud int) (*UART, error) {
	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("board: open UART %s: %w", path, err)
	}
	return &UART{t: t, bw: bufio.NewWriter(t)}, nil
}

func (u *UART) Write(p []byte) (int, error) {
	n, err := u.bw.Write(p)
	if err != nil {
		return n, err
	}
	return n, u.bw.Flush()
}

func (u *UART) Close() error { return u.t.Close() }

// SetRTS raises or lowers the RTS control line via a TIOCM ioctl,
// useful when a board's reset line is wired through RTS the way many
// USB-serial bootloader adapters do it.
func (u *UART) SetRTS(on bool) error { return u.setModemBit(unix.TIOCM_RTS, on) }

// SetDTR raises or lowers the DTR control line, often wired to a
// board's BOOT/ISP select pin.
func (u *UART) SetDTR(on bool) error { return u.setModemBit(unix.TIOCM_DTR, on) }

func (u *UART) setModemBit(bit int, on bool) error {
	fd := int(u.t.Fd())
	bits, err := unix.IoctlGetInt(fd, unix.TIOCMGET)
	if err != nil {
		return fmt.Errorf("board: TIOCMGET: %w", err)
	}
	if on {
		bits |= bit
	} else {
		bits &^= bit
	}
	return unix.IoctlSetPointerInt(fd, unix.TIOCMSET, bits)
}

var _ io.Writer = (*UART)(nil)
