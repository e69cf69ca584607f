package board

import (
	"bufio"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// TestUARTWritesReachThePeer exercises the UART sink against a real PTY
// pair instead of a mocked io.Writer, favoring driving the actual
// device API over faking the transport.
func TestUARTWritesReachThePeer(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	defer master.Close()
	defer slave.Close()

	u := &UART{}
	u.bw = bufio.NewWriter(slave)
	defer u.bw.Flush()

	n, err := u.Write([]byte("task switch: idle -> blink\n"))
	require.NoError(t, err)
	require.Equal(t, len("task switch: idle -> blink\n"), n)

	require.NoError(t, master.SetReadDeadline(time.Now().Add(2*time.Second)))
	reader := bufio.NewReader(master)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "task switch: idle -> blink\n", line)
}
