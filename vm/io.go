package vm

import (
	"bufio"
	goIO "io"
	"log"
	"os"
	"sync"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Console is the VM's keyboard and display.
type Console struct {
	in  *bufio.Reader
	out *bufio.Writer
	fd  int // -1 when in is not a file descriptor
}

// NewConsole wraps in and out. When in is an *os.File, key polling asks
// the kernel whether input is pending instead of reading ahead.
func NewConsole(in goIO.Reader, out goIO.Writer) *Console {
	c := &Console{
		in:  bufio.NewReader(in),
		out: bufio.NewWriter(out),
		fd:  -1,
	}
	if file, ok := in.(*os.File); ok {
		c.fd = int(file.Fd())
	}
	return c
}

// KeyReady reports whether ReadKey would return without blocking.
func (c *Console) KeyReady() bool {
	if c.in.Buffered() > 0 {
		return true
	}
	if c.fd >= 0 && !fdReadable(c.fd) {
		return false
	}
	_, err := c.in.Peek(1)
	return err == nil
}

// ReadKey blocks until one byte of input is available.
func (c *Console) ReadKey() (byte, error) {
	key, err := c.in.ReadByte()
	if err == goIO.EOF {
		err = ErrInputClosed
	}
	return key, err
}

func (c *Console) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func (c *Console) WriteByte(b byte) error {
	return c.out.WriteByte(b)
}

func (c *Console) Flush() error {
	return c.out.Flush()
}

// checkKey is the non-blocking keyboard poll behind KBSR.
func (c *Console) checkKey() (byte, bool) {
	if !c.KeyReady() {
		return 0, false
	}
	key, err := c.ReadKey()
	return key, err == nil
}

// fdReadable polls fd with a zero timeout.
func fdReadable(fd int) bool {
	var readfds unix.FdSet
	readfds.Zero()
	readfds.Set(fd)
	timeout := unix.Timeval{}
	n, err := unix.Select(fd+1, &readfds, nil, nil, &timeout)
	return err == nil && n > 0
}

// Terminal holds the settings of a terminal switched out of canonical and
// echo mode. Restore puts them back; it is safe to call more than once and
// from any goroutine.
type Terminal struct {
	fd                     uintptr
	originalTerminalConfig unix.Termios
	raw                    bool
	restore                sync.Once
}

// EnableRawMode turns off line buffering and echo on in. Inputs that are
// not terminals are left untouched and yield a Terminal that does nothing.
func EnableRawMode(in goIO.Reader) (*Terminal, error) {
	t := &Terminal{}
	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return t, nil
	}

	t.fd = file.Fd()
	if err := termios.Tcgetattr(t.fd, &t.originalTerminalConfig); err != nil {
		return nil, err
	}
	newTermios := t.originalTerminalConfig
	newTermios.Lflag &^= unix.ICANON | unix.ECHO
	if err := termios.Tcsetattr(t.fd, termios.TCSANOW, &newTermios); err != nil {
		return nil, err
	}
	t.raw = true
	log.Printf("enabling raw mode...")
	return t, nil
}

// Raw reports whether the terminal settings were changed.
func (t *Terminal) Raw() bool {
	return t.raw
}

func (t *Terminal) Restore() (err error) {
	t.restore.Do(func() {
		if !t.raw {
			return
		}
		log.Printf("disabling raw mode...")
		err = termios.Tcsetattr(t.fd, termios.TCSANOW, &t.originalTerminalConfig)
	})
	return
}
