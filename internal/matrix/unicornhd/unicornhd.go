// Package unicornhd drives the Pimoroni Unicorn HAT HD, a 16x16 RGB LED
// matrix fed over SPI.
//
// Each frame is one SPI transaction: a start-of-frame byte followed by
// 16*16*3 colour bytes in column-major order, already scaled by the
// brightness.
package unicornhd

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"cloudpico-matrix/internal/matrix"
)

const (
	startOfFrame = 0x72
	frequency    = 9 * physic.MegaHertz

	width  = matrix.Width
	height = matrix.Height
)

// Dev is a Unicorn HAT HD attached to an SPI connection.
type Dev struct {
	conn       spi.Conn
	closer     spi.PortCloser
	buf        *matrix.Buffer
	brightness float64
	rotation   int
	tx         []byte
}

// Open initializes periph, opens the named SPI port ("" picks the first one)
// and connects at 9MHz mode 0.
func Open(port string) (*Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("spi open %q: %w", port, err)
	}
	c, err := p.Connect(frequency, spi.Mode0, 8)
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("spi connect: %w", err)
	}
	d := New(c)
	d.closer = p
	slog.Info("unicornhd: connected", "port", p.String(), "freq", frequency.String())
	return d, nil
}

// New returns a Dev writing to an already connected SPI conn.
func New(c spi.Conn) *Dev {
	return &Dev{
		conn:       c,
		buf:        matrix.NewBuffer(width, height),
		brightness: 0.5,
		tx:         make([]byte, 1+width*height*3),
	}
}

func (d *Dev) Shape() (int, int) { return width, height }

func (d *Dev) Clear() { d.buf.Clear() }

func (d *Dev) SetPixel(x, y int, c color.RGBA) { d.buf.SetPixel(x, y, c) }

// SetBrightness clamps b to [0, 1].
func (d *Dev) SetBrightness(b float64) {
	switch {
	case b < 0:
		b = 0
	case b > 1:
		b = 1
	}
	d.brightness = b
}

func (d *Dev) SetRotation(deg int) error {
	switch deg {
	case 0, 90, 180, 270:
		d.rotation = deg
		return nil
	default:
		return fmt.Errorf("unicornhd: unsupported rotation %d", deg)
	}
}

// Show writes the buffer to the panel.
func (d *Dev) Show() error {
	d.tx[0] = startOfFrame
	i := 1
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			sx, sy := sourceOf(x, y, d.rotation)
			c := d.buf.At(sx, sy)
			d.tx[i] = scale(c.R, d.brightness)
			d.tx[i+1] = scale(c.G, d.brightness)
			d.tx[i+2] = scale(c.B, d.brightness)
			i += 3
		}
	}
	if err := d.conn.Tx(d.tx, nil); err != nil {
		return fmt.Errorf("unicornhd: spi tx: %w", err)
	}
	return nil
}

// Off blanks the panel and releases the SPI port.
func (d *Dev) Off() error {
	d.buf.Clear()
	err := d.Show()
	if d.closer != nil {
		err = errors.Join(err, d.closer.Close())
		d.closer = nil
	}
	return err
}

// sourceOf maps an output position to the buffer position that lands there
// after rotating the grid counter-clockwise by deg.
func sourceOf(x, y, deg int) (int, int) {
	switch deg {
	case 90:
		return y, width - 1 - x
	case 180:
		return width - 1 - x, height - 1 - y
	case 270:
		return height - 1 - y, x
	default:
		return x, y
	}
}

func scale(v uint8, b float64) uint8 {
	return uint8(float64(v) * b)
}
