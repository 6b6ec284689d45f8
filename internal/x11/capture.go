package x11

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/xgb/xproto"
)

// CaptureMonitor grabs the monitor's current pixels from the root window and
// writes them as a PNG under dir. Returns the file path.
func (c *Connection) CaptureMonitor(mon *Monitor, dir string) (string, error) {
	reply, err := xproto.GetImage(
		c.XUtil.Conn(),
		xproto.ImageFormatZPixmap,
		xproto.Drawable(c.Root),
		int16(mon.X), int16(mon.Y),
		uint16(mon.Width), uint16(mon.Height),
		0xffffffff,
	).Reply()
	if err != nil {
		return "", fmt.Errorf("get image: %w", err)
	}

	img, err := imageFromZPixmap(reply, mon.Width, mon.Height)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create capture dir: %w", err)
	}

	path := filepath.Join(dir, time.Now().Format("capture-20060102-150405.png"))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("create capture file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return path, nil
}

// imageFromZPixmap converts 24/32-bit ZPixmap data (BGRx byte order on
// little-endian servers, which is the practical case) into an NRGBA image.
func imageFromZPixmap(reply *xproto.GetImageReply, width, height int) (*image.NRGBA, error) {
	if reply.Depth != 24 && reply.Depth != 32 {
		return nil, fmt.Errorf("unsupported root depth %d", reply.Depth)
	}
	if len(reply.Data) < width*height*4 {
		return nil, fmt.Errorf("short image data: %d bytes for %dx%d", len(reply.Data), width, height)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			src := (y*width + x) * 4
			dst := img.PixOffset(x, y)
			img.Pix[dst+0] = reply.Data[src+2] // R
			img.Pix[dst+1] = reply.Data[src+1] // G
			img.Pix[dst+2] = reply.Data[src+0] // B
			img.Pix[dst+3] = 0xff
		}
	}
	return img, nil
}
