package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/sirupsen/logrus"

	_ "golang.org/x/image/webp"
)

const defaultJPEGQuality = 75

type Options struct {
	MaxImages          int
	MaxImageBytes      int64
	MaxCompositePixels int64
	JPEGQuality        int
	AutoOrient         bool
}

type Compositor interface {
	Compose(ctx context.Context, images []entity.RawImage) (*image.NRGBA, error)
	Encode(img image.Image) (*bytes.Buffer, error)
}

type imageCompositor struct {
	opts Options
}

func NewCompositor(opts Options) Compositor {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = defaultJPEGQuality
	}
	return &imageCompositor{opts: opts}
}

// Compose decodes images in order and stacks them vertically on an opaque
// canvas, each one centred horizontally. Nothing is cropped or resized.
func (c *imageCompositor) Compose(ctx context.Context, images []entity.RawImage) (*image.NRGBA, error) {
	if len(images) == 0 {
		return nil, entity.ErrEmptyInput
	}
	if c.opts.MaxImages > 0 && len(images) > c.opts.MaxImages {
		return nil, fmt.Errorf("%w: got %d, maximum is %d", entity.ErrTooManyImages, len(images), c.opts.MaxImages)
	}

	decoded := make([]image.Image, 0, len(images))
	sizes := make([]image.Point, 0, len(images))
	for i, raw := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := c.decode(i, raw)
		if err != nil {
			return nil, err
		}
		decoded = append(decoded, img)
		sizes = append(sizes, img.Bounds().Size())
	}

	layout := NewLayout(sizes)
	if layout.Width == 0 || layout.Height == 0 {
		return nil, fmt.Errorf("%w: composite has zero area", entity.ErrDecode)
	}
	if c.opts.MaxCompositePixels > 0 && layout.Pixels() > c.opts.MaxCompositePixels {
		return nil, fmt.Errorf("%w: %dx%d", entity.ErrCompositeTooLarge, layout.Width, layout.Height)
	}

	canvas := imaging.New(layout.Width, layout.Height, color.Black)
	for i, img := range decoded {
		canvas = imaging.Paste(canvas, img, layout.Offsets[i])
	}
	makeOpaque(canvas)

	logrus.WithFields(logrus.Fields{
		"images": len(decoded),
		"width":  layout.Width,
		"height": layout.Height,
	}).Debug("composite image built")

	return canvas, nil
}

func (c *imageCompositor) Encode(img image.Image) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(c.opts.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrEncode, err)
	}
	return buf, nil
}

func (c *imageCompositor) decode(index int, raw entity.RawImage) (image.Image, error) {
	if raw.Open == nil {
		return nil, fmt.Errorf("image %d has no content", index)
	}
	src, err := raw.Open()
	if err != nil {
		return nil, fmt.Errorf("open image %d: %w", index, err)
	}
	defer src.Close()

	var r io.Reader = src
	if c.opts.MaxImageBytes > 0 {
		r = io.LimitReader(src, c.opts.MaxImageBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image %d: %w", index, err)
	}
	if c.opts.MaxImageBytes > 0 && int64(len(data)) > c.opts.MaxImageBytes {
		return nil, fmt.Errorf("%w: %q is larger than %d bytes", entity.ErrImageTooLarge, raw.Filename, c.opts.MaxImageBytes)
	}

	// header check first so oversized images are rejected before allocation
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &entity.DecodeError{Index: index, Filename: raw.Filename, Err: err}
	}
	if c.opts.MaxCompositePixels > 0 && int64(cfg.Width)*int64(cfg.Height) > c.opts.MaxCompositePixels {
		return nil, fmt.Errorf("%w: %q is %dx%d", entity.ErrCompositeTooLarge, raw.Filename, cfg.Width, cfg.Height)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(c.opts.AutoOrient))
	if err != nil {
		return nil, &entity.DecodeError{Index: index, Filename: raw.Filename, Err: err}
	}
	return img, nil
}

func makeOpaque(img *image.NRGBA) {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
}
