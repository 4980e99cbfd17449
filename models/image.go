package models

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/golang/glog"
	"github.com/microcosm-cc/exifutil"
	"github.com/rwcarlsen/goexif/exif"
)

const (
	// ImageGifMimeType is the mime type for GIF images
	ImageGifMimeType string = "image/gif"

	// ImageJpegMimeType is the mime type for JPG images
	ImageJpegMimeType string = "image/jpeg"

	// ImagePngMimeType is the mime type for PNG images
	ImagePngMimeType string = "image/png"
)

// ImageNormaliser rotates JPEG avatars according to their EXIF orientation
// and shrinks avatars that do not fit within MaxWidth x MaxHeight. A zero
// bound is not enforced.
type ImageNormaliser struct {
	MaxWidth  int
	MaxHeight int
}

// Enabled returns true if the normaliser would resize anything
func (n ImageNormaliser) Enabled() bool {
	return n.MaxWidth > 0 || n.MaxHeight > 0
}

// Normalise returns the processed image and its mime type. Data that does not
// decode as GIF, JPEG or PNG is returned unchanged, avatar services may serve
// other formats and those are still cached.
func (n ImageNormaliser) Normalise(data []byte, mimeType string) ([]byte, string) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if glog.V(2) {
			glog.Infof("image.DecodeConfig() %+v, caching as is", err)
		}
		return data, mimeType
	}

	width, height := cfg.Width, cfg.Height
	changed := false

	var img image.Image
	if format == "jpeg" {
		if rotated, switched, ok := processExif(data); ok {
			img = rotated
			changed = true
			if switched {
				width, height = height, width
			}
		}
	}

	w, h := n.fit(width, height)
	if w != 0 || h != 0 {
		if img == nil {
			img, _, err = image.Decode(bytes.NewReader(data))
			if err != nil {
				glog.Warningf("image.Decode() %+v", err)
				return data, mimeType
			}
		}
		img = imaging.Resize(img, w, h, imaging.Lanczos)
		changed = true
	}

	if !changed {
		return data, mimeTypeOf(format, mimeType)
	}

	out, outType, err := encodeImage(img, format)
	if err != nil {
		glog.Errorf("encodeImage(%s) %+v", format, err)
		return data, mimeType
	}
	return out, outType
}

// fit returns the target width or height that makes an image fit within the
// bounds while preserving aspect ratio. 0, 0 means no resize is needed.
func (n ImageNormaliser) fit(width int, height int) (int, int) {
	overWidth := n.MaxWidth > 0 && width > n.MaxWidth
	overHeight := n.MaxHeight > 0 && height > n.MaxHeight

	switch {
	case overWidth && overHeight:
		// Whichever side is furthest over its bound decides
		if width*n.MaxHeight >= height*n.MaxWidth {
			return n.MaxWidth, 0
		}
		return 0, n.MaxHeight
	case overWidth:
		return n.MaxWidth, 0
	case overHeight:
		return 0, n.MaxHeight
	}

	return 0, 0
}

// processExif decodes the JPEG rotated and flipped according to its EXIF
// orientation. ok is false if there is nothing to do or the EXIF data cannot
// be read.
func processExif(data []byte) (image.Image, bool, bool) {
	ex, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, false
	}
	tag, err := ex.Get(exif.Orientation)
	if err != nil {
		return nil, false, false
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return nil, false, false
	}

	angle, flipMode, switchDimensions := exifutil.ProcessOrientation(int64(orientation))
	if angle == 0 && flipMode == 0 {
		return nil, false, false
	}

	im, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, false
	}

	if angle != 0 {
		im = exifutil.Rotate(im, angle)
	}

	if flipMode != 0 {
		im = exifutil.Flip(im, flipMode)
	}

	return im, switchDimensions, true
}

func encodeImage(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer

	switch format {
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ImageGifMimeType, nil
	case "jpeg":
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ImageJpegMimeType, nil
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), ImagePngMimeType, nil
	}
}

func mimeTypeOf(format string, fallback string) string {
	switch format {
	case "gif":
		return ImageGifMimeType
	case "jpeg":
		return ImageJpegMimeType
	case "png":
		return ImagePngMimeType
	}
	return fallback
}
