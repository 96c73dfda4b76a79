package pdfparse

import (
	"bytes"
	"image"
	"image/png"

	// Formats backends are known to emit. TIFF and WebP come through
	// golang.org/x/image since stdlib image only registers GIF/JPEG/PNG.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// decodeImage decodes backend-supplied image bytes into an ImageElement,
// keeping the original encoding alongside the pixels.
func decodeImage(data []byte, meta Metadata) (ImageElement, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ImageElement{}, err
	}
	return ImageElement{
		Image:    img,
		Data:     data,
		Format:   format,
		Metadata: meta,
	}, nil
}

// encodePNG renders decoded pixels back to PNG bytes. Used for page
// rasterizations that exist only as an in-memory image.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
