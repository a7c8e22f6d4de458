package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	_ "golang.org/x/image/webp" // register decoder
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// ImageType is an accepted upload format
type ImageType struct {
	MIME string
	Ext  string
	// format is the name image.DecodeConfig reports for this type
	format string
}

var (
	ImageJPEG = ImageType{MIME: "image/jpeg", Ext: ".jpg", format: "jpeg"}
	ImagePNG  = ImageType{MIME: "image/png", Ext: ".png", format: "png"}
	ImageGIF  = ImageType{MIME: "image/gif", Ext: ".gif", format: "gif"}
	ImageWebP = ImageType{MIME: "image/webp", Ext: ".webp", format: "webp"}
)

type magicHeader struct {
	offset int
	magic  string
}

var imageHeaders = []struct {
	typ     ImageType
	headers [][]magicHeader // any one entry matching (all parts) is enough
}{
	{ImageJPEG, [][]magicHeader{{{0, "\xFF\xD8\xFF"}}}},
	{ImagePNG, [][]magicHeader{{{0, "\x89PNG\r\n\x1A\n"}}}},
	{ImageGIF, [][]magicHeader{{{0, "GIF87a"}}, {{0, "GIF89a"}}}},
	{ImageWebP, [][]magicHeader{{{0, "RIFF"}, {8, "WEBP"}}}},
}

func matches(data []byte, parts []magicHeader) bool {
	for _, p := range parts {
		end := p.offset + len(p.magic)
		if len(data) < end || string(data[p.offset:end]) != p.magic {
			return false
		}
	}
	return true
}

// DetectImage identifies data by its magic bytes and checks that the image
// header actually decodes. The client-supplied name and content type are
// never consulted.
func DetectImage(data []byte) (ImageType, error) {
	for _, candidate := range imageHeaders {
		for _, parts := range candidate.headers {
			if !matches(data, parts) {
				continue
			}

			_, format, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				return ImageType{}, fmt.Errorf("%w: %s header does not decode: %w", ErrUnsupportedImage, candidate.typ.format, err)
			}
			if format != candidate.typ.format {
				return ImageType{}, fmt.Errorf("%w: expected %s, decoded %s", ErrUnsupportedImage, candidate.typ.format, format)
			}
			return candidate.typ, nil
		}
	}
	return ImageType{}, ErrUnsupportedImage
}
