package payload

import "bytes"

// FallbackMIME is used when the caller declared nothing and no signature matched.
const FallbackMIME = "application/octet-stream"

// ImageFormat is one of the recognised image signatures.
type ImageFormat int

const (
	FormatUnknown ImageFormat = iota
	FormatJPEG
	FormatPNG
	FormatGIF
	FormatWEBP
	FormatBMP
	FormatTIFF
)

var (
	pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegPrefix   = []byte{0xff, 0xd8, 0xff}
	gif87a       = []byte("GIF87a")
	gif89a       = []byte("GIF89a")
	tiffLE       = []byte{'I', 'I', 0x2a, 0x00}
	tiffBE       = []byte{'M', 'M', 0x00, 0x2a}
)

func (f ImageFormat) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatGIF:
		return "gif"
	case FormatWEBP:
		return "webp"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// MIME returns image/<format>, or FallbackMIME for an unknown format.
func (f ImageFormat) MIME() string {
	if f == FormatUnknown {
		return FallbackMIME
	}
	return "image/" + f.String()
}

// DetectFormat matches the leading bytes against the known signatures.
func DetectFormat(data []byte) ImageFormat {
	switch {
	case bytes.HasPrefix(data, jpegPrefix):
		return FormatJPEG
	case bytes.HasPrefix(data, pngSignature):
		return FormatPNG
	case bytes.HasPrefix(data, gif87a), bytes.HasPrefix(data, gif89a):
		return FormatGIF
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWEBP
	case bytes.HasPrefix(data, []byte("BM")):
		return FormatBMP
	case bytes.HasPrefix(data, tiffLE), bytes.HasPrefix(data, tiffBE):
		return FormatTIFF
	default:
		return FormatUnknown
	}
}

// Sniff resolves the MIME type of decoded image bytes.
func Sniff(data []byte) string {
	return DetectFormat(data).MIME()
}

// ResolveMIME returns declared verbatim when it is non-empty, otherwise the sniffed type.
func ResolveMIME(data []byte, declared string) string {
	if declared != "" {
		return declared
	}
	return Sniff(data)
}
