package payload

import "testing"

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg jfif", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, "image/jpeg"},
		{"jpeg exif", []byte{0xff, 0xd8, 0xff, 0xe1, 0x00, 0x10, 'E', 'x', 'i', 'f'}, "image/jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}, "image/png"},
		{"gif87a", []byte("GIF87a\x01\x00"), "image/gif"},
		{"gif89a", []byte("GIF89a\x01\x00"), "image/gif"},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 "), "image/webp"},
		{"riff but not webp", []byte("RIFF\x10\x00\x00\x00WAVEfmt "), FallbackMIME},
		{"bmp", []byte("BM\x3a\x00\x00\x00"), "image/bmp"},
		{"tiff little endian", []byte{'I', 'I', 0x2a, 0x00, 0x08}, "image/tiff"},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2a, 0x00}, "image/tiff"},
		{"truncated png", []byte{0x89, 'P', 'N'}, FallbackMIME},
		{"text", []byte("hello world"), FallbackMIME},
		{"empty", nil, FallbackMIME},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveMIMEDeclaredWins(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0}

	if got := ResolveMIME(jpeg, "image/png"); got != "image/png" {
		t.Errorf("ResolveMIME(jpeg, image/png) = %q, want image/png", got)
	}
	if got := ResolveMIME([]byte("garbage"), "image/jpg"); got != "image/jpg" {
		t.Errorf("ResolveMIME(garbage, image/jpg) = %q, want image/jpg unchanged", got)
	}
	if got := ResolveMIME(jpeg, ""); got != "image/jpeg" {
		t.Errorf("ResolveMIME(jpeg, \"\") = %q, want image/jpeg", got)
	}
}

func TestImageFormatString(t *testing.T) {
	if FormatUnknown.String() != "unknown" {
		t.Errorf("FormatUnknown.String() = %q", FormatUnknown.String())
	}
	if FormatUnknown.MIME() != FallbackMIME {
		t.Errorf("FormatUnknown.MIME() = %q, want %q", FormatUnknown.MIME(), FallbackMIME)
	}
	if FormatWEBP.MIME() != "image/webp" {
		t.Errorf("FormatWEBP.MIME() = %q", FormatWEBP.MIME())
	}
}
