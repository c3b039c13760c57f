package blogcms_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blogcms/blogcms/pkg/blogcms"
)

// Real file signatures so content sniffing agrees with the declared type.
var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n")
	gifHeader  = []byte("GIF89a")
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0}
)

func padded(header []byte) []byte {
	return append(append([]byte{}, header...), make([]byte, 32)...)
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name        string
		upload      blogcms.ImageUpload
		wantErr     error
		expectValid bool
	}{
		{
			name: "png",
			upload: blogcms.ImageUpload{
				FileName:    "photo.png",
				ContentType: "image/png",
				Data:        padded(pngHeader),
			},
			expectValid: true,
		},
		{
			name: "jpeg",
			upload: blogcms.ImageUpload{
				FileName:    "photo.jpg",
				ContentType: "image/jpeg",
				Data:        padded(jpegHeader),
			},
			expectValid: true,
		},
		{
			name: "gif with parameterized content type",
			upload: blogcms.ImageUpload{
				FileName:    "anim.gif",
				ContentType: "image/gif; charset=binary",
				Data:        padded(gifHeader),
			},
			expectValid: true,
		},
		{
			name: "no declared content type still sniffed",
			upload: blogcms.ImageUpload{
				FileName: "photo.png",
				Data:     padded(pngHeader),
			},
			expectValid: true,
		},
		{
			name: "oversized",
			upload: blogcms.ImageUpload{
				FileName:    "big.png",
				ContentType: "image/png",
				Data:        append(padded(pngHeader), make([]byte, blogcms.MaxImageBytes)...),
			},
			wantErr: blogcms.ErrPayloadTooLarge,
		},
		{
			name: "disallowed extension",
			upload: blogcms.ImageUpload{
				FileName:    "report.pdf",
				ContentType: "image/png",
				Data:        padded(pngHeader),
			},
			wantErr: blogcms.ErrUnsupportedMedia,
		},
		{
			name: "disallowed declared type",
			upload: blogcms.ImageUpload{
				FileName:    "photo.png",
				ContentType: "application/octet-stream",
				Data:        padded(pngHeader),
			},
			wantErr: blogcms.ErrUnsupportedMedia,
		},
		{
			name: "spoofed content",
			upload: blogcms.ImageUpload{
				FileName:    "photo.png",
				ContentType: "image/png",
				Data:        []byte("#!/bin/sh\nrm -rf /\n"),
			},
			wantErr: blogcms.ErrUnsupportedMedia,
		},
		{
			name: "malformed content type",
			upload: blogcms.ImageUpload{
				FileName:    "photo.png",
				ContentType: ";;",
				Data:        padded(pngHeader),
			},
			wantErr: blogcms.ErrUnsupportedMedia,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := blogcms.ValidateImage(&tt.upload)

			if tt.expectValid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
