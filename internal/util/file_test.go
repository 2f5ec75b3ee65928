package util

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		filename string
		mime     string
		want     bool
	}{
		{"lesson.mp4", "video/mp4", true},
		{"lesson.MKV", MimeOctetStream, true},
		{"lesson.webm", "video/webm", true},
		{"lesson.mp4", "text/plain; charset=utf-8", false},
		{"lesson.exe", MimeOctetStream, false},
		{"lesson", "video/mp4", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsVideoFile(tt.filename, tt.mime), "%s %s", tt.filename, tt.mime)
	}
}

func TestSniffMimeType(t *testing.T) {
	mp4 := append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypmp42\x00\x00\x00\x00mp41isom")...)

	mime, err := SniffMimeType(bytes.NewReader(mp4), []string{MimeVideo})
	assert.NoError(t, err)
	assert.Equal(t, "video/mp4", mime)

	mime, err = SniffMimeType(bytes.NewReader([]byte("hello")), []string{MimeVideo})
	assert.Error(t, err)
	assert.Contains(t, mime, "text/plain")
}
