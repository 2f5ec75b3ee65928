package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffMimeType reads the first 512 bytes of reader and checks the detected
// type against allowedTypes, which may be prefixes such as "video/".
func SniffMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsVideoFile accepts a file whose sniffed type is video, or whose sniffed
// type is generic binary but whose extension is a known video container.
// Containers such as mkv and wmv are not recognised by content sniffing.
func IsVideoFile(filename, mimeType string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	known := false
	for _, allowed := range AllowedVideoExtensions {
		if ext == allowed {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	return strings.HasPrefix(mimeType, MimeVideo) || mimeType == MimeOctetStream
}
