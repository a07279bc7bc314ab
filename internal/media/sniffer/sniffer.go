// Package sniffer identifies common image formats from leading bytes.
package sniffer

import "bytes"

// DetectMIME returns the MIME type for a blob whose head matches a
// known image signature, or the empty string.
func DetectMIME(head []byte) string {
	switch {
	case isJPEG(head):
		return "image/jpeg"
	case isPNG(head):
		return "image/png"
	case isGIF(head):
		return "image/gif"
	case isWEBP(head):
		return "image/webp"
	}
	return ""
}

func isJPEG(b []byte) bool {
	return len(b) >= 3 && b[0] == 0xFF && b[1] == 0xD8 && b[2] == 0xFF
}

func isPNG(b []byte) bool {
	return bytes.HasPrefix(b, []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A})
}

func isGIF(b []byte) bool {
	return bytes.HasPrefix(b, []byte("GIF87a")) || bytes.HasPrefix(b, []byte("GIF89a"))
}

func isWEBP(b []byte) bool {
	return len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WEBP"))
}
