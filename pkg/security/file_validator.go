package security

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Detected file extension
	DetectedMIME string // Detected MIME type
	Error        string // Error message if validation failed
}

// Magic byte signatures for allowed image types
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".webp": {{0x52, 0x49, 0x46, 0x46}},                                                   // RIFF header
}

// mimeByExtension pins each extension to the MIME type its content must sniff as
var mimeByExtension = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ValidateImage performs 3-layer validation on an uploaded avatar:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. Sniffed MIME type must match the extension
func ValidateImage(filename string, data []byte) FileValidationResult {
	detected := mimetype.Detect(data)
	result := FileValidationResult{DetectedMIME: detected.String()}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	wantMIME, ok := mimeByExtension[ext]
	if !ok {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension (potential file spoofing detected)"
		return result
	}

	// APNG sniffs as a child of image/png, so walk the parents.
	matched := false
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(wantMIME) {
			matched = true
			break
		}
	}
	if !matched {
		result.Error = "MIME type not allowed: " + detected.String()
		return result
	}

	result.Valid = true
	return result
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false // File too small to validate
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// ValidateImageExtension checks only the extension (for quick pre-validation)
func ValidateImageExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if _, ok := mimeByExtension[ext]; !ok {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}
