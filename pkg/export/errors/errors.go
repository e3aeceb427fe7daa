package errors

import "errors"

var (
	// Input errors 📥
	ErrInputNotFound = errors.New("❌ source file not found")
	ErrDecode        = errors.New("❌ cannot decode source image")

	// Encoding errors 🎨
	ErrUnsupportedFormat = errors.New("⚠️ unsupported output format")
	ErrEncode            = errors.New("❌ encoding failed")

	// Output errors 💾
	ErrWrite   = errors.New("❌ writing output failed")
	ErrArchive = errors.New("❌ archive creation failed")

	// Verification errors 🔒
	ErrIntegrityCheckFailed = errors.New("❌ integrity check failed")
)
