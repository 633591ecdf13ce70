//go:build !windows

package icon

const NativeFormat = FormatPNG
