// Package win32 reads the foreground window title through user32.dll.
// It only builds on windows.
package win32
