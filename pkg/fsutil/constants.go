package fsutil

// File and directory permission constants used for everything cavern writes.
const (
	FileModeDefault = 0o644 // -rw-r--r--: config files
	FileModeSecure  = 0o640 // -rw-r-----: downloaded archives, record stores
	FileModePrivate = 0o600 // -rw-------: credentials

	DirModeDefault = 0o755 // drwxr-xr-x
	DirModeSecure  = 0o750 // drwxr-x---
	DirModePrivate = 0o700 // drwx------
)

// AppName is the name of the application used in paths.
const AppName = "cavern"
