// Package platform describes the operating system and architecture cavern
// downloads content for, and decides whether an upload's platform list
// covers it.
package platform

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
)

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSMacOS represents macOS. Both "darwin" and "osx" normalize to it.
	OSMacOS = "macos"
	// OSAndroid represents Android.
	OSAndroid = "android"
	// AnyOS matches every operating system.
	AnyOS = "any"

	// ArchAMD64 represents the AMD64 (x86_64) architecture.
	ArchAMD64 = "amd64"
	// Arch386 represents the 32-bit x86 architecture.
	Arch386 = "386"
	// ArchARM represents the ARM architecture (32-bit).
	ArchARM = "arm"
	// ArchARM64 represents the ARM64 (AArch64) architecture.
	ArchARM64 = "arm64"
	// AnyArch matches every architecture.
	AnyArch = "any"
)

// Platform represents a target platform with OS and Architecture.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// CurrentPlatform returns the platform cavern is running on.
func CurrentPlatform() Platform {
	return Platform{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: NormalizeArch(runtime.GOARCH),
	}
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// Supports reports whether an upload advertising platforms can run on p.
// An empty list is treated as platform independent content.
func (p Platform) Supports(platforms []string) bool {
	if len(platforms) == 0 || p.OS == "" || p.OS == AnyOS {
		return true
	}
	want := NormalizeOS(p.OS)
	for _, candidate := range platforms {
		os := NormalizeOS(candidate)
		if os == AnyOS || os == want {
			return true
		}
	}
	return false
}

// NormalizeOS normalizes OS names to a common format
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "darwin", "osx", "mac", "macos":
		return OSMacOS
	case "win", "windows":
		return OSWindows
	default:
		return os
	}
}

// NormalizeArch normalizes architecture names to a common format
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "x86_64", "x64":
		return ArchAMD64
	case "x86", "i386", "i686":
		return Arch386
	case "aarch64":
		return ArchARM64
	default:
		return arch
	}
}

// ValidOS returns the OS values accepted in configuration.
func ValidOS() []string {
	return []string{OSWindows, OSLinux, OSMacOS, OSAndroid, AnyOS}
}

// ValidArch returns the architecture values accepted in configuration.
func ValidArch() []string {
	return []string{ArchAMD64, Arch386, ArchARM, ArchARM64, AnyArch}
}

// IsValidOS reports whether os (after normalization) is a known value.
func IsValidOS(os string) bool {
	return slices.Contains(ValidOS(), NormalizeOS(os))
}

// IsValidArch reports whether arch (after normalization) is a known value.
func IsValidArch(arch string) bool {
	return slices.Contains(ValidArch(), NormalizeArch(arch))
}
