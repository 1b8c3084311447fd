//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package sysinfo

func uname() (release, version string, err error) {
	return "unknown", "unknown", nil
}
