// Package cookiejar enumerates cookies stored by the user's default browser
// and serves the subset matching a given request URL under RFC 6265
// subdomain and path rules.
package cookiejar

import "time"

// Cookie is one browser-extracted cookie.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	Expires  *time.Time
}

// Source identifies which browser a Jar was loaded from.
type Source int

const (
	SourceNone Source = iota
	SourceDia
	SourceBrave
	SourceChrome
	SourceFirefox
	SourceSafari
	SourceEdge
)

func (s Source) String() string {
	switch s {
	case SourceDia:
		return "dia"
	case SourceBrave:
		return "brave"
	case SourceChrome:
		return "chrome"
	case SourceFirefox:
		return "firefox"
	case SourceSafari:
		return "safari"
	case SourceEdge:
		return "edge"
	default:
		return "none"
	}
}

// StoreMissingError signals that the requested (or auto-detected) browser
// has no reachable cookie store. Callers should log at INFO and continue
// without cookies, per the error taxonomy.
type StoreMissingError struct {
	Source Source
}

func (e *StoreMissingError) Error() string {
	return "cookiejar: no cookie store found for " + e.Source.String()
}
