// Package uri defines the URI value type the fetcher dispatches on, along
// with constructors for the schemes it understands.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalid is returned when a URI string or shape is malformed.
var ErrInvalid = errors.New("uri: invalid URI")

// URI identifies an artifact to fetch. A URI is constructed once and never
// mutated; Path is always present, and Scheme decides which plugins may
// match it.
type URI struct {
	Scheme string
	Host   string
	Port   int
	Path   string
	Query  string
}

// File returns a URI for a file already resident on local disk.
func File(path string) *URI {
	return &URI{Scheme: "file", Path: path}
}

// HDFS returns a URI for a path on the default HDFS cluster. No authority
// is required; the hadoop client resolves the namenode itself.
func HDFS(path string) *URI {
	return &URI{Scheme: "hdfs", Path: path}
}

// HTTP returns a URI for an HTTP origin. A zero port means the scheme
// default.
func HTTP(host, path string, port int) *URI {
	return &URI{Scheme: "http", Host: host, Port: port, Path: path}
}

// HTTPS returns a URI for an HTTPS origin. A zero port means the scheme
// default.
func HTTPS(host, path string, port int) *URI {
	return &URI{Scheme: "https", Host: host, Port: port, Path: path}
}

// Parse converts a URI string into the value type. It accepts any scheme;
// whether a plugin can handle it is decided at dispatch time.
func Parse(s string) (*URI, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q has no scheme", ErrInvalid, s)
	}

	port := 0
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: port %q", ErrInvalid, p)
		}
	}

	return &URI{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Port:   port,
		Path:   u.Path,
		Query:  u.RawQuery,
	}, nil
}

// String renders the canonical form of the URI.
func (u *URI) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	if u.Host != "" {
		b.WriteString(u.Host)
		if u.Port != 0 {
			fmt.Fprintf(&b, ":%d", u.Port)
		}
	}
	if !strings.HasPrefix(u.Path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(u.Path)
	if u.Query != "" {
		b.WriteByte('?')
		b.WriteString(u.Query)
	}
	return b.String()
}

// Basename returns the last element of the URI path. Plugins writing a
// single file use it as the output filename.
func (u *URI) Basename() string {
	p := strings.TrimSuffix(u.Path, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return p
}

// Authority returns host[:port], or the empty string when the URI carries
// no authority.
func (u *URI) Authority() string {
	if u.Host == "" {
		return ""
	}
	if u.Port != 0 {
		return fmt.Sprintf("%s:%d", u.Host, u.Port)
	}
	return u.Host
}

// splitHostPort splits a "host[:port]" authority string. A missing or
// unparsable port yields zero.
func splitHostPort(authority string) (string, int) {
	i := strings.LastIndex(authority, ":")
	if i < 0 {
		return authority, 0
	}
	port, err := strconv.Atoi(authority[i+1:])
	if err != nil {
		return authority, 0
	}
	return authority[:i], port
}
