// Package url contains a parser for stream URLs.
package url

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var reURL = regexp.MustCompile(`^([^:]+)://([^/]+)(.*)$`)

// DefaultPort returns the default port of a protocol, or zero if it has none.
func DefaultPort(protocol string) int {
	switch protocol {
	case "rtsp":
		return 554

	case "http", "ws":
		return 80

	case "https", "wss":
		return 443
	}

	return 0
}

// URL is a parsed stream URL.
type URL struct {
	Protocol string
	Host     string
	Port     int

	// socket path, set instead of Port when the protocol is "unix".
	Socket string

	User string
	Pass string
	// "user:pass" when both user and password are present.
	Auth string

	// path and query, including the leading slash.
	URLPath  string
	Basename string
	Basepath string

	// host:port
	Location string
}

// Parse parses an absolute URL in the form scheme://authority/path.
func Parse(s string) (*URL, error) {
	m := reURL.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("invalid URL '%s'", s)
	}

	u := &URL{
		Protocol: strings.ToLower(m[1]),
		URLPath:  m[3],
	}

	hostport := m[2]
	if i := strings.LastIndexByte(hostport, '@'); i >= 0 {
		creds := hostport[:i]
		hostport = hostport[i+1:]

		if j := strings.IndexByte(creds, ':'); j >= 0 {
			u.User = creds[:j]
			u.Pass = creds[j+1:]
		} else {
			u.User = creds
		}

		if u.User != "" && u.Pass != "" {
			u.Auth = u.User + ":" + u.Pass
		}
	}

	host, port, hasPort := splitHostPort(hostport)
	u.Host = host

	if u.Protocol == "unix" {
		u.Socket = port
		u.Location = host
		if hasPort {
			u.Location += ":" + port
		}
	} else {
		if hasPort {
			v, err := strconv.ParseUint(port, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid port '%s'", port)
			}
			u.Port = int(v)
		} else {
			u.Port = DefaultPort(u.Protocol)
		}
		u.Location = host + ":" + strconv.Itoa(u.Port)
	}

	u.Basename, u.Basepath = splitPath(u.URLPath)

	return u, nil
}

func splitHostPort(hostport string) (string, string, bool) {
	// IPv6 literal
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end >= 0 {
			rest := hostport[end+1:]
			if strings.HasPrefix(rest, ":") {
				return hostport[:end+1], rest[1:], true
			}
			return hostport[:end+1], "", false
		}
	}

	i := strings.LastIndexByte(hostport, ':')
	if i < 0 {
		return hostport, "", false
	}
	return hostport[:i], hostport[i+1:], true
}

func splitPath(urlpath string) (string, string) {
	parts := strings.Split(strings.TrimPrefix(urlpath, "/"), "/")
	last := parts[len(parts)-1]

	if i := strings.IndexAny(last, "?#"); i >= 0 {
		last = last[:i]
	}

	return last, strings.Join(parts[:len(parts)-1], "/")
}

// IsAbsolute checks whether a URL contains a scheme.
func IsAbsolute(s string) bool {
	return reURL.MatchString(s)
}

// Full rebuilds the URL from its location and path.
// Credentials are not included.
func (u *URL) Full() string {
	return u.Protocol + "://" + u.Location + u.URLPath
}

// String implements fmt.Stringer.
func (u *URL) String() string {
	return u.Full()
}
