// Package headers contains various RTSP headers.
package headers

import (
	"fmt"
	"strings"
)

// parseAuthParams parses the comma-separated auth-params of a
// WWW-Authenticate or Authorization header (RFC 7235).
// Values are tokens or quoted strings. Quoted strings may contain
// commas and backslash escapes.
func parseAuthParams(str string) (map[string]string, error) {
	ret := make(map[string]string)
	orig := str

	for {
		str = strings.TrimLeft(str, " ")
		if str == "" {
			return ret, nil
		}

		i := strings.IndexAny(str, "=,")
		if i <= 0 || str[i] != '=' {
			return nil, fmt.Errorf("unable to read key (%v)", orig)
		}

		key := strings.TrimRight(str[:i], " ")
		str = strings.TrimLeft(str[i+1:], " ")

		var val string

		if strings.HasPrefix(str, `"`) {
			var b strings.Builder
			j := 1

			for {
				if j >= len(str) {
					return nil, fmt.Errorf("apexes not closed (%v)", orig)
				}

				if str[j] == '\\' && j+1 < len(str) {
					b.WriteByte(str[j+1])
					j += 2
					continue
				}

				if str[j] == '"' {
					break
				}

				b.WriteByte(str[j])
				j++
			}

			val = b.String()
			str = strings.TrimLeft(str[j+1:], " ")

			if str != "" && str[0] != ',' {
				return nil, fmt.Errorf("unexpected content after quoted value (%v)", orig)
			}
		} else {
			j := strings.IndexByte(str, ',')
			if j < 0 {
				j = len(str)
			}
			val = strings.TrimRight(str[:j], " ")
			str = str[j:]
		}

		ret[key] = val

		str = strings.TrimPrefix(str, ",")
	}
}
