// Package link extracts the forwarded port and authentication token from a
// Jupyter server URL. Parsing is pure; nothing here touches the registry or
// the OS.
package link

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/remote-jupyter/rjy/internal/util"
)

// ErrInvalidLink marks a Jupyter URL that cannot back a session: unparsable,
// no explicit port, or no token query parameter.
var ErrInvalidLink = errors.New("invalid jupyter link")

// Parts carries the fields of a Jupyter URL the registry cares about. The
// original URL is kept verbatim by the caller for later reconnects.
type Parts struct {
	Port  int
	Token string
}

// Parse extracts the explicit port and the token query parameter from a
// Jupyter URL such as "https://host.example.com:8888/?token=abc123".
func Parse(raw string) (Parts, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Parts{}, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	portStr := u.Port()
	if portStr == "" {
		return Parts{}, fmt.Errorf("%w: no port in URL", ErrInvalidLink)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Parts{}, fmt.Errorf("%w: port %q is not numeric", ErrInvalidLink, portStr)
	}
	if err := util.ValidatePort(port); err != nil {
		return Parts{}, fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	token := u.Query().Get("token")
	if token == "" {
		return Parts{}, fmt.Errorf("%w: cannot determine authentication token", ErrInvalidLink)
	}
	return Parts{Port: port, Token: token}, nil
}
