package eegsim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lorenzosaino/go-sysctl"
)

// The kernel silently caps SO_SNDBUF at this limit.
const wmemMaxKey = "net.core.wmem_max"

// CheckSendBuffer returns an error if the kernel will cap a socket send buffer
// below the requested size. If the limit cannot be read (e.g., not Linux), it
// returns nil.
func CheckSendBuffer(requested int) error {
	value, err := sysctl.Get(wmemMaxKey)
	if err != nil {
		return nil
	}
	limit, err := parseSysctlInt(value)
	if err != nil {
		return nil
	}
	return compareSendBuffer(requested, limit)
}

func compareSendBuffer(requested, limit int) error {
	if requested > limit {
		return fmt.Errorf("requested send buffer %d bytes exceeds %s=%d; raise it with `sudo sysctl -w %s=%d`",
			requested, wmemMaxKey, limit, wmemMaxKey, requested)
	}
	return nil
}

func parseSysctlInt(value string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(value))
}
