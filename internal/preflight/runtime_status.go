package preflight

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/keithbphillips/PinballUX/internal/config"
)

// CheckRemoteFromConfig evaluates the remote-archive settings without
// touching the network; connectivity problems surface when a fetch runs.
func CheckRemoteFromConfig(cfg *config.Config) Result {
	const name = "Remote archive"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	host := strings.TrimSpace(cfg.Remote.Host)
	if host == "" {
		return Result{Name: name, Passed: true, Detail: "Not configured"}
	}
	if cfg.Remote.Port <= 0 || cfg.Remote.Port > 65535 {
		return Result{Name: name, Detail: fmt.Sprintf("invalid port %d", cfg.Remote.Port)}
	}
	if strings.TrimSpace(cfg.Remote.User) == "" {
		return Result{Name: name, Detail: "missing user"}
	}
	return Result{Name: name, Passed: true, Detail: net.JoinHostPort(host, strconv.Itoa(cfg.Remote.Port))}
}

// LockProbe reports whether another process currently holds the catalog
// lock, which means a reconciliation pass is in flight.
type LockProbe struct {
	Held bool   `json:"held"`
	Path string `json:"path"`
}

// ProbeLock samples the catalog lock. The probe releases the lock
// immediately when it wins it, so it never blocks a real run.
func ProbeLock(path string) LockProbe {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return LockProbe{Path: path}
	}
	if !ok {
		return LockProbe{Held: true, Path: path}
	}
	_ = lock.Unlock()
	return LockProbe{Path: path}
}

// Detail renders a display-friendly summary for status UIs.
func (p LockProbe) Detail() string {
	if p.Held {
		return "reconciliation in progress"
	}
	return "idle"
}
