package connectivity

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/net"
)

// State is what a probe saw: an interface that can carry traffic, and
// whether the backend actually answered over it.
type State struct {
	Internet  bool
	Validated bool
}

// Connected is true only for a validated internet link.
func (s State) Connected() bool {
	return s.Internet && s.Validated
}

// Probe inspects the host's network.
type Probe interface {
	Check(ctx context.Context) (State, error)
}

// HealthFunc reports whether the backend is reachable.
type HealthFunc func(ctx context.Context) error

// SystemProbe looks for a non-loopback interface that is up and then asks
// the backend's health endpoint, bounded by Timeout.
type SystemProbe struct {
	Health  HealthFunc
	Timeout time.Duration

	interfaces func(ctx context.Context) (net.InterfaceStatList, error)
}

func NewSystemProbe(health HealthFunc, timeout time.Duration) *SystemProbe {
	return &SystemProbe{
		Health:     health,
		Timeout:    timeout,
		interfaces: net.InterfacesWithContext,
	}
}

func (p *SystemProbe) Check(ctx context.Context) (State, error) {
	list, err := p.interfaces(ctx)
	if err != nil {
		return State{}, fmt.Errorf("list interfaces: %w", err)
	}
	var st State
	for _, iface := range list {
		if hasFlag(iface.Flags, "up") && !hasFlag(iface.Flags, "loopback") {
			st.Internet = true
			break
		}
	}
	if !st.Internet || p.Health == nil {
		return st, nil
	}

	hctx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	st.Validated = p.Health(hctx) == nil
	return st, nil
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
