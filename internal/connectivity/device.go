package connectivity

import (
	"context"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/sirupsen/logrus"

	"smallbasket/internal/config"
	"smallbasket/internal/domain/entities"
)

// UnknownDevice is the id reported when nothing better is known. The
// backend cannot count such a device, so updates are not sent for it.
const UnknownDevice = "unknown"

// Device identifies this host to the backend.
type Device struct {
	ID   string
	Info entities.DeviceInfo
}

// Valid reports whether the id can be sent.
func (d Device) Valid() bool {
	return d.ID != "" && d.ID != UnknownDevice
}

// DetectDevice fills in the device id and description from the host,
// letting cfg override any field. A host without a stable id gets a random
// one for the life of the process.
func DetectDevice(ctx context.Context, cfg config.DeviceConfig, logger logrus.FieldLogger) Device {
	d := Device{Info: entities.DeviceInfo{OS: runtime.GOOS}}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		logger.WithError(err).Warn("could not read host info")
	} else {
		d.ID = info.HostID
		d.Info.OS = firstNonEmpty(strings.TrimSpace(info.Platform+" "+info.PlatformVersion), info.OS, runtime.GOOS)
		d.Info.Model = info.Hostname
		d.Info.Manufacturer = info.PlatformFamily
	}

	if cfg.ID != "" {
		d.ID = cfg.ID
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
		logger.WithField("device_id", d.ID).Warn("host has no stable id, using a random one")
	}
	if cfg.Model != "" {
		d.Info.Model = cfg.Model
	}
	d.Info.AppVersion = firstNonEmpty(cfg.AppVersion, buildVersion(), "unknown")
	return d
}

func buildVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" || bi.Main.Version == "(devel)" {
		return ""
	}
	return bi.Main.Version
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
