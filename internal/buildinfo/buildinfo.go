// Package buildinfo exposes the static metadata of the solver binary.
package buildinfo

import (
	"runtime"
	"strings"
	"sync"

	"golang.org/x/mod/semver"

	"github.com/san-kum/heatsolve/internal/compute"
)

const fallbackVersion = "v0.0.0-dev"

// version is overridden at link time:
//
//	go build -ldflags "-X github.com/san-kum/heatsolve/internal/buildinfo.version=v1.2.0"
var version = "v0.4.0"

// Info is the resolved build metadata.
type Info struct {
	Version      string `json:"version"`
	TargetDevice string `json:"target_device"`
	Precision    string `json:"precision"`
	GoVersion    string `json:"go_version"`
}

var resolve = sync.OnceValue(func() Info {
	return Info{
		Version:      normalize(version),
		TargetDevice: string(compute.TargetDevice()),
		Precision:    compute.Precision(),
		GoVersion:    runtime.Version(),
	}
})

// Get returns the build metadata, resolved on first use.
func Get() Info { return resolve() }

// Version returns the solver version.
func Version() string { return Get().Version }

// TargetDevice returns the compiled-in device, "CPU" or "GPU".
func TargetDevice() string { return Get().TargetDevice }

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fallbackVersion
	}
	return semver.Canonical(v)
}
