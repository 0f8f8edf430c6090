package telemetry

import (
	"github.com/pkg/errors"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

type ProfilerSettings struct {
	Service string
	Version string

	ProfileCPU       bool
	ProfileHeap      bool
	ProfileBlock     bool
	ProfileMutex     bool
	ProfileGoroutine bool
}

// ProfileTypes lists the enabled profile types. CPU is used when none are.
func (s ProfilerSettings) ProfileTypes() []profiler.ProfileType {
	var profileTypes []profiler.ProfileType

	if s.ProfileCPU {
		profileTypes = append(profileTypes, profiler.CPUProfile)
	}
	if s.ProfileHeap {
		profileTypes = append(profileTypes, profiler.HeapProfile)
	}
	if s.ProfileBlock {
		profileTypes = append(profileTypes, profiler.BlockProfile)
	}
	if s.ProfileMutex {
		profileTypes = append(profileTypes, profiler.MutexProfile)
	}
	if s.ProfileGoroutine {
		profileTypes = append(profileTypes, profiler.GoroutineProfile)
	}

	if len(profileTypes) == 0 {
		profileTypes = append(profileTypes, profiler.CPUProfile)
	}
	return profileTypes
}

// Profiler starts the Datadog continuous profiler
func Profiler(settings ProfilerSettings) (stop func(), err error) {
	options := []profiler.Option{profiler.WithProfileTypes(settings.ProfileTypes()...)}
	if settings.Service != "" {
		options = append(options, profiler.WithService(settings.Service))
	}
	if settings.Version != "" {
		options = append(options, profiler.WithVersion(settings.Version))
	}

	if err := profiler.Start(options...); err != nil {
		return nil, errors.Wrap(err, "could not start profiler")
	}

	return func() {
		profiler.Stop()
	}, nil
}
