package loader

import (
	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/Carmen-Shannon/oxy-mesh/engine/model"
	"github.com/Carmen-Shannon/oxy-mesh/engine/profiler"
	"github.com/Carmen-Shannon/oxy-mesh/engine/scene"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithIndexMode is an option builder that sets the index mode of every mesh build.
//
// Parameters:
//   - mode: mesh.IndexModeCompacted (default) or mesh.IndexModeSourceIndex
//
// Returns:
//   - LoaderBuilderOption: a function that applies the index mode option to a loader
func WithIndexMode(mode mesh.IndexMode) LoaderBuilderOption {
	return func(l *loader) {
		l.indexMode = mode
	}
}

// WithUVSet is an option builder that selects the UV set read from every mesh.
// An empty name selects the first UV set of each mesh.
//
// Parameters:
//   - name: the UV set name
//
// Returns:
//   - LoaderBuilderOption: a function that applies the UV set option to a loader
func WithUVSet(name string) LoaderBuilderOption {
	return func(l *loader) {
		l.uvSet = name
	}
}

// WithTargetConvention is an option builder that sets the axis system and unit geometry is converted to.
//
// Parameters:
//   - target: the target convention
//
// Returns:
//   - LoaderBuilderOption: a function that applies the convention option to a loader
func WithTargetConvention(target scene.Convention) LoaderBuilderOption {
	return func(l *loader) {
		l.target = target
	}
}

// WithSource is an option builder that registers the scene source used for a detected format.
//
// Parameters:
//   - format: the detected format
//   - source: the source that opens files of that format
//
// Returns:
//   - LoaderBuilderOption: a function that applies the source option to a loader
func WithSource(format scene.Format, source scene.Source) LoaderBuilderOption {
	return func(l *loader) {
		l.sources[format] = source
	}
}

// WithWorkers is an option builder that sets the worker count used by LoadAll.
// Values below one are ignored.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithProfiling is an option builder that logs the duration and memory cost of every uncached load.
//
// Parameters:
//   - enabled: true to attach a profiler
//
// Returns:
//   - LoaderBuilderOption: a function that applies the profiling option to a loader
func WithProfiling(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		if enabled {
			l.profiler = profiler.NewProfiler()
		} else {
			l.profiler = nil
		}
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}
