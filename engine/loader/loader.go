package loader

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-mesh/engine/mesh"
	"github.com/Carmen-Shannon/oxy-mesh/engine/model"
	"github.com/Carmen-Shannon/oxy-mesh/engine/profiler"
	"github.com/Carmen-Shannon/oxy-mesh/engine/scene"
)

// ErrEmptyPath is returned when Load is called without a file path.
var ErrEmptyPath = errors.New("empty model path")

// DefaultWorkers is the LoadAll worker count used when WithWorkers is not applied.
const DefaultWorkers = 4

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model

	sources   map[scene.Format]scene.Source
	indexMode mesh.IndexMode
	uvSet     string
	target    scene.Convention

	workers  int
	profiler *profiler.Profiler
}

// Loader defines the public-facing interface for loading scene files into flattened models.
// The file format is detected from the file contents and handled by a scene.Source; loaded
// models are cached by path.
type Loader interface {
	// Load imports a scene file, flattens every mesh node into one indexed mesh and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the scene file
	//
	// Returns:
	//   - model.Model: the loaded model, nil on error
	//   - error: ErrEmptyPath, a scene error or a mesh error (wrapped) if loading fails
	Load(path string) (model.Model, error)

	// LoadAll loads several files concurrently, one file per worker task. The worker pool lives
	// for the duration of the call and is stopped before LoadAll returns.
	// The returned slices are aligned with paths; for each path exactly one of model and error is non-nil.
	//
	// Parameters:
	//   - paths: the file paths to load
	//
	// Returns:
	//   - []model.Model: the loaded models
	//   - []error: the per-path errors
	LoadAll(paths []string) ([]model.Model, []error)

	// Get retrieves a cached model by path. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by path
	Models() map[string]model.Model

	// IndexMode reports the index mode used for every build.
	//
	// Returns:
	//   - mesh.IndexMode: the configured index mode
	IndexMode() mesh.IndexMode
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified options applied.
// Without options the loader builds compacted indices, picks each mesh's first UV set and
// converts geometry to DirectX-style centimeters.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided options
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		modelCache: make(map[string]model.Model),
		sources:    defaultSources(),
		indexMode:  mesh.IndexModeCompacted,
		target:     scene.ConventionDirectXCM,
		workers:    DefaultWorkers,
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	if l.profiler != nil {
		defer l.profiler.Track("load " + path)()
	}

	m, err := l.load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.modelCache[path]; ok {
		return existing, nil
	}
	l.modelCache[path] = m
	return m, nil
}

func (l *loader) LoadAll(paths []string) ([]model.Model, []error) {
	models := make([]model.Model, len(paths))
	errs := make([]error, len(paths))

	if len(paths) == 0 {
		return models, errs
	}

	pool := worker.NewDynamicWorkerPool(min(l.workers, len(paths)), len(paths), 1*time.Second)
	defer pool.Stop()

	// A WaitGroup is the barrier: pool.Wait() only returns once workers idle out.
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		id, p := i, path
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				models[id], errs[id] = l.Load(p)
				return models[id], errs[id]
			},
		})
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			log.Printf("[Loader] %s: %v", paths[i], err)
		}
	}
	return models, errs
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

func (l *loader) IndexMode() mesh.IndexMode {
	return l.indexMode
}

// load runs one uncached import: detect, open, traverse, build and freeze.
// The scene is closed on every return path.
func (l *loader) load(path string) (m model.Model, err error) {
	format, detected, err := scene.DetectFile(path)
	if err != nil {
		return nil, err
	}
	if !detected {
		log.Printf("[Loader] could not detect the format of %s, falling back to %s", path, format)
	}

	source, ok := l.sources[format]
	if !ok || source == nil {
		return nil, fmt.Errorf("no source registered for %s: %w", format, scene.ErrUnsupportedFormat)
	}

	sc, err := source.Open(path, l.target)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := sc.Close(); closeErr != nil && err == nil {
			m, err = nil, fmt.Errorf("failed to close scene: %w", closeErr)
		}
	}()

	acc := newMeshAccumulator(modelName(path), mesh.NewIndexedMeshBuilder(mesh.WithIndexMode(l.indexMode)), l.uvSet)
	if err := sc.ForEachMeshNode(acc.visit); err != nil {
		return nil, err
	}
	return acc.model()
}

// modelName derives the model name from the file name without its extension.
func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
