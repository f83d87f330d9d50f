// Command meshdump loads a scene file, flattens it into one indexed mesh and logs what it found.
//
// Usage:
//
//	meshdump <path>
//
// OXY_MESH_CONFIG may name a TOML config file with loader settings.
// OXY_MESH_UPLOAD=1 also uploads the mesh and its diffuse texture through a headless GPU device.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-mesh/common"
	"github.com/Carmen-Shannon/oxy-mesh/engine/config"
	"github.com/Carmen-Shannon/oxy-mesh/engine/loader"
	"github.com/Carmen-Shannon/oxy-mesh/engine/model"
	"github.com/Carmen-Shannon/oxy-mesh/engine/renderer"
)

const (
	configEnv = "OXY_MESH_CONFIG"
	uploadEnv = "OXY_MESH_UPLOAD"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: meshdump <path>")
		os.Exit(2)
	}

	m, err := run(os.Args[1], os.Getenv(configEnv))
	if err != nil {
		log.Fatalf("Failed to load %s: %v", os.Args[1], err)
	}

	if os.Getenv(uploadEnv) == "1" {
		if err := upload(m); err != nil {
			log.Fatalf("Failed to upload %s: %v", m.Name(), err)
		}
	}
}

// run loads one file with the loader configured from configPath (defaults when empty)
// and logs a summary of the result.
func run(path, configPath string) (model.Model, error) {
	// ── Config ──────────────────────────────────────────────────────────
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	opts, err := cfg.LoaderOptions()
	if err != nil {
		return nil, err
	}

	// ── Load ────────────────────────────────────────────────────────────
	ldr := loader.NewLoader(opts...)
	m, err := ldr.Load(path)
	if err != nil {
		return nil, err
	}

	// ── Report ──────────────────────────────────────────────────────────
	lo, hi := m.Bounds()
	log.Printf("[meshdump] %s: %d vertices, %d indices (%s indices)", m.Name(), m.VertexCount(), m.IndexCount(), m.IndexMode())
	log.Printf("[meshdump] bounds: min %v max %v", lo, hi)
	for _, sm := range m.Submeshes() {
		log.Printf("[meshdump]   submesh %q: vertices %d+%d, indices %d+%d", sm.Name, sm.BaseVertex, sm.VertexCount, sm.FirstIndex, sm.IndexCount)
	}
	if m.TexturePath() == "" {
		log.Printf("[meshdump] diffuse texture: none")
	} else {
		log.Printf("[meshdump] diffuse texture: %s", m.TexturePath())
	}
	return m, nil
}

// upload sends the mesh and its diffuse texture to a headless device and releases everything again.
func upload(m model.Model) error {
	r, err := renderer.NewRenderer()
	if err != nil {
		return err
	}
	defer r.Release()

	buffers, err := r.UploadMesh(m)
	if err != nil {
		return err
	}
	defer buffers.Release()

	if m.TexturePath() == "" {
		return nil
	}
	tex, err := r.UploadTexture(&common.ImportedTexture{Name: "diffuse", Path: m.TexturePath()})
	if err != nil {
		return err
	}
	defer tex.Release()

	log.Printf("[meshdump] uploaded %s texture %dx%d", m.Name(), tex.Width, tex.Height)
	return nil
}
