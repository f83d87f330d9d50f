package renderer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-mesh/common"
	"github.com/Carmen-Shannon/oxy-mesh/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrReleased is returned when uploading through a Renderer that has been released.
	ErrReleased = errors.New("renderer released")

	// ErrEmptyMesh is returned when uploading a model without vertices or indices.
	ErrEmptyMesh = errors.New("model has no geometry")
)

// MeshBuffers holds the GPU buffers of one uploaded model.
type MeshBuffers struct {
	// Label is the debug label prefix of the buffers.
	Label string

	// VertexBuffer holds GPUVertex data.
	VertexBuffer *wgpu.Buffer

	// IndexBuffer holds uint16 indices, zero-padded to 4 bytes.
	IndexBuffer *wgpu.Buffer

	// IndexFormat is always wgpu.IndexFormatUint16.
	IndexFormat wgpu.IndexFormat

	// VertexCount is the number of vertices in VertexBuffer.
	VertexCount int

	// IndexCount is the number of indices to draw; padding is excluded.
	IndexCount int

	// Submeshes locates each scene node inside the buffers.
	Submeshes []model.Submesh
}

// Release frees the GPU buffers. Calling Release more than once is a no-op.
func (m *MeshBuffers) Release() {
	if m == nil {
		return
	}
	if m.IndexBuffer != nil {
		m.IndexBuffer.Release()
		m.IndexBuffer = nil
	}
	if m.VertexBuffer != nil {
		m.VertexBuffer.Release()
		m.VertexBuffer = nil
	}
}

// TextureBuffers holds an uploaded texture and its default view.
type TextureBuffers struct {
	Label   string
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Width   uint32
	Height  uint32
}

// Release frees the view and the texture. Calling Release more than once is a no-op.
func (t *TextureBuffers) Release() {
	if t == nil {
		return
	}
	if t.View != nil {
		t.View.Release()
		t.View = nil
	}
	if t.Texture != nil {
		t.Texture.Release()
		t.Texture = nil
	}
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	label                string
}

// Renderer uploads flattened models and their diffuse textures to the GPU.
//
// The Renderer owns a headless device: it never opens a window or a surface. Every resource it
// hands out must be released by the caller before the Renderer itself is released.
type Renderer interface {
	// UploadMesh creates the vertex buffer and the 16-bit index buffer of a model.
	//
	// Parameters:
	//   - m: the model to upload
	//
	// Returns:
	//   - *MeshBuffers: the uploaded buffers
	//   - error: ErrEmptyMesh, ErrReleased or a GPU error
	UploadMesh(m model.Model) (*MeshBuffers, error)

	// UploadTexture decodes a texture and uploads it as an RGBA8 sRGB texture.
	//
	// Parameters:
	//   - tex: the texture to decode and upload
	//
	// Returns:
	//   - *TextureBuffers: the uploaded texture and its view
	//   - error: a decode error, ErrReleased or a GPU error
	UploadTexture(tex *common.ImportedTexture) (*TextureBuffers, error)

	// Backend exposes the GPU backend.
	//
	// Returns:
	//   - RendererBackend: the backend
	Backend() RendererBackend

	// Release tears down the GPU device, adapter and instance in reverse order.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new headless Renderer with the specified options applied.
// Initialization failures are returned rather than aborting the process.
//
// Parameters:
//   - options: a variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer
//   - error: an error if the GPU backend could not be initialized
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: BackendTypeWGPU,
		label:       "oxy-mesh",
	}

	for _, option := range options {
		option(r)
	}

	switch r.backendType {
	case BackendTypeWGPU:
		b, err := newWGPURendererBackend(r.forceFallbackAdapter)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize renderer: %w", err)
		}
		r.backend = b
	default:
		return nil, fmt.Errorf("unknown renderer backend %d", r.backendType)
	}

	return r, nil
}

func (r *renderer) UploadMesh(m model.Model) (*MeshBuffers, error) {
	if m == nil || m.VertexCount() == 0 || m.IndexCount() == 0 {
		return nil, ErrEmptyMesh
	}

	label := r.label + " " + m.Name()
	vertexBuf, err := r.backend.CreateVertexBuffer(label+" Vertex Buffer", vertexBufferData(m.GPUVertices()))
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer for %q: %w", m.Name(), err)
	}

	indexBuf, err := r.backend.CreateIndexBuffer(label+" Index Buffer", indexBufferData(m.Indices()))
	if err != nil {
		vertexBuf.Release()
		return nil, fmt.Errorf("failed to create index buffer for %q: %w", m.Name(), err)
	}

	log.Printf("[Renderer] uploaded %q: %d vertices, %d indices", m.Name(), m.VertexCount(), m.IndexCount())
	return &MeshBuffers{
		Label:        label,
		VertexBuffer: vertexBuf,
		IndexBuffer:  indexBuf,
		IndexFormat:  wgpu.IndexFormatUint16,
		VertexCount:  m.VertexCount(),
		IndexCount:   m.IndexCount(),
		Submeshes:    m.Submeshes(),
	}, nil
}

func (r *renderer) UploadTexture(tex *common.ImportedTexture) (*TextureBuffers, error) {
	stagingData, err := tex.Decode()
	if err != nil {
		return nil, err
	}

	label := r.label + " " + common.Coalesce(tex.Name, tex.Path) + " Texture"
	texture, view, err := r.backend.CreateTexture(label, stagingData)
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", label, err)
	}

	return &TextureBuffers{
		Label:   label,
		Texture: texture,
		View:    view,
		Width:   stagingData.Width,
		Height:  stagingData.Height,
	}, nil
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.backend != nil {
		r.backend.Release()
	}
}
