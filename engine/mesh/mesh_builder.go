package mesh

// IndexedMeshBuilderOption is a functional option for configuring an IndexedMeshBuilder via NewIndexedMeshBuilder.
type IndexedMeshBuilderOption func(*indexedMeshBuilder)

// WithIndexMode is an option builder that sets what the builder writes into the index buffer.
//
// Parameters:
//   - mode: the index mode
//
// Returns:
//   - IndexedMeshBuilderOption: a function that applies the index mode option to a builder
func WithIndexMode(mode IndexMode) IndexedMeshBuilderOption {
	return func(b *indexedMeshBuilder) {
		b.mode = mode
	}
}
