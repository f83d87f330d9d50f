package scene

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/h2non/filetype"
)

// Format identifies a scene file format.
type Format int

const (
	// FormatGLB is binary glTF. It is also the fallback when detection fails.
	FormatGLB Format = iota

	// FormatGLTF is JSON glTF.
	FormatGLTF

	// FormatOBJ is Wavefront OBJ.
	FormatOBJ
)

// String returns the file extension conventionally used for the format.
func (f Format) String() string {
	switch f {
	case FormatGLB:
		return "glb"
	case FormatGLTF:
		return "gltf"
	case FormatOBJ:
		return "obj"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

const (
	// headerSize is how many leading bytes DetectFile inspects.
	headerSize = 4096

	// maxOBJLine bounds a single line while scanning past a comment-only header.
	maxOBJLine = 1 << 20
)

var (
	glbType  = filetype.NewType("glb", "model/gltf-binary")
	gltfType = filetype.NewType("gltf", "model/gltf+json")
	objType  = filetype.NewType("obj", "model/obj")

	objKeywords = map[string]bool{
		"v": true, "vt": true, "vn": true, "vp": true, "f": true,
		"o": true, "g": true, "s": true, "mtllib": true, "usemtl": true,
	}
)

func init() {
	filetype.AddMatcher(glbType, matchGLB)
	filetype.AddMatcher(gltfType, matchGLTF)
	filetype.AddMatcher(objType, matchOBJ)
}

// DetectFormat identifies a scene format from the leading bytes of a file. Content that matches no
// known format is reported as FormatGLB.
//
// Parameters:
//   - header: the leading bytes of the file
//
// Returns:
//   - Format: the detected format
//   - bool: false if detection failed and the fallback was used
func DetectFormat(header []byte) (Format, bool) {
	kind, err := filetype.Match(header)
	if err != nil || kind == filetype.Unknown {
		return FormatGLB, false
	}

	switch kind.Extension {
	case glbType.Extension:
		return FormatGLB, true
	case gltfType.Extension:
		return FormatGLTF, true
	case objType.Extension:
		return FormatOBJ, true
	default:
		return FormatGLB, false
	}
}

// DetectFile reads the header of the file at path and detects its format. A full header holding
// only OBJ comments does not decide the format; the rest of the file is scanned for its first statement.
//
// Parameters:
//   - path: the scene file path
//
// Returns:
//   - Format: the detected format, FormatGLB on fallback
//   - bool: false if detection failed and the fallback was used
//   - error: ErrNotFound (wrapped) if the file does not exist, or the read error
func DetectFile(path string) (Format, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FormatGLB, false, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return FormatGLB, false, err
	}
	defer f.Close()

	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatGLB, false, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	format, ok := DetectFormat(header[:n])
	if ok || n < headerSize || !commentOnly(header) {
		return format, ok, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return FormatGLB, false, fmt.Errorf("failed to rewind %s: %w", path, err)
	}
	keyword, found := firstStatement(f)
	if found && objKeywords[keyword] {
		return FormatOBJ, true, nil
	}
	return format, ok, nil
}

func matchGLB(buf []byte) bool {
	return len(buf) >= 12 && bytes.Equal(buf[:4], []byte("glTF"))
}

// matchGLTF accepts a JSON object that names the required top-level "asset" property.
func matchGLTF(buf []byte) bool {
	trimmed := bytes.TrimPrefix(buf, []byte("\xef\xbb\xbf"))
	trimmed = bytes.TrimLeft(trimmed, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{' && bytes.Contains(trimmed, []byte(`"asset"`))
}

// matchOBJ accepts text whose first statement is an OBJ keyword. Comment-only headers do not match.
func matchOBJ(buf []byte) bool {
	if bytes.IndexByte(buf, 0) >= 0 {
		return false
	}
	keyword, found := firstStatement(bytes.NewReader(buf))
	return found && objKeywords[keyword]
}

// commentOnly reports whether buf is text made only of blank lines and '#' comments.
func commentOnly(buf []byte) bool {
	if bytes.IndexByte(buf, 0) >= 0 {
		return false
	}
	_, found := firstStatement(bytes.NewReader(buf))
	return !found
}

// firstStatement returns the first word of the first line that is neither blank nor a comment.
func firstStatement(r io.Reader) (string, bool) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOBJLine)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		return string(bytes.Fields(line)[0]), true
	}
	return "", false
}
