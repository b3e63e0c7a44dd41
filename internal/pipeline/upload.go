package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Atarvano/ManifestAi/internal/domain"
)

// StageUpload copies src into dir under a unique name derived from
// filename. The returned cleanup removes the staged copy and is safe to
// call more than once.
func StageUpload(dir, filename string, src io.Reader) (string, func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", func() {}, domain.IOError("failed to create upload directory", err)
	}

	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "upload"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s%s", stem, uuid.NewString(), ext))

	cleanup := func() {
		_ = os.Remove(path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", func() {}, domain.IOError("failed to stage upload", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		cleanup()
		return "", func() {}, domain.IOError("failed to stage upload", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, domain.IOError("failed to stage upload", err)
	}

	return path, cleanup, nil
}
