package app

import (
	"path/filepath"

	"github.com/rugaard/git-hooks-php/internal/constants"
	"github.com/spf13/afero"
)

// FileHelper answers filesystem questions relative to the project root
type FileHelper struct {
	fs      afero.Fs
	workDir string
}

// NewFileHelper creates a new FileHelper rooted at workDir
func NewFileHelper(fs afero.Fs, workDir string) *FileHelper {
	return &FileHelper{fs: fs, workDir: workDir}
}

// VendorBin returns the absolute path of a composer-installed executable
func (h *FileHelper) VendorBin(name string) string {
	return filepath.Join(h.workDir, filepath.FromSlash(constants.VendorBinDir), name)
}

// FileExists reports whether path names an existing regular file
func (h *FileHelper) FileExists(path string) bool {
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.workDir, path)
	}
	info, err := h.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// HasVendorBin reports whether a composer-installed executable is present
func (h *FileHelper) HasVendorBin(name string) bool {
	return h.FileExists(h.VendorBin(name))
}
