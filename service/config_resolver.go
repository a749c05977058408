package service

import (
	"path/filepath"
	"strings"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/spf13/afero"
)

// ConfigResolverImpl implements domain.ConfigResolver
type ConfigResolverImpl struct {
	fs afero.Fs
}

// NewConfigResolver creates a resolver looking for files on fs
func NewConfigResolver(fs afero.Fs) *ConfigResolverImpl {
	return &ConfigResolverImpl{fs: fs}
}

// Resolve picks exactly one configuration source: a usable override, then the
// project default, then the distributed default. Sources are never merged.
func (r *ConfigResolverImpl) Resolve(override, searchRoot string, candidates domain.ConfigCandidates) domain.ResolvedConfig {
	if override != "" && (candidates.OverrideHint == "" || strings.Contains(override, candidates.OverrideHint)) {
		if p := r.locate(searchRoot, override); p != "" {
			return domain.ResolvedConfig{Kind: domain.ConfigSourceExplicit, Path: p, Name: override}
		}
	}

	defaults := []struct {
		kind domain.ConfigSourceKind
		name string
	}{
		{domain.ConfigSourceProjectDefault, candidates.ProjectDefault},
		{domain.ConfigSourceDistributedDefault, candidates.DistributedDefault},
	}
	for _, d := range defaults {
		if d.name == "" {
			continue
		}
		if p := r.locate(searchRoot, d.name); p != "" {
			return domain.ResolvedConfig{Kind: d.kind, Path: p, Name: d.name}
		}
	}

	return domain.ResolvedConfig{Kind: domain.ConfigSourceNone}
}

// locate returns the absolute path of name when it is an existing file
func (r *ConfigResolverImpl) locate(root, name string) string {
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, name)
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	info, err := r.fs.Stat(p)
	if err != nil || info.IsDir() {
		return ""
	}
	return p
}
