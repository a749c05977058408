package service

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/rugaard/git-hooks-php/domain"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// stagedFilter excludes deleted files, which can not be checked
const stagedFilter = "--diff-filter=d"

// FileSetResolverImpl implements domain.FileSetResolver
type FileSetResolverImpl struct {
	vcs     domain.VersionControl
	fs      afero.Fs
	workDir string
}

// NewFileSetResolver creates a resolver reading git state through vcs and
// checking explicit paths on fs relative to workDir
func NewFileSetResolver(vcs domain.VersionControl, fs afero.Fs, workDir string) *FileSetResolverImpl {
	return &FileSetResolverImpl{vcs: vcs, fs: fs, workDir: workDir}
}

// Resolve determines the files to check for req. In staged mode conflicts
// are reported on the returned FileSet; callers must reject them.
func (r *FileSetResolverImpl) Resolve(ctx context.Context, req domain.CheckRequest) (*domain.FileSet, error) {
	exclude := compileExclude(req.Exclude)

	switch req.Mode {
	case domain.CheckModeStagedOnly:
		return r.resolveStaged(ctx, req, exclude)
	case domain.CheckModeExplicitPaths:
		return r.resolveExplicit(req, exclude)
	default:
		return nil, domain.NewInvalidInputError("unknown check mode "+req.Mode.String(), nil)
	}
}

func (r *FileSetResolverImpl) resolveStaged(ctx context.Context, req domain.CheckRequest, exclude *ignore.GitIgnore) (*domain.FileSet, error) {
	staged, err := r.vcs.ListStagedFiles(ctx, req.Extension, stagedFilter)
	if err != nil {
		return nil, asVCSError(err)
	}
	staged = withoutExcluded(staged, exclude)
	if req.Restricted {
		staged = restrictToPrefixes(staged, req.Prefixes)
	}
	if len(staged) == 0 {
		return domain.NewStagedFileSet(nil, nil), nil
	}

	unstaged, err := r.vcs.ListUnstagedFiles(ctx, req.Extension, stagedFilter)
	if err != nil {
		return nil, asVCSError(err)
	}
	return domain.NewStagedFileSet(staged, withoutExcluded(unstaged, exclude)), nil
}

func (r *FileSetResolverImpl) resolveExplicit(req domain.CheckRequest, exclude *ignore.GitIgnore) (*domain.FileSet, error) {
	var existing []string
	for _, p := range req.ExplicitPaths {
		if p == "" || !r.exists(p) {
			continue
		}
		existing = append(existing, p)
	}
	existing = withoutExcluded(existing, exclude)

	if len(existing) == 0 {
		return domain.NewExplicitFileSet(nil), domain.NewNoPathsProvidedError()
	}
	return domain.NewExplicitFileSet(existing), nil
}

func (r *FileSetResolverImpl) exists(p string) bool {
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.workDir, p)
	}
	_, err := r.fs.Stat(p)
	return err == nil
}

func compileExclude(patterns []string) *ignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return ignore.CompileIgnoreLines(patterns...)
}

func withoutExcluded(files []string, exclude *ignore.GitIgnore) []string {
	if exclude == nil {
		return files
	}
	kept := make([]string, 0, len(files))
	for _, f := range files {
		if !exclude.MatchesPath(filepath.ToSlash(f)) {
			kept = append(kept, f)
		}
	}
	return kept
}

// restrictToPrefixes keeps files located under one of prefixes
func restrictToPrefixes(files []string, prefixes []string) []string {
	cleaned := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		p = path.Clean(filepath.ToSlash(p))
		if p == "." {
			return files
		}
		cleaned = append(cleaned, strings.TrimSuffix(p, "/"))
	}

	var kept []string
	for _, f := range files {
		slashed := filepath.ToSlash(f)
		for _, p := range cleaned {
			if slashed == p || strings.HasPrefix(slashed, p+"/") {
				kept = append(kept, f)
				break
			}
		}
	}
	return kept
}

func asVCSError(err error) error {
	if domain.ErrorCode(err) != "" {
		return err
	}
	return domain.NewVCSError("failed to query git", err)
}
