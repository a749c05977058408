package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rugaard/git-hooks-php/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVCS is an in-memory domain.VersionControl
type fakeVCS struct {
	staged      []string
	unstaged    []string
	stagedErr   error
	unstagedErr error

	unstagedCalls int
	filters       []string
	extension     string
}

func (f *fakeVCS) ListStagedFiles(_ context.Context, extension string, filters ...string) ([]string, error) {
	f.extension = extension
	f.filters = filters
	return f.staged, f.stagedErr
}

func (f *fakeVCS) ListUnstagedFiles(_ context.Context, _ string, _ ...string) ([]string, error) {
	f.unstagedCalls++
	return f.unstaged, f.unstagedErr
}

func stagedRequest(exclude ...string) domain.CheckRequest {
	return domain.NewCheckRequest(domain.CheckModeStagedOnly, nil, "", "php", exclude, nil)
}

func TestFileSetResolver_Staged(t *testing.T) {
	vcs := &fakeVCS{
		staged:   []string{"src/A.php", "src/B.php", "tests/CTest.php"},
		unstaged: []string{"src/B.php", "README.php"},
	}
	r := NewFileSetResolver(vcs, afero.NewMemMapFs(), "/repo")

	fs, err := r.Resolve(context.Background(), stagedRequest())
	require.NoError(t, err)

	assert.Equal(t, []string{"src/A.php", "src/B.php", "tests/CTest.php"}, fs.Paths)
	assert.Equal(t, []string{"src/B.php"}, fs.Conflicting)
	assert.True(t, fs.HasConflicts())
	assert.Equal(t, "php", vcs.extension)
	assert.Equal(t, []string{"--diff-filter=d"}, vcs.filters)
}

func TestFileSetResolver_StagedConflictIsIntersection(t *testing.T) {
	vcs := &fakeVCS{
		staged:   []string{"a.php", "b.php", "c.php"},
		unstaged: []string{"c.php", "d.php", "a.php"},
	}
	r := NewFileSetResolver(vcs, afero.NewMemMapFs(), "/repo")

	fs, err := r.Resolve(context.Background(), stagedRequest())
	require.NoError(t, err)

	for _, f := range fs.Conflicting {
		assert.Contains(t, fs.Staged, f)
		assert.Contains(t, fs.Unstaged, f)
	}
	assert.Equal(t, []string{"a.php", "c.php"}, fs.Conflicting)
}

func TestFileSetResolver_StagedEmptySkipsUnstagedQuery(t *testing.T) {
	vcs := &fakeVCS{unstaged: []string{"a.php"}}
	r := NewFileSetResolver(vcs, afero.NewMemMapFs(), "/repo")

	fs, err := r.Resolve(context.Background(), stagedRequest())
	require.NoError(t, err)

	assert.True(t, fs.IsEmpty())
	assert.False(t, fs.HasConflicts())
	assert.Zero(t, vcs.unstagedCalls)
}

func TestFileSetResolver_StagedExclude(t *testing.T) {
	vcs := &fakeVCS{
		staged:   []string{"src/A.php", "legacy/Old.php", "src/generated/Proxy.php"},
		unstaged: []string{"legacy/Old.php"},
	}
	r := NewFileSetResolver(vcs, afero.NewMemMapFs(), "/repo")

	fs, err := r.Resolve(context.Background(), stagedRequest("legacy/", "**/generated/"))
	require.NoError(t, err)

	assert.Equal(t, []string{"src/A.php"}, fs.Paths)
	assert.False(t, fs.HasConflicts(), "excluded files never conflict")
}

func TestFileSetResolver_StagedPrefixes(t *testing.T) {
	vcs := &fakeVCS{staged: []string{"src/A.php", "srcfoo/B.php", "app/C.php", "tests/D.php"}}
	r := NewFileSetResolver(vcs, afero.NewMemMapFs(), "/repo")

	req := stagedRequest().WithPrefixes([]string{"src", "./app/"})
	fs, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"src/A.php", "app/C.php"}, fs.Paths)
}

func TestFileSetResolver_RestrictedWithoutPrefixesKeepsNothing(t *testing.T) {
	vcs := &fakeVCS{staged: []string{"src/A.php", "tests/B.php"}}
	r := NewFileSetResolver(vcs, afero.NewMemMapFs(), "/repo")

	fs, err := r.Resolve(context.Background(), stagedRequest().WithPrefixes(nil))
	require.NoError(t, err)

	assert.True(t, fs.IsEmpty())
	assert.Zero(t, vcs.unstagedCalls)
}

func TestFileSetResolver_StagedVCSError(t *testing.T) {
	vcs := &fakeVCS{stagedErr: errors.New("not a git repository")}
	r := NewFileSetResolver(vcs, afero.NewMemMapFs(), "/repo")

	_, err := r.Resolve(context.Background(), stagedRequest())
	assert.True(t, domain.HasCode(err, domain.ErrCodeVCSError))

	vcs = &fakeVCS{staged: []string{"a.php"}, unstagedErr: domain.NewVCSError("git diff failed", nil)}
	r = NewFileSetResolver(vcs, afero.NewMemMapFs(), "/repo")
	_, err = r.Resolve(context.Background(), stagedRequest())
	assert.True(t, domain.HasCode(err, domain.ErrCodeVCSError))
}

func TestFileSetResolver_Explicit(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/src", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/repo/index.php", []byte("<?php"), 0o644))
	require.NoError(t, fs.MkdirAll("/abs/lib", 0o755))

	r := NewFileSetResolver(&fakeVCS{}, fs, "/repo")
	req := domain.NewCheckRequest(domain.CheckModeExplicitPaths,
		[]string{"src", "missing", "index.php", "", "/abs/lib"}, "", "php", nil, nil)

	set, err := r.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "index.php", "/abs/lib"}, set.Paths)
	assert.False(t, set.HasConflicts())
}

func TestFileSetResolver_ExplicitNoPaths(t *testing.T) {
	r := NewFileSetResolver(&fakeVCS{}, afero.NewMemMapFs(), "/repo")

	for _, paths := range [][]string{nil, {"does-not-exist"}} {
		req := domain.NewCheckRequest(domain.CheckModeExplicitPaths, paths, "", "php", nil, nil)
		set, err := r.Resolve(context.Background(), req)
		assert.True(t, domain.HasCode(err, domain.ErrCodeNoPathsProvided), "paths %v", paths)
		require.NotNil(t, set)
		assert.True(t, set.IsEmpty())
	}
}
