package driver

import (
	"testing"

	"emerge/internal/source"
)

func TestUnitDigestTracksContentAndPaths(t *testing.T) {
	build := func(files map[string]string, order ...string) *source.FileSet {
		fs := source.NewFileSet()
		for _, name := range order {
			fs.AddVirtual(name, []byte(files[name]))
		}
		return fs
	}
	ids := func(n int) []source.FileID {
		out := make([]source.FileID, n)
		for i := range out {
			out[i] = source.FileID(i)
		}
		return out
	}

	base := map[string]string{"a.toml": "package = \"a\"", "b.toml": "package = \"b\""}
	first := unitDigest(build(base, "a.toml", "b.toml"), ids(2))
	if first != unitDigest(build(base, "a.toml", "b.toml"), ids(2)) {
		t.Fatalf("digest is not deterministic")
	}

	changed := map[string]string{"a.toml": "package = \"a\"", "b.toml": "package = \"c\""}
	if first == unitDigest(build(changed, "a.toml", "b.toml"), ids(2)) {
		t.Fatalf("content change must change the digest")
	}
	if first == unitDigest(build(base, "b.toml", "a.toml"), ids(2)) {
		t.Fatalf("file order must change the digest")
	}

	renamed := map[string]string{"a.toml": "package = \"a\"", "c.toml": "package = \"b\""}
	if first == unitDigest(build(renamed, "a.toml", "c.toml"), ids(2)) {
		t.Fatalf("renaming a file must change the digest")
	}
}

func TestCacheKeyTracksOptions(t *testing.T) {
	unit := unitDigest(source.NewFileSet(), nil)
	plain := cacheKey(unit, Options{MaxDiagnostics: 10})
	for _, opts := range []Options{
		{MaxDiagnostics: 11},
		{MaxDiagnostics: 10, WarningsAsErrors: true},
		{MaxDiagnostics: 10, DisableLints: true},
		{MaxDiagnostics: 10, EmitIR: true},
	} {
		if cacheKey(unit, opts) == plain {
			t.Fatalf("options %+v share a key with the defaults", opts)
		}
	}
	if cacheKey(unit, Options{MaxDiagnostics: 10, Jobs: 8}) != plain {
		t.Fatalf("parallelism must not affect the key")
	}
}
