package wolfi

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeIndex(names ...string) *Index {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &Index{packages: groupByStem(set)}
}

func TestGroupByStemSplitsNumericVersionSuffix(t *testing.T) {
	idx := fakeIndex("nodejs-22", "nodejs-20", "go", "python-3.12", "ca-certificates")

	assert.ElementsMatch(t, []string{"22", "20"}, idx.GetVersions("nodejs"))
	assert.Equal(t, []string{"3.12"}, idx.GetVersions("python"))
	assert.Empty(t, idx.GetVersions("go"), "go has no numeric suffix to split off")
	assert.Empty(t, idx.GetVersions("ca-certificates"), "ca-certificates' \"certificates\" suffix is not numeric")
}

func TestGetLatestVersionReturnsHighest(t *testing.T) {
	idx := fakeIndex("nodejs-18", "nodejs-20", "nodejs-22")
	v, ok := idx.GetLatestVersion("nodejs")
	require.True(t, ok)
	assert.Equal(t, "22", v)
}

func TestHasPackageMatchesExactAndSplitForm(t *testing.T) {
	idx := fakeIndex("nodejs-20", "go", "openjdk-21")

	assert.True(t, idx.HasPackage("nodejs-20"))
	assert.True(t, idx.HasPackage("go"))
	assert.True(t, idx.HasPackage("openjdk-21"))
	assert.False(t, idx.HasPackage("nodejs-19"))
	assert.False(t, idx.HasPackage("rust"))
}

func TestAllListsEveryConcretePackageName(t *testing.T) {
	idx := fakeIndex("nodejs-20", "go")
	assert.Contains(t, idx.All(), "nodejs-20")
	assert.Contains(t, idx.All(), "go")
}

func TestSplitVersionSuffixRejectsNonNumericTail(t *testing.T) {
	_, _, ok := splitVersionSuffix("ca-certificates")
	assert.False(t, ok)

	stem, suffix, ok := splitVersionSuffix("openjdk-17")
	require.True(t, ok)
	assert.Equal(t, "openjdk", stem)
	assert.Equal(t, "17", suffix)
}

func buildAPKINDEXArchive(t *testing.T, packageNames ...string) []byte {
	t.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)

	var content bytes.Buffer
	for _, n := range packageNames {
		content.WriteString("P:" + n + "\n")
		content.WriteString("V:1\n\n")
	}

	hdr := &tar.Header{Name: "APKINDEX", Size: int64(content.Len()), Mode: 0o644}
	require.NoError(t, tw.WriteHeader(hdr))
	_, err := tw.Write(content.Bytes())
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	var gzBuf bytes.Buffer
	gz := gzip.NewWriter(&gzBuf)
	_, err = gz.Write(tarBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	return gzBuf.Bytes()
}

func TestParseAPKINDEXReadsPackageNamesFromGzippedTar(t *testing.T) {
	archive := buildAPKINDEXArchive(t, "nodejs-20", "go", "openjdk-21")
	pkgs, err := parseAPKINDEX(bytes.NewReader(archive))
	require.NoError(t, err)

	assert.Contains(t, pkgs["nodejs"], "20")
	assert.Contains(t, pkgs["go"], "")
}
