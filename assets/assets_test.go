package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFS struct {
	fs.FS
	opens int
}

func (c *countingFS) Open(name string) (fs.File, error) {
	c.opens++
	return c.FS.Open(name)
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"html/index.html":   {Data: []byte("<html>index</html>")},
		"html/app.js":       {Data: []byte("var x = 1;")},
		"html/img/logo.PNG": {Data: []byte{0x89, 'P', 'N', 'G'}},
	}
}

func TestBundleResolvesEveryFile(t *testing.T) {
	b, err := NewBundle(testFS())
	require.NoError(t, err)

	assert.Equal(t, []string{"html/app.js", "html/img/logo.PNG", "html/index.html"}, b.Paths())

	a := b.Resolve("html/app.js")
	require.True(t, a.IsDefined())
	assert.Equal(t, "application/javascript", a.Value().ContentType)
	assert.Equal(t, []byte("var x = 1;"), a.Value().Data)

	assert.Equal(t, "image/png", b.Resolve("html/img/logo.PNG").Value().ContentType)
	assert.False(t, b.Resolve("html/missing.html").IsDefined())
	assert.False(t, b.Resolve("html").IsDefined())
}

func TestBundleDoesNotReadAfterLoading(t *testing.T) {
	cfs := &countingFS{FS: testFS()}
	b, err := NewBundle(cfs)
	require.NoError(t, err)
	loaded := cfs.opens

	b.Resolve("html/index.html")
	b.Resolve("html/nope.html")
	assert.Equal(t, loaded, cfs.opens)
}

func TestEmbeddedBundleHasIndex(t *testing.T) {
	b, err := EmbeddedBundle()
	require.NoError(t, err)
	index := b.Resolve(DocumentRoot + DefaultDocument)
	require.True(t, index.IsDefined())
	assert.Equal(t, "text/html", index.Value().ContentType)
	assert.True(t, b.Resolve("html/keep-server-alive.js").IsDefined())
}

func TestDirectoryReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "html"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "html", "page.css"), []byte("body{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("no"), 0o600))

	d := NewDirectory(dir)
	a := d.Resolve("html/page.css")
	require.True(t, a.IsDefined())
	assert.Equal(t, "text/css", a.Value().ContentType)
	assert.Equal(t, []byte("body{}"), a.Value().Data)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "html", "page.css"), []byte("p{}"), 0o600))
	assert.Equal(t, []byte("p{}"), d.Resolve("html/page.css").Value().Data)

	assert.False(t, d.Resolve("html/../secret.txt").IsDefined())
	assert.False(t, d.Resolve("html").IsDefined())
	assert.False(t, d.Resolve("html/missing").IsDefined())
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/html", ContentTypeFor("html/index.html"))
	assert.Equal(t, "text/css", ContentTypeFor("a.CSS"))
	assert.Equal(t, "text/plain", ContentTypeFor("README"))
	assert.Equal(t, "text/plain", ContentTypeFor("archive.unknownext"))
}
