package cave

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cperrin88/cavern/pkg/model"
)

// DefaultExt is used when an upload's filename has no usable extension.
const DefaultExt = ".bin"

var doubleExts = []string{".tar.gz", ".tar.bz2", ".tar.xz", ".tar.zst"}

// ArchivePath returns <dir>/<upload id><ext>. The result depends only on the
// arguments.
func ArchivePath(dir string, upload *model.Upload) string {
	var id int64
	var filename string
	if upload != nil {
		id = upload.ID
		filename = upload.Filename
	}
	return filepath.Join(dir, strconv.FormatInt(id, 10)+archiveExt(filename))
}

func archiveExt(filename string) string {
	name := strings.ToLower(filepath.Base(filename))
	for _, ext := range doubleExts {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return ext
		}
	}
	ext := filepath.Ext(name)
	if ext == "" || ext == name || ext == "." || strings.ContainsAny(ext, " /\\") {
		return DefaultExt
	}
	return ext
}
