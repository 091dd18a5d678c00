package probe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Stat probes path. Missing files return Exists == false and a nil error;
// other failures (permissions, I/O) are returned wrapped.
func Stat(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileInfo{Path: path}, nil
		}
		return FileInfo{Path: path}, fmt.Errorf("stat %q: %w", path, err)
	}
	if st.IsDir() {
		return FileInfo{Path: path}, fmt.Errorf("stat %q: is a directory", path)
	}
	return FileInfo{
		Path:    path,
		Exists:  true,
		Size:    st.Size(),
		ModTime: st.ModTime(),
	}, nil
}

// StatAll probes every path in order. Errors do not stop the batch; they are
// returned in a parallel slice (nil entries for success).
func StatAll(paths []string) ([]FileInfo, []error) {
	infos := make([]FileInfo, len(paths))
	errs := make([]error, len(paths))
	for i, p := range paths {
		infos[i], errs[i] = Stat(p)
	}
	return infos, errs
}

// TotalSize sums Size over existing files.
func TotalSize(infos []FileInfo) int64 {
	var n int64
	for _, fi := range infos {
		if fi.Exists {
			n += fi.Size
		}
	}
	return n
}
