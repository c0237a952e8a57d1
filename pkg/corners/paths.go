package corners

import (
	"path"

	"github.com/pdkit/libmerge/pkg/liberty"
	"github.com/pdkit/libmerge/pkg/sizes"
)

// CellFile returns the library-relative path of one cell's fragment for a
// corner and variant, for example
// cells/a2111o/sky130_fd_sc_hd__a2111o_1__ff_100C_1v65_ccsnoise.lib.json.
// The directory name drops the drive-strength suffix while the filename
// keeps it. The variant has to be a single parsed member, not a union.
func CellFile(lib, cellWithSize, corner string, tt liberty.TimingType) string {
	return path.Join("cells", sizes.BaseName(cellWithSize),
		lib+"__"+cellWithSize+"__"+corner+tt.FileSuffix()+".lib.json")
}

// TopFile returns the library-relative path of a corner's top-level
// fragment.
func TopFile(lib, corner string, tt liberty.TimingType) string {
	return path.Join("timing", lib+"__"+corner+tt.FileSuffix()+".lib.json")
}

// CommonFile returns the library-relative path of the fragment shared by
// every corner of the library.
func CommonFile(lib string) string {
	return path.Join("timing", lib+"__common.lib.json")
}
