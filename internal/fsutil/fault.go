package fsutil

import (
	"io"
	"io/fs"
	"os"
)

// FaultInjectingFileSystem wraps another FileSystem and lets tests force a
// specific call to fail. It exists to exercise the registry's atomic-rewrite
// property: a crash between the temp-file write and the rename must leave
// the previous file intact.
type FaultInjectingFileSystem struct {
	FileSystem
	// FailRename, when non-nil, is returned by Rename instead of delegating.
	FailRename error
	// FailWriteFile, when non-nil, is returned by WriteFile instead of delegating.
	FailWriteFile error
}

// WriteFile delegates to the wrapped FileSystem unless FailWriteFile is set.
func (f *FaultInjectingFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if f.FailWriteFile != nil {
		return f.FailWriteFile
	}
	return f.FileSystem.WriteFile(name, data, perm)
}

// Rename delegates to the wrapped FileSystem unless FailRename is set.
func (f *FaultInjectingFileSystem) Rename(oldpath, newpath string) error {
	if f.FailRename != nil {
		return f.FailRename
	}
	return f.FileSystem.Rename(oldpath, newpath)
}

var _ FileSystem = (*FaultInjectingFileSystem)(nil)
var _ io.Closer = (*memFileWriter)(nil)
var _ fs.File = (*memFileReader)(nil)
