// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// MemFS returns an empty in-memory filesystem that is safe for
// concurrent use. memfs alone is not: the pipeline reads sources and
// the cache writes blobs from one goroutine per asset.
func MemFS() billy.Filesystem {
	return &lockedFS{fs: memfs.New(), mu: &sync.Mutex{}}
}

// lockedFS serializes every operation on fs, including reads and
// writes through the files it opens. Chroots share the lock.
type lockedFS struct {
	fs billy.Filesystem
	mu *sync.Mutex
}

func (l *lockedFS) wrap(file billy.File, err error) (billy.File, error) {
	if err != nil {
		return nil, err
	}
	return &lockedFile{File: file, mu: l.mu}, nil
}

func (l *lockedFS) Create(filename string) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrap(l.fs.Create(filename))
}

func (l *lockedFS) Open(filename string) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrap(l.fs.Open(filename))
}

func (l *lockedFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrap(l.fs.OpenFile(filename, flag, perm))
}

func (l *lockedFS) TempFile(dir, prefix string) (billy.File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrap(l.fs.TempFile(dir, prefix))
}

func (l *lockedFS) Stat(filename string) (os.FileInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Stat(filename)
}

func (l *lockedFS) Lstat(filename string) (os.FileInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Lstat(filename)
}

func (l *lockedFS) Rename(oldpath, newpath string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Rename(oldpath, newpath)
}

func (l *lockedFS) Remove(filename string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Remove(filename)
}

func (l *lockedFS) ReadDir(path string) ([]os.FileInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.ReadDir(path)
}

func (l *lockedFS) MkdirAll(filename string, perm os.FileMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.MkdirAll(filename, perm)
}

func (l *lockedFS) Symlink(target, link string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Symlink(target, link)
}

func (l *lockedFS) Readlink(link string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fs.Readlink(link)
}

func (l *lockedFS) Join(elem ...string) string { return l.fs.Join(elem...) }

func (l *lockedFS) Chroot(path string) (billy.Filesystem, error) {
	return chroot.New(l, path), nil
}

func (l *lockedFS) Root() string { return l.fs.Root() }

func (l *lockedFS) Capabilities() billy.Capability { return billy.Capabilities(l.fs) }

type lockedFile struct {
	billy.File
	mu *sync.Mutex
}

func (f *lockedFile) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.File.Read(p)
}

func (f *lockedFile) ReadAt(p []byte, offset int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.File.ReadAt(p, offset)
}

func (f *lockedFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.File.Write(p)
}

func (f *lockedFile) Seek(offset int64, whence int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.File.Seek(offset, whence)
}

func (f *lockedFile) Truncate(size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.File.Truncate(size)
}

func (f *lockedFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.File.Close()
}

// WriteFile writes data to name in filesystem, creating parents.
func WriteFile(t testing.TB, filesystem billy.Filesystem, name string, data []byte) {
	t.Helper()
	if err := util.WriteFile(filesystem, name, data, 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

// ReadFile returns the contents of name in filesystem.
func ReadFile(t testing.TB, filesystem billy.Filesystem, name string) []byte {
	t.Helper()
	data, err := util.ReadFile(filesystem, name)
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return data
}

// Exists reports whether name exists in filesystem.
func Exists(t testing.TB, filesystem billy.Filesystem, name string) bool {
	t.Helper()
	_, err := filesystem.Stat(name)
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	t.Fatalf("stat %s: %v", name, err)
	return false
}
