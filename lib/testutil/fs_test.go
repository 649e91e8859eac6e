// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5/util"
)

func TestMemFSConcurrentWriters(t *testing.T) {
	filesystem := MemFS()
	cache, err := filesystem.Chroot("cache/blobs")
	if err != nil {
		t.Fatalf("Chroot: %v", err)
	}

	const writers = 16
	var group sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		group.Add(1)
		go func() {
			defer group.Done()
			name := fmt.Sprintf("nested/%02d.bin", i)
			temp, err := cache.TempFile("", ".blob-")
			if err != nil {
				errs <- err
				return
			}
			if _, err := temp.Write(bytes.Repeat([]byte{byte(i)}, 64)); err != nil {
				errs <- err
				return
			}
			if err := temp.Close(); err != nil {
				errs <- err
				return
			}
			if err := cache.MkdirAll("nested", 0o755); err != nil {
				errs <- err
				return
			}
			if err := cache.Rename(temp.Name(), name); err != nil {
				errs <- err
				return
			}
			if _, err := util.ReadFile(cache, name); err != nil {
				errs <- err
			}
		}()
	}
	group.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent write: %v", err)
	}

	for i := range writers {
		name := fmt.Sprintf("cache/blobs/nested/%02d.bin", i)
		if got := ReadFile(t, filesystem, name); !bytes.Equal(got, bytes.Repeat([]byte{byte(i)}, 64)) {
			t.Errorf("%s: unexpected contents", name)
		}
	}
}

func TestMemFSChrootSharesTree(t *testing.T) {
	filesystem := MemFS()
	WriteFile(t, filesystem, "public/icons/logo.png", []byte("png"))

	public, err := filesystem.Chroot("public")
	if err != nil {
		t.Fatalf("Chroot: %v", err)
	}
	if !Exists(t, public, "icons/logo.png") {
		t.Error("expected the chroot to see files written through the root")
	}
	WriteFile(t, public, "robots.txt", []byte("ok"))
	if !Exists(t, filesystem, "public/robots.txt") {
		t.Error("expected the root to see files written through the chroot")
	}
}
