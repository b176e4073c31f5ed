package fs_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/campaign-vault/pkg/fs"
)

func Test_MemFS_WriteFileAtomic_Requires_Parent_Directory(t *testing.T) {
	t.Parallel()

	m := fs.NewMem()

	err := m.WriteFileAtomic("vault/npc/mira.md", []byte("x"), 0o644)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want ErrNotExist", err)
	}

	if err := m.MkdirAll("vault/npc", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := m.WriteFileAtomic("vault/npc/mira.md", []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := m.WriteFileAtomic("top.json", []byte("{}"), 0o644); err != nil {
		t.Fatalf("write at root: %v", err)
	}
}

func Test_MemFS_ReadFile_Returns_Copy_When_Written(t *testing.T) {
	t.Parallel()

	m := fs.NewMem()
	data := []byte("hello")

	if err := m.WriteFileAtomic("a.md", data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	data[0] = 'j'

	got, err := m.ReadFile("./a.md")
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if string(got) != "hello" {
		t.Fatalf("got %q, want hello", got)
	}

	_, err = m.ReadFile("missing.md")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err=%v, want ErrNotExist", err)
	}
}

func Test_MemFS_ReadDir_Lists_Sorted_Children(t *testing.T) {
	t.Parallel()

	m := fs.NewMem()
	stamp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m.Now = func() time.Time { return stamp }

	for _, dir := range []string{"/v/npc", "/v/quest"} {
		if err := m.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	for _, p := range []string{"/v/npc/b.md", "/v/npc/a.md", "/v/readme.md"} {
		if err := m.WriteFileAtomic(p, []byte(p), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}

	entries, err := m.ReadDir("/v")
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}

	if diff := cmp.Diff([]string{"npc", "quest", "readme.md"}, names); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}

	if !entries[0].IsDir() || entries[2].IsDir() {
		t.Fatalf("dir flags wrong")
	}

	info, err := m.Stat("/v/npc/a.md")
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	if !info.ModTime().Equal(stamp) || info.Size() != int64(len("/v/npc/a.md")) {
		t.Fatalf("info=%v %v", info.ModTime(), info.Size())
	}

	if diff := cmp.Diff([]string{"/v/npc/a.md", "/v/npc/b.md", "/v/readme.md"}, m.Paths()); diff != "" {
		t.Fatalf("paths (-want +got):\n%s", diff)
	}
}

func Test_MemFS_MkdirAll_Fails_When_File_In_The_Way(t *testing.T) {
	t.Parallel()

	m := fs.NewMem()
	if err := m.WriteFileAtomic("npc", []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := m.MkdirAll("npc/sub", 0o755); err == nil {
		t.Fatal("expected error")
	}

	exists, err := m.Exists("npc/sub")
	if err != nil || exists {
		t.Fatalf("exists=%v err=%v", exists, err)
	}
}
