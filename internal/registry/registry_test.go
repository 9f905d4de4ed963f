package registry

import (
	"testing"
	"time"

	"agentmux/internal/ptysession"
)

func TestWriteReadRoundTrip(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	id := NewSessionID()
	want := SessionMeta{
		ID:        id,
		Agent:     "claude",
		Args:      []string{"--resume"},
		Dir:       "/tmp/work",
		StartedAt: time.Now().UTC().Truncate(time.Second),
		Size:      ptysession.GridSize{Rows: 30, Cols: 80},
	}
	if err := reg.Write(want); err != nil {
		t.Fatal(err)
	}
	got, err := reg.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Agent != want.Agent || got.Size != want.Size || len(got.Args) != 1 {
		t.Fatalf("round-tripped metadata = %+v, want %+v", got, want)
	}
}

func TestListSkipsMissingMetadata(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	id := NewSessionID()
	if err := reg.Write(SessionMeta{ID: id, Agent: "claude"}); err != nil {
		t.Fatal(err)
	}

	// A session directory with no metadata file (e.g. mid-setup).
	if _, err := reg.Lock(NewSessionID()); err != nil {
		t.Fatal(err)
	}

	metas, err := reg.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 || metas[0].ID != id {
		t.Fatalf("List() = %+v, want exactly the one written session", metas)
	}
}

func TestLockPreventsSecondDaemon(t *testing.T) {
	reg, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	id := NewSessionID()
	lock1, err := reg.Lock(id)
	if err != nil {
		t.Fatal(err)
	}
	defer lock1.Unlock()

	if _, err := reg.Lock(id); err == nil {
		t.Fatal("expected a second lock attempt on the same session to fail")
	}
}
