package replay

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"agentmux/internal/ptysession"
)

func TestRecorderWritesAndReadAll(t *testing.T) {
	dir := t.TempDir()
	rec, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	kf := &ptysession.Keyframe{Size: ptysession.GridSize{Rows: 24, Cols: 80}, Timestamp: time.Now()}
	if err := rec.RecordUpdate(ptysession.Update{Keyframe: kf}); err != nil {
		t.Fatal(err)
	}
	df := &ptysession.Diff{Timestamp: time.Now()}
	if err := rec.RecordUpdate(ptysession.Update{Diff: df}); err != nil {
		t.Fatal(err)
	}
	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}

	envs, err := ReadAll(filepath.Join(dir, "timeline.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(envs) != 2 {
		t.Fatalf("got %d envelopes, want 2", len(envs))
	}
	if envs[0].Type != EnvelopeKeyframe || envs[1].Type != EnvelopeDiff {
		t.Fatalf("envelope types = %v, %v", envs[0].Type, envs[1].Type)
	}
}

func TestTailFollowsNewEnvelopes(t *testing.T) {
	dir := t.TempDir()
	rec, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := Tail(ctx, filepath.Join(dir, "timeline.jsonl"))
	if err != nil {
		t.Fatal(err)
	}

	if err := rec.RecordRaw([]byte("hi")); err != nil {
		t.Fatal(err)
	}

	select {
	case env := <-ch:
		if env.Type != EnvelopeRaw {
			t.Fatalf("got type %v, want raw", env.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Tail did not deliver the appended envelope in time")
	}
	rec.Close()
}
