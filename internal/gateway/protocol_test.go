package gateway

import (
	"testing"

	"agentmux/internal/ptysession"
)

func TestParseClientMessageKey(t *testing.T) {
	raw := []byte(`{"type":"Key","data":{"code":{"char":97},"modifiers":{"ctrl":true}}}`)
	msg, err := parseClientMessage(raw)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Type != TypeKey {
		t.Fatalf("type = %q, want Key", msg.Type)
	}
	var data KeyData
	if err := unmarshalData(msg.Data, &data); err != nil {
		t.Fatal(err)
	}
	if !data.Modifiers.Ctrl {
		t.Fatal("expected ctrl modifier to be set")
	}
}

func TestGridUpdateMessageKeyframe(t *testing.T) {
	kf := &ptysession.Keyframe{Size: ptysession.GridSize{Rows: 24, Cols: 80}}
	msg := gridUpdateMessage(ptysession.Update{Keyframe: kf})
	if msg.Type != TypeGridUpdate {
		t.Fatalf("type = %q, want GridUpdate", msg.Type)
	}
	if msg.Data != kf {
		t.Fatal("expected Data to carry the keyframe pointer")
	}
}

func TestGridUpdateMessageDiff(t *testing.T) {
	df := &ptysession.Diff{}
	msg := gridUpdateMessage(ptysession.Update{Diff: df})
	if msg.Data != df {
		t.Fatal("expected Data to carry the diff pointer")
	}
}

func TestErrorMessage(t *testing.T) {
	msg := errorMessage("boom")
	ed, ok := msg.Data.(ErrorData)
	if !ok || ed.Message != "boom" {
		t.Fatalf("error message = %+v", msg)
	}
}
