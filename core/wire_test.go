package plic

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"strings"
	"testing"
)

func TestWireRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMsg(&buf, map[string]any{"id": "r1", "op": "eval", "expr": "(λ x <x>)"}); err != nil {
		t.Fatal(err)
	}
	msg, err := ReadMsg(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg["id"] != "r1" || msg["op"] != "eval" || msg["expr"] != "(λ x <x>)" {
		t.Fatalf("unexpected message %v", msg)
	}
	if _, err := ReadMsg(&buf); err != io.EOF {
		t.Fatalf("expected io.EOF after last message, got %v", err)
	}
}

// The largest Integer must survive the socket and a re-encode exactly.
func TestWireMaxUint64(t *testing.T) {
	var buf bytes.Buffer
	val, err := ValueToGo(IntegerVal(math.MaxUint64))
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteMsg(&buf, map[string]any{"ok": true, "value": val}); err != nil {
		t.Fatal(err)
	}
	msg, err := ReadMsg(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if msg["value"] != json.Number("18446744073709551615") {
		t.Fatalf("got %#v", msg["value"])
	}
	out, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"value":18446744073709551615`) {
		t.Fatalf("re-encoded value changed: %s", out)
	}
}

func TestWireFrameLength(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMsg(&buf, map[string]any{"a": 1}); err != nil {
		t.Fatal(err)
	}
	frame := buf.Bytes()
	if n := binary.BigEndian.Uint32(frame); int(n) != len(frame)-4 || string(frame[4:]) != `{"a":1}` {
		t.Fatalf("bad frame %q", frame)
	}
}

func TestWireReadErrors(t *testing.T) {
	oversized := make([]byte, 4)
	binary.BigEndian.PutUint32(oversized, MaxMsgSize+1)
	for name, data := range map[string][]byte{
		"short header": {0, 0},
		"short body":   {0, 0, 0, 9, '{', '}'},
		"not json":     {0, 0, 0, 3, 'a', 'b', 'c'},
		"not object":   {0, 0, 0, 4, 'n', 'u', 'l', 'l'},
		"oversized":    oversized,
	} {
		_, err := ReadMsg(bytes.NewReader(data))
		if err == nil || err == io.EOF {
			t.Fatalf("%s: expected a read error, got %v", name, err)
		}
	}
}

func TestMsgInt(t *testing.T) {
	for _, tc := range []struct {
		raw any
		n   int
		ok  bool
	}{
		{json.Number("3"), 3, true},
		{json.Number("0"), 0, true},
		{json.Number("2.7"), 2, true},
		{json.Number("1e30"), 10, true},
		{json.Number("99999999999999999999999"), 10, true},
		{json.Number("-1"), 0, false},
		{float64(4), 4, true},
		{float64(1e30), 10, true},
		{float64(-0.5), 0, false},
		{math.NaN(), 0, false},
		{7, 7, true},
		{"7", 0, false},
		{nil, 0, false},
	} {
		n, ok := MsgInt(tc.raw, 10)
		if n != tc.n || ok != tc.ok {
			t.Errorf("MsgInt(%#v) = %d, %v; want %d, %v", tc.raw, n, ok, tc.n, tc.ok)
		}
	}
}

func TestNextIDUnique(t *testing.T) {
	a, b := NextID(), NextID()
	if a == b || !strings.HasPrefix(a, "r") {
		t.Fatalf("ids %q and %q", a, b)
	}
}
