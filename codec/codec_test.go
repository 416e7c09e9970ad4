package codec

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/structpb"
)

type entry struct {
	ID    string `json:"_id"`
	Slug  string `json:"slug,omitempty"`
	Title string `json:"title"`
}

func TestJSONCompactNoHTMLEscape(t *testing.T) {
	b, err := JSON[entry]{}.Encode(entry{ID: "id3", Slug: "slug3", Title: "Prison <Break> & co"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"_id":"id3","slug":"slug3","title":"Prison <Break> & co"}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
}

func TestJSONDocRoundTrip(t *testing.T) {
	in := map[string]any{"_id": "id1", "title": "Rush", "year": 2013.0, "tags": []any{"f1"}}
	b, err := JSON[map[string]any]{}.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b, []byte(`{"_id":"id1","tags":["f1"],"title":"Rush","year":2013}`)) {
		t.Fatalf("unexpected encoding %s", b)
	}
	out, err := JSON[map[string]any]{}.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestJSONUseNumber(t *testing.T) {
	c := JSON[map[string]any]{UseNumber: true}
	out, err := c.Decode([]byte(`{"n":9007199254740993}`))
	if err != nil {
		t.Fatal(err)
	}
	if out["n"] != json.Number("9007199254740993") {
		t.Fatalf("got %#v", out["n"])
	}
	if _, err := c.Decode([]byte(`{"n":1} {"n":2}`)); err == nil {
		t.Fatalf("expected error on trailing value")
	}
}

func TestJSONMalformed(t *testing.T) {
	if _, err := (JSON[entry]{}).Decode([]byte("{not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestMsgpackUsesJSONTags(t *testing.T) {
	in := entry{ID: "id1", Title: "Rush"}
	b, err := Msgpack[entry]{}.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Msgpack[map[string]any]{}.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if doc["_id"] != "id1" || doc["title"] != "Rush" {
		t.Fatalf("unexpected doc %v", doc)
	}
	if _, ok := doc["slug"]; ok {
		t.Fatalf("omitempty not honored: %v", doc)
	}
}

func TestMsgpackDeterministicMaps(t *testing.T) {
	doc := map[string]any{"b": 1, "a": 2, "c": 3, "d": 4, "e": 5}
	first, err := Msgpack[map[string]any]{}.Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		b, err := Msgpack[map[string]any]{}.Encode(doc)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, b) {
			t.Fatalf("encoding not deterministic")
		}
	}
}

func TestCBORDocRoundTrip(t *testing.T) {
	c := MustCBOR[map[string]any]()
	in := map[string]any{"_id": "id2", "slug": "slug2"}
	b, err := c.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestProtobufStruct(t *testing.T) {
	c := NewProtobuf(func() *structpb.Struct { return &structpb.Struct{} })
	in, err := structpb.NewStruct(map[string]any{"_id": "id3", "title": "Prison Break"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := c.Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in.AsMap(), out.AsMap()); diff != "" {
		t.Fatalf("round trip (-want +got):\n%s", diff)
	}
}

func TestLimit(t *testing.T) {
	c := Limit[string]{Inner: String{}, MaxDecode: 4}
	if _, err := c.Decode([]byte("12345")); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected size error, got %v", err)
	}
	got, err := c.Decode([]byte("1234"))
	if err != nil || got != "1234" {
		t.Fatalf("got %q err=%v", got, err)
	}
	b, _ := c.Encode("abcdef")
	if string(b) != "abcdef" {
		t.Fatalf("encode must not be limited")
	}
}

func TestBytesIdentity(t *testing.T) {
	in := []byte{0, 1, 2}
	b, _ := Bytes{}.Encode(in)
	out, _ := Bytes{}.Decode(b)
	if !bytes.Equal(in, out) {
		t.Fatalf("identity broken")
	}
}
