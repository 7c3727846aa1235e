package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestDecode_DonePreferred(t *testing.T) {
	body := strings.Join([]string{
		`data: {"type":"chunk","content":"a"}`,
		`data: {"type":"chunk","content":"b"}`,
		`data: {"type":"done","response":"ab","sessionId":"s-1"}`,
	}, "\n")

	var chunks []string
	res, err := Decode(strings.NewReader(body), func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if res.Text != "ab" {
		t.Errorf("Text = %q, want %q (server final text, not concatenation)", res.Text, "ab")
	}
	if !res.Done {
		t.Error("Done should be true")
	}
	if res.SessionID != "s-1" {
		t.Errorf("SessionID = %q, want %q", res.SessionID, "s-1")
	}
	if len(chunks) != 2 || chunks[0] != "a" || chunks[1] != "b" {
		t.Errorf("chunks = %v, want [a b] in arrival order", chunks)
	}
}

func TestDecode_SkipsMalformedLines(t *testing.T) {
	body := strings.Join([]string{
		`data: {"type":"chunk","content":"Hi"}`,
		`data: {not valid json`,
		`: comment line`,
		``,
		`data: {"type":"chunk","content":" there"}`,
	}, "\n")

	var chunks []string
	res, err := Decode(strings.NewReader(body), func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "Hi" || chunks[1] != " there" {
		t.Errorf("chunks = %v, want both valid chunks in order", chunks)
	}
	if res.Text != "Hi there" {
		t.Errorf("Text = %q, want %q", res.Text, "Hi there")
	}
	if res.Done {
		t.Error("Done should be false without a done event")
	}
}

func TestDecode_ErrorEventAborts(t *testing.T) {
	body := strings.Join([]string{
		`data: {"type":"chunk","content":"partial"}`,
		`data: {"type":"error","error":"model overloaded"}`,
		`data: {"type":"chunk","content":"never seen"}`,
	}, "\n")

	var chunks []string
	_, err := Decode(strings.NewReader(body), func(c string) error {
		chunks = append(chunks, c)
		return nil
	})
	if err == nil {
		t.Fatal("Decode() should fail on an error event")
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Errorf("error = %v, want server message preserved", err)
	}
	var se *ServerError
	if !errors.As(err, &se) || se.Message != "model overloaded" {
		t.Errorf("error = %v, want *ServerError carrying the message", err)
	}
	if len(chunks) != 1 {
		t.Errorf("chunks after error = %v, want reads abandoned", chunks)
	}
}

func TestDecode_ChunkCallbackErrorStops(t *testing.T) {
	body := strings.Join([]string{
		`data: {"type":"chunk","content":"a"}`,
		`data: {"type":"chunk","content":"b"}`,
	}, "\n")

	calls := 0
	_, err := Decode(strings.NewReader(body), func(c string) error {
		calls++
		return errors.New("viewer went away")
	})
	if err == nil {
		t.Fatal("Decode() should propagate callback error")
	}
	if calls != 1 {
		t.Errorf("callback calls = %d, want 1", calls)
	}
}

// splitReader delivers the body in tiny reads so event records span
// read boundaries.
type splitReader struct {
	data []byte
	pos  int
	n    int
}

func (r *splitReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	end := r.pos + r.n
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

func TestDecode_PartialRecordsAcrossReads(t *testing.T) {
	body := `data: {"type":"chunk","content":"Hello"}` + "\n" +
		`data: {"type":"done","response":"Hello world","sessionId":"s-2"}` + "\n"

	res, err := Decode(&splitReader{data: []byte(body), n: 3}, nil)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if res.Text != "Hello world" || !res.Done {
		t.Errorf("got %+v, want done with server final text", res)
	}
}
