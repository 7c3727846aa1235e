package store

import (
	"testing"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

func TestNew_SeedsWelcome(t *testing.T) {
	c := New("welcome!")
	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want 1", len(msgs))
	}
	if msgs[0].Role != model.RoleAssistant || msgs[0].Content != "welcome!" {
		t.Errorf("welcome message = %+v", msgs[0])
	}
}

func TestAppend_SingleStreamInvariant(t *testing.T) {
	c := New("")

	if err := c.Append(model.NewAssistantMessage("a", "", true)); err != nil {
		t.Fatalf("first streaming append: %v", err)
	}
	if err := c.Append(model.NewAssistantMessage("b", "", true)); err != ErrStreamActive {
		t.Errorf("second streaming append error = %v, want ErrStreamActive", err)
	}
	// Non-streaming appends stay legal during a stream.
	if err := c.Append(model.NewUserMessage("c", "hi")); err != nil {
		t.Errorf("user append during stream: %v", err)
	}
}

func TestStreamingLifecycle(t *testing.T) {
	c := New("")
	if err := c.AppendChunk("x"); err != ErrNoStream {
		t.Errorf("AppendChunk without stream = %v, want ErrNoStream", err)
	}

	c.Append(model.NewUserMessage("u", "hello"))
	c.Append(model.NewAssistantMessage("a", "", true))

	c.AppendChunk("Hi")
	c.AppendChunk(" there")

	// Server final text wins over local accumulation.
	if err := c.CompleteStream("Hi there!"); err != nil {
		t.Fatalf("CompleteStream: %v", err)
	}

	last, _ := c.Last()
	if last.Content != "Hi there!" {
		t.Errorf("final content = %q, want %q", last.Content, "Hi there!")
	}
	if last.Streaming {
		t.Error("streaming flag must be cleared on completion")
	}
	if err := c.CompleteStream("again"); err != ErrNoStream {
		t.Errorf("second CompleteStream = %v, want ErrNoStream", err)
	}
}

func TestDropStream_RemovesOnlyStreamingMessage(t *testing.T) {
	c := New("")
	c.Append(model.NewUserMessage("u", "hello"))
	c.Append(model.NewAssistantMessage("a", "part", true))

	before := c.Len()
	c.DropStream()
	if c.Len() != before-1 {
		t.Fatalf("len = %d, want %d", c.Len(), before-1)
	}
	last, _ := c.Last()
	if last.Role != model.RoleUser {
		t.Errorf("last after drop = %+v, want the user message", last)
	}

	// No-op when nothing is streaming.
	c.DropStream()
	if c.Len() != before-1 {
		t.Error("DropStream without a stream must not mutate")
	}
}

func TestClear_LeavesExactlyOneWelcome(t *testing.T) {
	c := New("hello")
	c.Append(model.NewUserMessage("u", "question"))
	c.Append(model.NewAssistantMessage("a", "answer", false))

	c.Clear()
	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len after clear = %d, want 1", len(msgs))
	}
	if msgs[0].Content != "hello" {
		t.Errorf("content = %q, want welcome text", msgs[0].Content)
	}
}

func TestReplaceAll_PreservesOrder(t *testing.T) {
	c := New("")
	loaded := []model.Message{
		model.NewUserMessage("1", "first"),
		model.NewAssistantMessage("2", "second", false),
		model.NewUserMessage("3", "third"),
	}
	c.ReplaceAll(loaded)

	msgs := c.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Content, want)
		}
	}
}

func TestHistory_WindowAndFiltering(t *testing.T) {
	c := New("")
	c.Append(model.NewUserMessage("1", "one"))
	c.Append(model.NewRestrictedMessage("2", "spam", "matched"))
	c.Append(model.NewAssistantMessage("3", "two", false))
	c.Append(model.NewErrorMessage("4", "boom", "failed input"))
	c.Append(model.NewUserMessage("5", "three"))

	h := c.History(2)
	if len(h) != 2 {
		t.Fatalf("len = %d, want 2", len(h))
	}
	if h[0].Content != "two" || h[1].Content != "three" {
		t.Errorf("history = %v, want trailing clean window", h)
	}
}

func TestLastFailedInput(t *testing.T) {
	c := New("")
	if _, ok := c.LastFailedInput(); ok {
		t.Error("fresh conversation should have no failed input")
	}
	c.Append(model.NewErrorMessage("e", "network down", "resend me"))
	got, ok := c.LastFailedInput()
	if !ok || got != "resend me" {
		t.Errorf("LastFailedInput = %q/%v, want %q", got, ok, "resend me")
	}
}
