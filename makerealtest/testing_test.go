package makerealtest_test

import (
	"context"
	"testing"

	"github.com/sketchwire/makereal"
	"github.com/sketchwire/makereal/makerealtest"
)

func TestMockReturnsScriptedResultsInOrder(t *testing.T) {
	client := makerealtest.NewMockCompletionClient().
		Enqueue(
			makerealtest.NewMockSendResultAnswer("first"),
			makerealtest.NewMockSendResultError(makereal.NewTimeoutError(nil)),
		)

	got, err := client.Send(context.Background(), &makereal.GenerationRequest{})
	if err != nil || got != "first" {
		t.Fatalf("first call = %q, %v", got, err)
	}

	_, err = client.Send(context.Background(), &makereal.GenerationRequest{})
	if makereal.KindOf(err) != makereal.Timeout {
		t.Fatalf("second call error = %v", err)
	}

	if _, err := client.Send(context.Background(), &makereal.GenerationRequest{}); err == nil {
		t.Fatal("exhausted mock should error")
	}
}

func TestMockTracksRequests(t *testing.T) {
	client := makerealtest.NewMockCompletionClient().
		Enqueue(makerealtest.NewMockSendResultAnswer("ok"))

	req := &makereal.GenerationRequest{Model: "gpt-4o"}
	if _, err := client.Send(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	tracked := client.TrackedRequests()
	if len(tracked) != 1 || tracked[0].Model != "gpt-4o" {
		t.Errorf("tracked = %+v", tracked)
	}

	client.Reset()
	if len(client.TrackedRequests()) != 0 {
		t.Error("reset did not clear tracked requests")
	}
}

func TestMockGateBlocksUntilReleased(t *testing.T) {
	client := makerealtest.NewMockCompletionClient()
	gate := client.EnqueueGated(makerealtest.NewMockSendResultAnswer("gated"))

	done := make(chan string, 1)
	go func() {
		got, _ := client.Send(context.Background(), &makereal.GenerationRequest{})
		done <- got
	}()

	select {
	case got := <-done:
		t.Fatalf("send resolved before gate release: %q", got)
	default:
	}

	close(gate)
	if got := <-done; got != "gated" {
		t.Errorf("got %q", got)
	}
}

func TestMockGateRespectsCancellation(t *testing.T) {
	client := makerealtest.NewMockCompletionClient()
	_ = client.EnqueueGated(makerealtest.NewMockSendResultAnswer("never"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Send(ctx, &makereal.GenerationRequest{})
	if err == nil {
		t.Fatal("expected context error")
	}
}
