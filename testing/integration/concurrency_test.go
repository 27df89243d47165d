package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/research"
	rt "github.com/zoobzio/research/testing"
	"golang.org/x/sync/errgroup"
)

func TestConcurrency_MultipleGoroutines(t *testing.T) {
	// Single assistant, many goroutines processing concurrently
	srv := rt.NewTextServer("concurrent answer")
	defer srv.Close()

	a, err := research.New(srv.Config())
	if err != nil {
		t.Fatalf("failed to create assistant: %v", err)
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	var successCount atomic.Int64
	var errorCount atomic.Int64

	goroutines := 50
	callsPerGoroutine := 10

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			op := "summarize"
			if i%2 == 1 {
				op = "suggest"
			}
			for j := 0; j < callsPerGoroutine; j++ {
				text, err := a.ProcessContent(ctx, fmt.Sprintf("content %d-%d", i, j), op)
				if err != nil || text != "concurrent answer" {
					errorCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}
		}(i)
	}

	wg.Wait()

	expectedCalls := int64(goroutines * callsPerGoroutine)
	if successCount.Load() != expectedCalls {
		t.Errorf("expected %d successful calls, got %d (errors: %d)",
			expectedCalls, successCount.Load(), errorCount.Load())
	}
	if int64(srv.Hits()) != expectedCalls {
		t.Errorf("expected %d hits, got %d", expectedCalls, srv.Hits())
	}
}

func TestConcurrency_PromptsDoNotCross(t *testing.T) {
	// Each response echoes the request's prompt so a mixed-up exchange shows
	mock := research.NewMockTransportWithCallback(func(req *http.Request) (int, string, error) {
		prompt, err := rt.PromptOf(mustRead(req))
		if err != nil {
			return 0, "", err
		}
		return http.StatusOK, rt.NewResponseBuilder().WithText(prompt).Build(), nil
	})

	a, err := research.New(research.Config{BaseURL: "http://gemini.test", APIKey: rt.TestAPIKey, Client: mock})
	if err != nil {
		t.Fatalf("failed to create assistant: %v", err)
	}

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			req := research.Request{Content: fmt.Sprintf("unique content %d", i), Operation: research.OperationSummarize}
			res, err := a.Process(ctx, req)
			if err != nil {
				return err
			}
			want, _ := research.BuildPrompt(req)
			if res.Text != want {
				return fmt.Errorf("request %d got response for another prompt: %q", i, res.Text)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Errorf("expected every response to match its own request: %v", err)
	}
}

func TestConcurrency_TimeoutUnderLoad(t *testing.T) {
	srv := rt.NewSlowServer(2*time.Second, http.StatusOK, rt.NewResponseBuilder().WithText("late").Build())
	defer srv.Close()

	a, err := research.New(srv.Config(), research.WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("failed to create assistant: %v", err)
	}

	var wg sync.WaitGroup
	var transportCount atomic.Int64
	goroutines := 20

	start := time.Now()
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.ProcessContent(context.Background(), "x", "summarize")
			if research.IsRetryable(err) {
				transportCount.Add(1)
			}
		}()
	}
	wg.Wait()

	if transportCount.Load() != int64(goroutines) {
		t.Errorf("expected %d transport failures, got %d", goroutines, transportCount.Load())
	}
	if time.Since(start) > 1500*time.Millisecond {
		t.Errorf("timeouts were not enforced concurrently: %v", time.Since(start))
	}
}

func TestConcurrency_CancellationUnderLoad(t *testing.T) {
	srv := rt.NewSlowServer(2*time.Second, http.StatusOK, rt.NewResponseBuilder().WithText("late").Build())
	defer srv.Close()

	a, err := research.New(srv.Config())
	if err != nil {
		t.Fatalf("failed to create assistant: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var cancelledCount atomic.Int64
	goroutines := 20

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.ProcessContent(ctx, "x", "suggest")
			if research.KindOf(err) == research.KindCancelled {
				cancelledCount.Add(1)
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	cancel()
	wg.Wait()

	if cancelledCount.Load() != int64(goroutines) {
		t.Errorf("expected %d cancellations, got %d", goroutines, cancelledCount.Load())
	}
}

func TestConcurrency_CallRecording(t *testing.T) {
	mock := research.NewMockTransportWithText("ok")
	a, err := research.New(research.Config{BaseURL: "http://gemini.test", APIKey: rt.TestAPIKey, Client: mock})
	if err != nil {
		t.Fatalf("failed to create assistant: %v", err)
	}

	var wg sync.WaitGroup
	goroutines := 30
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = a.ProcessContent(context.Background(), "x", "summarize")
		}()
	}
	wg.Wait()

	if mock.Calls() != goroutines {
		t.Errorf("expected %d calls, got %d", goroutines, mock.Calls())
	}
	if len(mock.Bodies()) != goroutines {
		t.Errorf("expected %d recorded bodies, got %d", goroutines, len(mock.Bodies()))
	}
}
