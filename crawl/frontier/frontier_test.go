package frontier

import (
	"testing"
	"time"
)

func TestEnqueueDedupes(t *testing.T) {
	f := New(3, 100, 0)
	if !f.Enqueue("https://x.test/a", 0, "") {
		t.Fatal("expected first enqueue to be admitted")
	}
	if f.Enqueue("https://x.test/a", 0, "") {
		t.Error("expected duplicate enqueue to be rejected")
	}
}

func TestEnqueueRejectsBeyondMaxDepth(t *testing.T) {
	f := New(1, 100, 0)
	if f.Enqueue("https://x.test/deep", 2, "") {
		t.Error("expected enqueue beyond maxDepth to be rejected")
	}
}

func TestEnqueueRejectsBeyondMaxPages(t *testing.T) {
	f := New(5, 1, 0)
	if !f.Enqueue("https://x.test/a", 0, "") {
		t.Fatal("expected first enqueue to be admitted")
	}
	if f.Enqueue("https://x.test/b", 0, "") {
		t.Error("expected enqueue beyond maxPages to be rejected")
	}
}

func TestDequeueFIFOOrder(t *testing.T) {
	f := New(5, 100, 0)
	f.Enqueue("https://x.test/a", 0, "")
	f.Enqueue("https://x.test/b", 0, "")

	first, ok := f.Dequeue()
	if !ok || first.URL != "https://x.test/a" {
		t.Fatalf("expected a first, got %+v ok=%v", first, ok)
	}
	second, ok := f.Dequeue()
	if !ok || second.URL != "https://x.test/b" {
		t.Fatalf("expected b second, got %+v ok=%v", second, ok)
	}
	if _, ok := f.Dequeue(); ok {
		t.Error("expected empty queue to report ok=false")
	}
}

func TestDequeueMarksInProgress(t *testing.T) {
	f := New(5, 100, 0)
	f.Enqueue("https://x.test/a", 0, "")
	f.Dequeue()

	if f.IsDone() {
		t.Error("expected IsDone=false while an entry is in progress")
	}
	f.Complete("https://x.test/a")
	if !f.IsDone() {
		t.Error("expected IsDone=true after Complete")
	}
}

func TestDrainUpToStopsAtQueueLength(t *testing.T) {
	f := New(5, 100, 0)
	f.Enqueue("https://x.test/a", 0, "")
	f.Enqueue("https://x.test/b", 0, "")

	batch := f.DrainUpTo(5)
	if len(batch) != 2 {
		t.Errorf("expected 2 drained entries, got %d", len(batch))
	}
}

func TestDequeueRespectsRateLimit(t *testing.T) {
	f := New(5, 100, 50*time.Millisecond)
	f.Enqueue("https://x.test/a", 0, "")
	f.Enqueue("https://x.test/b", 0, "")

	f.Dequeue()
	start := time.Now()
	f.Dequeue()
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("expected second dequeue to wait for rate limit, elapsed=%v", elapsed)
	}
}

func TestSeenCountReflectsAdmittedURLs(t *testing.T) {
	f := New(5, 100, 0)
	f.Enqueue("https://x.test/a", 0, "")
	f.Enqueue("https://x.test/b", 0, "")
	f.Enqueue("https://x.test/a", 0, "") // duplicate, not counted again

	if got := f.SeenCount(); got != 2 {
		t.Errorf("expected SeenCount=2, got %d", got)
	}
}
