package binding

import (
	stderrors "errors"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/wasm-stack/errors"
	"github.com/wippyai/wasm-stack/resource"
	"github.com/wippyai/wasm-stack/stack"
)

func newBinding(t *testing.T, capacity int) *Binding {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Capacity = capacity
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNew_Config(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"capacity one", Config{ModuleName: "s", Capacity: 1}, false},
		{"empty module name", Config{Capacity: 10}, true},
		{"zero capacity", Config{ModuleName: "s"}, true},
		{"negative capacity", Config{ModuleName: "s", Capacity: -5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var e *errors.Error
				if !stderrors.As(err, &e) || e.Phase != errors.PhaseConfig {
					t.Fatalf("error = %v, want config phase", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			_ = b.Close()
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ModuleName != DefaultModuleName {
		t.Errorf("ModuleName = %q, want %q", cfg.ModuleName, DefaultModuleName)
	}
	if cfg.Capacity != stack.DefaultCapacity {
		t.Errorf("Capacity = %d, want %d", cfg.Capacity, stack.DefaultCapacity)
	}
}

func TestBinding_PushPopPeek(t *testing.T) {
	b := newBinding(t, stack.DefaultCapacity)

	h, err := b.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h == 0 {
		t.Fatal("Create returned the zero handle")
	}

	for _, v := range []int32{1, 2, 3} {
		if err := b.Push(h, v); err != nil {
			t.Fatalf("Push(%d): %v", v, err)
		}
	}

	if v, err := b.Peek(h); err != nil || v != 3 {
		t.Fatalf("Peek = %d, %v; want 3", v, err)
	}
	if n, _ := b.Len(h); n != 3 {
		t.Fatalf("Len = %d, want 3", n)
	}

	for _, want := range []int32{3, 2, 1} {
		v, err := b.Pop(h)
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if v != want {
			t.Fatalf("Pop = %d, want %d", v, want)
		}
	}

	if _, err := b.Pop(h); !stderrors.Is(err, stack.ErrUnderflow) {
		t.Fatalf("Pop on empty = %v, want underflow", err)
	}
	if _, err := b.Peek(h); !stderrors.Is(err, stack.ErrUnderflow) {
		t.Fatalf("Peek on empty = %v, want underflow", err)
	}
}

func TestBinding_Overflow(t *testing.T) {
	b := newBinding(t, 2)
	h, _ := b.Create()

	if err := b.Push(h, 10); err != nil {
		t.Fatal(err)
	}
	if err := b.Push(h, 20); err != nil {
		t.Fatal(err)
	}

	err := b.Push(h, 30)
	if !stderrors.Is(err, stack.ErrOverflow) {
		t.Fatalf("Push on full = %v, want overflow", err)
	}
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Message() != "Stack is full." {
		t.Fatalf("message = %v", err)
	}

	if v, _ := b.Peek(h); v != 20 {
		t.Fatalf("Peek after overflow = %d, want 20", v)
	}
	if n, _ := b.Len(h); n != 2 {
		t.Fatalf("Len after overflow = %d, want 2", n)
	}
}

func TestBinding_IndependentStacks(t *testing.T) {
	b := newBinding(t, 4)
	a, _ := b.Create()
	c, _ := b.Create()
	if a == c {
		t.Fatalf("handles collide: %d", a)
	}

	_ = b.Push(a, 1)
	_ = b.Push(a, 2)
	_ = b.Push(c, 9)

	if v, _ := b.Pop(c); v != 9 {
		t.Fatalf("Pop(c) = %d, want 9", v)
	}
	if _, err := b.Pop(c); !stderrors.Is(err, stack.ErrUnderflow) {
		t.Fatalf("Pop(c) on empty = %v", err)
	}
	if n, _ := b.Len(a); n != 2 {
		t.Fatalf("Len(a) = %d, want 2", n)
	}
}

func TestBinding_InvalidHandle(t *testing.T) {
	b := newBinding(t, 4)
	dropped, _ := b.Create()
	if err := b.Drop(dropped); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	tests := []struct {
		name   string
		handle resource.Handle
	}{
		{"zero", 0},
		{"never issued", 4242},
		{"dropped", dropped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := map[string]error{}
			ops["push"] = b.Push(tt.handle, 1)
			_, ops["peek"] = b.Peek(tt.handle)
			_, ops["pop"] = b.Pop(tt.handle)
			_, ops["len"] = b.Len(tt.handle)
			ops["drop"] = b.Drop(tt.handle)

			for op, err := range ops {
				if !stderrors.Is(err, ErrInvalidHandle) {
					t.Errorf("%s: error = %v, want invalid handle", op, err)
				}
				if StatusOf(err) != StatusBadArg {
					t.Errorf("%s: status = %v, want badarg", op, StatusOf(err))
				}
			}
		})
	}
}

func TestBinding_HandleReuse(t *testing.T) {
	b := newBinding(t, 4)
	h, _ := b.Create()
	_ = b.Push(h, 7)
	_ = b.Drop(h)

	h2, err := b.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h2 != h {
		t.Fatalf("reissued handle = %d, want %d", h2, h)
	}
	if n, _ := b.Len(h2); n != 0 {
		t.Fatalf("reissued stack Len = %d, want 0", n)
	}
}

func TestBinding_Handles(t *testing.T) {
	b := newBinding(t, 4)
	a, _ := b.Create()
	c, _ := b.Create()
	d, _ := b.Create()
	_ = b.Drop(c)

	hs := b.Handles()
	if len(hs) != 2 || hs[0] != a || hs[1] != d {
		t.Fatalf("Handles = %v, want [%d %d]", hs, a, d)
	}
}

func TestBinding_Close(t *testing.T) {
	cfg := DefaultConfig()
	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := b.Create()

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	_, err = b.Create()
	if !stderrors.Is(err, resource.ErrClosed) {
		t.Fatalf("Create after Close = %v, want closed", err)
	}
	if StatusOf(err) != StatusClosed {
		t.Fatalf("status = %v, want closed", StatusOf(err))
	}
	if err := b.Push(h, 1); !stderrors.Is(err, ErrInvalidHandle) {
		t.Fatalf("Push after Close = %v, want invalid handle", err)
	}
}

func TestBinding_Stats(t *testing.T) {
	b := newBinding(t, 4)
	a, _ := b.Create()
	_, _ = b.Create()
	_ = b.Drop(a)

	got := b.Stats()
	want := Stats{Live: 1, Created: 2, Released: 1}
	if got != want {
		t.Fatalf("Stats = %+v, want %+v", got, want)
	}
}

func TestBinding_ConcurrentHandles(t *testing.T) {
	const workers = 8
	b := newBinding(t, stack.DefaultCapacity)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			h, err := b.Create()
			if err != nil {
				errs <- err
				return
			}
			for i := 0; i < stack.DefaultCapacity; i++ {
				if err := b.Push(h, int32(w*1000+i)); err != nil {
					errs <- err
					return
				}
			}
			for i := stack.DefaultCapacity - 1; i >= 0; i-- {
				v, err := b.Pop(h)
				if err != nil {
					errs <- err
					return
				}
				if v != int32(w*1000+i) {
					errs <- stderrors.New("values interleaved between stacks")
					return
				}
			}
			errs <- b.Drop(h)
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
	if live := b.Stats().Live; live != 0 {
		t.Fatalf("live stacks = %d, want 0", live)
	}
}

func TestBinding_ConcurrentSharedHandle(t *testing.T) {
	const (
		capacity = 50
		workers  = 10
		perCall  = 10
	)
	b := newBinding(t, capacity)
	h, _ := b.Create()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, full  int
		unexpects []error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perCall; i++ {
				err := b.Push(h, int32(i))
				mu.Lock()
				switch {
				case err == nil:
					ok++
				case stderrors.Is(err, stack.ErrOverflow):
					full++
				default:
					unexpects = append(unexpects, err)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(unexpects) > 0 {
		t.Fatalf("unexpected errors: %v", unexpects)
	}
	if ok != capacity || full != workers*perCall-capacity {
		t.Fatalf("ok = %d, overflow = %d", ok, full)
	}
	if n, _ := b.Len(h); n != capacity {
		t.Fatalf("Len = %d, want %d", n, capacity)
	}
}

func TestBinding_LogsLifecycle(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultConfig()
	cfg.Logger = zap.New(core)

	b, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := b.Create()
	_ = b.Drop(h)
	_ = b.Close()

	if n := logs.FilterMessage("stack created").Len(); n != 1 {
		t.Errorf("created entries = %d, want 1", n)
	}
	dropped := logs.FilterMessage("stack dropped").All()
	if len(dropped) != 1 {
		t.Fatalf("dropped entries = %d, want 1", len(dropped))
	}
	fields := dropped[0].ContextMap()
	if fields["module"] != DefaultModuleName {
		t.Errorf("module field = %v", fields["module"])
	}
	if fields["handle"] != uint32(h) {
		t.Errorf("handle field = %v, want %d", fields["handle"], h)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want Status
	}{
		{nil, "nil", StatusOK},
		{errors.Overflow(3), "overflow", StatusOverflow},
		{errors.Underflow(), "underflow", StatusUnderflow},
		{errors.InvalidHandle(9), "invalid handle", StatusBadArg},
		{errors.Closed("stack binding"), "closed", StatusClosed},
		{stderrors.New("boom"), "foreign", StatusBadArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Fatalf("StatusOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_Message(t *testing.T) {
	tests := []struct {
		status Status
		name   string
		msg    string
	}{
		{StatusOK, "ok", ""},
		{StatusOverflow, "overflow", "Stack is full."},
		{StatusUnderflow, "underflow", "Stack is empty."},
		{StatusBadArg, "badarg", "Invalid stack handle."},
		{StatusClosed, "closed", "Stack binding is closed."},
		{Status(99), "unknown", "Unknown status."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.String(); got != tt.name {
				t.Errorf("String = %q, want %q", got, tt.name)
			}
			if got := tt.status.Message(); got != tt.msg {
				t.Errorf("Message = %q, want %q", got, tt.msg)
			}
		})
	}
}
