package stack

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestNew_Empty(t *testing.T) {
	s := New()
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	if s.Cap() != DefaultCapacity {
		t.Fatalf("Cap = %d, want %d", s.Cap(), DefaultCapacity)
	}
	if !s.IsEmpty() || s.IsFull() {
		t.Fatal("new stack should be empty and not full")
	}
}

func TestNewWithCapacity_Invalid(t *testing.T) {
	for _, c := range []int{0, -1} {
		s, err := NewWithCapacity(c)
		if err == nil || s != nil {
			t.Fatalf("NewWithCapacity(%d) = %v, %v; want error", c, s, err)
		}
	}
}

func TestUnderflowBoundary(t *testing.T) {
	s := New()

	if _, err := s.Pop(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("Pop on empty: err = %v, want ErrUnderflow", err)
	}
	if _, err := s.Peek(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("Peek on empty: err = %v, want ErrUnderflow", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d after failed ops, want 0", s.Len())
	}
}

func TestOverflowBoundary(t *testing.T) {
	s := New()
	for i := 0; i < DefaultCapacity; i++ {
		if err := s.Push(int32(i)); err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}
	if !s.IsFull() {
		t.Fatal("expected full stack")
	}

	err := s.Push(1000)
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("Push on full: err = %v, want ErrOverflow", err)
	}
	if errors.Is(err, ErrUnderflow) {
		t.Fatal("overflow must be distinguishable from underflow")
	}
	if s.Len() != DefaultCapacity {
		t.Fatalf("Len = %d after overflow, want %d", s.Len(), DefaultCapacity)
	}
	top, _ := s.Peek()
	if top != DefaultCapacity-1 {
		t.Fatalf("top = %d after overflow, want %d", top, DefaultCapacity-1)
	}
}

func TestErrorMessages(t *testing.T) {
	s, _ := NewWithCapacity(1)
	_ = s.Push(1)

	var serr interface{ Message() string }
	err := s.Push(2)
	if !errors.As(err, &serr) || serr.Message() != "Stack is full." {
		t.Fatalf("overflow message: %v", err)
	}

	_, _ = s.Pop()
	_, err = s.Pop()
	if !errors.As(err, &serr) || serr.Message() != "Stack is empty." {
		t.Fatalf("underflow message: %v", err)
	}
}

func TestLIFOOrder(t *testing.T) {
	s := New()
	values := []int32{3, -1, 42, 0, 7, 2147483647, -2147483648}
	for _, v := range values {
		if err := s.Push(v); err != nil {
			t.Fatalf("Push %d: %v", v, err)
		}
	}
	for i := len(values) - 1; i >= 0; i-- {
		v, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if v != values[i] {
			t.Fatalf("Pop = %d, want %d", v, values[i])
		}
	}
	if !s.IsEmpty() {
		t.Fatal("expected empty stack")
	}
}

func TestPeekIdempotent(t *testing.T) {
	s := New()
	_ = s.Push(9)
	_ = s.Push(11)

	for i := 0; i < 5; i++ {
		v, err := s.Peek()
		if err != nil || v != 11 {
			t.Fatalf("Peek = %d, %v; want 11", v, err)
		}
		if s.Len() != 2 {
			t.Fatalf("Len = %d after Peek, want 2", s.Len())
		}
	}
}

func TestScenario_Capacity3(t *testing.T) {
	s, err := NewWithCapacity(3)
	if err != nil {
		t.Fatal(err)
	}

	steps := []step{
		{op: "push", arg: 5, wantLen: 1},
		{op: "push", arg: 7, wantLen: 2},
		{op: "peek", want: 7, wantLen: 2},
		{op: "pop", want: 7, wantLen: 1},
		{op: "pop", want: 5, wantLen: 0},
		{op: "pop", wantErr: ErrUnderflow, wantLen: 0},
	}
	runSteps(t, s, steps)
}

func TestScenario_Capacity2(t *testing.T) {
	s, err := NewWithCapacity(2)
	if err != nil {
		t.Fatal(err)
	}

	steps := []step{
		{op: "push", arg: 1, wantLen: 1},
		{op: "push", arg: 2, wantLen: 2},
		{op: "push", arg: 3, wantErr: ErrOverflow, wantLen: 2},
		{op: "pop", want: 2, wantLen: 1},
		{op: "push", arg: 3, wantLen: 2},
		{op: "peek", want: 3, wantLen: 2},
	}
	runSteps(t, s, steps)
}

type step struct {
	op      string
	arg     int32
	want    int32
	wantErr error
	wantLen int
}

func runSteps(t *testing.T, s *Stack, steps []step) {
	t.Helper()
	for i, st := range steps {
		var (
			got int32
			err error
		)
		switch st.op {
		case "push":
			err = s.Push(st.arg)
		case "pop":
			got, err = s.Pop()
		case "peek":
			got, err = s.Peek()
		}

		if st.wantErr != nil {
			if !errors.Is(err, st.wantErr) {
				t.Fatalf("step %d %s: err = %v, want %v", i, st.op, err, st.wantErr)
			}
		} else {
			if err != nil {
				t.Fatalf("step %d %s: %v", i, st.op, err)
			}
			if st.op != "push" && got != st.want {
				t.Fatalf("step %d %s = %d, want %d", i, st.op, got, st.want)
			}
		}
		if s.Len() != st.wantLen {
			t.Fatalf("step %d %s: Len = %d, want %d", i, st.op, s.Len(), st.wantLen)
		}
	}
}

func TestPop_ZeroesVacatedSlot(t *testing.T) {
	s, _ := NewWithCapacity(4)
	_ = s.Push(10)
	_ = s.Push(20)
	_, _ = s.Pop()

	if s.elems[1] != 0 {
		t.Fatalf("vacated slot holds %d, want 0", s.elems[1])
	}
	v, _ := s.Peek()
	if v != 10 {
		t.Fatalf("Peek = %d, want 10", v)
	}
}

func TestBufferNeverGrows(t *testing.T) {
	s, _ := NewWithCapacity(3)
	for i := 0; i < 10; i++ {
		_ = s.Push(int32(i))
	}
	if len(s.elems) != 3 || cap(s.elems) != 3 {
		t.Fatalf("buffer len/cap = %d/%d, want 3/3", len(s.elems), cap(s.elems))
	}
}

func TestCapacityInvariant_RandomOps(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for _, capacity := range []int{1, 2, 5, DefaultCapacity} {
		s, err := NewWithCapacity(capacity)
		if err != nil {
			t.Fatal(err)
		}
		var model []int32

		for i := 0; i < 5000; i++ {
			switch r.IntN(3) {
			case 0:
				v := r.Int32()
				err := s.Push(v)
				if len(model) == capacity {
					if !errors.Is(err, ErrOverflow) {
						t.Fatalf("cap %d op %d: push on full err = %v", capacity, i, err)
					}
				} else {
					if err != nil {
						t.Fatalf("cap %d op %d: push: %v", capacity, i, err)
					}
					model = append(model, v)
				}
			case 1:
				v, err := s.Pop()
				if len(model) == 0 {
					if !errors.Is(err, ErrUnderflow) {
						t.Fatalf("cap %d op %d: pop on empty err = %v", capacity, i, err)
					}
				} else {
					want := model[len(model)-1]
					model = model[:len(model)-1]
					if err != nil || v != want {
						t.Fatalf("cap %d op %d: pop = %d, %v; want %d", capacity, i, v, err, want)
					}
				}
			case 2:
				v, err := s.Peek()
				if len(model) == 0 {
					if !errors.Is(err, ErrUnderflow) {
						t.Fatalf("cap %d op %d: peek on empty err = %v", capacity, i, err)
					}
				} else if err != nil || v != model[len(model)-1] {
					t.Fatalf("cap %d op %d: peek = %d, %v", capacity, i, v, err)
				}
			}

			if s.Len() < 0 || s.Len() > capacity || s.Len() != len(model) {
				t.Fatalf("cap %d op %d: Len = %d, model %d", capacity, i, s.Len(), len(model))
			}
		}
	}
}
