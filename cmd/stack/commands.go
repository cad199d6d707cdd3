package main

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-stack/binding"
	"github.com/wippyai/wasm-stack/errors"
	"github.com/wippyai/wasm-stack/resource"
)

const helpText = `commands:
  new              create a stack, prints its handle
  push H V         push V onto stack H
  pop H            pop the top of stack H
  peek H           print the top of stack H
  len H            print the length of stack H
  drop H           release stack H
  list             print live stacks and their lengths
  stats            print lifecycle counters
  describe         print the host functions guests import
  help             print this text
lines starting with # are ignored`

// shell executes textual stack commands against a binding.
type shell struct {
	stacks *binding.Binding
}

func newShell(stacks *binding.Binding) *shell {
	return &shell{stacks: stacks}
}

// Exec runs one command line and returns its output. Stack errors such as
// overflow are reported in the output with the error's message, not as err;
// err is reserved for malformed commands.
func (s *shell) Exec(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "new":
		if err := wantArgs(cmd, args, 0); err != nil {
			return "", err
		}
		h, err := s.stacks.Create()
		if err != nil {
			return failure(err), nil
		}
		return strconv.FormatUint(uint64(h), 10), nil

	case "push":
		if err := wantArgs(cmd, args, 2); err != nil {
			return "", err
		}
		h, err := parseHandle(args[0])
		if err != nil {
			return "", err
		}
		v, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return "", errors.ParseFailed("value "+strconv.Quote(args[1]), err)
		}
		if err := s.stacks.Push(h, int32(v)); err != nil {
			return failure(err), nil
		}
		return "ok", nil

	case "pop", "peek", "len", "drop":
		if err := wantArgs(cmd, args, 1); err != nil {
			return "", err
		}
		h, err := parseHandle(args[0])
		if err != nil {
			return "", err
		}
		return s.handleOp(cmd, h), nil

	case "list":
		return s.list(), nil

	case "stats":
		st := s.stacks.Stats()
		return fmt.Sprintf("live=%d created=%d released=%d", st.Live, st.Created, st.Released), nil

	case "describe":
		return describe(s.stacks), nil

	case "help":
		return helpText, nil
	}

	return "", errors.New(errors.PhaseParse, errors.KindNotFound).
		Detail("unknown command %q, try help", cmd).
		Build()
}

func (s *shell) handleOp(cmd string, h resource.Handle) string {
	var (
		v   int32
		n   int
		err error
	)
	switch cmd {
	case "pop":
		v, err = s.stacks.Pop(h)
	case "peek":
		v, err = s.stacks.Peek(h)
	case "len":
		n, err = s.stacks.Len(h)
		v = int32(n)
	case "drop":
		if err = s.stacks.Drop(h); err == nil {
			return "ok"
		}
	}
	if err != nil {
		return failure(err)
	}
	return strconv.FormatInt(int64(v), 10)
}

func (s *shell) list() string {
	handles := s.stacks.Handles()
	if len(handles) == 0 {
		return "no stacks"
	}
	lines := make([]string, 0, len(handles))
	for _, h := range handles {
		n, err := s.stacks.Len(h)
		if err != nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%d: %d/%d", h, n, s.stacks.Config().Capacity))
	}
	return strings.Join(lines, "\n")
}

// Run executes commands from r line by line, writing outputs to w.
// Malformed commands are reported and do not stop the run.
func (s *shell) Run(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out, err := s.Exec(sc.Text())
		if err != nil {
			out = "error: " + message(err)
		}
		if out == "" {
			continue
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}
	return sc.Err()
}

// describe renders the host functions in WIT and core form.
func describe(stacks *binding.Binding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "module %q, capacity %d\n", stacks.Config().ModuleName, stacks.Config().Capacity)
	for _, f := range stacks.Types().Functions {
		fmt.Fprintf(&b, "  %s\n      core %s\n", f, f.CoreSignature())
	}
	return strings.TrimRight(b.String(), "\n")
}

func failure(err error) string {
	return "error: " + message(err)
}

func message(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}

func wantArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return errors.New(errors.PhaseParse, errors.KindInvalidInput).
			Path(cmd).
			Detail("%s takes %d argument(s), got %d", cmd, n, len(args)).
			Build()
	}
	return nil
}

func parseHandle(s string) (resource.Handle, error) {
	h, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.ParseFailed("handle "+strconv.Quote(s), err)
	}
	return resource.Handle(h), nil
}
