// Package trace reads allocator request traces and replays them against an
// allocator, checking every payload along the way.
//
// A trace file has four header numbers followed by one request per line:
//
//	20000        suggested heap size
//	2            number of distinct ids
//	5            number of requests
//	1            weight
//	a 0 512      allocate 512 bytes as id 0
//	a 1 128
//	r 0 640      resize id 0 to 640 bytes
//	f 1          free id 1
//	f 0
//
// Blank lines and lines starting with '#' are ignored.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrBadTrace indicates a malformed trace file.
var ErrBadTrace = errors.New("trace: malformed trace")

// Kind is the type of a trace request.
type Kind byte

const (
	Alloc   Kind = 'a'
	Realloc Kind = 'r'
	Free    Kind = 'f'
)

func (k Kind) String() string {
	switch k {
	case Alloc:
		return "alloc"
	case Realloc:
		return "realloc"
	case Free:
		return "free"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// Op is one request.
type Op struct {
	Kind Kind
	ID   int
	Size uint32 // unused for Free
}

// Trace is a parsed trace file.
type Trace struct {
	Name              string
	SuggestedHeapSize int
	NumIDs            int
	Weight            int
	Ops               []Op
}

// ParseFile reads the trace at path. The trace is named after the file.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tr.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return tr, nil
}

// Parse reads a trace. The declared request count must match the requests
// present and every id must be below the declared id count.
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	tr := &Trace{}

	var header []int
	numOps := 0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		if len(header) < 4 {
			n, err := strconv.Atoi(text)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: line %d: header value %q", ErrBadTrace, line, text)
			}
			header = append(header, n)
			if len(header) == 4 {
				tr.SuggestedHeapSize, tr.NumIDs, numOps, tr.Weight = header[0], header[1], header[2], header[3]
				tr.Ops = make([]Op, 0, min(numOps, 1<<16))
			}
			continue
		}

		op, err := parseOp(text, tr.NumIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadTrace, line, err)
		}
		tr.Ops = append(tr.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(header) < 4 {
		return nil, fmt.Errorf("%w: header has %d of 4 values", ErrBadTrace, len(header))
	}
	if len(tr.Ops) != numOps {
		return nil, fmt.Errorf("%w: header declares %d requests, found %d", ErrBadTrace, numOps, len(tr.Ops))
	}
	return tr, nil
}

func parseOp(text string, numIDs int) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown request %q", fields[0])
	}

	op := Op{Kind: Kind(fields[0][0])}
	want := 3
	switch op.Kind {
	case Alloc, Realloc:
	case Free:
		want = 2
	default:
		return Op{}, fmt.Errorf("unknown request %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d fields, got %d", op.Kind, want, len(fields))
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, fmt.Errorf("id %q out of range [0, %d)", fields[1], numIDs)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return Op{}, fmt.Errorf("size %q: %w", fields[2], err)
		}
		op.Size = uint32(size)
	}
	return op, nil
}
