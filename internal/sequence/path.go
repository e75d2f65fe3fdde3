package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/studyseq/internal/ir"
)

// ChildPath returns the structural path of the index-th entry of parent.
func ChildPath(parent string, index int) string {
	return parent + ir.PathSeparator + strconv.Itoa(index)
}

// ParsePath splits a "-"-joined path into component indices. A leading
// "root" segment means "no descent", so "root", "root-0-1" and "0-1" are all
// valid; "root" anywhere else is not.
func ParsePath(path string) ([]int, error) {
	if path == "" {
		return nil, &PathError{Code: ErrCodeInvalidPath, Path: path, Message: "path is empty"}
	}

	var indices []int
	for i, seg := range strings.Split(path, ir.PathSeparator) {
		if i == 0 && seg == ir.RootPath {
			continue
		}
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 {
			return nil, &PathError{
				Code:    ErrCodeInvalidPath,
				Path:    path,
				Message: fmt.Sprintf("segment %q is not a component index", seg),
			}
		}
		indices = append(indices, n)
	}
	return indices, nil
}

// SubSequence returns a deep copy of the block found by descending seq along
// path, one component index per segment. The canonical sequence is never
// aliased by the result.
func SubSequence(seq *ir.Sequence, path string) (*ir.Sequence, error) {
	indices, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	cur := seq
	for depth, idx := range indices {
		if idx >= len(cur.Components) {
			return nil, &PathError{
				Code:    ErrCodeInvalidPath,
				Path:    path,
				Message: fmt.Sprintf("index %d out of range at depth %d (block has %d components)", idx, depth, len(cur.Components)),
			}
		}
		entry := cur.Components[idx]
		if entry.Block == nil {
			return nil, &PathError{
				Code:    ErrCodeInvalidPath,
				Path:    path,
				Message: fmt.Sprintf("index %d at depth %d is the step %q, not a block", idx, depth, entry.Leaf),
			}
		}
		cur = entry.Block
	}
	return cur.Clone(), nil
}

// FindTaskIndex returns the flattened index of the first occurrence of step
// inside the block whose OrderPath is requestedPath, at or after startIndex.
//
// startIndex disambiguates repeated steps: the second occurrence of a trial
// in a block is found by passing the index just past the first one. A
// requestedPath that names no block of seq is an ErrCodeInvalidPath error.
func FindTaskIndex(seq *ir.Sequence, step string, startIndex int, requestedPath string) (int, error) {
	if requestedPath == "" {
		requestedPath = ir.RootPath
	}
	indices, err := ParsePath(requestedPath)
	if err != nil {
		return -1, err
	}
	requestedPath = ir.RootPath
	for _, idx := range indices {
		requestedPath = ChildPath(requestedPath, idx)
	}
	if !hasBlock(seq, requestedPath) {
		return -1, &PathError{
			Code:    ErrCodeInvalidPath,
			Path:    requestedPath,
			Message: "no block at path",
		}
	}
	if idx, _, ok := findTask(seq, step, startIndex, requestedPath, 0, false); ok {
		return idx, nil
	}
	return -1, &PathError{
		Code:    ErrCodeStepNotFound,
		Path:    requestedPath,
		Message: fmt.Sprintf("step %q not found at or after index %d", step, startIndex),
	}
}

// findTask walks block starting at flat offset. It returns the match, the
// offset just past block, and whether a match was found.
func findTask(block *ir.Sequence, step string, start int, requested string, offset int, inScope bool) (int, int, bool) {
	inScope = inScope || block.OrderPath == requested
	pos := offset
	for _, e := range block.Components {
		if e.Block != nil {
			if !inScope && !isPathPrefix(e.Block.OrderPath, requested) {
				pos += countLeaves(e.Block)
				continue
			}
			idx, next, ok := findTask(e.Block, step, start, requested, pos, inScope)
			if ok {
				return idx, next, true
			}
			pos = next
			continue
		}
		if inScope && e.Leaf == step && pos >= start {
			return pos, pos + 1, true
		}
		pos++
	}
	return -1, pos, false
}

// hasBlock reports whether seq contains a block whose OrderPath is path.
func hasBlock(seq *ir.Sequence, path string) bool {
	if seq.OrderPath == path {
		return true
	}
	for _, e := range seq.Components {
		if e.Block != nil && isPathPrefix(e.Block.OrderPath, path) && hasBlock(e.Block, path) {
			return true
		}
	}
	return false
}

// isPathPrefix reports whether block path p is requested or one of its ancestors.
func isPathPrefix(p, requested string) bool {
	return p == requested || strings.HasPrefix(requested, p+ir.PathSeparator)
}
