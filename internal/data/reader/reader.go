// Package reader decodes JSONL usage logs incrementally. Reads start at a
// byte offset persisted by the cursor cache and stop at the last complete
// line, so a partially written trailing line is picked up on the next
// cycle instead of being mis-decoded.
package reader

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-claude-usage/internal/core/model"
	"github.com/penwyp/go-claude-usage/internal/util"
)

// Entry is one decoded record together with the byte offset immediately
// after its line. Persisting Offset lets the next read resume without
// touching anything before it.
type Entry struct {
	Log    model.UsageLine
	Offset int64
}

// Result carries the outcome of one incremental read. Offset is the
// position after the last complete line consumed, whether or not that
// line decoded cleanly.
type Result struct {
	Entries     []Entry
	Offset      int64
	LinesRead   int
	ParseErrors int
}

// Each decodes records from path starting at offset and hands them to fn
// in file order. Iteration stops early when fn returns false. Lines that
// are blank are skipped silently; lines that are not JSON objects count
// as parse errors and advance the offset like any other line. On a read
// error the entries already delivered stand and Offset points at the
// last complete line, so the caller can resume later.
func Each(path string, offset int64, fn func(Entry) bool) (Result, error) {
	res := Result{Offset: offset}

	file, err := os.Open(path)
	if err != nil {
		return res, err
	}
	defer file.Close()

	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			return res, err
		}
	}

	consumed := offset
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	scanner.Split(func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			consumed += int64(i + 1)
			return i + 1, dropCR(data[:i]), nil
		}
		// No newline yet: a trailing fragment stays in the file until
		// the writer finishes the line.
		return 0, nil, nil
	})

	for scanner.Scan() {
		res.Offset = consumed
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		res.LinesRead++
		if line[0] != '{' {
			res.ParseErrors++
			continue
		}
		var log model.UsageLine
		if err := sonic.Unmarshal(line, &log); err != nil {
			util.LogDebug(fmt.Sprintf("Skip invalid JSON line %s@%d - %v", path, res.Offset, err))
			res.ParseErrors++
			continue
		}
		if !fn(Entry{Log: log, Offset: res.Offset}) {
			return res, nil
		}
	}

	if err := scanner.Err(); err != nil {
		util.LogDebug(fmt.Sprintf("Error scanning file: %s - %v", path, err))
		return res, err
	}
	return res, nil
}

// ReadFrom decodes every record from path starting at offset.
func ReadFrom(path string, offset int64) (Result, error) {
	var entries []Entry
	res, err := Each(path, offset, func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	res.Entries = entries
	return res, err
}

func dropCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[:len(data)-1]
	}
	return data
}
