// Package fixtures generates Claude Code JSONL trees for tests: project
// directories with session files, duplicated records, corrupt lines, and
// multi-model activity spread over time.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-claude-usage/internal/core/model"
)

// Generator writes JSONL session files under a base directory laid out the
// way Claude Code lays out ~/.claude/projects: one directory per project,
// one .jsonl file per session.
type Generator struct {
	baseDir string
	seq     int
}

// NewGenerator creates a generator rooted at baseDir.
func NewGenerator(baseDir string) *Generator {
	return &Generator{baseDir: baseDir}
}

// BaseDir returns the directory the generator writes under.
func (g *Generator) BaseDir() string {
	return g.baseDir
}

// Line builds one valid assistant usage record with fresh message and
// request identifiers.
func (g *Generator) Line(modelName string, ts time.Time, input, output int) model.UsageLine {
	g.seq++
	return model.UsageLine{
		Timestamp: ts.UTC().Format("2006-01-02T15:04:05.000Z"),
		Type:      "assistant",
		RequestId: fmt.Sprintf("req_%06d", g.seq),
		Uuid:      fmt.Sprintf("uuid-%06d", g.seq),
		Version:   "1.0.58",
		Message: model.Message{
			Id:    fmt.Sprintf("msg_%06d", g.seq),
			Role:  "assistant",
			Model: modelName,
			Content: model.FlexibleContent{
				{Type: "text", Text: "ok"},
			},
			Usage: model.Usage{
				InputTokens:  input,
				OutputTokens: output,
			},
		},
	}
}

// ToolLine builds a usage record whose content carries one tool_use block
// per given tool name.
func (g *Generator) ToolLine(modelName string, ts time.Time, tools ...string) model.UsageLine {
	line := g.Line(modelName, ts, 100, 50)
	for i, tool := range tools {
		line.Message.Content = append(line.Message.Content, model.ContentItem{
			Type: "tool_use",
			Id:   fmt.Sprintf("toolu_%06d_%d", g.seq, i),
			Name: tool,
		})
	}
	return line
}

// CacheLine builds a usage record that also reports cache token counters.
func (g *Generator) CacheLine(modelName string, ts time.Time, input, output, cacheCreate, cacheRead int) model.UsageLine {
	line := g.Line(modelName, ts, input, output)
	line.Message.Usage.CacheCreationInputTokens = cacheCreate
	line.Message.Usage.CacheReadInputTokens = cacheRead
	return line
}

// SteadyLines builds count records for one model, step apart, each with
// 100 input and 50 output tokens.
func (g *Generator) SteadyLines(modelName string, start time.Time, count int, step time.Duration) []model.UsageLine {
	lines := make([]model.UsageLine, 0, count)
	for i := 0; i < count; i++ {
		lines = append(lines, g.Line(modelName, start.Add(time.Duration(i)*step), 100, 50))
	}
	return lines
}

// WriteSession writes the lines as <baseDir>/<project>/<session>.jsonl and
// returns the file path.
func (g *Generator) WriteSession(project, session string, lines []model.UsageLine) (string, error) {
	dir := filepath.Join(g.baseDir, project)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, session+".jsonl")
	if err := os.WriteFile(path, encodeLines(lines), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// AppendLines appends records to an existing session file.
func (g *Generator) AppendLines(path string, lines []model.UsageLine) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(encodeLines(lines))
	return err
}

// AppendRaw appends raw text to a session file, for corrupt or partial
// lines that the typed helpers cannot express.
func (g *Generator) AppendRaw(path, raw string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(raw)
	return err
}

func encodeLines(lines []model.UsageLine) []byte {
	var buf []byte
	for _, line := range lines {
		data, err := sonic.Marshal(line)
		if err != nil {
			// Marshalling our own fixture structs cannot fail.
			panic(err)
		}
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}
	return buf
}
