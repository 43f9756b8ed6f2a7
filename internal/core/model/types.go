package model

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// UsageLine is one raw JSONL record as written by the assistant.
// Unknown fields are ignored by decoding; only the fields below matter
// for ingestion.
type UsageLine struct {
	Cwd            string  `json:"cwd,omitempty"`
	Message        Message `json:"message"`
	RequestId      string  `json:"requestId,omitempty"`
	SessionId      string  `json:"sessionId,omitempty"`
	Timestamp      string  `json:"timestamp"`
	Type           string  `json:"type,omitempty"`
	Uuid           string  `json:"uuid,omitempty"`
	Version        string  `json:"version,omitempty"`
	WasInterrupted bool    `json:"wasInterrupted,omitempty"`
}

type Message struct {
	Content FlexibleContent `json:"content"`
	Id      string          `json:"id,omitempty"`
	Model   string          `json:"model,omitempty"`
	Role    string          `json:"role,omitempty"`
	Type    string          `json:"type,omitempty"`
	Usage   Usage           `json:"usage,omitempty"`
}

// FlexibleContent accepts both the array form and the legacy plain-string
// form of the content field.
type FlexibleContent []ContentItem

func (fc *FlexibleContent) UnmarshalJSON(data []byte) error {
	// First try to parse as []ContentItem array
	var items []ContentItem
	if err := sonic.Unmarshal(data, &items); err == nil {
		*fc = items
		return nil
	}

	// If array parsing fails, try to parse as string
	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		*fc = []ContentItem{{Type: "text", Text: str}}
		return nil
	}

	return fmt.Errorf("content must be either string or array of ContentItem")
}

type ContentItem struct {
	Id    string `json:"id,omitempty"`
	Input any    `json:"input,omitempty"`
	Name  string `json:"name,omitempty"`
	Text  string `json:"text,omitempty"`
	Type  string `json:"type"`
}

type Usage struct {
	CacheCreationInputTokens int    `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int    `json:"cache_read_input_tokens"`
	InputTokens              int    `json:"input_tokens"`
	OutputTokens             int    `json:"output_tokens"`
	ServiceTier              string `json:"service_tier,omitempty"`
}
