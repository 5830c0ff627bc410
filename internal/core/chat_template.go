// ABOUTME: Chat templates that flatten system/user turns into one completion prompt
// ABOUTME: Each template ends with the marker that tells the model to start the assistant turn
package core

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Template names accepted by TemplateByName
const (
	TemplateLlama3 = "llama3"
	TemplateChatML = "chatml"
)

// ChatTemplate renders a conversation into the flat prompt format a model was trained on
type ChatTemplate interface {
	Name() string
	Render(messages []openai.ChatCompletionMessage) string
}

// TemplateByName returns the built-in template with the given name
func TemplateByName(name string) (ChatTemplate, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case TemplateLlama3, "":
		return Llama3Template{}, nil
	case TemplateChatML:
		return ChatMLTemplate{}, nil
	default:
		return nil, fmt.Errorf("unknown chat template %q (want %s or %s)", name, TemplateLlama3, TemplateChatML)
	}
}

// Llama3Template renders the Llama 3 instruct format
type Llama3Template struct{}

func (Llama3Template) Name() string { return TemplateLlama3 }

func (Llama3Template) Render(messages []openai.ChatCompletionMessage) string {
	var b strings.Builder
	b.WriteString("<|begin_of_text|>")
	for _, m := range messages {
		fmt.Fprintf(&b, "<|start_header_id|>%s<|end_header_id|>\n\n%s<|eot_id|>", m.Role, strings.TrimSpace(m.Content))
	}
	b.WriteString("<|start_header_id|>assistant<|end_header_id|>\n\n")
	return b.String()
}

// ChatMLTemplate renders the ChatML format used by Qwen and many fine-tunes
type ChatMLTemplate struct{}

func (ChatMLTemplate) Name() string { return TemplateChatML }

func (ChatMLTemplate) Render(messages []openai.ChatCompletionMessage) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "<|im_start|>%s\n%s<|im_end|>\n", m.Role, strings.TrimSpace(m.Content))
	}
	b.WriteString("<|im_start|>assistant\n")
	return b.String()
}
