// ABOUTME: PromptSynthesizer builds the teaching-assistant prompt for one topic
// ABOUTME: Prefers retrieved lecture context and falls back to a context-free academic request
package core

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// SystemPrompt is the fixed persona for every generation
const SystemPrompt = "You are an expert AI Teaching Assistant. Your task is to provide a clear, high-quality explanation of a specific academic concept."

// LengthInstruction bounds every explanation
const LengthInstruction = "Provide a smart explanation on the topic in 4-5 sentences."

// PromptSynthesizer renders prompts with a fixed chat template. It holds no
// mutable state, so Build is deterministic and safe for concurrent use.
type PromptSynthesizer struct {
	template ChatTemplate
}

// NewPromptSynthesizer creates a synthesizer; a nil template defaults to Llama 3
func NewPromptSynthesizer(template ChatTemplate) *PromptSynthesizer {
	if template == nil {
		template = Llama3Template{}
	}
	return &PromptSynthesizer{template: template}
}

// Build renders the full prompt for a topic, category, and joined lecture context
func (ps *PromptSynthesizer) Build(topic, category, lectureContext string) string {
	return ps.template.Render(ps.Messages(topic, category, lectureContext))
}

// Messages returns the system and user turns before template rendering
func (ps *PromptSynthesizer) Messages(topic, category, lectureContext string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt(topic, category, lectureContext)},
	}
}

func userPrompt(topic, category, lectureContext string) string {
	if strings.TrimSpace(lectureContext) == "" {
		return fmt.Sprintf("Please provide an academic explanation of the concept of '%s' within the subject of '%s'. %s",
			topic, category, LengthInstruction)
	}

	return fmt.Sprintf(`Use the following text from a lecture as your primary inspiration to explain the concept of '%s' from the subject '%s'. The lecture text might be messy or incomplete. Synthesize this information with your own knowledge to create the best possible explanation. %s

Lecture Text: "%s"`, topic, category, LengthInstruction, lectureContext)
}
