package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Completer abstracts the chat-completion API so tests can fake it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   200,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return resp.Choices[0].Message.Content, nil
}

const systemPrompt = `You are the voice assistant of a smart home hub.
Convert the user's request into a single JSON object and nothing else.
For a device action reply {"domain": ..., "service": ..., "payload": {"entity_id": ..., ...}}.
If you cannot work out an action, reply {"question": "<clarifying question>"}.
Known entity aliases:
%s`

// llmReply is the strict response contract. The whole reply must be
// one JSON object - anything else is a deterministic failure.
type llmReply struct {
	Domain   string                 `json:"domain"`
	Service  string                 `json:"service"`
	Payload  map[string]interface{} `json:"payload"`
	Question string                 `json:"question"`
}

var reIdentifier = regexp.MustCompile(`^[a-z_]+$`)

// parseReply validates a completion against the contract, returning
// either an action or a clarifying question.
func parseReply(content string) (*Action, string, error) {
	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	var reply llmReply
	if err := dec.Decode(&reply); err != nil {
		return nil, "", fmt.Errorf("not a valid reply object: %s", err)
	}
	if reply.Question != "" {
		return nil, reply.Question, nil
	}
	if !reIdentifier.MatchString(reply.Domain) || !reIdentifier.MatchString(reply.Service) {
		return nil, "", fmt.Errorf("invalid domain/service: %q/%q", reply.Domain, reply.Service)
	}
	if reply.Payload == nil {
		reply.Payload = map[string]interface{}{}
	}
	return &Action{Domain: reply.Domain, Service: reply.Service, Payload: reply.Payload}, "", nil
}

func (r *Resolver) llmFallback(ctx context.Context, text string) Result {
	aliases := r.Aliases()
	lines := make([]string, 0, len(aliases))
	for alias, entity := range aliases {
		lines = append(lines, fmt.Sprintf("- %s: %s", alias, entity))
	}
	sort.Strings(lines)
	system := fmt.Sprintf(systemPrompt, strings.Join(lines, "\n"))

	content, err := r.llm.Complete(ctx, system, text)
	if err != nil {
		return Result{Message: "The assistant is unavailable right now: " + err.Error()}
	}

	action, question, err := parseReply(content)
	if err != nil {
		return Result{Message: "I couldn't work out what to do. Could you rephrase that?"}
	}
	if question != "" {
		return Result{Message: question}
	}
	return Result{OK: true, Message: fmt.Sprintf("Okay, %s %s", action.Domain, action.Service), Action: action}
}
