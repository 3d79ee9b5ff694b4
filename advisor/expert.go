package advisor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Expert represent a chat with a business expert.
type Expert struct {
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	ModelName   string                       `json:"model_name"`
	Config      *genai.GenerateContentConfig `json:"config"`
	Library     Library
	chat        *genai.Chat
}

func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.ModelName, e.Config, nil)
	if err != nil {
		return err
	}
	e.chat = chat
	return nil
}

// maxCalls bounds the function calls answered for a single question.
const maxCalls = 8

// Ask is a simple wrapper on top of Chat.Send that answers the function calls
// of the expert until it replies with text.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (*genai.Content, error) {
	if e.chat == nil {
		return nil, errors.New("expert " + e.Name + " is not started")
	}
	for range maxCalls {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return nil, err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return nil, fmt.Errorf("no response from expert %s", e.Name)
		}
		content := resp.Candidates[0].Content

		var calls []*genai.Part
		for _, p := range content.Parts {
			if p.FunctionCall != nil {
				calls = append(calls, p)
			}
		}
		if len(calls) == 0 {
			return content, nil
		}
		if e.Library == nil {
			return nil, fmt.Errorf("expert %s doesn't know how to make function calls", e.Name)
		}
		// Answer every call, then ask again for a real response.
		parts = make([]*genai.Part, 0, len(calls))
		for _, c := range calls {
			parts = append(parts, &genai.Part{FunctionResponse: e.Library(ctx, c.FunctionCall)})
		}
	}
	return nil, fmt.Errorf("expert %s made too many function calls", e.Name)
}

// Declaration returns the function declaration to ask this expert.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {
					Type:        genai.TypeString,
					Description: "The question to ask the expert.",
				},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{
			Type:        genai.TypeString,
			Description: "Expert's response.",
		},
	}
}

// Call perform the call of asking this expert.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	d := e.Declaration()
	arg0 := args[d.Parameters.Required[0]]
	question, ok := arg0.(string)
	if !ok {
		return failure(id, d.Name, fmt.Errorf("invalid type got %T, expected string", arg0))
	}

	response, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return failure(id, d.Name, fmt.Errorf("something went wrong while calling the expert: %w", err))
	}
	return output(id, d.Name, text(response))
}

// text joins the text parts of content.
func text(c *genai.Content) string {
	var s string
	for _, p := range c.Parts {
		s += p.Text
	}
	return s
}
