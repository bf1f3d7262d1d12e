package embed

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/aiscriptdev/aiscript/internal/config"
	"github.com/aiscriptdev/aiscript/internal/vm"
)

// defaultBaseURL is used when an AIProviderConfig names a provider but
// leaves base_url empty.
const defaultBaseURL = "https://api.openai.com/v1"

// newPromptHandler builds a vm.PromptHandler that services `prompt <expr>`
// by POSTing an OpenAI-compatible chat completion request to cfg's
// provider. The wire format (a single user message, first choice's content
// as the result) is the minimal subset every OpenAI-compatible provider
// (OpenAI itself, and most self-hosted gateways) accepts.
func newPromptHandler(cfg *config.AIProviderConfig) vm.PromptHandler {
	client := &http.Client{Timeout: 30 * time.Second}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return func(state *vm.VM, operand vm.Value) (vm.Value, error) {
		input := state.ToDisplayString(operand)
		reqBody, err := json.Marshal(chatRequest{
			Model:    cfg.Provider,
			Messages: []chatMessage{{Role: "user", Content: input}},
		})
		if err != nil {
			return vm.Nil(), state.RuntimeError("prompt: %s", err)
		}
		req, err := http.NewRequest(http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(reqBody))
		if err != nil {
			return vm.Nil(), state.RuntimeError("prompt: %s", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
		}
		resp, err := client.Do(req)
		if err != nil {
			return vm.Nil(), state.RuntimeError("prompt: %s", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return vm.Nil(), state.RuntimeError("prompt: %s", err)
		}
		if resp.StatusCode != http.StatusOK {
			return vm.Nil(), state.RuntimeError("prompt: provider returned %d: %s", resp.StatusCode, body)
		}
		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return vm.Nil(), state.RuntimeError("prompt: %s", err)
		}
		if len(parsed.Choices) == 0 {
			return vm.Nil(), state.RuntimeError("prompt: provider returned no choices")
		}
		return vm.ObjVal(vm.VString, state.Intern(parsed.Choices[0].Message.Content)), nil
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
