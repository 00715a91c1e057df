package extraction

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

type agentCompleter struct {
	agent agent.Agent
}

// NewAgentCompleter creates a Completer backed by a configured agent. The
// vendor wire format stays behind the agent abstraction.
func NewAgentCompleter(cfg *gaconfig.AgentConfig) (Completer, error) {
	a, err := agent.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}
	return &agentCompleter{agent: a}, nil
}

func (c *agentCompleter) Chat(ctx context.Context, prompt string) (string, error) {
	resp, err := c.agent.Chat(ctx, prompt)
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}

func (c *agentCompleter) Vision(ctx context.Context, prompt string, images []string) (string, error) {
	resp, err := c.agent.Vision(ctx, prompt, images)
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}
