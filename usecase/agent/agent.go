// Package agent implements the command orchestrator: it turns a free-form
// natural-language command into task operations by delegating intent
// parsing to a language model, executing the requested operations against
// the task store, and looping until the model produces a final answer.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/pkg/llm"
	"github.com/taskpilot/backend/repository"
)

const systemPromptTemplate = `You are a helpful task manager assistant. The user will give you natural language commands to manage their to-do list. Use the provided tools to add, list, update, complete, or delete tasks.

When listing tasks, format the results in a clear, readable way.
When the user's intent is unclear, ask for clarification rather than guessing.
Always confirm actions you take (e.g., "I've added the task..." or "Here are your tasks...").

IMPORTANT - Due dates: The user may specify due dates in natural language such as "tomorrow", "next Friday", "in 3 days", "end of week", etc. You MUST convert these to YYYY-MM-DD format before passing them to the tools. Today's date is %s.

IMPORTANT - Categories: The user may assign a category/tag to tasks using phrases like "category shopping", "under work", "tag personal", "in the errands category", etc. Pass the category as a short lowercase label (e.g. "shopping", "work", "personal", "health"). If the user doesn't specify a category, omit it - do NOT default to one.

When listing tasks, you can filter by category using the category parameter. You can also sort results by due_date to show the most urgent tasks first.`

const fallbackReply = "I'm not sure how to help with that. Try something like 'add buy groceries' or 'show all tasks'."

// Config bounds a single orchestrator run.
type Config struct {
	MaxInputLength int
	MaxTokens      int
	MaxToolRounds  int

	// Now supplies the current time; tests pin it to make relative-date
	// prompts deterministic. Nil means time.Now.
	Now func() time.Time
}

func (c *Config) applyDefaults() {
	if c.MaxInputLength <= 0 {
		c.MaxInputLength = 1000
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 1024
	}
	if c.MaxToolRounds <= 0 {
		c.MaxToolRounds = 10
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Result is the outcome of one command run: the assistant's final reply
// plus the structured outcomes of every operation that was executed along
// the way, so callers can observe operation failures independently of
// conversational success.
type Result struct {
	Reply    string    `json:"reply"`
	Outcomes []Outcome `json:"operations,omitempty"`
}

// UseCase orchestrates one command per Execute call. It holds no per-run
// state, so a single instance is safe for concurrent requests.
type UseCase struct {
	provider llm.Provider
	tasks    repository.TaskRepository
	cfg      Config
	logger   *zap.Logger
}

func New(provider llm.Provider, tasks repository.TaskRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()
	return &UseCase{
		provider: provider,
		tasks:    tasks,
		cfg:      cfg,
		logger:   logger,
	}
}

// Execute runs the tool-use loop for a single command. Domain-level
// operation failures are folded into the Result; only infrastructure
// failures (bad input, unreachable model, runaway loop) are returned as
// errors.
func (uc *UseCase) Execute(ctx context.Context, command string) (*Result, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, domain.ErrEmptyCommand
	}
	if n := utf8.RuneCountInString(command); n > uc.cfg.MaxInputLength {
		return nil, domain.NewError(domain.ErrCodeInvalidInput,
			fmt.Sprintf("command is too long (%d characters): please keep it under %d characters", n, uc.cfg.MaxInputLength))
	}

	today := uc.cfg.Now().Format(domain.DueDateLayout)
	messages := []llm.Message{
		{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, today)},
		{Role: "user", Content: command},
	}

	result := &Result{}

	for round := 1; round <= uc.cfg.MaxToolRounds; round++ {
		resp, err := uc.provider.Chat(ctx, llm.ChatRequest{
			Messages:  messages,
			Tools:     ToolSchema(),
			MaxTokens: uc.cfg.MaxTokens,
		})
		if err != nil {
			uc.logger.Error("model call failed", zap.Int("round", round), zap.Error(err))
			return nil, domain.WrapError(domain.ErrCodeUpstream,
				"sorry, I could not reach the assistant right now: please try again in a moment", err)
		}

		if len(resp.ToolCalls) == 0 {
			result.Reply = strings.TrimSpace(resp.Content)
			if result.Reply == "" {
				result.Reply = fallbackReply
			}
			return result, nil
		}

		// Execute the requested operations strictly in the order the
		// model returned them; a later call may depend on the side
		// effects of an earlier one.
		messages = append(messages, llm.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		for _, call := range resp.ToolCalls {
			outcome := uc.dispatch(ctx, call.Name, Args(call.Args))
			result.Outcomes = append(result.Outcomes, outcome)

			uc.logger.Info("operation executed",
				zap.String("operation", outcome.Operation),
				zap.Bool("ok", outcome.OK),
				zap.Int("round", round))

			messages = append(messages, llm.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    outcome.Message,
			})
		}
	}

	uc.logger.Error("tool-use loop exceeded round limit", zap.Int("max_rounds", uc.cfg.MaxToolRounds))
	return nil, domain.NewError(domain.ErrCodeRoundLimit,
		"the assistant got stuck in a loop: please try rephrasing your request")
}
