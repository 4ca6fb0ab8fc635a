package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taskpilot/backend/domain"
	"github.com/taskpilot/backend/pkg/llm"
	"github.com/taskpilot/backend/repository"
	sqliteRepo "github.com/taskpilot/backend/repository/sqlite"
)

// testToday pins "today" so relative-date expectations are deterministic.
var testToday = time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

func newTestRepo(t *testing.T) repository.TaskRepository {
	t.Helper()
	db, err := gorm.Open(sqlitedriver.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return sqliteRepo.NewTaskRepository(db)
}

func newTestAgent(t *testing.T) (*UseCase, repository.TaskRepository, *llm.MockProvider) {
	t.Helper()
	repo := newTestRepo(t)
	mock := llm.NewMockProvider()
	uc := New(mock, repo, Config{
		MaxInputLength: 1000,
		MaxToolRounds:  10,
		Now:            func() time.Time { return testToday },
	}, nil)
	return uc, repo, mock
}

func TestExecute_AddTaskWithDueDateAndCategory(t *testing.T) {
	uc, repo, mock := newTestAgent(t)

	mock.QueueToolCalls(llm.ToolCall{
		ID:   "tc-1",
		Name: OpAddTask,
		Args: map[string]interface{}{
			"title":    "buy milk",
			"due_date": "2026-02-10",
			"category": "shopping",
		},
	})
	mock.QueueText("I've added the task.")

	result, err := uc.Execute(context.Background(), "add buy milk due tomorrow category shopping")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Reply != "I've added the task." {
		t.Errorf("unexpected reply: %q", result.Reply)
	}
	if len(result.Outcomes) != 1 || !result.Outcomes[0].OK {
		t.Fatalf("expected one successful outcome, got %+v", result.Outcomes)
	}

	tasks, err := repo.List(context.Background(), repository.TaskFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected exactly one task, got %d", len(tasks))
	}

	task := tasks[0]
	if task.Title != "buy milk" {
		t.Errorf("title = %q", task.Title)
	}
	if task.DueDate == nil || *task.DueDate != "2026-02-10" {
		t.Errorf("due date = %v, want 2026-02-10", task.DueDate)
	}
	if task.Category != "shopping" {
		t.Errorf("category = %q", task.Category)
	}
	if task.Priority != domain.PriorityMedium {
		t.Errorf("priority = %q, want default medium", task.Priority)
	}
	if task.Status != domain.StatusPending {
		t.Errorf("status = %q, want default pending", task.Status)
	}
}

func TestExecute_SystemPromptCarriesToday(t *testing.T) {
	uc, _, mock := newTestAgent(t)
	mock.QueueText("hello")

	if _, err := uc.Execute(context.Background(), "hi"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	req := mock.LastRequest()
	if req == nil || len(req.Messages) == 0 {
		t.Fatal("expected a recorded request")
	}
	if req.Messages[0].Role != "system" {
		t.Fatalf("first message role = %q", req.Messages[0].Role)
	}
	if !strings.Contains(req.Messages[0].Content, "2026-02-09") {
		t.Error("system prompt does not carry today's date")
	}
	if len(req.Tools) != 5 {
		t.Errorf("expected 5 tool definitions, got %d", len(req.Tools))
	}
}

func TestExecute_EmptyCommand(t *testing.T) {
	uc, _, mock := newTestAgent(t)

	_, err := uc.Execute(context.Background(), "   ")
	if !domain.IsDomainError(err, domain.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("model called %d times for invalid input", mock.CallCount())
	}
}

func TestExecute_OversizedCommandShortCircuits(t *testing.T) {
	uc, _, mock := newTestAgent(t)

	_, err := uc.Execute(context.Background(), strings.Repeat("x", 1001))
	if !domain.IsDomainError(err, domain.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("model called %d times before validation", mock.CallCount())
	}
}

func TestExecute_InputLimitCountsCharactersNotBytes(t *testing.T) {
	uc, _, mock := newTestAgent(t)
	mock.QueueText("ok")

	// 1000 three-byte runes: within the limit even though it is 3000 bytes.
	if _, err := uc.Execute(context.Background(), strings.Repeat("あ", 1000)); err != nil {
		t.Fatalf("Execute() rejected a 1000-character command: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("model called %d times", mock.CallCount())
	}

	if _, err := uc.Execute(context.Background(), strings.Repeat("あ", 1001)); !domain.IsDomainError(err, domain.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for 1001 characters, got %v", err)
	}
}

func TestExecute_MissingTaskIsConversationalSuccess(t *testing.T) {
	uc, _, mock := newTestAgent(t)

	mock.QueueToolCalls(llm.ToolCall{
		ID:   "tc-1",
		Name: OpCompleteTask,
		Args: map[string]interface{}{"task_id": float64(3)},
	})
	mock.QueueText("There is no task 3.")

	result, err := uc.Execute(context.Background(), "mark task 3 as done")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Reply == "" {
		t.Error("expected a reply")
	}
	if len(result.Outcomes) != 1 {
		t.Fatalf("expected one outcome, got %d", len(result.Outcomes))
	}
	outcome := result.Outcomes[0]
	if outcome.OK {
		t.Error("expected failed outcome")
	}
	if outcome.ErrorKind != domain.ErrCodeNotFound {
		t.Errorf("error kind = %q, want NOT_FOUND", outcome.ErrorKind)
	}
}

func TestExecute_UpstreamFailureLeavesStoreUntouched(t *testing.T) {
	uc, repo, mock := newTestAgent(t)

	if _, err := repo.Create(context.Background(), &domain.Task{Title: "existing", Priority: domain.PriorityMedium, Status: domain.StatusPending}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	mock.SetError(errors.New("connection refused"))

	_, err := uc.Execute(context.Background(), "add something")
	if !domain.IsDomainError(err, domain.ErrCodeUpstream) {
		t.Fatalf("expected UPSTREAM, got %v", err)
	}
	// The raw cause never surfaces in the user-facing message.
	var dErr *domain.Error
	if errors.As(err, &dErr) && strings.Contains(dErr.Message, "connection refused") {
		t.Error("raw upstream error leaked into user message")
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("store mutated during upstream failure: count = %d", count)
	}
}

func TestExecute_MultipleOperationsInOrder(t *testing.T) {
	uc, repo, mock := newTestAgent(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second"} {
		if _, err := repo.Create(ctx, &domain.Task{Title: title, Priority: domain.PriorityMedium, Status: domain.StatusPending}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	mock.QueueResponse(&llm.ChatResponse{
		StopReason: "tool_use",
		ToolCalls: []llm.ToolCall{
			{ID: "tc-1", Name: OpAddTask, Args: map[string]interface{}{"title": "X"}},
			{ID: "tc-2", Name: OpDeleteTask, Args: map[string]interface{}{"task_id": float64(2)}},
		},
	})
	mock.QueueText("Added X and deleted task 2.")

	result, err := uc.Execute(ctx, "add X and delete task 2")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(result.Outcomes))
	}
	if result.Outcomes[0].Operation != OpAddTask || result.Outcomes[1].Operation != OpDeleteTask {
		t.Errorf("operations out of order: %s, %s", result.Outcomes[0].Operation, result.Outcomes[1].Operation)
	}
	if !result.Outcomes[0].OK || !result.Outcomes[1].OK {
		t.Errorf("expected both outcomes to succeed: %+v", result.Outcomes)
	}

	if _, err := repo.GetByID(ctx, 2); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("task 2 still present after delete: %v", err)
	}
	tasks, err := repo.List(ctx, repository.TaskFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks after add+delete, got %d", len(tasks))
	}
}

func TestExecute_ToolResultsFedBackToModel(t *testing.T) {
	uc, _, mock := newTestAgent(t)

	mock.QueueToolCalls(llm.ToolCall{
		ID:   "tc-1",
		Name: OpAddTask,
		Args: map[string]interface{}{"title": "buy milk"},
	})
	mock.QueueText("Done.")

	if _, err := uc.Execute(context.Background(), "add buy milk"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 rounds, got %d", mock.CallCount())
	}

	second := mock.LastRequest()
	var sawToolResult bool
	for _, m := range second.Messages {
		if m.Role == "tool" && m.ToolCallID == "tc-1" && strings.Contains(m.Content, "Task added") {
			sawToolResult = true
		}
	}
	if !sawToolResult {
		t.Error("tool outcome was not fed back to the model")
	}
}

func TestExecute_UnknownOperation(t *testing.T) {
	uc, _, mock := newTestAgent(t)

	mock.QueueToolCalls(llm.ToolCall{ID: "tc-1", Name: "reboot_server", Args: map[string]interface{}{}})
	mock.QueueText("I can't do that.")

	result, err := uc.Execute(context.Background(), "reboot the server")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Outcomes) != 1 || result.Outcomes[0].OK {
		t.Fatalf("expected one failed outcome, got %+v", result.Outcomes)
	}
	if !strings.Contains(result.Outcomes[0].Message, "unknown operation") {
		t.Errorf("unexpected message: %q", result.Outcomes[0].Message)
	}
}

func TestExecute_RoundLimit(t *testing.T) {
	repo := newTestRepo(t)
	mock := llm.NewMockProvider()
	mock.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		return &llm.ChatResponse{
			StopReason: "tool_use",
			ToolCalls:  []llm.ToolCall{{ID: "tc", Name: OpListTasks, Args: map[string]interface{}{}}},
		}, nil
	}
	uc := New(mock, repo, Config{MaxToolRounds: 3, Now: func() time.Time { return testToday }}, nil)

	_, err := uc.Execute(context.Background(), "list my tasks forever")
	if !domain.IsDomainError(err, domain.ErrCodeRoundLimit) {
		t.Fatalf("expected ROUND_LIMIT, got %v", err)
	}
}

func TestExecute_EmptyModelReplyFallsBack(t *testing.T) {
	uc, _, mock := newTestAgent(t)
	mock.QueueResponse(&llm.ChatResponse{Content: "", StopReason: "end_turn"})

	result, err := uc.Execute(context.Background(), "mumble")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Reply == "" {
		t.Error("expected a fallback reply")
	}
}
