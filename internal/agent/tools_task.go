package agent

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/weftworks/weft/api"
	"github.com/weftworks/weft/internal/store"
)

type taskListTool struct {
	opener *Opener
}

func (t *taskListTool) Definition() mcp.Tool {
	return mcp.NewTool("task_list",
		mcp.WithDescription("List every node carrying task metadata as a flat todo view."),
		projectArg(),
		mcp.WithString("status",
			mcp.Description("Only tasks with this status"),
			mcp.Enum(
				api.TaskStatusTodo,
				api.TaskStatusInProgress,
				api.TaskStatusReview,
				api.TaskStatusDone,
				api.TaskStatusBlocked,
			),
		),
		mcp.WithString("assignee",
			mcp.Description("Only tasks assigned to this name"),
		),
	)
}

func (t *taskListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	w, fail := openProject(ctx, t.opener, req)
	if fail != nil {
		return fail, nil
	}
	tasks, err := w.Store.Tasks(ctx, store.TaskFilter{
		Status:   req.GetString("status", ""),
		Assignee: req.GetString("assignee", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tasks)
}
