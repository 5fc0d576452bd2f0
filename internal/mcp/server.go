// Package mcp provides an MCP (Model Context Protocol) server that exposes
// read-only bt queries as tools for AI coding assistants.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valter-silva-au/bt/internal/core"
	"github.com/valter-silva-au/bt/pkg/models"
)

// Server wraps the task services and exposes them as MCP tools. Every call
// re-reads the task directories.
type Server struct {
	server  *gomcp.Server
	taskMgr core.TaskManager
	tasks   core.TaskStore
}

// NewServer creates an MCP server over the given services.
func NewServer(taskMgr core.TaskManager, tasks core.TaskStore, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		taskMgr: taskMgr,
		tasks:   tasks,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "bt", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run serves on stdio, blocking until the client disconnects or the
// context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type listTasksInput struct {
	Status string `json:"status,omitempty" jsonschema:"filter by status (open, in-progress, blocked, closed, cancelled)"`
	Tag    string `json:"tag,omitempty" jsonschema:"filter by tag, case-insensitive, globs allowed"`
	Search string `json:"search,omitempty" jsonschema:"case-insensitive text to find in title or body"`
	All    bool   `json:"all,omitempty" jsonschema:"include closed and cancelled tasks"`
}

// taskOutput mirrors core.TaskView with timestamps as RFC 3339 strings.
type taskOutput struct {
	ID        string   `json:"id"`
	ShortID   string   `json:"short_id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority"`
	Tags      []string `json:"tags"`
	BlockedBy []string `json:"blocked_by"`
	Created   string   `json:"created"`
	Updated   string   `json:"updated"`
	Author    string   `json:"author,omitempty"`
	Body      string   `json:"body"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"task id or unambiguous id prefix"`
}

type blockerOutput struct {
	ID       string `json:"id"`
	Status   string `json:"status,omitempty"`
	Title    string `json:"title,omitempty"`
	Missing  bool   `json:"missing,omitempty"`
	Resolved bool   `json:"resolved"`
}

type dependentOutput struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Title  string `json:"title"`
}

type logOutput struct {
	Time    string `json:"time"`
	Author  string `json:"author"`
	Message string `json:"message"`
}

type getTaskOutput struct {
	Task       taskOutput        `json:"task"`
	Ready      bool              `json:"ready"`
	Blockers   []blockerOutput   `json:"blockers"`
	Dependents []dependentOutput `json:"dependents"`
	// Log is newest first.
	Log []logOutput `json:"log"`
}

type emptyInput struct{}

type nextTaskOutput struct {
	Found bool        `json:"found"`
	Task  *taskOutput `json:"task,omitempty"`
}

// treeNodeOutput is one node of the dependency forest. Nodes are listed in
// display order; Parent is empty for roots.
type treeNodeOutput struct {
	ID       string   `json:"id"`
	ShortID  string   `json:"short_id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Depth    int      `json:"depth"`
	Parent   string   `json:"parent,omitempty"`
	Ready    bool     `json:"ready"`
	Blockers []string `json:"blockers,omitempty"`
}

type dependencyTreeOutput struct {
	Nodes []treeNodeOutput `json:"nodes"`
	// Cycle lists active tasks that could not be placed.
	Cycle []string `json:"cycle,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks. Active tasks only unless all is set or a closed/cancelled status is requested. Supports status, tag and search filters.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get a task by id or prefix, with its blockers, the tasks it blocks, readiness and activity log.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "ready_tasks",
		Description: "List open and in-progress tasks whose blockers are all closed or cancelled.",
	}, s.handleReadyTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "next_task",
		Description: "Return the ready task to work on next: highest priority, then oldest.",
	}, s.handleNextTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "dependency_tree",
		Description: "Return active tasks as a dependency forest, flattened in display order with depth and parent id. Tasks caught in a cycle are listed separately.",
	}, s.handleDependencyTree)
}

// --- Tool handlers ---

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	filter := core.TaskFilter{Tag: input.Tag, Search: input.Search}
	all := input.All
	if input.Status != "" {
		st, err := models.ParseStatus(input.Status)
		if err != nil {
			return errorResult(err.Error()), listTasksOutput{}, nil
		}
		filter.Statuses = []models.Status{st}
		all = all || st.IsTerminal()
	}

	var entries []models.Entry
	var err error
	if all {
		entries, err = s.tasks.ListAll()
	} else {
		entries, err = s.tasks.ListActive()
	}
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), listTasksOutput{}, nil
	}
	entries, err = core.FilterEntries(entries, filter)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}

	views, err := s.views(entries)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}
	return nil, listTasksOutput{Tasks: views, Count: len(views)}, nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, getTaskOutput, error) {
	if strings.TrimSpace(input.TaskID) == "" {
		return errorResult("task_id is required"), getTaskOutput{}, nil
	}

	tc, err := core.BuildTaskContext(s.taskMgr, s.tasks, input.TaskID, 0)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), getTaskOutput{}, nil
	}
	resolver, err := core.NewPrefixResolver(s.tasks)
	if err != nil {
		return errorResult(err.Error()), getTaskOutput{}, nil
	}

	out := getTaskOutput{
		Task:       taskToOutput(tc.Entry, resolver),
		Ready:      tc.Ready(),
		Blockers:   make([]blockerOutput, len(tc.Blockers)),
		Dependents: make([]dependentOutput, len(tc.Dependents)),
		Log:        make([]logOutput, len(tc.Recent)),
	}
	for i, l := range tc.Recent {
		out.Log[i] = logOutput{Time: l.Time.Format(time.RFC3339), Author: l.Author, Message: l.Message}
	}
	for i, b := range tc.Blockers {
		out.Blockers[i] = blockerOutput{
			ID:       string(b.ID),
			Status:   string(b.Status),
			Title:    b.Title,
			Missing:  b.Missing,
			Resolved: b.Resolved(),
		}
	}
	for i, d := range tc.Dependents {
		out.Dependents[i] = dependentOutput{
			ID:     string(d.Task.ID),
			Status: string(d.Status),
			Title:  d.Task.Title,
		}
	}
	return nil, out, nil
}

func (s *Server) handleReadyTasks(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	entries, err := s.tasks.ListReady()
	if err != nil {
		return errorResult(fmt.Sprintf("listing ready tasks: %s", err)), listTasksOutput{}, nil
	}
	views, err := s.views(entries)
	if err != nil {
		return errorResult(err.Error()), listTasksOutput{}, nil
	}
	return nil, listTasksOutput{Tasks: views, Count: len(views)}, nil
}

func (s *Server) handleNextTask(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, nextTaskOutput, error) {
	e, ok, err := core.Next(s.tasks)
	if err != nil {
		return errorResult(fmt.Sprintf("picking next task: %s", err)), nextTaskOutput{}, nil
	}
	if !ok {
		return nil, nextTaskOutput{}, nil
	}
	resolver, err := core.NewPrefixResolver(s.tasks)
	if err != nil {
		return errorResult(err.Error()), nextTaskOutput{}, nil
	}
	v := taskToOutput(e, resolver)
	return nil, nextTaskOutput{Found: true, Task: &v}, nil
}

func (s *Server) handleDependencyTree(_ context.Context, _ *gomcp.CallToolRequest, _ emptyInput) (*gomcp.CallToolResult, dependencyTreeOutput, error) {
	all, err := s.tasks.ListAll()
	if err != nil {
		return errorResult(fmt.Sprintf("listing tasks: %s", err)), dependencyTreeOutput{}, nil
	}
	resolver, err := core.NewPrefixResolver(s.tasks)
	if err != nil {
		return errorResult(err.Error()), dependencyTreeOutput{}, nil
	}

	tree := core.BuildDependencyTree(all)
	out := dependencyTreeOutput{Nodes: []treeNodeOutput{}}
	var path []string
	tree.Walk(func(n *core.TreeNode, depth int) {
		path = path[:depth]
		node := treeNode(n, resolver)
		node.Depth = depth
		if depth > 0 {
			node.Parent = path[depth-1]
		}
		out.Nodes = append(out.Nodes, node)
		path = append(path, node.ID)
	})
	var cycle *core.CycleError
	if errors.As(tree.Err(), &cycle) {
		for _, id := range cycle.IDs {
			out.Cycle = append(out.Cycle, string(id))
		}
	}
	return nil, out, nil
}

// --- Helpers ---

func (s *Server) views(entries []models.Entry) ([]taskOutput, error) {
	resolver, err := core.NewPrefixResolver(s.tasks)
	if err != nil {
		return nil, err
	}
	views := make([]taskOutput, len(entries))
	for i, e := range entries {
		views[i] = taskToOutput(e, resolver)
	}
	return views, nil
}

func taskToOutput(e models.Entry, resolver *core.PrefixResolver) taskOutput {
	v := core.NewTaskView(e, resolver.Shortest(e.Task.ID))
	return taskOutput{
		ID:        v.ID,
		ShortID:   v.ShortID,
		Title:     v.Title,
		Status:    v.Status,
		Priority:  v.Priority,
		Tags:      v.Tags,
		BlockedBy: v.BlockedBy,
		Created:   v.Created.Format(time.RFC3339),
		Updated:   v.Updated.Format(time.RFC3339),
		Author:    v.Author,
		Body:      v.Body,
	}
}

func treeNode(n *core.TreeNode, resolver *core.PrefixResolver) treeNodeOutput {
	out := treeNodeOutput{
		ID:      string(n.Entry.Task.ID),
		ShortID: resolver.Shortest(n.Entry.Task.ID),
		Title:   n.Entry.Task.Title,
		Status:  string(n.Entry.Status),
		Ready:   n.Ready(),
	}
	for _, b := range n.Blockers {
		out.Blockers = append(out.Blockers, string(b))
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
