package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/cli"
	"github.com/julianstephens/cadence/internal/constants"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/schedule"
)

type TaskCmd struct {
	Add    TaskAddCmd    `cmd:"" help:"Add a task to the to-do list."`
	List   TaskListCmd   `cmd:"" help:"List tasks."`
	Delete TaskDeleteCmd `cmd:"" help:"Delete a task."`
}

type TaskAddCmd struct {
	Title string `arg:"" help:"Task title. Tasks titled like a habit mirror its completions."`
	Due   string `help:"Due date (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	due, err := ctx.ParseDay(c.Due)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if ctx.Now != nil {
		now = ctx.Now().UTC()
	}
	task := models.Task{
		ID:        uuid.New().String(),
		Title:     c.Title,
		DueDate:   schedule.FormatDate(due),
		Status:    constants.TaskStatusOngoing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ctx.Store.AddTask(context.Background(), task); err != nil {
		return err
	}

	ctx.Printf("Added task: %s (due %s)\n", ctx.Bold(task.Title), task.DueDate)
	return nil
}

type TaskListCmd struct {
	Title string `help:"Only tasks with this exact title."`
	Due   string `help:"Only tasks due on this day (requires --title)."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()

	var tasks []models.Task
	var err error
	if c.Title != "" && c.Due != "" {
		due, perr := ctx.ParseDay(c.Due)
		if perr != nil {
			return perr
		}
		tasks, err = ctx.Store.FindTasks(bg, c.Title, schedule.FormatDate(due))
	} else {
		tasks, err = ctx.Store.GetAllTasks(bg)
		if c.Title != "" {
			tasks = filterTitle(tasks, c.Title)
		}
	}
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		ctx.Println("No tasks found.")
		return nil
	}
	for _, t := range tasks {
		box := "[ ]"
		if t.IsCompleted {
			box = "[x]"
		}
		ctx.Printf("%s %s  %s  %s\n", box, t.DueDate, t.Title, ctx.Faint(t.ID))
	}
	return nil
}

func filterTitle(tasks []models.Task, title string) []models.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.Title == title {
			out = append(out, t)
		}
	}
	return out
}

type TaskDeleteCmd struct {
	ID string `arg:"" help:"Task ID."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	task, err := ctx.Store.GetTask(bg, c.ID)
	if err != nil {
		return err
	}

	ok, err := ctx.Confirm(fmt.Sprintf("Delete task %q due %s?", task.Title, task.DueDate))
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Delete cancelled.")
		return nil
	}

	if err := ctx.Store.DeleteTask(bg, c.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted task: %s\n", task.Title)
	return nil
}
