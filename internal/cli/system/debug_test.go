package system

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDebugDBPathCmd(t *testing.T) {
	ctx, out := setupTestMemoryContext(t)

	require.NoError(t, (&DebugDBPathCmd{}).Run(ctx))

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, ":memory:", got["path"])
}

func TestDebugDumpHabitCmd(t *testing.T) {
	ctx, out := setupTestMemoryContext(t)
	createHabit(t, ctx, "Read")
	completeToday(t, ctx, "Read")

	require.NoError(t, (&DebugDumpHabitCmd{Habit: "read"}).Run(ctx))

	var got habitDump
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Equal(t, "Read", got.Habit.Name)
	require.Equal(t, []string{"2024-01-03"}, got.Completions)
	require.Equal(t, "2024-01-10", got.EndDate)
	require.Equal(t, 1, got.Streak)
	require.Equal(t, uint64(1), got.Generation)
}

func TestDebugDumpHabitCmd_NotFound(t *testing.T) {
	ctx, _ := setupTestMemoryContext(t)
	require.Error(t, (&DebugDumpHabitCmd{Habit: "missing"}).Run(ctx))
}

func TestDebugDumpTasksCmd_Empty(t *testing.T) {
	ctx, out := setupTestMemoryContext(t)

	require.NoError(t, (&DebugDumpTasksCmd{}).Run(ctx))
	require.JSONEq(t, "[]", out.String())
}
