package invoke

import (
	"context"
	"errors"
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, dir, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	a := m.Called(ctx, dir, name, args, stdin)
	var stdout, stderr []byte
	if b, ok := a.Get(0).([]byte); ok {
		stdout = b
	}
	if b, ok := a.Get(1).([]byte); ok {
		stderr = b
	}
	return stdout, stderr, a.Error(2)
}

func TestExecutor_PassesArgsAndDir(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, "/srv", "dvc", []string{"pull", "models/model.json"}, nil).
		Return([]byte("ok"), []byte(nil), nil).Once()

	exec := NewExecutorWithRunner("dvc", time.Second, runner).WithDir("/srv")
	stdout, _, err := exec.Execute(context.Background(), []string{"pull", "models/model.json"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(stdout))
	runner.AssertExpectations(t)
}

func TestExecutor_AppliesDeadline(t *testing.T) {
	runner := new(MockRunner)
	runner.On("Run", mock.Anything, "", "slow", []string(nil), nil).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			<-ctx.Done()
		}).
		Return(nil, nil, errors.New("signal: killed")).Once()

	exec := NewExecutorWithRunner("slow", 20*time.Millisecond, runner)
	_, _, err := exec.Execute(context.Background(), nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	runner.AssertExpectations(t)
}

func TestExecutor_RejectsLongArgumentLists(t *testing.T) {
	runner := new(MockRunner)
	exec := NewExecutorWithRunner("tool", time.Second, runner)

	_, _, err := exec.Execute(context.Background(), make([]string, MaxArgs+1), nil)

	assert.ErrorIs(t, err, ErrTooManyArgs)
	runner.AssertNotCalled(t, "Run")
}

func TestExecutor_DefaultTimeout(t *testing.T) {
	exec := NewExecutor("git", 0)
	assert.Equal(t, DefaultTimeout, exec.Timeout())
	assert.Equal(t, "git", exec.Name())
}

func TestExecCommandRunner_MissingBinary(t *testing.T) {
	_, _, err := ExecCommandRunner{}.Run(context.Background(), "", "estimo-definitely-missing-tool", nil, nil)
	assert.Error(t, err)
}

func TestExecutor_KillsLingeringChildren(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	start := time.Now()
	_, _, err := NewExecutor("sh", 200*time.Millisecond).
		Execute(context.Background(), []string{"-c", "(sleep 3) & wait"}, nil)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, elapsed, 2*time.Second)
}
