package present

import (
	"time"

	"github.com/goliatone/go-cipherview/pkg/model"
	"github.com/goliatone/go-cipherview/pkg/render"
)

// DefaultTick is the delay between two consecutive reveals.
const DefaultTick = 250 * time.Millisecond

// Task is one reveal: what to render and when, relative to the start of the
// sequence.
type Task struct {
	Delay  time.Duration
	Kind   render.BlockKind
	Step   string
	Table  *model.CharTable
	Result string
}

// Plan is the ordered reveal sequence of one response.
type Plan struct {
	Tick  time.Duration
	Tasks []Task
}

// BuildPlan lays out steps first, then the table when there is one, then the
// result. Delays start at zero and grow by tick after every step and after
// the table, so the result is always last. A non-positive tick falls back to
// DefaultTick.
func BuildPlan(success model.SuccessResponse, tick time.Duration) Plan {
	if tick <= 0 {
		tick = DefaultTick
	}

	tasks := make([]Task, 0, len(success.Steps)+2)
	var delay time.Duration
	for _, step := range success.Steps {
		tasks = append(tasks, Task{Delay: delay, Kind: render.BlockStep, Step: step})
		delay += tick
	}
	if success.Table != nil {
		tasks = append(tasks, Task{Delay: delay, Kind: render.BlockTable, Table: success.Table})
		delay += tick
	}
	tasks = append(tasks, Task{Delay: delay, Kind: render.BlockResult, Result: success.Result})

	return Plan{Tick: tick, Tasks: tasks}
}

// Duration is the delay of the last task.
func (p Plan) Duration() time.Duration {
	if len(p.Tasks) == 0 {
		return 0
	}
	return p.Tasks[len(p.Tasks)-1].Delay
}

// Render produces the block for task using renderer.
func (t Task) Render(renderer render.BlockRenderer) (render.Block, error) {
	switch t.Kind {
	case render.BlockStep:
		return renderer.Step(t.Step)
	case render.BlockTable:
		if t.Table == nil {
			return render.Block{}, errNoTable
		}
		return renderer.Table(*t.Table)
	case render.BlockResult:
		return renderer.Result(t.Result)
	default:
		return render.Block{}, errUnknownTask(t.Kind)
	}
}
