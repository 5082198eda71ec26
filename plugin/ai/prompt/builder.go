package prompt

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/hrygo/acutie/plugin/ai/conversation"
	"github.com/hrygo/acutie/plugin/ai/router"
)

// ErrUnknownTask is returned when no template exists for a task.
var ErrUnknownTask = errors.New("no prompt template for task")

// Context is the structured input of a prompt.
type Context struct {
	Message        string
	Condition      string
	Covered        []string
	NextDimension  string
	Recent         []conversation.Message
	AssessmentData string
	Analysis       string
}

type compiled struct {
	system string
	user   *template.Template
}

// Registry holds versioned template sets. Each engine owns its registry;
// switching versions on one does not affect another.
// Thread-safe: uses mu for concurrent access to sets.
type Registry struct {
	mu      sync.RWMutex
	version Version
	sets    map[Version]map[router.TaskType]compiled
}

var funcs = template.FuncMap{"join": strings.Join}

// NewRegistry creates a registry with the built-in V1 set active.
func NewRegistry() *Registry {
	r := &Registry{version: V1, sets: make(map[Version]map[router.TaskType]compiled)}
	if err := r.AddSet(V1, v1Templates); err != nil {
		panic(err)
	}
	return r
}

// AddSet parses and registers a template set.
func (r *Registry) AddSet(v Version, templates map[router.TaskType]Template) error {
	set := make(map[router.TaskType]compiled, len(templates))
	for task, tpl := range templates {
		parsed, err := template.New(string(task)).Funcs(funcs).Option("missingkey=zero").Parse(tpl.User)
		if err != nil {
			return fmt.Errorf("parse %s template: %w", task, err)
		}
		set[task] = compiled{system: tpl.System, user: parsed}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sets[v] = set
	return nil
}

// SetVersion sets the active template set.
func (r *Registry) SetVersion(v Version) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[v]; !ok {
		return fmt.Errorf("prompt version %s not found", v)
	}
	r.version = v
	return nil
}

// Build renders the user prompt of task with ctx.
// Tasks missing from the active set fall back to V1.
func (r *Registry) Build(task router.TaskType, ctx Context) (string, error) {
	c, ok := r.lookup(task)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	var b strings.Builder
	if err := c.user.Execute(&b, ctx); err != nil {
		return "", fmt.Errorf("render %s template: %w", task, err)
	}
	return strings.TrimSpace(b.String()), nil
}

// System returns the system prompt of task, or "".
func (r *Registry) System(task router.TaskType) string {
	c, _ := r.lookup(task)
	return c.system
}

func (r *Registry) lookup(task router.TaskType) (compiled, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.sets[r.version][task]; ok {
		return c, true
	}
	c, ok := r.sets[V1][task]
	return c, ok
}
