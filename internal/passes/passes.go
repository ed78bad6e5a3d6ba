// Package passes runs analysis passes over a parsed circuit program before
// emission.
package passes

import (
	"fmt"

	"github.com/zhemao/flo-llvm/internal/flo"
)

// Pass is a single analysis over the program.
type Pass interface {
	Name() string
	Run(prog *flo.Program) error
}

// Manager runs passes in registration order, stopping at the first failure.
type Manager struct {
	passes []Pass
}

// NewManager constructs an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add registers a pass.
func (m *Manager) Add(p Pass) {
	m.passes = append(m.passes, p)
}

// Run executes every registered pass against prog.
func (m *Manager) Run(prog *flo.Program) error {
	if prog == nil {
		return fmt.Errorf("passes require a non-nil program")
	}
	for _, p := range m.passes {
		if err := p.Run(prog); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}
