package workflow

import (
	"context"
	"fmt"
)

// Component is one pluggable unit of work within a layer. It must record its
// outcome under context.ProcessorResults[task.ID] and may additionally set
// any of the WorkflowContext's well-known shared keys.
type Component interface {
	Execute(ctx context.Context, task TaskDefinition, wc *WorkflowContext) error
}

// ComponentFunc adapts a plain function to the Component interface.
type ComponentFunc func(ctx context.Context, task TaskDefinition, wc *WorkflowContext) error

func (f ComponentFunc) Execute(ctx context.Context, task TaskDefinition, wc *WorkflowContext) error {
	return f(ctx, task, wc)
}

// componentKey identifies a component by the (layer_type, implementation)
// pair a task declares.
type componentKey struct {
	Layer          string
	Implementation string
}

// ComponentFactory resolves a task's (layer, implementation) pair to a
// Component instance. Registration happens once at process startup; lookups
// afterward never mutate the table, so concurrent runs share it lock-free.
type ComponentFactory struct {
	components map[componentKey]Component
}

// NewComponentFactory constructs an empty factory.
func NewComponentFactory() *ComponentFactory {
	return &ComponentFactory{components: map[componentKey]Component{}}
}

// Register binds a component under (layer, implementation). A later call
// with the same key overwrites the earlier registration.
func (f *ComponentFactory) Register(layer, implementation string, component Component) {
	f.components[componentKey{Layer: layer, Implementation: implementation}] = component
}

// Resolve looks up the component for a task's declared layer and
// implementation.
func (f *ComponentFactory) Resolve(layer, implementation string) (Component, error) {
	c, ok := f.components[componentKey{Layer: layer, Implementation: implementation}]
	if !ok {
		return nil, fmt.Errorf("no component registered for layer %q implementation %q", layer, implementation)
	}
	return c, nil
}
