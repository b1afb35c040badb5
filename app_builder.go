package autofocus

import (
	"reflect"
	"time"
)

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
		now:       time.Now,
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	app.timers = NewTimers(func() time.Time { return app.now() }, app.Logger)
	return &AppBuilder{app: app}
}

// UseClock replaces the wall clock used for frame time and timers.
func (b *AppBuilder) UseClock(now func() time.Time) *AppBuilder {
	b.app.now = now
	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

func (b *AppBuilder) Build() *App {
	app := b.app
	commands := &Commands{app: app}

	for _, module := range b.modules {
		module.Install(app, commands)
		app.modules = append(app.modules, module)
	}

	return app
}
