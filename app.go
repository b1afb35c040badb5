package autofocus

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"time"
)

type systemFn any

type Module interface {
	Install(app *App, cmd *Commands)
}

// App hosts the autofocus systems. Update plays the role of the host's
// scene-change notification; Timers carries the fixed-period callbacks that
// run on their own cadence.
type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	timers    *Timers
	now       func() time.Time
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) Timers() *Timers {
	return app.timers
}

// Update runs every stage once. Hosts call it whenever the scene changes.
func (app *App) Update() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
}

// FireTimers runs the timers that are due at the app's current time.
func (app *App) FireTimers() int {
	return app.timers.Fire(app.now())
}

// Run drives Update at the given frame interval and fires timers every
// timerResolution until ctx is cancelled.
func (app *App) Run(ctx context.Context, frameInterval, timerResolution time.Duration) error {
	if frameInterval <= 0 || timerResolution <= 0 {
		return fmt.Errorf("run: intervals must be positive (frame %v, timers %v)", frameInterval, timerResolution)
	}

	frames := time.NewTicker(frameInterval)
	defer frames.Stop()
	ticks := time.NewTicker(timerResolution)
	defer ticks.Stop()

	app.Logger().Infof("running (frame %v, timer resolution %v)", frameInterval, timerResolution)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-frames.C:
			app.Update()
		case <-ticks.C:
			app.FireTimers()
		}
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("%s is not a pointer resource", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource looks up a resource by its type.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	typed, ok := r.(*T)
	return typed, ok
}

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		var underlyingType reflect.Type
		if argType.Kind() == reflect.Pointer {
			underlyingType = argType.Elem()
		}

		if argType == typeOfLogger {
			args[i] = reflect.ValueOf(app.Logger())
		} else if underlyingType == nil {
			panic(fmt.Sprintf("System %s: dependency %s must be a pointer",
				runtime.FuncForPC(systemValue.Pointer()).Name(), argType))
		} else if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if underlyingType == typeOfTimers {
			args[i] = reflect.ValueOf(app.timers)
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}
	systemValue.Call(args)
}

var (
	typeOfCommands = reflect.TypeOf(Commands{})
	typeOfTimers   = reflect.TypeOf(Timers{})
	typeOfLogger   = reflect.TypeOf((*Logger)(nil)).Elem()
)
