package autofocus

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	require.PanicsWithValue(t, "autofocus.MockResource1 is not a pointer resource", func() {
		app.addResources(MockResource1{})
	})
}

func TestApp_SystemInjection(t *testing.T) {
	app := NewAppBuilder().Build()
	app.Commands().AddResources(NewMockResource1("r1"))

	var got *MockResource1
	var gotCmd *Commands
	var gotTimers *Timers
	var gotLogger Logger
	app.UseSystem(System(func(r *MockResource1, cmd *Commands, timers *Timers, log Logger) {
		got, gotCmd, gotTimers, gotLogger = r, cmd, timers, log
	}).InStage(Update))

	app.Update()

	require.NotNil(t, got)
	assert.Equal(t, "r1", got.name)
	assert.NotNil(t, gotCmd)
	assert.Same(t, app.Timers(), gotTimers)
	assert.NotNil(t, gotLogger)
}

func TestApp_UnresolvedDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(r *MockResource2) {}).InStage(Update))

	assert.Panics(t, func() { app.Update() })
}

func TestApp_StageOrder(t *testing.T) {
	app := NewAppBuilder().Build()

	var order []string
	app.UseSystem(System(func() { order = append(order, "post") }).InStage(PostUpdate))
	app.UseSystem(System(func() { order = append(order, "update") }).InStage(Update))
	app.UseSystem(System(func() { order = append(order, "pre") }).InStage(PreUpdate))

	app.Update()
	assert.Equal(t, []string{"pre", "update", "post"}, order)
}

func TestApp_UseStage(t *testing.T) {
	app := NewAppBuilder().Build()
	early := Stage{Name: "Early"}
	late := Stage{Name: "Late"}

	app.UseStage(early, BeforeStage(PreUpdate)).
		UseStage(late, AfterStage(PostUpdate))
	assert.Equal(t, []Stage{Prelude, early, PreUpdate, Update, PostUpdate, late}, app.stages)

	var order []string
	app.UseSystem(System(func() { order = append(order, "late") }).InStage(late))
	app.UseSystem(System(func() { order = append(order, "update") }).InStage(Update))
	app.UseSystem(System(func() { order = append(order, "early") }).InStage(early))
	app.Update()
	assert.Equal(t, []string{"early", "update", "late"}, order)

	require.PanicsWithValue(t, "Stage Missing not found", func() {
		app.UseStage(Stage{Name: "Other"}, AfterStage(Stage{Name: "Missing"}))
	})
}

func TestApp_AutofocusStageFollowsUpdate(t *testing.T) {
	app := NewAppBuilder().UseModule(AutofocusModule{}).Build()
	assert.Equal(t, []Stage{Prelude, PreUpdate, Update, AutofocusStage, PostUpdate}, app.stages)
}

func TestApp_RunRejectsBadIntervals(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.Error(t, app.Run(context.Background(), 0, time.Millisecond))
	assert.Error(t, app.Run(context.Background(), time.Millisecond, -1))
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app := NewAppBuilder().Build()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := app.Run(ctx, time.Millisecond, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// The module wires the coarse update into App.Update and the stepper into
// the app's timers.
func TestApp_AutofocusModule(t *testing.T) {
	clock := newManualClock()
	rc := &planeRaycaster{Z: -10}
	app := NewAppBuilder().
		UseClock(clock.Now).
		UseModule(AutofocusModule{
			Raycaster: rc,
			Scene:     SceneSettings{RateEnabled: false, RateSeconds: DefaultRateSeconds},
		}).
		Build()

	af, ok := Resource[Autofocus](app)
	require.True(t, ok)
	_, ok = Resource[Time](app)
	require.True(t, ok, "TimeModule is pulled in")

	cam := newFakeCamera("Camera")
	cam.focus = 5
	_, err := app.Commands().EnableAutofocus(cam)
	require.NoError(t, err)
	require.NoError(t, app.Commands().SetSmoothing(cam, true, DefaultSmoothSteps))

	clock.Advance(time.Millisecond)
	app.Update()
	assert.True(t, app.Timers().IsRegistered(SmoothingTimerName))
	assert.Equal(t, 5.0, cam.focus)

	for i := 0; i < DefaultSmoothSteps; i++ {
		clock.Advance(StepInterval)
		assert.Equal(t, 1, app.FireTimers())
	}
	assert.Equal(t, 10.0, cam.focus)
	assert.False(t, app.Timers().IsRegistered(SmoothingTimerName))
	assert.Len(t, af.Cameras(), 1)
}
