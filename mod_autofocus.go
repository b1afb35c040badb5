package autofocus

// AutofocusStage runs the coarse update after the host's own Update systems
// have moved things around.
var AutofocusStage = Stage{Name: "Autofocus"}

// AutofocusModule installs the autofocus coordinator as a resource and runs
// its coarse update on every App.Update. Install LoggingModule before it to
// get log output.
type AutofocusModule struct {
	Raycaster Raycaster
	Scene     SceneSettings
	Observers []FocusObserver
}

func (m AutofocusModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[Time](app); !ok {
		TimeModule{}.Install(app, cmd)
	}

	af := New(Options{
		Scene:     m.Scene,
		Raycaster: m.Raycaster,
		Timers:    app.timers,
		Logger:    app.Logger(),
		Now:       app.now,
	})
	for _, o := range m.Observers {
		af.AddObserver(o)
	}
	cmd.AddResources(af)

	app.UseStage(AutofocusStage, AfterStage(Update)).
		UseSystem(
			System(AutofocusUpdateSystem).
				InStage(AutofocusStage),
		)
}

func AutofocusUpdateSystem(af *Autofocus, t *Time) {
	af.SceneUpdate(t.Time)
}
