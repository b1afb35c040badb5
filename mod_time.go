package autofocus

import (
	"time"
)

type Time struct {
	Time time.Time
	Dt   time.Duration
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time: app.now(),
		Dt:   0,
	})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
}

func timeSystem(cmd *Commands, timeResource *Time) {
	now := cmd.app.now()

	timeResource.Dt = now.Sub(timeResource.Time)
	timeResource.Time = now
}
