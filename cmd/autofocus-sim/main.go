// Command autofocus-sim runs the autofocus core against a small scripted
// scene: a camera looking at a wall with an obstacle sweeping through its
// view. Focus changes can be watched live over a websocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gekko3d/autofocus"
	"github.com/gekko3d/autofocus/scene"
	"github.com/gekko3d/autofocus/telemetry"
	"github.com/go-gl/mathgl/mgl64"
)

const cameraName = "Camera"

type simState struct {
	scene *scene.Scene
	start time.Time
}

type simModule struct {
	scene *scene.Scene
}

func (m simModule) Install(app *autofocus.App, cmd *autofocus.Commands) {
	cmd.AddResources(&simState{scene: m.scene})
	app.UseSystem(
		autofocus.System(obstacleSystem).
			InStage(autofocus.PreUpdate),
	)
}

// obstacleSystem sweeps the obstacle between 8 and 22 units in front of the
// camera.
func obstacleSystem(t *autofocus.Time, sim *simState, logger autofocus.Logger) {
	if sim.start.IsZero() {
		sim.start = t.Time
	}
	phase := t.Time.Sub(sim.start).Seconds()
	z := -(15 + 7*math.Sin(phase))
	if err := sim.scene.SetShape("obstacle", scene.Sphere{Center: mgl64.Vec3{0, 0, z}, Radius: 1}); err != nil {
		logger.Warnf("move obstacle: %v", err)
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "autofocus-sim:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "YAML autofocus settings file")
		watch      = flag.Bool("watch", false, "reload -config when it changes")
		duration   = flag.Duration("duration", 5*time.Second, "how long to run")
		listen     = flag.String("listen", "", "address for the websocket focus feed, e.g. :8765")
		storeName  = flag.String("store", "", "app name for persisted settings (empty disables)")
		smooth     = flag.Bool("smooth", true, "smooth focus changes")
		steps      = flag.Int("steps", autofocus.DefaultSmoothSteps, "smoothing steps")
		debug      = flag.Bool("debug", false, "debug logging")
	)
	flag.Parse()

	logger := autofocus.NewDefaultLogger("autofocus-sim", *debug)

	store := autofocus.NewSettingsStore(nil, logger)
	if *storeName != "" {
		s, err := autofocus.OpenSettingsStore(*storeName, logger)
		if err != nil {
			logger.Warnf("%v (settings will not be saved)", err)
		}
		store = s
	}

	snap, err := loadSnapshot(*configPath, store)
	if err != nil {
		logger.Warnf("%v (using defaults)", err)
	}

	scn := scene.NewScene("sim")
	scn.AddObject("wall", scene.Plane{Point: mgl64.Vec3{0, 0, -30}, Normal: mgl64.Vec3{0, 0, 1}})
	scn.AddObject("obstacle", scene.Sphere{Center: mgl64.Vec3{0, 0, -15}, Radius: 1})
	cam := scn.AddCamera(scene.NewCamera(cameraName))

	hub := telemetry.NewHub(logger)
	defer hub.Close()

	app := autofocus.NewAppBuilder().
		UseModule(
			autofocus.LoggingModule{Prefix: "autofocus-sim", Debug: *debug},
			autofocus.TimeModule{},
			autofocus.AutofocusModule{
				Raycaster: scn,
				Scene:     snap.Scene,
				Observers: []autofocus.FocusObserver{hub},
			},
			simModule{scene: scn},
		).
		Build()

	cmd := app.Commands()
	af, err := cmd.Autofocus()
	if err != nil {
		return err
	}

	if af.Restore(snap, scn.Camera) == 0 {
		if _, err := cmd.EnableAutofocus(cam); err != nil {
			return err
		}
		if err := cmd.SetSmoothing(cam, *smooth, *steps); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	if *listen != "" {
		srv := &http.Server{Addr: *listen, Handler: hub}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("focus feed: %v", err)
			}
		}()
		defer srv.Close()
		logger.Infof("focus feed on ws://%s/", *listen)
	}

	if *watch && *configPath != "" {
		w, err := autofocus.WatchSettings(*configPath)
		if err != nil {
			return fmt.Errorf("watch %s: %w", *configPath, err)
		}
		defer w.Close()
		go reloadLoop(ctx, w, cmd, af, scn, logger)
	}

	err = app.Run(ctx, time.Second/30, time.Second/240)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Infof("final focus distance of %q: %.3f", cam.Name(), cam.FocusDistance())
	if err := store.Save(scn.Name, af.Snapshot()); err != nil {
		return err
	}
	return nil
}

func loadSnapshot(path string, store *autofocus.SettingsStore) (autofocus.SceneSnapshot, error) {
	if path != "" {
		return autofocus.LoadSnapshot(path)
	}
	return store.Load("sim")
}

// reloadLoop applies settings file edits while the simulation runs.
func reloadLoop(ctx context.Context, w *autofocus.SettingsWatcher, cmd *autofocus.Commands, af *autofocus.Autofocus, scn *scene.Scene, logger autofocus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warnf("settings watcher: %v", err)
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			snap, err := autofocus.LoadSnapshot(path)
			if err != nil {
				logger.Warnf("reload %s: %v", path, err)
				continue
			}
			af.ApplySceneSettings(snap.Scene)
			for _, cs := range snap.Cameras {
				cam := scn.FindCamera(cs.Camera)
				if cam == nil {
					continue
				}
				if err := cmd.SetAutofocusEnabled(cam, cs.Settings.Enabled); err != nil {
					logger.Warnf("reload %s: %v", cs.Camera, err)
					continue
				}
				if err := cmd.SetSmoothing(cam, cs.Settings.Smooth, cs.Settings.SmoothSteps); err != nil {
					logger.Warnf("reload %s: smoothing: %v", cs.Camera, err)
				}
				if err := cmd.SetFocusWindow(cam, cs.Settings.Min, cs.Settings.Max); err != nil {
					logger.Warnf("reload %s: focus window: %v", cs.Camera, err)
				}
			}
			logger.Infof("reloaded %s", path)
		}
	}
}
