// Package stlc ties a loaded project's compiled bundle, I/O image, cyclic
// scheduler, and control plane together into the single running unit a CLI
// command or embedder operates on — the root orchestrator, generalized from
// tunaq.Engine's shape of owning construction, a run loop, and shutdown.
package stlc

import (
	"fmt"
	"time"

	"github.com/dekarrin/stlc/internal/bundle"
	"github.com/dekarrin/stlc/internal/controlplane"
	"github.com/dekarrin/stlc/internal/logging"
	"github.com/dekarrin/stlc/internal/runtime"
	"github.com/dekarrin/stlc/internal/scheduler"
)

// Project is a loaded, runnable instance of a project folder: its config and
// compiled bundle (internal/bundle), its I/O image and forced-variable
// overlay and one Frame per POU (internal/runtime), its cyclic scheduler
// (internal/scheduler), and its control-plane listener (internal/controlplane),
// all wired together into the single owner a CLI command or embedder starts,
// drives, and shuts down.
type Project struct {
	bundleProj *bundle.Project
	image      *runtime.Image
	overlay    *runtime.Overlay
	frames     map[string]*runtime.Frame
	runner     *scheduler.Runner
	session    *controlplane.Session
	server     *controlplane.Server

	log     *logging.Logger
	running bool
}

// Open loads the project at dir (runtime.toml, io.toml, program.stbc, and
// its manifest) and wires a Runner task per compiled POU, but does not yet
// start the cyclic loop or the control-plane listener — call Start for that.
//
// If log is nil, logging.Default() is used.
func Open(dir string, log *logging.Logger) (*Project, error) {
	if log == nil {
		log = logging.Default()
	}

	bp, err := bundle.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	img := runtime.NewImage()
	overlay := runtime.NewOverlay(img)

	frames := make(map[string]*runtime.Frame, len(bp.Bundle.Programs))
	for i := range bp.Bundle.Programs {
		prog := &bp.Bundle.Programs[i]
		frames[prog.Name] = runtime.NewFrame(prog)
	}

	interval := time.Duration(bp.Config.Resource.CycleIntervalMs) * time.Millisecond
	if interval <= 0 {
		return nil, fmt.Errorf("load project: resource.cycle_interval_ms must be positive, got %d", bp.Config.Resource.CycleIntervalMs)
	}

	runner := scheduler.NewRunner(scheduler.RealClock{}, interval)
	runner.ApplyForced = overlay.ApplyToImage

	session := controlplane.NewSession(runner, overlay, bp.Bundle)

	p := &Project{
		bundleProj: bp,
		image:      img,
		overlay:    overlay,
		frames:     frames,
		runner:     runner,
		session:    session,
		log:        log,
	}

	for i := range bp.Bundle.Programs {
		prog := &bp.Bundle.Programs[i]
		frame := frames[prog.Name]
		name := prog.Name
		runner.Tasks = append(runner.Tasks, &scheduler.Task{
			Name:     name,
			Priority: i,
			Body: func() error {
				if err := frame.Run(overlay); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				return nil
			},
		})
	}

	runner.OnFault = func(err error) {
		session.RecordFault(err.Error())
		log.Errorf("program fault: %v", err)
	}

	endpoint := bp.Config.Runtime.ControlEndpoint
	if endpoint != "" {
		router := controlplane.NewRouter(session)
		p.server = controlplane.NewServer(router, bp.Config.Runtime.AuthToken)
	}

	return p, nil
}

// Frame returns the running Frame for the named POU, or nil if no such
// program was compiled into the bundle.
func (p *Project) Frame(name string) *runtime.Frame {
	return p.frames[name]
}

// Session returns the control-plane session backing this project, for
// embedders that want to drive status/io/variables/debug handlers directly
// without going through the network listener.
func (p *Project) Session() *controlplane.Session {
	return p.session
}

// Runner returns the scheduler driving this project's cyclic loop.
func (p *Project) Runner() *scheduler.Runner {
	return p.runner
}

// Start transitions the scheduler to Running and, if runtime.toml named a
// control.endpoint, begins listening for control-plane connections in a
// background goroutine. The cyclic loop itself must be driven separately,
// by calling Loop (or RunOneCycle repeatedly) on Runner — Start only opens
// the project for business, mirroring Engine.New versus Engine.RunUntilQuit
// being distinct steps.
func (p *Project) Start() error {
	if p.running {
		return fmt.Errorf("project already started")
	}
	if err := p.runner.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	if p.server != nil {
		endpoint := p.bundleProj.Config.Runtime.ControlEndpoint
		go func() {
			if err := p.server.ListenAndServe(endpoint); err != nil {
				p.log.Errorf("control plane listener stopped: %v", err)
			}
		}()
		p.log.Infof("control plane listening on %s", endpoint)
	}

	p.running = true
	p.session.RecordEvent("lifecycle", "project started")
	return nil
}

// Loop drives the scheduler's cyclic loop until stopped reports true. Call
// this from the goroutine that owns the resource's real-time loop; Start
// only arms the scheduler state machine and the control plane, it does not
// block.
func (p *Project) Loop(stopped func() bool) {
	p.runner.Loop(stopped)
}

// Close stops the control-plane listener and shuts the scheduler down. It is
// safe to call Close on a Project that was never Started.
func (p *Project) Close() error {
	p.runner.Shutdown()
	if p.server != nil {
		if err := p.server.Close(); err != nil {
			return fmt.Errorf("close control plane: %w", err)
		}
	}
	p.running = false
	return nil
}
