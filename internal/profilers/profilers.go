// Package profilers implement helper functions to set up profiling of the trainer.
//
// If linked, it will install the profiler flags.
package profilers

import (
	"context"
	"flag"
	"fmt"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
)

var (
	flagProfiler   = flag.Int("prof", -1, "If set, runs the HTTP profiler at the given port.")
	flagCPUProfile = flag.String("cpu_profile", "", "write cpu profile to `file`")
	flagKeepAlive  = flag.Bool("prof_keep_alive", false,
		"If set with -prof, the program is kept alive at the end, until interrupted, so the profile can be read.")
)

// Profilers holds the state of the profilers configured by the flags.
type Profilers struct {
	ctx      context.Context
	addr     string
	cpuFile  *os.File
	keepOpen bool
}

// Setup starts the HTTP (flag -prof) and CPU profilers (flag -cpu_profile), if they were configured.
// You should follow with a deferred call to Profilers.OnQuit.
//
// ctx is used to decide when to exit, if -prof_keep_alive is set.
func Setup(ctx context.Context) (*Profilers, error) {
	return setup(ctx, *flagProfiler, *flagCPUProfile, *flagKeepAlive)
}

func setup(ctx context.Context, port int, cpuProfile string, keepAlive bool) (*Profilers, error) {
	p := &Profilers{ctx: ctx}
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return nil, errors.Wrapf(err, "could not create CPU profile %q", cpuProfile)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, errors.Wrap(err, "could not start CPU profile")
		}
		p.cpuFile = f
	}
	if port >= 0 {
		p.addr = fmt.Sprintf("localhost:%d", port)
		p.keepOpen = keepAlive
		klog.Infof("Starting profiler on %s/debug/pprof", p.addr)
		klog.Infof("- You can access it with: $ go tool pprof %s/debug/pprof/heap", p.addr)
		go func() {
			klog.Fatal(http.ListenAndServe(p.addr, nil))
		}()
	}
	return p, nil
}

// OnQuit stops the CPU profiler and, if -prof_keep_alive was set, keeps the program alive
// until the context given to Setup is done.
func (p *Profilers) OnQuit() {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		if err := p.cpuFile.Close(); err != nil {
			klog.Errorf("Failed to close CPU profile: %+v", err)
		}
		p.cpuFile = nil
	}
	if !p.keepOpen || p.ctx.Err() != nil {
		return
	}

	// Garbage collect, to see if there is anything leaking.
	for range 10 {
		runtime.GC()
	}
	fmt.Printf("- Program finished: kept alive with profiler opened at %s/debug/pprof\n", p.addr)
	fmt.Printf("- Interrupt (Ctrl+C) to exit\n")
	<-p.ctx.Done()
	fmt.Printf("... exiting ...\n")
}
