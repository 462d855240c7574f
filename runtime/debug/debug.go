// Package debug interfaces Go runtime debugging facilities. This package is
// mostly glue code making these facilities available through the CLI. If you
// want to use them from Go code, use package runtime instead.
package debug

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof" // #nosec G108 -- served on a loopback address behind the --pprof flag
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	runtimeDebug "runtime/debug"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "debug")

// Handler is the global debugging handler.
var Handler = new(HandlerT)

// HandlerT implements the debugging API.
// Do not create values of this type, use the one in the Handler variable
// instead.
type HandlerT struct {
	mu        sync.Mutex
	cpuW      io.WriteCloser
	cpuFile   string
	traceW    io.WriteCloser
	traceFile string
}

var (
	// PProfFlag to enable the pprof HTTP server.
	PProfFlag = &cli.BoolFlag{
		Name:  "pprof",
		Usage: "Enable the pprof HTTP server",
	}
	// PProfPortFlag to specify the pprof HTTP server listening port.
	PProfPortFlag = &cli.IntFlag{
		Name:  "pprofport",
		Usage: "pprof HTTP server listening port",
		Value: 6060,
	}
	// PProfAddrFlag to specify the pprof HTTP server listening interface.
	PProfAddrFlag = &cli.StringFlag{
		Name:  "pprofaddr",
		Usage: "pprof HTTP server listening interface",
		Value: "127.0.0.1",
	}
	// MemProfileRateFlag to specify the mem profiling rate.
	MemProfileRateFlag = &cli.IntFlag{
		Name:  "memprofilerate",
		Usage: "Turn on memory profiling with the given rate",
		Value: runtime.MemProfileRate,
	}
	// BlockProfileRateFlag to specify the block profiling rate.
	BlockProfileRateFlag = &cli.IntFlag{
		Name:  "blockprofilerate",
		Usage: "Turn on block profiling with the given rate",
	}
	// MutexProfileFractionFlag to specify the mutex profiling fraction.
	MutexProfileFractionFlag = &cli.IntFlag{
		Name:  "mutexprofilefraction",
		Usage: "Turn on mutex profiling with the given fraction",
	}
	// CPUProfileFlag to specify where to write the CPU profile.
	CPUProfileFlag = &cli.StringFlag{
		Name:  "cpuprofile",
		Usage: "Write CPU profile to the given file",
	}
	// TraceFlag to specify where to write the trace execution profile.
	TraceFlag = &cli.StringFlag{
		Name:  "trace",
		Usage: "Write execution trace to the given file",
	}
)

// Flags holds the profiling flag group for the courtwatch binary.
var Flags = []cli.Flag{
	PProfFlag,
	PProfAddrFlag,
	PProfPortFlag,
	MemProfileRateFlag,
	BlockProfileRateFlag,
	MutexProfileFractionFlag,
	CPUProfileFlag,
	TraceFlag,
}

// Setup initializes profiling based on the CLI flags. It should be called as
// early as possible in the program.
func Setup(ctx *cli.Context) error {
	runtime.MemProfileRate = ctx.Int(MemProfileRateFlag.Name)
	Handler.SetBlockProfileRate(ctx.Int(BlockProfileRateFlag.Name))
	Handler.SetMutexProfileFraction(ctx.Int(MutexProfileFractionFlag.Name))
	if traceFile := ctx.String(TraceFlag.Name); traceFile != "" {
		if err := Handler.StartGoTrace(traceFile); err != nil {
			return err
		}
	}
	if cpuFile := ctx.String(CPUProfileFlag.Name); cpuFile != "" {
		if err := Handler.StartCPUProfile(cpuFile); err != nil {
			return err
		}
	}
	if ctx.Bool(PProfFlag.Name) {
		address := fmt.Sprintf("%s:%d", ctx.String(PProfAddrFlag.Name), ctx.Int(PProfPortFlag.Name))
		StartPProf(address)
	}
	return nil
}

// StartPProf starts the pprof server on localhost.
func StartPProf(address string) {
	log.Infof("Starting pprof server, addr: http://%s/debug/pprof", address)
	go func() {
		// #nosec G114 -- the profiling server is local-only tooling
		if err := http.ListenAndServe(address, nil); err != nil {
			log.WithError(err).Error("Failure in running pprof server")
		}
	}()
}

// Exit stops all running profiles, flushing their output to the respective
// file.
func Exit(ctx *cli.Context) {
	if traceFile := ctx.String(TraceFlag.Name); traceFile != "" {
		if err := Handler.StopGoTrace(); err != nil {
			log.WithError(err).Error("Failed to stop go tracing")
		}
	}
	if cpuFile := ctx.String(CPUProfileFlag.Name); cpuFile != "" {
		if err := Handler.StopCPUProfile(); err != nil {
			log.WithError(err).Error("Failed to stop CPU profiling")
		}
	}
}

// MemStats returns detailed runtime memory statistics.
func (*HandlerT) MemStats() *runtime.MemStats {
	s := new(runtime.MemStats)
	runtime.ReadMemStats(s)
	return s
}

// GcStats returns GC statistics.
func (*HandlerT) GcStats() *runtimeDebug.GCStats {
	s := new(runtimeDebug.GCStats)
	runtimeDebug.ReadGCStats(s)
	return s
}

// StartCPUProfile turns on CPU profiling, writing to the given file.
func (h *HandlerT) StartCPUProfile(file string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cpuW != nil {
		return errors.New("CPU profiling already in progress")
	}
	f, err := os.Create(expandHome(file)) // #nosec G304 -- operator-supplied profile path
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		if err := f.Close(); err != nil {
			return err
		}
		return err
	}
	h.cpuW = f
	h.cpuFile = file
	log.WithField("file", h.cpuFile).Info("CPU profiling started")
	return nil
}

// StopCPUProfile stops an ongoing CPU profile.
func (h *HandlerT) StopCPUProfile() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	pprof.StopCPUProfile()
	if h.cpuW == nil {
		return errors.New("CPU profiling not in progress")
	}
	log.WithField("file", h.cpuFile).Info("Done writing CPU profile")
	if err := h.cpuW.Close(); err != nil {
		return err
	}
	h.cpuW = nil
	h.cpuFile = ""
	return nil
}

// StartGoTrace turns on Go runtime tracing, writing to the given file.
func (h *HandlerT) StartGoTrace(file string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.traceW != nil {
		return errors.New("trace already in progress")
	}
	f, err := os.Create(expandHome(file)) // #nosec G304 -- operator-supplied trace path
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		if err := f.Close(); err != nil {
			return err
		}
		return err
	}
	h.traceW = f
	h.traceFile = file
	log.WithField("file", h.traceFile).Info("Go tracing started")
	return nil
}

// StopGoTrace stops an ongoing trace.
func (h *HandlerT) StopGoTrace() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	trace.Stop()
	if h.traceW == nil {
		return errors.New("trace not in progress")
	}
	log.WithField("file", h.traceFile).Info("Done writing Go trace")
	if err := h.traceW.Close(); err != nil {
		return err
	}
	h.traceW = nil
	h.traceFile = ""
	return nil
}

// SetBlockProfileRate sets the rate of goroutine block profile data
// collection. A rate of 0 disables block profiling.
func (*HandlerT) SetBlockProfileRate(rate int) {
	runtime.SetBlockProfileRate(rate)
}

// SetMutexProfileFraction sets the rate of mutex profiling.
func (*HandlerT) SetMutexProfileFraction(rate int) {
	runtime.SetMutexProfileFraction(rate)
}

// WriteBlockProfile writes a goroutine blocking profile to the given file.
func (*HandlerT) WriteBlockProfile(file string) error {
	return writeProfile("block", file)
}

// WriteMemProfile writes an allocation profile to the given file. Note that
// the profiling rate cannot be set through the API, it must be set on the
// command line.
func (*HandlerT) WriteMemProfile(file string) error {
	return writeProfile("heap", file)
}

// Stacks returns a printed representation of the stacks of all goroutines.
func (*HandlerT) Stacks() string {
	buf := make([]byte, 1024*1024)
	buf = buf[:runtime.Stack(buf, true)]
	return string(buf)
}

func writeProfile(name, file string) error {
	p := pprof.Lookup(name)
	if p == nil {
		return fmt.Errorf("unknown profile: %s", name)
	}
	log.WithFields(logrus.Fields{
		"records": p.Count(),
		"profile": name,
		"file":    file,
	}).Info("Writing profile records")
	f, err := os.Create(expandHome(file)) // #nosec G304 -- operator-supplied profile path
	if err != nil {
		return err
	}
	if err := p.WriteTo(f, 0); err != nil {
		if err := f.Close(); err != nil {
			return err
		}
		return err
	}
	return f.Close()
}

// expandHome expands the home directory in file paths.
// ~someuser/tmp will not be expanded.
func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		home := os.Getenv("HOME")
		if home == "" {
			if usr, err := user.Current(); err == nil {
				home = usr.HomeDir
			}
		}
		if home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(p)
}
