// Package launch turns an instance into a running game process.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/domain"
)

// executableCandidates are probed in order relative to the install directory
var executableCandidates = []string{
	"vintagestory/Vintagestory",
	"vintagestory/run.sh",
	"Vintagestory",
	"run.sh",
	"vintagestory/Vintagestory.exe",
	"Vintagestory.exe",
}

// Process describes a started game process. The launcher does not track it further.
// @Description Started game process
type Process struct {
	PID        int       `json:"pid"`
	Executable string    `json:"executable"`
	Args       []string  `json:"args"`
	Dir        string    `json:"dir"`
	Instance   string    `json:"instance"`
	Version    string    `json:"version"`
	StartedAt  time.Time `json:"started_at"`
}

// StartFunc starts cmd and returns its PID. Tests replace it to avoid spawning.
type StartFunc func(cmd *exec.Cmd) (int, error)

// Controller resolves instances into game process invocations
type Controller struct {
	installed domain.InstalledVersions
	start     StartFunc
}

// NewController creates a controller that looks versions up in installed
func NewController(installed domain.InstalledVersions) *Controller {
	return &Controller{installed: installed, start: startDetached}
}

// WithStartFunc replaces the process starter
func (c *Controller) WithStartFunc(fn StartFunc) *Controller {
	c.start = fn
	return c
}

// Launch starts the game for inst with the instance directory as data path and its
// mod folder as an extra mod path. It returns as soon as the process is started.
func (c *Controller) Launch(ctx context.Context, inst *domain.Instance) (*Process, error) {
	installDir, ok := c.installed.Lookup(inst.Version)
	if !ok {
		return nil, domain.NewAppError(domain.ErrVersionNotInstalled,
			fmt.Sprintf("Version %s is not installed", inst.Version), 409,
			map[string]any{"instance": inst.Name, "version": inst.Version}).WithContext(ctx, "launch")
	}

	exe, err := FindExecutable(installDir)
	if err != nil {
		return nil, err
	}
	if err := ensureExecutable(exe); err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrLaunch, "Failed to mark game executable as runnable", 500, err,
			map[string]any{"executable": exe})
	}

	args := []string{"--dataPath", inst.Path, "--addModPath", inst.ModsPath}

	// Not tied to ctx: the game must outlive the request that started it
	cmd := exec.Command(exe, args...)
	cmd.Dir = filepath.Dir(exe)
	detach(cmd)

	pid, err := c.start(cmd)
	if err != nil {
		return nil, domain.NewAppErrorWithCause(domain.ErrLaunch, "Failed to start game process", 500, err,
			map[string]any{"executable": exe, "instance": inst.Name}).WithContext(ctx, "launch")
	}

	proc := &Process{
		PID:        pid,
		Executable: exe,
		Args:       args,
		Dir:        cmd.Dir,
		Instance:   inst.Name,
		Version:    inst.Version,
		StartedAt:  time.Now(),
	}

	log.Info().
		Str("instance", inst.Name).
		Str("version", inst.Version).
		Str("executable", exe).
		Int("pid", pid).
		Msg("Game launched")

	return proc, nil
}

// FindExecutable returns the first existing launch candidate inside installDir
func FindExecutable(installDir string) (string, error) {
	for _, candidate := range executableCandidates {
		path := filepath.Join(installDir, filepath.FromSlash(candidate))
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", domain.NewAppError(domain.ErrLaunch, "No game executable found in install directory", 500,
		map[string]any{"install_dir": installDir, "candidates": executableCandidates})
}

// ensureExecutable adds the user exec bit on unix when it is missing
func ensureExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode&0100 != 0 {
		return nil
	}
	return os.Chmod(path, mode|0111)
}

// startDetached starts cmd and releases it immediately so the launcher never waits on it
func startDetached(cmd *exec.Cmd) (int, error) {
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		log.Warn().Err(err).Int("pid", pid).Msg("Failed to release game process handle")
	}
	return pid, nil
}
