package system

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
)

// ErrUnsupportedPlatform is returned when no command is known for the
// current operating system.
var ErrUnsupportedPlatform = errors.New("jarvis: system action not supported on this platform")

// windowsVolumeStep is the percentage one volume key press moves on Windows.
const windowsVolumeStep = 2

// Command is one external program invocation. Detached commands are started
// without waiting for them to exit.
type Command struct {
	Name   string
	Args   []string
	Detach bool
}

// Runner executes a Command.
type Runner func(ctx context.Context, cmd Command) error

// Local performs system actions on the host with os/exec. Each action has a
// list of candidate commands per platform; the first that succeeds wins.
type Local struct {
	goos string
	run  Runner
}

var _ Actions = (*Local)(nil)

// NewLocal returns a Local for the running platform.
func NewLocal() *Local {
	return &Local{goos: runtime.GOOS, run: execRunner}
}

func execRunner(ctx context.Context, c Command) error {
	if c.Detach {
		// the launched application must outlive the request context
		cmd := exec.Command(c.Name, c.Args...)
		if err := cmd.Start(); err != nil {
			return err
		}
		return cmd.Process.Release()
	}
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", c.Name, err, out)
	}
	return nil
}

// OpenApp starts name detached from the request context. The name is passed
// as a program or a single argument, never through a shell.
func (l *Local) OpenApp(ctx context.Context, name string) error {
	return l.first(ctx, openAppCommands(l.goos, name))
}

// SetVolume sets the master volume and returns the level reached. On
// Windows the volume moves in steps of windowsVolumeStep, so an odd level is
// rounded down.
func (l *Local) SetVolume(ctx context.Context, level int) (int, error) {
	if err := l.first(ctx, volumeCommands(l.goos, level)); err != nil {
		return 0, err
	}
	if l.goos == "windows" {
		return level / windowsVolumeStep * windowsVolumeStep, nil
	}
	return level, nil
}

// EmptyTrash empties the desktop recycle bin with the platform's own tool.
func (l *Local) EmptyTrash(ctx context.Context) error {
	return l.first(ctx, emptyTrashCommands(l.goos))
}

func (l *Local) first(ctx context.Context, candidates []Command) error {
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, l.goos)
	}
	var errs []error
	for _, c := range candidates {
		err := l.run(ctx, c)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return errors.Join(errs...)
}

func openAppCommands(goos, name string) []Command {
	switch goos {
	case "windows":
		// no cmd.exe: the name must never be parsed by a shell
		return []Command{
			{Name: name, Detach: true},
			{Name: "explorer.exe", Args: []string{name}, Detach: true},
		}
	case "darwin":
		return []Command{
			{Name: "open", Args: []string{"-a", name}, Detach: true},
			{Name: name, Detach: true},
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []Command{
			{Name: name, Detach: true},
			{Name: "gtk-launch", Args: []string{name}, Detach: true},
		}
	}
	return nil
}

func volumeCommands(goos string, level int) []Command {
	pct := strconv.Itoa(level) + "%"
	switch goos {
	case "windows":
		// 50 volume-down presses reach zero, each volume-up press adds one step
		script := fmt.Sprintf("$s = New-Object -ComObject WScript.Shell; 1..50 | %% { $s.SendKeys([char]174) }; 1..%d | %% { $s.SendKeys([char]175) }", level/windowsVolumeStep)
		if level < windowsVolumeStep {
			script = "$s = New-Object -ComObject WScript.Shell; 1..50 | % { $s.SendKeys([char]174) }"
		}
		return []Command{{Name: "powershell", Args: []string{"-NoProfile", "-Command", script}}}
	case "darwin":
		return []Command{{Name: "osascript", Args: []string{"-e", "set volume output volume " + strconv.Itoa(level)}}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []Command{
			{Name: "pactl", Args: []string{"set-sink-volume", "@DEFAULT_SINK@", pct}},
			{Name: "amixer", Args: []string{"-q", "sset", "Master", pct}},
		}
	}
	return nil
}

func emptyTrashCommands(goos string) []Command {
	switch goos {
	case "windows":
		return []Command{{Name: "powershell", Args: []string{"-NoProfile", "-Command", "Clear-RecycleBin -Force -ErrorAction Stop"}}}
	case "darwin":
		return []Command{{Name: "osascript", Args: []string{"-e", `tell application "Finder" to empty trash`}}}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []Command{
			{Name: "gio", Args: []string{"trash", "--empty"}},
			{Name: "trash-empty"},
		}
	}
	return nil
}
