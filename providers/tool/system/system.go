package system

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leofalp/jarvis/providers/tool"
)

// Actions is the desktop the assistant controls.
type Actions interface {
	// OpenApp launches the named application.
	OpenApp(ctx context.Context, name string) error
	// SetVolume sets the master volume to level (0-100) and returns the
	// level actually in effect afterwards.
	SetVolume(ctx context.Context, level int) (int, error)
	// EmptyTrash empties the recycle bin.
	EmptyTrash(ctx context.Context) error
}

const (
	OpenAppName         = "open_app"
	SetVolumeName       = "set_volume"
	EmptyRecycleBinName = "empty_recycle_bin"
)

type OpenAppInput struct {
	AppName string `json:"app_name" jsonschema:"description=Name of the application to open (e.g. notepad or calc)"`
}

// shellMetachars are rejected in app_name. The name ends up on a command
// line and is never meant to carry a second command.
const shellMetachars = "&|<>^%\"`$;\n\r"

func (in *OpenAppInput) Normalize() error {
	in.AppName = strings.TrimSpace(in.AppName)
	if in.AppName == "" {
		return errors.New("app_name is required")
	}
	if i := strings.IndexAny(in.AppName, shellMetachars); i >= 0 {
		return fmt.Errorf("app_name contains forbidden character %q", in.AppName[i])
	}
	return nil
}

type SetVolumeInput struct {
	Level *int `json:"level" jsonschema:"required,description=Volume level in percent from 0 to 100,minimum=0,maximum=100"`
}

func (in *SetVolumeInput) Normalize() error {
	if in.Level == nil {
		return errors.New("level is required")
	}
	if *in.Level < 0 || *in.Level > 100 {
		return fmt.Errorf("level %d is outside 0-100", *in.Level)
	}
	return nil
}

type EmptyRecycleBinInput struct{}

// NewOpenAppTool binds Actions.OpenApp as open_app.
func NewOpenAppTool(actions Actions) *tool.Tool[OpenAppInput] {
	return tool.NewTool(OpenAppName,
		func(ctx context.Context, in OpenAppInput) (string, error) {
			if err := actions.OpenApp(ctx, in.AppName); err != nil {
				return "", fmt.Errorf("open %s: %w", in.AppName, err)
			}
			return fmt.Sprintf("Application %s opened.", in.AppName), nil
		},
		tool.WithDescription("Open a desktop application by name. Always call this when the user asks to open or launch something instead of answering with text only."),
	)
}

// NewSetVolumeTool binds Actions.SetVolume as set_volume.
func NewSetVolumeTool(actions Actions) *tool.Tool[SetVolumeInput] {
	return tool.NewTool(SetVolumeName,
		func(ctx context.Context, in SetVolumeInput) (string, error) {
			level, err := actions.SetVolume(ctx, *in.Level)
			if err != nil {
				return "", fmt.Errorf("set volume: %w", err)
			}
			return fmt.Sprintf("Volume set to %d%%.", level), nil
		},
		tool.WithDescription("Set the system volume to the given level in percent. Call this when the user asks to make the sound louder or quieter or names a volume level."),
	)
}

// NewEmptyRecycleBinTool binds Actions.EmptyTrash as empty_recycle_bin.
func NewEmptyRecycleBinTool(actions Actions) *tool.Tool[EmptyRecycleBinInput] {
	return tool.NewTool(EmptyRecycleBinName,
		func(ctx context.Context, _ EmptyRecycleBinInput) (string, error) {
			if err := actions.EmptyTrash(ctx); err != nil {
				return "", fmt.Errorf("empty recycle bin: %w", err)
			}
			return "Recycle bin emptied.", nil
		},
		tool.WithDescription("Empty the recycle bin. Call this when the user asks to clear the trash or free disk space."),
	)
}

// Tools returns the three system tools in catalog order.
func Tools(actions Actions) []tool.GenericTool {
	return []tool.GenericTool{
		NewOpenAppTool(actions),
		NewSetVolumeTool(actions),
		NewEmptyRecycleBinTool(actions),
	}
}
