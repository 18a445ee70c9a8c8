package launch

import (
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/moltenex-tm/moltenex-loader/internal/errors"
)

// EnvType is the game environment a launch targets.
type EnvType int

const (
	// EnvClient launches the game client.
	EnvClient EnvType = iota
	// EnvServer launches the dedicated server.
	EnvServer
)

// String returns the lower-case variant name.
func (e EnvType) String() string {
	switch e {
	case EnvClient:
		return "client"
	case EnvServer:
		return "server"
	default:
		return "unknown"
	}
}

// ParseEnvType returns the EnvType named by s, ignoring case.
func ParseEnvType(s string) (EnvType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client":
		return EnvClient, nil
	case "server":
		return EnvServer, nil
	default:
		return 0, errors.NewValidationError("unknown launch variant").
			WithField("variant").
			WithValue(s).
			WithCause(errors.ErrUnknownVariant)
	}
}

// Variant is a command-line flag value selecting an EnvType.
type Variant struct {
	Env EnvType
}

var _ pflag.Value = (*Variant)(nil)

func (v *Variant) String() string { return v.Env.String() }

func (v *Variant) Set(s string) error {
	env, err := ParseEnvType(s)
	if err != nil {
		return err
	}
	v.Env = env
	return nil
}

func (v *Variant) Type() string { return "variant" }

// Launch targets for each environment.
const (
	ClientTarget = "net.minecraft.client.main.Main"
	ServerTarget = "net.minecraft.server.Main"
)

// Tweaker selects the launch target and arguments for one environment.
type Tweaker interface {
	// EnvType returns the environment this tweaker launches.
	EnvType() EnvType

	// LaunchTarget returns the main class the launch wrapper starts.
	LaunchTarget() string

	// LaunchArguments returns the arguments passed to the launch target
	// in addition to those the wrapper forwards itself.
	LaunchArguments() []string

	// AcceptOptions records the wrapper's arguments. gameDir is added when
	// the arguments lack --gameDir. The client also adds assetsDir when the
	// arguments lack --assetsDir. Empty directories are not added.
	AcceptOptions(args []string, gameDir, assetsDir, profile string)

	// Arguments returns the accepted arguments, nil before AcceptOptions.
	Arguments() *Arguments
}

// NewTweaker returns the tweaker for env.
func NewTweaker(env EnvType) (Tweaker, error) {
	switch env {
	case EnvClient:
		return &tweaker{env: EnvClient, target: ClientTarget}, nil
	case EnvServer:
		return &tweaker{env: EnvServer, target: ServerTarget}, nil
	default:
		return nil, errors.NewLaunchError("no tweaker for environment", errors.ErrUnknownVariant).
			WithVariant(env.String())
	}
}

type tweaker struct {
	env     EnvType
	target  string
	args    *Arguments
	profile string
}

func (t *tweaker) EnvType() EnvType     { return t.env }
func (t *tweaker) LaunchTarget() string { return t.target }

func (t *tweaker) Arguments() *Arguments { return t.args }

func (t *tweaker) LaunchArguments() []string {
	// The wrapper already forwards the client's arguments.
	if t.env == EnvClient || t.args == nil {
		return []string{}
	}
	return t.args.Slice()
}

func (t *tweaker) AcceptOptions(args []string, gameDir, assetsDir, profile string) {
	t.args = ParseArguments(args)
	t.profile = profile

	if !t.args.ContainsKey("gameDir") && gameDir != "" {
		t.args.Put("gameDir", absPath(gameDir))
	}
	if t.env == EnvClient && !t.args.ContainsKey("assetsDir") && assetsDir != "" {
		t.args.Put("assetsDir", absPath(assetsDir))
	}
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
