package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	daemon "github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shaderpaper/shaderpaper"
	"github.com/shaderpaper/shaderpaper/internal/cli/cmd"
	"github.com/shaderpaper/shaderpaper/internal/cli/cmd/utils"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shaderpaper",
	Short: "A GLSL shader wallpaper daemon for Wayland",
	Long: `Shaderpaper renders GLSL shaders, images and looping videos as
wallpapers on wlroots compositors, using OpenGL ES for hardware
acceleration.`,
	Run: func(c *cobra.Command, args []string) {
		if v, err := c.Flags().GetBool("show-config"); err == nil && v {
			allSettings := viper.AllSettings()

			log.Infof("Using config file: %v", viper.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(allSettings)
			return
		}

		babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
		green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
		if v, err := c.Flags().GetBool("version"); err == nil && v {
			log.Infof("%v version %v",
				babyBlue.Render("shaderpaper"),
				green.Render(strings.Trim(shaderpaper.Version, "\n\r ")))
			return
		}

		if v, err := c.Flags().GetBool("installconfig"); err == nil && v {
			utils.InstallDefaultConfig()
			return
		}

		if v, err := c.Flags().GetBool("debug"); err == nil && (v || viper.GetBool("debug")) {
			log.SetLevel(log.DebugLevel)
		}

		if v, err := c.Flags().GetBool("background"); err == nil && v && os.Getenv("BACKGROUND_PROCESS") != "1" {
			runInBackground()
			return
		}

		cmd.StartManager()
	},
}

// runInBackground forks a detached copy of the current invocation and
// returns in the parent. The child sees BACKGROUND_PROCESS=1 and switches
// to the rotating file logger.
func runInBackground() {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = os.TempDir()
	}

	ctx := &daemon.Context{
		PidFileName: filepath.Join(runtimeDir, "shaderpaper.pid"),
		PidFilePerm: 0644,
		Env:         append(os.Environ(), "BACKGROUND_PROCESS=1"),
	}

	child, err := ctx.Reborn()
	if err != nil {
		log.Fatalf("Error forking to background: %v", err)
	}
	if child != nil {
		log.Infof("shaderpaper started in the background with PID %d", child.Pid)
		return
	}
	defer func() {
		if err := ctx.Release(); err != nil {
			log.Errorf("Error releasing pid file: %v", err)
		}
	}()

	cmd.StartManager()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var cfgFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/shaderpaper/shaderpaper.toml)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().BoolP("installconfig", "i", false, "Install a default config file")
	rootCmd.PersistentFlags().Bool("show-config", false, "Dump resolved config")
	rootCmd.PersistentFlags().BoolP("background", "b", false, "Run as a daemon")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print version")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Print usage")

	rootCmd.Flags().Int("fps", 0, "Force a framerate instead of vsync or video timing")
	viper.BindPFlag("fps", rootCmd.Flags().Lookup("fps"))
	rootCmd.Flags().String("layer", "background", "Layer to render on: background, bottom, top or overlay")
	viper.BindPFlag("layer", rootCmd.Flags().Lookup("layer"))
	rootCmd.Flags().String("fifo", "", "FIFO of s16le stereo samples exposed to shaders")
	viper.BindPFlag("fifo", rootCmd.Flags().Lookup("fifo"))
	rootCmd.Flags().Bool("mute", false, "Never play video audio")
	viper.BindPFlag("mute", rootCmd.Flags().Lookup("mute"))

	rootCmd.AddCommand(cmd.NewSetCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewStopCmd())
	rootCmd.AddCommand(cmd.NewGenManCmd(rootCmd))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("shaderpaper")
		viper.SetConfigType("toml")
		if viper.GetString("config") != "" {
			viper.SetConfigFile(viper.GetString("config"))
		} else {
			viper.AddConfigPath("$HOME/.config/shaderpaper")
			viper.AddConfigPath("/etc/xdg/shaderpaper")
		}
	}

	viper.SetDefault("fps", 0)
	viper.SetDefault("layer", "background")
	viper.SetDefault("shader", "default")
	viper.SetDefault("image", "")
	viper.SetDefault("video", "")
	viper.SetDefault("fifo", "")
	viper.SetDefault("mute", false)
	viper.SetDefault("debug", false)

	viper.AutomaticEnv() // read environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cobra.CheckErr(err)
		}
		log.Debug("No config file found, using defaults")
	}
}
