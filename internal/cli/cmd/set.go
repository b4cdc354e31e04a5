package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shaderpaper/shaderpaper/internal/cli/cmd/utils"
	"github.com/shaderpaper/shaderpaper/internal/ipc"
	"github.com/shaderpaper/shaderpaper/internal/media"
)

func NewSetCmd() *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change what the daemon displays",
	}

	setCmd.PersistentFlags().StringSliceP("monitor", "m", nil, "Target monitor name, repeatable (default all)")

	setCmd.AddCommand(newSetImageCmd())
	setCmd.AddCommand(newSetVideoCmd())
	setCmd.AddCommand(newSetShaderCmd())

	return setCmd
}

func newSetImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image [path]",
		Short: "Display a static image",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			shader, _ := cmd.Flags().GetString("shader")
			monitors, _ := cmd.Flags().GetStringSlice("monitor")
			send(ipc.Command{SetImage: &ipc.SetImage{
				Path:     utils.CanonicalPath(args[0]),
				Shader:   shaderArg(shader),
				Monitors: monitors,
			}})
		},
	}
	cmd.Flags().StringP("shader", "s", "", "Fragment shader to render the image through")
	return cmd
}

func newSetVideoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "video [path]",
		Short: "Display a looping video",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			shader, _ := cmd.Flags().GetString("shader")
			monitors, _ := cmd.Flags().GetStringSlice("monitor")
			mute, _ := cmd.Flags().GetBool("mute")
			send(ipc.Command{SetVideo: &ipc.SetVideo{
				Path:     utils.CanonicalPath(args[0]),
				Shader:   shaderArg(shader),
				Monitors: monitors,
				Mute:     mute,
			}})
		},
	}
	cmd.Flags().StringP("shader", "s", "", "Fragment shader to render the video through")
	cmd.Flags().Bool("mute", false, "Play the video without audio")
	return cmd
}

func newSetShaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shader [path]",
		Short: "Display a fragment shader, or \"default\" for the built-in one",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			monitors, _ := cmd.Flags().GetStringSlice("monitor")
			send(ipc.Command{SetShader: &ipc.SetShader{
				Path:     shaderArg(args[0]),
				Monitors: monitors,
			}})
		},
	}
}

// shaderArg keeps the built-in shader sentinel as-is and canonicalizes
// everything else so the daemon can open it from any working directory.
func shaderArg(path string) string {
	if path == "" || path == media.DefaultShaderName {
		return path
	}
	return utils.CanonicalPath(path)
}

func send(cmd ipc.Command) {
	if _, err := ipc.Send(cmd); err != nil {
		log.Fatalf("Failed to send command: %v", err)
	}
	log.Info("Command sent")
}
