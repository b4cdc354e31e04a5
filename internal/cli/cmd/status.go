package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shaderpaper/shaderpaper/internal/cli/cmd/utils"
	"github.com/shaderpaper/shaderpaper/internal/ipc"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get shaderpaper status",
		Long:  `Returns the current status of the shaderpaper process.`,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.GetStatus()
			if err != nil {
				log.Errorf("Error sending command: %v", err)
				return
			}

			utils.PrintJSONColored(response)
		},
	}
}
