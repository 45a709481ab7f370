package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/biaslens/biaslens/internal/config"
	"github.com/biaslens/biaslens/internal/inference"
)

var classifierCmd = &cobra.Command{
	Use:   "classifier",
	Short: "Manage the classifier sidecar container",
	Long: `Manage the classifier sidecar container lifecycle.

The classifier scores text against eleven bias categories. It runs in a
Docker container with model weights cached under ~/.biaslens/models/.

Examples:
  biaslens classifier start   # Start the classifier container
  biaslens classifier stop    # Stop the container (model cache preserved)
  biaslens classifier status  # Check container status
  biaslens classifier logs    # View container logs`,
}

var classifierStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the classifier container",
	Long: `Start the classifier container.

If the container doesn't exist, it will be created and started.
If it exists but is stopped, it will be started.
If it's already running, this is a no-op.

Model weights are cached under ~/.biaslens/models/, so only the first
start downloads them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getClassifierManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Starting classifier...")
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("failed to start classifier: %w", err)
		}

		fmt.Printf("Classifier is running at %s\n", mgr.URL())
		return nil
	},
}

var classifierStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the classifier container",
	Long: `Stop the classifier container.

This stops the container but preserves the model cache. Use
'biaslens classifier start' to restart it later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getClassifierManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Stopping classifier...")
		if err := mgr.Stop(ctx); err != nil {
			return fmt.Errorf("failed to stop classifier: %w", err)
		}

		fmt.Println("Classifier stopped")
		return nil
	},
}

var classifierStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show classifier container status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getClassifierManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		status, err := mgr.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		switch status {
		case inference.StatusRunning:
			fmt.Printf("Status: %s\n", status)
			fmt.Printf("URL: %s\n", mgr.URL())

			// Try health check
			client := inference.NewClient(mgr.URL())
			if err := client.HealthCheck(ctx); err != nil {
				fmt.Printf("Health: unhealthy (%v)\n", err)
			} else {
				fmt.Println("Health: healthy")
			}
		case inference.StatusStopped:
			fmt.Printf("Status: %s (use 'biaslens classifier start' to start)\n", status)
		case inference.StatusNotFound:
			fmt.Printf("Status: %s (use 'biaslens classifier start' to create)\n", status)
		default:
			fmt.Printf("Status: %s\n", status)
		}

		return nil
	},
}

var logsTail string

var classifierLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show classifier container logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getClassifierManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		logs, err := mgr.Logs(ctx, logsTail)
		if err != nil {
			return fmt.Errorf("failed to get logs: %w", err)
		}

		fmt.Print(logs)
		return nil
	},
}

var classifierRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove the classifier container",
	Long: `Remove the classifier container.

This stops and removes the container. The model cache under
~/.biaslens/models/ is NOT deleted - only the container is removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getClassifierManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		fmt.Println("Removing classifier container...")
		if err := mgr.Remove(ctx); err != nil {
			return fmt.Errorf("failed to remove container: %w", err)
		}

		fmt.Println("Classifier container removed (model cache preserved)")
		return nil
	},
}

var classifierWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the classifier to be ready",
	Long: `Wait for the classifier to be ready to score text.

This is useful in scripts to ensure the model is fully loaded before
running other commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := getClassifierManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		timeout, _ := cmd.Flags().GetDuration("timeout")
		fmt.Printf("Waiting for classifier (timeout: %s)...\n", timeout)

		if err := mgr.WaitReady(ctx, timeout); err != nil {
			return fmt.Errorf("classifier not ready: %w", err)
		}

		fmt.Println("Classifier is ready")
		return nil
	},
}

func init() {
	// Add subcommands
	classifierCmd.AddCommand(classifierStartCmd)
	classifierCmd.AddCommand(classifierStopCmd)
	classifierCmd.AddCommand(classifierStatusCmd)
	classifierCmd.AddCommand(classifierLogsCmd)
	classifierCmd.AddCommand(classifierRemoveCmd)
	classifierCmd.AddCommand(classifierWaitCmd)

	// Logs flags
	classifierLogsCmd.Flags().StringVar(&logsTail, "tail", "100", "Number of lines to show from the end")

	// Wait flags
	classifierWaitCmd.Flags().Duration("timeout", 2*time.Minute, "Timeout waiting for the classifier")

	// Add to root
	rootCmd.AddCommand(classifierCmd)
}

// getClassifierManager creates a ContainerManager from config.
func getClassifierManager() (*inference.ContainerManager, error) {
	h, err := getHome()
	if err != nil {
		return nil, err
	}

	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, err
	}
	appCfg := mgr.Get()

	modelPath := appCfg.Classifier.ModelPath
	if modelPath == "" {
		modelPath = h.ModelsPath()
	}

	return inference.NewContainerManager(inference.DockerConfig{
		ContainerName: appCfg.Classifier.ContainerName,
		Image:         appCfg.Classifier.Image,
		ModelPath:     modelPath,
		HostPort:      appCfg.Classifier.Port,
	})
}
