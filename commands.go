package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caffeine-mod/sd2-installer/internal/console"
	"github.com/caffeine-mod/sd2-installer/internal/detect"
	"github.com/caffeine-mod/sd2-installer/internal/locate"
	"github.com/caffeine-mod/sd2-installer/internal/paths"
)

var rootCmd = &cobra.Command{
	Use:           "caffeine",
	Short:         "Install or remove the Caffeine mod for Soda Dungeon 2.",
	Version:       installerVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := setup(cmd != recoverCmd)
		if err != nil {
			cmd.PrintErrln("Error:", err)
			return err
		}
		sess = s
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !menuAvailable() {
			return statusCmd.RunE(cmd, args)
		}
		return runInteractive(sess)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the game folder and whether Caffeine is installed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printStatus(sess)
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install Caffeine, keeping a backup of the original game files.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.run(sess.installer.Install, "install")
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Restore the original game files from the backup.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.run(sess.installer.Uninstall, "uninstall")
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Install Caffeine if it is missing, otherwise uninstall it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sess.run(sess.installer.Toggle, "toggle")
	},
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Print the game folder found through Steam.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := locate.GameDirectory(locate.SystemRegistry{})
		if dir == "" {
			console.Log("Steam installation not found.")
			return errReported
		}
		fmt.Fprintln(cmd.OutOrStdout(), dir)
		return nil
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Repair the game files after an interrupted install or uninstall.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sess.gameDir == "" {
			console.Log("Game folder unknown.")
			return errReported
		}
		result, err := sess.recoverGameDir()
		if err != nil {
			return err
		}
		console.Log("Recovery: %s", result)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&gameDirFlag, "game-dir", "", "Soda Dungeon 2 folder (skips the Steam lookup)")
	flags.StringVar(&payloadFlag, "payload", "", "Path to the Caffeine Assembly-CSharp.dll or release zip")
	flags.StringVar(&payloadURLFlag, "payload-url", "", "Download the Caffeine assembly from this URL")
	flags.StringVar(&payloadRepoFlag, "payload-repo", "", "Download the Caffeine assembly from a GitHub release (owner/repo or owner/repo@tag)")
	flags.StringVar(&configFlag, "config", "", "Config file (default caffeine.yaml next to the installer)")
	flags.BoolVar(&quietFlag, "quiet", false, "Suppress output")
	flags.BoolVar(&verboseFlag, "verbose", false, "Show detailed output")
	flags.BoolVar(&nonInteractiveFlag, "non-interactive", false, "No prompts or dialogs; failures exit with status 1")
	flags.BoolVar(&noSoundFlag, "no-sound", false, "Disable sound cues")

	rootCmd.AddCommand(statusCmd, installCmd, uninstallCmd, toggleCmd, locateCmd, recoverCmd)
}

func printStatus(s *session) {
	report := s.detector.Inspect(s.gameDir)

	console.Log("Game folder: %s", console.Path(s.gameDir))
	console.Log("Status:      %s", console.Status(report.State == detect.Installed, report.State.String()))
	if report.ProductName != "" {
		console.Log("Product:     %s", report.ProductName)
	}
	if report.FileVersion != "" {
		console.Log("Version:     %s", report.FileVersion)
	}
	if report.BackupPresent {
		console.Log("Backup:      %s", paths.Backup(s.gameDir))
	} else {
		console.Log("Backup:      none")
	}
	if report.JournalPresent {
		console.Log("Journal:     %s (interrupted run)", paths.Journal(s.gameDir))
	}
}
