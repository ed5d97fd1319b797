// Package cmd implements the command-line interface for marquee.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/icon"
	"github.com/marquee-cli/marquee/key"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/style"
	"github.com/marquee-cli/marquee/tui"
	"github.com/marquee-cli/marquee/util"
	"github.com/marquee-cli/marquee/version"
	"github.com/marquee-cli/marquee/where"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().IntP("device", "d", 0, "Device identifier to request the playlist for")
	lo.Must0(viper.BindPFlag(key.DeviceID, rootCmd.Flags().Lookup("device")))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the marquee application.
var rootCmd = &cobra.Command{
	Use:   constant.Marquee,
	Short: "A terminal playback client for scheduled signage playlists",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A terminal playback client for scheduled signage playlists"),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if viper.GetBool(key.PlayerVideoExternal) {
			CheckDependencies()
		}

		deviceID, err := resolveDeviceID()
		handleErr(err)

		options := tui.Options{
			DeviceID: deviceID,
		}
		handleErr(tui.Run(&options))
	},
}

// resolveDeviceID returns the configured device id, prompting interactively
// when the configuration does not carry one.
func resolveDeviceID() (int, error) {
	if id := viper.GetInt(key.DeviceID); id > 0 {
		return id, nil
	}

	if !util.IsInteractive() {
		return 0, errors.New("no device id configured; set " + key.DeviceID + " or pass --device")
	}

	var id int
	err := survey.AskOne(&survey.Input{
		Message: "Device ID for this screen:",
	}, &id, survey.WithValidator(survey.Required))
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid device id: %d", id)
	}

	viper.Set(key.DeviceID, id)
	if err := viper.WriteConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			err = viper.SafeWriteConfig()
		}
		if err != nil {
			log.Warnf("persist device id: %v", err)
		}
	}

	return id, nil
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
