package cli

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vsee.click/internal/library"
	"vsee.click/internal/thumb"
)

func newPlayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play FILE",
		Short: "Play an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliFromContext(cmd.Context())
			if c == nil {
				return fmt.Errorf("CLI instance not found in context")
			}

			cfg, err := loadConfig(cmd, c)
			if err != nil {
				return err
			}
			setupLogging(cfg, cmd.ErrOrStderr())

			engine, err := c.newEngine(cfg.AudioBackend)
			if err != nil {
				return err
			}
			defer engine.Shutdown()

			path := args[0]
			if err := engine.Play(path); err != nil {
				return err
			}

			// The engine reports the decode outcome, not playback completion,
			// so hold the process open until the user interrupts.
			cmd.Printf("Playing %s (Ctrl-C to stop)\n", path)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			engine.Stop()
			return nil
		},
	}
}

func newLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls DIR",
		Short: "List a directory the way the media browser sees it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliFromContext(cmd.Context())
			if c == nil {
				return fmt.Errorf("CLI instance not found in context")
			}

			result := library.List(c.fsFactory.Production(), args[0])
			if !result.OK {
				return errors.New(result.Error)
			}

			for _, entry := range result.Entries {
				if entry.IsDir {
					cmd.Printf("%s/\n", entry.Name)
				} else {
					cmd.Printf("%s\t%s\n", entry.Name, entry.Kind)
				}
			}
			return nil
		},
	}
}

func newRootsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "Show browsable filesystem roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cliFromContext(cmd.Context())
			if c == nil {
				return fmt.Errorf("CLI instance not found in context")
			}

			result := library.Roots(c.fsFactory.Production())
			if !result.OK {
				return errors.New(result.Error)
			}
			for _, entry := range result.Entries {
				cmd.Printf("%s\t%s\n", entry.Name, entry.Path)
			}
			return nil
		},
	}
}

func newThumbCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thumb FILE",
		Short: "Extract a video thumbnail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := thumb.DataURL(args[0])
			if err != nil {
				return err
			}

			outPath, _ := cmd.Flags().GetString("output")
			if outPath == "" {
				cmd.Println(url)
				return nil
			}

			payload := url[strings.IndexByte(url, ',')+1:]
			png, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				return fmt.Errorf("failed to decode thumbnail payload: %w", err)
			}
			if err := os.WriteFile(outPath, png, 0644); err != nil {
				return fmt.Errorf("failed to write thumbnail: %w", err)
			}
			cmd.Printf("Wrote %s (%d bytes)\n", outPath, len(png))
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Write the PNG to this path instead of printing a data URL")
	return cmd
}

func newStateCommand() *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect and edit persisted application state",
	}

	getCmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value stored under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			value, found, err := st.Get(args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no value stored under %q", args[0])
			}
			cmd.Println(value)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store VALUE under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			return st.Set(args[0], args[1])
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print every stored key-value pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			all, err := st.All()
			if err != nil {
				return err
			}

			keys := make([]string, 0, len(all))
			for key := range all {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			cmd.Printf("# %s\n", st.Path())
			for _, key := range keys {
				cmd.Printf("%s=%s\n", key, all[key])
			}
			return nil
		},
	}

	stateCmd.AddCommand(getCmd, setCmd, listCmd)
	return stateCmd
}
