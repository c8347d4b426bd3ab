package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	boosthttp "github.com/0xcro3dile/boost-go/internal/infrastructure/http"
)

var noContext bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Capture the window under the cursor and start a new session",
	Long: `Asks the running daemon to read the selection, capture the window under
the mouse pointer and reset the conversation. Bind this to a shortcut.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := boosthttp.NewClient(serverAddr).Show(cmd.Context(), !noContext)
		if err != nil {
			return err
		}
		return yaml.NewEncoder(cmd.OutOrStdout()).Encode(snap)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask about the captured context and stream the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		var printed strings.Builder
		final, err := boosthttp.NewClient(serverAddr).Ask(cmd.Context(), strings.Join(args, " "), func(delta string) {
			printed.WriteString(delta)
			fmt.Fprint(out, delta)
		})
		fmt.Fprint(out, missingTail(printed.String(), final))
		fmt.Fprintln(out)
		return err
	},
}

// missingTail returns what still has to be printed after printed so the
// output shows final. Deltas can be dropped for a slow reader; when printed
// is not a prefix of final the whole answer is repeated on a new paragraph.
func missingTail(printed, final string) string {
	if final == "" || final == printed {
		return ""
	}
	if rest, ok := strings.CutPrefix(final, printed); ok {
		return rest
	}
	return "\n\n" + final
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Stop the answer currently being streamed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cancelled, err := boosthttp.NewClient(serverAddr).Cancel(cmd.Context())
		if err != nil {
			return err
		}
		if !cancelled {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to cancel")
		}
		return nil
	},
}

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the display under the cursor and print the image path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := boosthttp.NewClient(serverAddr).Screenshot(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&noContext, "no-context", false, "Only use the selected text, skip window capture")
	rootCmd.AddCommand(showCmd, askCmd, cancelCmd, screenshotCmd)
}
