package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dskvich/artloop/pkg/api"
	"github.com/dskvich/artloop/pkg/domain"
	"github.com/dskvich/artloop/pkg/services"
	"github.com/dskvich/artloop/pkg/workers"
)

// Version is set at build time with -ldflags "-X .../pkg/cli.Version=...".
var Version = "dev"

func (a *App) newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the commands over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.backend()
			if err != nil {
				return err
			}

			server, err := workers.NewHTTPServer(a.cfg.HTTPAddr, api.NewRouter(b.registry, a.cfg.CORSAllowedOrigins))
			if err != nil {
				return fmt.Errorf("creating http server: %w", err)
			}

			return workers.Group{server}.Start(cmd.Context())
		},
	}
}

func (a *App) newInvokeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invoke <command> [args-json]",
		Short: "Invoke a single command and print its result",
		Long: `Invoke runs one backend command. Arguments are a JSON object;
pass "-" to read it from stdin.`,
		Example: `  artloop invoke greet '{"name":"Ada"}'
  artloop invoke describe_image - < args.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.backend()
			if err != nil {
				return err
			}

			raw := "{}"
			if len(args) == 2 {
				raw = args[1]
			}
			if raw == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading arguments: %w", err)
				}
				raw = string(data)
			}

			result, err := b.registry.Invoke(cmd.Context(), args[0], json.RawMessage(raw))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func (a *App) newCommandsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the available commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.backend()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(b.registry.Names(), "\n"))
			return nil
		},
	}
}

func (a *App) newLoopCommand() *cobra.Command {
	var (
		prompt      string
		generations int
		style       string
	)

	cmd := &cobra.Command{
		Use:   "loop",
		Short: "Run the paint, critique and re-prompt loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			imageStyle, err := parseStyle(style)
			if err != nil {
				return err
			}

			b, err := a.backend()
			if err != nil {
				return err
			}

			res, err := b.loop.Run(cmd.Context(), prompt, generations, imageStyle)
			if res != nil {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Completed %d of %d generations\n", len(res.Session.Loops), res.Session.TotalGenerations)
				fmt.Fprintf(out, "Session: %s\n", res.SessionPath)
				if res.ReportPath != "" {
					fmt.Fprintf(out, "Report: %s\n", res.ReportPath)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "initial image prompt")
	cmd.Flags().IntVarP(&generations, "generations", "n", 1, "number of generations")
	cmd.Flags().StringVar(&style, "style", string(domain.ImageStyleDefault), "image style (vivid or natural)")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) newPaintCommand() *cobra.Command {
	var (
		prompt   string
		promptID int64
		style    string
	)

	cmd := &cobra.Command{
		Use:   "paint",
		Short: "Generate one painting from a prompt or a saved prompt id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (prompt == "") == (promptID == 0) {
				return errors.New("exactly one of --prompt or --from-id is required")
			}
			imageStyle, err := parseStyle(style)
			if err != nil {
				return err
			}

			b, err := a.backend()
			if err != nil {
				return err
			}

			var image *services.GeneratedImage
			if promptID != 0 {
				image, err = b.painter.RegenerateImage(cmd.Context(), promptID, imageStyle)
			} else {
				image, err = b.painter.GenerateImage(cmd.Context(), prompt, imageStyle)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (prompt %d)\n", image.Filename, image.PromptID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "image prompt")
	cmd.Flags().Int64Var(&promptID, "from-id", 0, "id of a prompt from history")
	cmd.Flags().StringVar(&style, "style", string(domain.ImageStyleDefault), "image style (vivid or natural)")

	return cmd
}

func (a *App) newHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently used image prompts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.backend()
			if err != nil {
				return err
			}

			prompts, err := b.prompts.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tPROMPT")
			for _, p := range prompts {
				fmt.Fprintf(w, "%d\t%s\t%s\n", p.ID, p.CreatedAt.UTC().Format("2006-01-02 15:04:05"), p.Text)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of prompts")

	return cmd
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config and logger setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "artloop %s\n", Version)
		},
	}
}

func parseStyle(s string) (domain.ImageStyle, error) {
	style := domain.ImageStyle(strings.ToLower(s))
	if !style.Valid() {
		return "", fmt.Errorf("unsupported image style %q", s)
	}
	return style, nil
}
