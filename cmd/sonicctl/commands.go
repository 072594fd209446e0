package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/sonicctl/internal/auth"
	"github.com/danmuck/sonicctl/internal/config"
	"github.com/danmuck/sonicctl/internal/render"
	"github.com/danmuck/sonicctl/internal/resources"
	"github.com/danmuck/sonicctl/internal/server"
)

func newRunCmd(root *rootFlags, use, short string, checkMode bool) *cobra.Command {
	opts := runOptions{checkMode: checkMode}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			inv, err := config.LoadInventory(cfg.Inventory)
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd.InOrStdin(), opts.file)
			if err != nil {
				return err
			}
			outcomes, err := runResource(cmd.Context(), resources.Default(), server.InventoryConnector{Inventory: inv}, opts, doc, cfg.MaxParallel)
			if err != nil {
				return err
			}
			return writeOutcomes(cmd.OutOrStdout(), opts.output, outcomes)
		},
	}
	cmd.Flags().StringSliceVarP(&opts.devices, "device", "d", nil, "Target device name (repeatable)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Target every device in the inventory")
	cmd.Flags().StringVarP(&opts.resource, "resource", "r", "", "Resource id, see sonicctl resources")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "Desired-state document, - for stdin")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "Output format: table or json")
	_ = cmd.MarkFlagRequired("resource")
	return cmd
}

func newServeCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			inv, err := config.LoadInventory(cfg.Inventory)
			if err != nil {
				return err
			}
			var validator auth.Validator
			if cfg.APIToken != "" {
				validator = auth.StaticToken{Token: cfg.APIToken}
			} else {
				log.Warn().Msg("sonicctl serve: no api token configured, /v1 is unauthenticated")
			}
			srv := server.New(resources.Default(), server.InventoryConnector{Inventory: inv}, server.Options{
				CorsOrigins: cfg.CorsOrigins,
				Validator:   validator,
			})
			srv.RegisterRoutes()
			return srv.Serve(cmd.Context(), cfg.ListenAddr)
		},
	}
}

func newResourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "List resource families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			render.Metadata(cmd.OutOrStdout(), resources.Default().ListMetadata())
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	var (
		kind      string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Write an example inventory or service config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[0], kind, overwrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s config to %s\n", kind, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "inventory", "Template kind: inventory or service")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func readDocument(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func writeOutcomes(w io.Writer, format string, outcomes []resources.Outcome) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	case "", "table":
		render.Outcomes(w, outcomes)
		for _, out := range outcomes {
			if len(out.Summary.Requests) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s %s\n", out.Device, out.Resource)
			render.Requests(w, out.Summary.Requests)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
