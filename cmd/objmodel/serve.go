package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/funvibe/objmodel/internal/config"
	"github.com/funvibe/objmodel/internal/inspect"
)

var (
	serveAddr string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspection API over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			srv, err := inspect.NewServer(rt)
			if err != nil {
				return err
			}
			lis, err := net.Listen("tcp", serveAddr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			go func() {
				<-ctx.Done()
				srv.Stop()
			}()
			return srv.Serve(lis)
		},
	}

	queryTimeout time.Duration

	queryCmd = &cobra.Command{
		Use:   "query METHOD [field=value ...]",
		Short: "Call the inspection API of a running server",
		Long: `Call one RPC of a running "objmodel serve" and print the JSON response.
Fields are passed as name=value; values are converted to the field type of
the request message. Run with no arguments to list the methods.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				methods, err := inspect.Methods()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(methods, "\n"))
				return nil
			}

			req := make(map[string]any, len(args)-1)
			for _, pair := range args[1:] {
				k, v, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("expected field=value, got %q", pair)
				}
				req[k] = v
			}

			client, err := inspect.Dial(serveAddr)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
			defer cancel()
			resp, err := client.Call(ctx, args[0], req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
)

func init() {
	for _, cmd := range []*cobra.Command{serveCmd, queryCmd} {
		cmd.Flags().StringVar(&serveAddr, "addr", env.Str(config.EnvAddr, config.DefaultAddr), "server address ($"+config.EnvAddr+")")
		rootCmd.AddCommand(cmd)
	}
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 10*time.Second, "call timeout")
}
