package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leofalp/jarvis/internal/utils"
	"github.com/leofalp/jarvis/providers/observability"
	"github.com/leofalp/jarvis/providers/tool/webfetch"
	"github.com/leofalp/jarvis/providers/tool/websearch"
)

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run the web retrieval pipeline and print the summary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(flags)
			if err != nil {
				return err
			}
			a := newApp(cfg, webfetch.FormatText)

			ctx := observability.ContextWithObserver(cmd.Context(), a.observer)
			summary, err := a.pipeline.Search(ctx, strings.Join(args, " "), count)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "num", "n", websearch.DefaultResults, "number of pages to fetch")
	return cmd
}

func newFetchCmd(flags *rootFlags) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch one page and print its metadata and extracted content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(flags)
			if err != nil {
				return err
			}
			format := webfetch.FormatText
			if markdown {
				format = webfetch.FormatMarkdown
			}
			a := newApp(cfg, format)

			ctx := observability.ContextWithObserver(cmd.Context(), a.observer)
			switch r := a.fetcher.Fetch(ctx, args[0]).(type) {
			case *webfetch.Page:
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Title: %s\n", r.Metadata.Title)
				fmt.Fprintf(out, "URL: %s\n", r.URL)
				if r.FinalURL != "" {
					fmt.Fprintf(out, "Redirected to: %s\n", r.FinalURL)
				}
				if r.Metadata.Description != "" {
					fmt.Fprintf(out, "Description: %s\n", r.Metadata.Description)
				}
				fmt.Fprintf(out, "Charset: %s\n\n%s\n", r.Charset, r.Content)
				return nil
			case *webfetch.PageError:
				return r
			default:
				return fmt.Errorf("fetch %s: unexpected result %T", args[0], r)
			}
		},
	}

	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the content as Markdown")
	return cmd
}

func newToolsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog as sent to the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig(flags)
			if err != nil {
				return err
			}
			a := newApp(cfg, webfetch.FormatText)
			fmt.Fprintln(cmd.OutOrStdout(), utils.JSONToString(a.catalog.Descriptions(), true))
			return nil
		},
	}
}
