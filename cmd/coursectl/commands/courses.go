package commands

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/course-session-gateway/courses"
	"github.com/jrsteele09/course-session-gateway/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List course categories",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			categories, err := a.catalog.Categories(cmd.Context(), a.store)
			if err != nil {
				return sessionError(err)
			}
			for _, c := range categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Name)
			}
			return nil
		}),
	}
}

func newCoursesCmd(a *app) *cobra.Command {
	var (
		page, limit int
		opts        courses.ListOptions
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "courses [id]",
		Short: "List courses, or show one course by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				course, err := a.catalog.Get(cmd.Context(), a.store, args[0])
				if err != nil {
					return sessionError(err)
				}
				return printJSON(cmd.OutOrStdout(), course)
			}

			if cmd.Flags().Changed("page") {
				opts.Page = utils.Ptr(page)
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit = utils.Ptr(limit)
			}
			list, err := a.catalog.List(cmd.Context(), a.store, opts)
			if err != nil {
				return sessionError(err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}
			for _, c := range list.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.ID, c.Summary())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d total\n", list.Page, list.Total)
			return nil
		}),
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category id")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "search text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw page as JSON")
	return cmd
}

// newCallCmd sends an arbitrary GET to the backend with the session's access
// token as a Bearer header, for endpoints that take Authorization rather
// than cookies.
func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call <path>",
		Short: "GET a backend path with the session's Bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := oauth2.NewClient(ctx, a.auth.TokenSource(ctx, a.store))

			target := a.auth.Client().BaseURL() + "/" + strings.TrimLeft(args[0], "/")
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
			if err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return sessionError(err)
			}
			defer resp.Body.Close()

			if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			if resp.StatusCode >= http.StatusBadRequest {
				return fmt.Errorf("%s returned %d", args[0], resp.StatusCode)
			}
			return nil
		}),
	}
}
