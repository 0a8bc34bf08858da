package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	mercapi "github.com/ggoodman/mercapi-go"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type rootOptions struct {
	output  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "mercapi",
		Short:         "Query listings, profiles and searches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", formatYAML, "output format: yaml or json")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and mapping diagnostics to stderr")

	cmd.AddCommand(
		newSearchCmd(opts),
		newItemCmd(opts),
		newProfileCmd(opts),
		newItemsCmd(opts),
		newSchemaCmd(opts),
	)
	return cmd
}

// client builds a Client from the environment. The caller closes it.
func (o *rootOptions) client(cmd *cobra.Command) (*mercapi.Client, error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return mercapi.NewFromEnv(cmd.Context(), mercapi.WithLogger(logger))
}

func (o *rootOptions) print(cmd *cobra.Command, v any) error {
	return render(cmd.OutOrStdout(), o.output, v)
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		cond      mercapi.SearchConditions
		condFile  string
		statuses  []string
		shipping  []string
		sortBy    string
		sortOrder string
		pages     int
	)
	cmd := &cobra.Command{
		Use:   "search [keywords...]",
		Short: "Search listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if condFile != "" {
				if err := readConditions(condFile, &cond); err != nil {
					return err
				}
			}
			if len(args) > 0 {
				cond.Query = strings.Join(args, " ")
			}
			for _, s := range statuses {
				cond.Status = append(cond.Status, mercapi.Status(strings.ToUpper(s)))
			}
			for _, s := range shipping {
				cond.ShippingMethods = append(cond.ShippingMethods, mercapi.ShippingMethodOption(strings.ToUpper(s)))
			}
			if sortBy != "" {
				cond.SortBy = mercapi.SortBy(strings.ToUpper(sortBy))
			}
			if sortOrder != "" {
				cond.SortOrder = mercapi.SortOrder(strings.ToUpper(sortOrder))
			}

			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Search(cmd.Context(), cond)
			if err != nil {
				return err
			}
			out := []any{res.Fields()}
			for i := 1; i < pages && res.Meta.NextPageToken != ""; i++ {
				if res, err = res.NextPage(cmd.Context()); err != nil {
					return err
				}
				out = append(out, res.Fields())
			}
			if len(out) == 1 {
				return opts.print(cmd, out[0])
			}
			return opts.print(cmd, out)
		},
	}
	f := cmd.Flags()
	f.StringVar(&condFile, "conditions", "", "read search conditions from a JSON or YAML file")
	f.IntSliceVar(&cond.Categories, "category", nil, "category id")
	f.IntSliceVar(&cond.Brands, "brand", nil, "brand id")
	f.IntSliceVar(&cond.Sizes, "size", nil, "size id")
	f.IntVar(&cond.PriceMin, "price-min", 0, "minimum price")
	f.IntVar(&cond.PriceMax, "price-max", 0, "maximum price")
	f.IntSliceVar(&cond.ItemConditions, "condition", nil, "item condition id")
	f.IntSliceVar(&cond.ShippingPayer, "shipping-payer", nil, "shipping payer id")
	f.IntSliceVar(&cond.Colors, "color", nil, "color id")
	f.StringSliceVar(&shipping, "shipping-method", nil, "SHIPPING_METHOD_ANONYMOUS, SHIPPING_METHOD_JAPAN_POST or SHIPPING_METHOD_NO_OPTION")
	f.StringSliceVar(&statuses, "status", nil, "STATUS_ON_SALE or STATUS_SOLD_OUT")
	f.StringVar(&sortBy, "sort", "", "SORT_SCORE, SORT_CREATED_TIME, SORT_PRICE or SORT_NUM_LIKES")
	f.StringVar(&sortOrder, "order", "", "ORDER_DESC or ORDER_ASC")
	f.StringVar(&cond.Exclude, "exclude", "", "keywords to exclude")
	f.IntVar(&pages, "pages", 1, "number of result pages to fetch")
	return cmd
}

func newItemCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "item <id>",
		Short: "Fetch a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			it, err := c.Item(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd, it.Fields())
		},
	}
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profile <user-id>",
		Short: "Fetch a user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			p, err := c.Profile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd, p.Fields())
		},
	}
}

func newItemsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "items <seller-id>",
		Short: "List the items of a seller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			items, err := c.SellerItems(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd, items.Fields())
		},
	}
}

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of search condition files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := jsonschema.Reflect(&mercapi.SearchConditions{})
			// Round-trip so yaml output sees plain maps.
			b, err := json.Marshal(s)
			if err != nil {
				return err
			}
			var v any
			if err := json.Unmarshal(b, &v); err != nil {
				return err
			}
			return opts.print(cmd, v)
		},
	}
}

// readConditions decodes a conditions file. YAML is a superset of JSON, so
// both go through yaml.v3 and then through the json tags of
// SearchConditions.
func readConditions(path string, cond *mercapi.SearchConditions) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	j, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := json.Unmarshal(j, cond); err != nil {
		return fmt.Errorf("invalid conditions in %s: %w", path, err)
	}
	return nil
}
