package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nikolayk812/artistry-cart/internal/checkout"
	"github.com/nikolayk812/artistry-cart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/currency"
)

func artworkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "artwork id", Required: true},
		&cli.StringFlag{Name: "title", Usage: "artwork title"},
		&cli.StringFlag{Name: "creator", Usage: "artist name"},
		&cli.StringFlag{Name: "image", Usage: "image URL downloaded on purchase"},
		&cli.StringFlag{Name: "price", Usage: "unit price, e.g. 25.00", Value: "0"},
		&cli.StringFlag{Name: "currency", Usage: "ISO currency code, defaults to the cart currency"},
	}
}

func artworkFromFlags(c *cli.Context, fallback currency.Unit) (domain.Artwork, error) {
	price, err := decimal.NewFromString(c.String("price"))
	if err != nil {
		return domain.Artwork{}, fmt.Errorf("price[%s] is not valid: %w", c.String("price"), err)
	}

	cur := fallback
	if code := c.String("currency"); code != "" {
		cur, err = currency.ParseISO(code)
		if err != nil {
			return domain.Artwork{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
		}
	}

	return domain.Artwork{
		ID:       c.String("id"),
		Title:    c.String("title"),
		Creator:  c.String("creator"),
		ImageURL: c.String("image"),
		Price:    domain.Money{Amount: price, Currency: cur},
	}, nil
}

func cartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "inspect and edit the cart",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print cart items and totals",
				Action: withApp(func(c *cli.Context, a *app) error {
					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}
					printCart(c.App.Writer, s.Cart.Snapshot())
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "add an artwork, merging quantities by id",
				Flags: append(artworkFlags(),
					&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Value: 1},
				),
				Action: withApp(func(c *cli.Context, a *app) error {
					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}

					artwork, err := artworkFromFlags(c, s.Cart.Snapshot().Currency())
					if err != nil {
						return err
					}

					if err := s.Cart.AddItem(c.Context, artwork, c.Int("quantity")); err != nil {
						return err
					}
					printCart(c.App.Writer, s.Cart.Snapshot())
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "remove an item",
				ArgsUsage: "<item-id>",
				Action: withApp(func(c *cli.Context, a *app) error {
					id, err := requireArg(c, 0, "item-id")
					if err != nil {
						return err
					}

					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}

					if !s.Cart.RemoveItem(c.Context, id) {
						fmt.Fprintf(c.App.Writer, "%s is not in the cart\n", id)
					}
					printCart(c.App.Writer, s.Cart.Snapshot())
					return nil
				}),
			},
			{
				Name:      "update",
				Usage:     "set an item quantity, 0 removes it",
				ArgsUsage: "<item-id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Required: true},
				},
				Action: withApp(func(c *cli.Context, a *app) error {
					id, err := requireArg(c, 0, "item-id")
					if err != nil {
						return err
					}

					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}

					if !s.Cart.UpdateQuantity(c.Context, id, c.Int("quantity")) {
						fmt.Fprintf(c.App.Writer, "%s is not in the cart\n", id)
					}
					printCart(c.App.Writer, s.Cart.Snapshot())
					return nil
				}),
			},
			{
				Name:  "clear",
				Usage: "empty the cart",
				Action: withApp(func(c *cli.Context, a *app) error {
					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}
					s.Cart.Clear(c.Context)
					printCart(c.App.Writer, s.Cart.Snapshot())
					return nil
				}),
			},
		},
	}
}

func wishlistCommand() *cli.Command {
	return &cli.Command{
		Name:  "wishlist",
		Usage: "inspect and edit the wishlist",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print wishlist entries",
				Action: withApp(func(c *cli.Context, a *app) error {
					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}
					printWishlist(c.App.Writer, s.Wishlist.Items())
					return nil
				}),
			},
			{
				Name:  "add",
				Usage: "add an artwork, a second add is a no-op",
				Flags: artworkFlags(),
				Action: withApp(func(c *cli.Context, a *app) error {
					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}

					artwork, err := artworkFromFlags(c, s.Cart.Snapshot().Currency())
					if err != nil {
						return err
					}

					if _, err := s.Wishlist.Add(c.Context, artwork); err != nil {
						return err
					}
					printWishlist(c.App.Writer, s.Wishlist.Items())
					return nil
				}),
			},
			{
				Name:  "toggle",
				Usage: "add the artwork if absent, otherwise remove it",
				Flags: artworkFlags(),
				Action: withApp(func(c *cli.Context, a *app) error {
					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}

					artwork, err := artworkFromFlags(c, s.Cart.Snapshot().Currency())
					if err != nil {
						return err
					}

					if _, err := s.Wishlist.Toggle(c.Context, artwork); err != nil {
						return err
					}
					printWishlist(c.App.Writer, s.Wishlist.Items())
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "remove an artwork",
				ArgsUsage: "<item-id>",
				Action: withApp(func(c *cli.Context, a *app) error {
					id, err := requireArg(c, 0, "item-id")
					if err != nil {
						return err
					}

					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}

					if !s.Wishlist.Remove(c.Context, id) {
						fmt.Fprintf(c.App.Writer, "%s is not in the wishlist\n", id)
					}
					printWishlist(c.App.Writer, s.Wishlist.Items())
					return nil
				}),
			},
			{
				Name:  "clear",
				Usage: "empty the wishlist",
				Action: withApp(func(c *cli.Context, a *app) error {
					s, err := a.session(c.Context, c.String("owner"))
					if err != nil {
						return err
					}
					s.Wishlist.Clear(c.Context)
					printWishlist(c.App.Writer, s.Wishlist.Items())
					return nil
				}),
			},
		},
	}
}

func checkoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "purchase everything in the cart and download the images",
		Action: withApp(func(c *cli.Context, a *app) error {
			owner := c.String("owner")

			s, err := a.session(c.Context, owner)
			if err != nil {
				return err
			}

			flow, err := checkout.New(checkout.Config{
				OwnerID:    owner,
				Cart:       s.Cart,
				Downloader: a.downloader,
				Orders:     a.orders,
				Logger:     a.logger,
				Metrics:    a.metrics,
			})
			if err != nil {
				return fmt.Errorf("checkout.New: %w", err)
			}

			receipt, err := flow.Run(c.Context)
			if err != nil {
				return err
			}

			printReceipt(c.App.Writer, receipt)
			return nil
		}),
	}
}

func requireArg(c *cli.Context, n int, name string) (string, error) {
	arg := c.Args().Get(n)
	if arg == "" {
		return "", fmt.Errorf("%s argument is required", name)
	}
	return arg, nil
}

func printCart(w io.Writer, cart *domain.Cart) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range cart.Items() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			item.ItemID(), item.Artwork.Title, item.Quantity, item.UnitPrice(), item.Subtotal())
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "items: %d, total: %s\n", cart.Count(), cart.Total())
}

func printWishlist(w io.Writer, items []domain.Artwork) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCREATOR\tPRICE")
	for _, a := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Title, a.Creator, a.Price)
	}
	_ = tw.Flush()
}

func printReceipt(w io.Writer, r checkout.Receipt) {
	fmt.Fprintf(w, "order %s for %s\n", r.OrderID, r.OwnerID)
	printItems(w, r.Items)
	fmt.Fprintf(w, "items: %d, total: %s, recorded: %t\n", r.Count, r.Total, r.Recorded)

	var joined interface{ Unwrap() []error }
	if errors.As(r.DownloadErr, &joined) {
		for _, err := range joined.Unwrap() {
			fmt.Fprintf(w, "download failed: %v\n", err)
		}
	} else if r.DownloadErr != nil {
		fmt.Fprintf(w, "download failed: %v\n", r.DownloadErr)
	}
}

func printItems(w io.Writer, items []domain.LineItem) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(tw, "  %s\t%s\tx%d\t%s\n", item.ItemID(), item.Artwork.Title, item.Quantity, item.Subtotal())
	}
	_ = tw.Flush()
}
