// Package mercapi is a client for the undocumented marketplace web API.
//
// A Client signs every request with a proof-of-possession token (see
// internal/dpop) and decodes responses through a mapping.Registry of
// declarative definitions, one per record type:
//
//	c, err := mercapi.New()
//	if err != nil {
//		return err
//	}
//	res, err := c.Search(ctx, mercapi.SearchConditions{Query: "sharpnel"})
//	if err != nil {
//		return err
//	}
//	for _, hit := range res.Items {
//		item, err := hit.FullItem(ctx)
//		...
//	}
//
// Records keep a reference to the client that produced them so companion
// fetches (FullItem, Seller, Items, NextPage) need no extra arguments. Fields
// required by a definition fail the whole call when missing; optional ones
// are left nil and reported on the client's logger.
//
// NewFromEnv configures the client from the environment, including an
// optional response cache backed by memory, Redis or SQLite.
package mercapi
