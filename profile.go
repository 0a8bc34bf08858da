package mercapi

import (
	"context"
	"time"
)

// Profile is a user's public profile.
type Profile struct {
	ID   string
	Name string

	PhotoURL                *string
	PhotoThumbnailURL       *string
	RegisterSMSConfirmation *string
	Ratings                 *ProfileRatings
	PolarizedRatings        *PolarizedRatings
	NumRatings              *int
	StarRatingScore         *int
	IsFollowable            *bool
	IsBlocked               *bool
	FollowingCount          *int
	FollowerCount           *int
	Score                   *int
	Created                 *time.Time
	Proper                  *bool
	Introduction            *string
	IsOfficial              *bool
	NumSellItems            *int
	NumTicket               *int
	BounceMailFlag          *string
	CurrentPoint            *int
	CurrentSales            *int
	IsOrganizationalUser    *bool

	client *Client
}

// Fields implements Record.
func (p *Profile) Fields() map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{
		"id":                        p.ID,
		"name":                      p.Name,
		"photo_url":                 deref(p.PhotoURL),
		"photo_thumbnail_url":       deref(p.PhotoThumbnailURL),
		"register_sms_confirmation": deref(p.RegisterSMSConfirmation),
		"ratings":                   nested(p.Ratings),
		"polarized_ratings":         nested(p.PolarizedRatings),
		"num_ratings":               deref(p.NumRatings),
		"star_rating_score":         deref(p.StarRatingScore),
		"is_followable":             deref(p.IsFollowable),
		"is_blocked":                deref(p.IsBlocked),
		"following_count":           deref(p.FollowingCount),
		"follower_count":            deref(p.FollowerCount),
		"score":                     deref(p.Score),
		"created":                   timeOrNil(p.Created),
		"proper":                    deref(p.Proper),
		"introduction":              deref(p.Introduction),
		"is_official":               deref(p.IsOfficial),
		"num_sell_items":            deref(p.NumSellItems),
		"num_ticket":                deref(p.NumTicket),
		"bounce_mail_flag":          deref(p.BounceMailFlag),
		"current_point":             deref(p.CurrentPoint),
		"current_sales":             deref(p.CurrentSales),
		"is_organizational_user":    deref(p.IsOrganizationalUser),
	}
}

// Items fetches the listings of this user.
func (p *Profile) Items(ctx context.Context) (*SellerItems, error) {
	if p.client == nil {
		return nil, ErrDetached
	}
	return p.client.SellerItems(ctx, p.ID)
}

type ProfileRatings struct {
	Good   int
	Normal int
	Bad    int
}

// Fields implements Record.
func (r *ProfileRatings) Fields() map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{"good": r.Good, "normal": r.Normal, "bad": r.Bad}
}

type PolarizedRatings struct {
	Good int
	Bad  int
}

// Fields implements Record.
func (r *PolarizedRatings) Fields() map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{"good": r.Good, "bad": r.Bad}
}

// SellerItem is one entry of a seller's listing collection.
type SellerItem struct {
	ID       string
	SellerID string
	Status   string
	Name     string
	Price    int

	Thumbnails       []string
	RootCategoryID   *int
	NumLikes         *int
	NumComments      *int
	Created          *time.Time
	Updated          *time.Time
	ItemCategory     *ItemCategory
	ShippingFromArea *ShippingFromArea

	client *Client
}

// Fields implements Record.
func (it *SellerItem) Fields() map[string]any {
	if it == nil {
		return nil
	}
	return map[string]any{
		"id":                 it.ID,
		"seller_id":          it.SellerID,
		"status":             it.Status,
		"name":               it.Name,
		"price":              it.Price,
		"thumbnails":         stringList(it.Thumbnails),
		"root_category_id":   deref(it.RootCategoryID),
		"num_likes":          deref(it.NumLikes),
		"num_comments":       deref(it.NumComments),
		"created":            timeOrNil(it.Created),
		"updated":            timeOrNil(it.Updated),
		"item_category":      nested(it.ItemCategory),
		"shipping_from_area": nested(it.ShippingFromArea),
	}
}

// FullItem fetches the full listing behind this entry.
func (it *SellerItem) FullItem(ctx context.Context) (*Item, error) {
	if it.client == nil {
		return nil, ErrDetached
	}
	return it.client.Item(ctx, it.ID)
}

// SellerItems is the listing collection of one seller.
type SellerItems struct {
	Items []*SellerItem
}

// Fields implements Record. Each item is rendered through its own Fields.
func (s *SellerItems) Fields() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{"items": nestedList(s.Items)}
}
