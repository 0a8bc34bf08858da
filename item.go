package mercapi

import (
	"context"
	"fmt"
	"time"
)

// Item is the full listing returned by the item endpoint.
type Item struct {
	ID     string
	Status string
	Name   string
	Price  int

	Seller                   *Seller
	Description              *string
	Photos                   []string
	PhotoPaths               []string
	Thumbnails               []string
	ItemCategory             *ItemCategorySummary
	ItemCondition            *ItemCondition
	Colors                   []*Color
	ShippingPayer            *ShippingPayer
	ShippingMethod           *ShippingMethod
	ShippingFromArea         *ShippingFromArea
	ShippingDuration         *ShippingDuration
	ShippingClass            *ShippingClass
	NumLikes                 *int
	NumComments              *int
	Comments                 []*Comment
	Updated                  *time.Time
	Created                  *time.Time
	PagerID                  *int64
	Liked                    *bool
	Checksum                 *string
	IsDynamicShippingFee     *bool
	ApplicationAttributes    map[string]any
	IsShopItem               *string
	IsAnonymousShipping      *bool
	IsWebVisible             *bool
	IsOfferable              *bool
	IsOrganizationalUser     *bool
	OrganizationalUserStatus *string
	IsStockItem              *bool
	IsCancelable             *bool
	ShippedByWorker          *bool
	HasAdditionalService     *bool
	HasLikeList              *bool
	IsOfferableV2            *bool

	client *Client
}

// Fields implements Record. Absent optional properties render as nil.
func (it *Item) Fields() map[string]any {
	if it == nil {
		return nil
	}
	return map[string]any{
		"id":                         it.ID,
		"status":                     it.Status,
		"name":                       it.Name,
		"price":                      it.Price,
		"seller":                     nested(it.Seller),
		"description":                deref(it.Description),
		"photos":                     stringList(it.Photos),
		"photo_paths":                stringList(it.PhotoPaths),
		"thumbnails":                 stringList(it.Thumbnails),
		"item_category":              nested(it.ItemCategory),
		"item_condition":             nested(it.ItemCondition),
		"colors":                     nestedList(it.Colors),
		"shipping_payer":             nested(it.ShippingPayer),
		"shipping_method":            nested(it.ShippingMethod),
		"shipping_from_area":         nested(it.ShippingFromArea),
		"shipping_duration":          nested(it.ShippingDuration),
		"shipping_class":             nested(it.ShippingClass),
		"num_likes":                  deref(it.NumLikes),
		"num_comments":               deref(it.NumComments),
		"comments":                   nestedList(it.Comments),
		"updated":                    timeOrNil(it.Updated),
		"created":                    timeOrNil(it.Created),
		"pager_id":                   deref(it.PagerID),
		"liked":                      deref(it.Liked),
		"checksum":                   deref(it.Checksum),
		"is_dynamic_shipping_fee":    deref(it.IsDynamicShippingFee),
		"application_attributes":     it.ApplicationAttributes,
		"is_shop_item":               deref(it.IsShopItem),
		"is_anonymous_shipping":      deref(it.IsAnonymousShipping),
		"is_web_visible":             deref(it.IsWebVisible),
		"is_offerable":               deref(it.IsOfferable),
		"is_organizational_user":     deref(it.IsOrganizationalUser),
		"organizational_user_status": deref(it.OrganizationalUserStatus),
		"is_stock_item":              deref(it.IsStockItem),
		"is_cancelable":              deref(it.IsCancelable),
		"shipped_by_worker":          deref(it.ShippedByWorker),
		"has_additional_service":     deref(it.HasAdditionalService),
		"has_like_list":              deref(it.HasLikeList),
		"is_offerable_v2":            deref(it.IsOfferableV2),
	}
}

// Seller is the seller summary embedded in an Item.
type Seller struct {
	ID   string
	Name string

	Photo                     *string
	PhotoThumbnail            *string
	RegisterSMSConfirmation   *string
	RegisterSMSConfirmationAt *time.Time
	Created                   *time.Time
	NumSellItems              *int
	Ratings                   *SellerRatings
	NumRatings                *int
	Score                     *int
	IsOfficial                *bool
	QuickShipper              *bool
	StarRatingScore           *int

	client *Client
}

// Fields implements Record.
func (s *Seller) Fields() map[string]any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"id":                           s.ID,
		"name":                         s.Name,
		"photo":                        deref(s.Photo),
		"photo_thumbnail":              deref(s.PhotoThumbnail),
		"register_sms_confirmation":    deref(s.RegisterSMSConfirmation),
		"register_sms_confirmation_at": timeOrNil(s.RegisterSMSConfirmationAt),
		"created":                      timeOrNil(s.Created),
		"num_sell_items":               deref(s.NumSellItems),
		"ratings":                      nested(s.Ratings),
		"num_ratings":                  deref(s.NumRatings),
		"score":                        deref(s.Score),
		"is_official":                  deref(s.IsOfficial),
		"quick_shipper":                deref(s.QuickShipper),
		"star_rating_score":            deref(s.StarRatingScore),
	}
}

// Profile fetches the seller's full profile.
func (s *Seller) Profile(ctx context.Context) (*Profile, error) {
	if s.client == nil {
		return nil, ErrDetached
	}
	return s.client.Profile(ctx, s.ID)
}

type SellerRatings struct {
	Good   int
	Normal int
	Bad    int
}

// Fields implements Record.
func (r *SellerRatings) Fields() map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{"good": r.Good, "normal": r.Normal, "bad": r.Bad}
}

type ItemCondition struct {
	ID   int
	Name string
}

// Fields implements Record.
func (c *ItemCondition) Fields() map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{"id": c.ID, "name": c.Name}
}

type Color struct {
	ID   int
	Name string
	RGB  int
}

// RGBCode returns RGB as a hexadecimal literal, e.g. "0xffffff".
func (c *Color) RGBCode() string {
	return fmt.Sprintf("%#x", c.RGB)
}

// Fields implements Record.
func (c *Color) Fields() map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{"id": c.ID, "name": c.Name, "rgb": c.RGB}
}

type ShippingPayer struct {
	ID   int
	Name string
	Code *string
}

// Fields implements Record.
func (p *ShippingPayer) Fields() map[string]any {
	if p == nil {
		return nil
	}
	return map[string]any{"id": p.ID, "name": p.Name, "code": deref(p.Code)}
}

type ShippingMethod struct {
	ID           int
	Name         string
	IsDeprecated *string
}

// Fields implements Record.
func (m *ShippingMethod) Fields() map[string]any {
	if m == nil {
		return nil
	}
	return map[string]any{"id": m.ID, "name": m.Name, "is_deprecated": deref(m.IsDeprecated)}
}

type ShippingFromArea struct {
	ID   int
	Name string
}

// Fields implements Record.
func (a *ShippingFromArea) Fields() map[string]any {
	if a == nil {
		return nil
	}
	return map[string]any{"id": a.ID, "name": a.Name}
}

type ShippingDuration struct {
	ID      int
	Name    string
	MinDays *int
	MaxDays *int
}

// Fields implements Record.
func (d *ShippingDuration) Fields() map[string]any {
	if d == nil {
		return nil
	}
	return map[string]any{
		"id":       d.ID,
		"name":     d.Name,
		"min_days": deref(d.MinDays),
		"max_days": deref(d.MaxDays),
	}
}

// ShippingClass holds the fees of the chosen shipping class, in yen.
type ShippingClass struct {
	ID          int
	Fee         *int
	IconID      *int
	PickupFee   *int
	ShippingFee *int
	TotalFee    *int
	IsPickup    *bool
}

// Fields implements Record.
func (c *ShippingClass) Fields() map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"id":           c.ID,
		"fee":          deref(c.Fee),
		"icon_id":      deref(c.IconID),
		"pickup_fee":   deref(c.PickupFee),
		"shipping_fee": deref(c.ShippingFee),
		"total_fee":    deref(c.TotalFee),
		"is_pickup":    deref(c.IsPickup),
	}
}

type Comment struct {
	ID      string
	Message string
	Created time.Time
	User    *CommentUser
}

// Fields implements Record. The author is nested under "user".
func (c *Comment) Fields() map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"id":      c.ID,
		"message": c.Message,
		"created": c.Created.UTC(),
		"user":    nested(c.User),
	}
}

type CommentUser struct {
	ID             string
	Name           string
	Photo          *string
	PhotoThumbnail *string
}

// Fields implements Record.
func (u *CommentUser) Fields() map[string]any {
	if u == nil {
		return nil
	}
	return map[string]any{
		"id":              u.ID,
		"name":            u.Name,
		"photo":           deref(u.Photo),
		"photo_thumbnail": deref(u.PhotoThumbnail),
	}
}
