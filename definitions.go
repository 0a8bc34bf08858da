package mercapi

import (
	"sync"
	"time"

	"github.com/ggoodman/mercapi-go/mapping"
)

// NewRegistry returns a registry holding the mapping definitions of every
// record in this package. Each call returns an independent copy, so entries
// can be replaced without affecting other clients.
func NewRegistry(opts ...mapping.RegistryOption) *mapping.Registry {
	return definitions().Clone(opts...)
}

var definitions = sync.OnceValue(func() *mapping.Registry {
	r := mapping.NewRegistry()
	registerItemDefinitions(r)
	registerCategoryDefinitions(r)
	registerProfileDefinitions(r)
	registerSearchDefinitions(r)
	return r
})

// Envelopes of the item and profile endpoints.
type itemResponse struct {
	Result *string
	Data   *Item
}

type profileResponse struct {
	Data *Profile
}

func clientFrom(f *mapping.Fields) *Client {
	c, _ := f.Capability().(*Client)
	return c
}

func prop[V any](key string, ext mapping.Extractor[V]) mapping.Property {
	return mapping.Prop(key, key, ext)
}

func scalar[V mapping.Scalar](key string) mapping.Property {
	return mapping.Prop(key, key, mapping.As[V](key))
}

func identifier(key string) mapping.Property {
	return mapping.Prop(key, key, mapping.StringID(key))
}

func timestamp(key string) mapping.Property {
	return mapping.Prop(key, key, mapping.Datetime(key))
}

func record[T any](key string) mapping.Property {
	return mapping.Prop(key, key, mapping.Nested[T](key))
}

func records[T any](key string) mapping.Property {
	return mapping.Prop(key, key, mapping.ListOf[T](key))
}

func stringsAt(key string) mapping.Property {
	return mapping.Prop(key, key, mapping.List[string](key))
}

func registerItemDefinitions(r *mapping.Registry) {
	mapping.Register(r, &mapping.Definition[*itemResponse]{
		Required: []mapping.Property{record[*Item]("data")},
		Optional: []mapping.Property{scalar[string]("result")},
		Build: func(f *mapping.Fields) (*itemResponse, error) {
			return &itemResponse{
				Result: mapping.Opt[string](f, "result"),
				Data:   mapping.Get[*Item](f, "data"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*Item]{
		Required: []mapping.Property{
			scalar[string]("id"),
			scalar[string]("status"),
			scalar[string]("name"),
			scalar[int]("price"),
		},
		Optional: []mapping.Property{
			record[*Seller]("seller"),
			scalar[string]("description"),
			stringsAt("photos"),
			stringsAt("photo_paths"),
			stringsAt("thumbnails"),
			record[*ItemCategorySummary]("item_category"),
			record[*ItemCondition]("item_condition"),
			records[*Color]("colors"),
			record[*ShippingPayer]("shipping_payer"),
			record[*ShippingMethod]("shipping_method"),
			record[*ShippingFromArea]("shipping_from_area"),
			record[*ShippingDuration]("shipping_duration"),
			record[*ShippingClass]("shipping_class"),
			scalar[int]("num_likes"),
			scalar[int]("num_comments"),
			records[*Comment]("comments"),
			timestamp("updated"),
			timestamp("created"),
			scalar[int64]("pager_id"),
			scalar[bool]("liked"),
			scalar[string]("checksum"),
			scalar[bool]("is_dynamic_shipping_fee"),
			// schema unknown, kept as sent
			prop("application_attributes", mapping.Mapped("application_attributes", func(m map[string]any) (map[string]any, error) {
				return m, nil
			})),
			scalar[string]("is_shop_item"),
			scalar[bool]("is_anonymous_shipping"),
			scalar[bool]("is_web_visible"),
			scalar[bool]("is_offerable"),
			scalar[bool]("is_organizational_user"),
			scalar[string]("organizational_user_status"),
			scalar[bool]("is_stock_item"),
			scalar[bool]("is_cancelable"),
			scalar[bool]("shipped_by_worker"),
			scalar[bool]("has_additional_service"),
			scalar[bool]("has_like_list"),
			scalar[bool]("is_offerable_v2"),
		},
		Build: func(f *mapping.Fields) (*Item, error) {
			return &Item{
				ID:                       mapping.Get[string](f, "id"),
				Status:                   mapping.Get[string](f, "status"),
				Name:                     mapping.Get[string](f, "name"),
				Price:                    mapping.Get[int](f, "price"),
				Seller:                   mapping.Get[*Seller](f, "seller"),
				Description:              mapping.Opt[string](f, "description"),
				Photos:                   mapping.Get[[]string](f, "photos"),
				PhotoPaths:               mapping.Get[[]string](f, "photo_paths"),
				Thumbnails:               mapping.Get[[]string](f, "thumbnails"),
				ItemCategory:             mapping.Get[*ItemCategorySummary](f, "item_category"),
				ItemCondition:            mapping.Get[*ItemCondition](f, "item_condition"),
				Colors:                   mapping.Get[[]*Color](f, "colors"),
				ShippingPayer:            mapping.Get[*ShippingPayer](f, "shipping_payer"),
				ShippingMethod:           mapping.Get[*ShippingMethod](f, "shipping_method"),
				ShippingFromArea:         mapping.Get[*ShippingFromArea](f, "shipping_from_area"),
				ShippingDuration:         mapping.Get[*ShippingDuration](f, "shipping_duration"),
				ShippingClass:            mapping.Get[*ShippingClass](f, "shipping_class"),
				NumLikes:                 mapping.Opt[int](f, "num_likes"),
				NumComments:              mapping.Opt[int](f, "num_comments"),
				Comments:                 mapping.Get[[]*Comment](f, "comments"),
				Updated:                  mapping.Opt[time.Time](f, "updated"),
				Created:                  mapping.Opt[time.Time](f, "created"),
				PagerID:                  mapping.Opt[int64](f, "pager_id"),
				Liked:                    mapping.Opt[bool](f, "liked"),
				Checksum:                 mapping.Opt[string](f, "checksum"),
				IsDynamicShippingFee:     mapping.Opt[bool](f, "is_dynamic_shipping_fee"),
				ApplicationAttributes:    mapping.Get[map[string]any](f, "application_attributes"),
				IsShopItem:               mapping.Opt[string](f, "is_shop_item"),
				IsAnonymousShipping:      mapping.Opt[bool](f, "is_anonymous_shipping"),
				IsWebVisible:             mapping.Opt[bool](f, "is_web_visible"),
				IsOfferable:              mapping.Opt[bool](f, "is_offerable"),
				IsOrganizationalUser:     mapping.Opt[bool](f, "is_organizational_user"),
				OrganizationalUserStatus: mapping.Opt[string](f, "organizational_user_status"),
				IsStockItem:              mapping.Opt[bool](f, "is_stock_item"),
				IsCancelable:             mapping.Opt[bool](f, "is_cancelable"),
				ShippedByWorker:          mapping.Opt[bool](f, "shipped_by_worker"),
				HasAdditionalService:     mapping.Opt[bool](f, "has_additional_service"),
				HasLikeList:              mapping.Opt[bool](f, "has_like_list"),
				IsOfferableV2:            mapping.Opt[bool](f, "is_offerable_v2"),
				client:                   clientFrom(f),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*Seller]{
		Required: []mapping.Property{identifier("id"), scalar[string]("name")},
		Optional: []mapping.Property{
			scalar[string]("photo_url"),
			scalar[string]("photo_thumbnail_url"),
			scalar[string]("register_sms_confirmation"),
			timestamp("register_sms_confirmation_at"),
			timestamp("created"),
			scalar[int]("num_sell_items"),
			record[*SellerRatings]("ratings"),
			scalar[int]("num_ratings"),
			scalar[int]("score"),
			scalar[bool]("is_official"),
			scalar[bool]("quick_shipper"),
			scalar[int]("star_rating_score"),
		},
		Build: func(f *mapping.Fields) (*Seller, error) {
			return &Seller{
				ID:                        mapping.Get[string](f, "id"),
				Name:                      mapping.Get[string](f, "name"),
				Photo:                     mapping.Opt[string](f, "photo_url"),
				PhotoThumbnail:            mapping.Opt[string](f, "photo_thumbnail_url"),
				RegisterSMSConfirmation:   mapping.Opt[string](f, "register_sms_confirmation"),
				RegisterSMSConfirmationAt: mapping.Opt[time.Time](f, "register_sms_confirmation_at"),
				Created:                   mapping.Opt[time.Time](f, "created"),
				NumSellItems:              mapping.Opt[int](f, "num_sell_items"),
				Ratings:                   mapping.Get[*SellerRatings](f, "ratings"),
				NumRatings:                mapping.Opt[int](f, "num_ratings"),
				Score:                     mapping.Opt[int](f, "score"),
				IsOfficial:                mapping.Opt[bool](f, "is_official"),
				QuickShipper:              mapping.Opt[bool](f, "quick_shipper"),
				StarRatingScore:           mapping.Opt[int](f, "star_rating_score"),
				client:                    clientFrom(f),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*SellerRatings]{
		Required: []mapping.Property{scalar[int]("good"), scalar[int]("normal"), scalar[int]("bad")},
		Build: func(f *mapping.Fields) (*SellerRatings, error) {
			return &SellerRatings{
				Good:   mapping.Get[int](f, "good"),
				Normal: mapping.Get[int](f, "normal"),
				Bad:    mapping.Get[int](f, "bad"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*ItemCondition]{
		Required: []mapping.Property{scalar[int]("id"), scalar[string]("name")},
		Build: func(f *mapping.Fields) (*ItemCondition, error) {
			return &ItemCondition{ID: mapping.Get[int](f, "id"), Name: mapping.Get[string](f, "name")}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*Color]{
		Required: []mapping.Property{scalar[int]("id"), scalar[string]("name"), scalar[int]("rgb")},
		Build: func(f *mapping.Fields) (*Color, error) {
			return &Color{
				ID:   mapping.Get[int](f, "id"),
				Name: mapping.Get[string](f, "name"),
				RGB:  mapping.Get[int](f, "rgb"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*ShippingPayer]{
		Required: []mapping.Property{scalar[int]("id"), scalar[string]("name")},
		Optional: []mapping.Property{scalar[string]("code")},
		Build: func(f *mapping.Fields) (*ShippingPayer, error) {
			return &ShippingPayer{
				ID:   mapping.Get[int](f, "id"),
				Name: mapping.Get[string](f, "name"),
				Code: mapping.Opt[string](f, "code"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*ShippingMethod]{
		Required: []mapping.Property{scalar[int]("id"), scalar[string]("name")},
		Optional: []mapping.Property{scalar[string]("is_deprecated")},
		Build: func(f *mapping.Fields) (*ShippingMethod, error) {
			return &ShippingMethod{
				ID:           mapping.Get[int](f, "id"),
				Name:         mapping.Get[string](f, "name"),
				IsDeprecated: mapping.Opt[string](f, "is_deprecated"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*ShippingFromArea]{
		Required: []mapping.Property{scalar[int]("id"), scalar[string]("name")},
		Build: func(f *mapping.Fields) (*ShippingFromArea, error) {
			return &ShippingFromArea{ID: mapping.Get[int](f, "id"), Name: mapping.Get[string](f, "name")}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*ShippingDuration]{
		Required: []mapping.Property{scalar[int]("id"), scalar[string]("name")},
		Optional: []mapping.Property{scalar[int]("min_days"), scalar[int]("max_days")},
		Build: func(f *mapping.Fields) (*ShippingDuration, error) {
			return &ShippingDuration{
				ID:      mapping.Get[int](f, "id"),
				Name:    mapping.Get[string](f, "name"),
				MinDays: mapping.Opt[int](f, "min_days"),
				MaxDays: mapping.Opt[int](f, "max_days"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*ShippingClass]{
		Required: []mapping.Property{scalar[int]("id")},
		Optional: []mapping.Property{
			scalar[int]("fee"),
			scalar[int]("icon_id"),
			scalar[int]("pickup_fee"),
			scalar[int]("shipping_fee"),
			scalar[int]("total_fee"),
			scalar[bool]("is_pickup"),
		},
		Build: func(f *mapping.Fields) (*ShippingClass, error) {
			return &ShippingClass{
				ID:          mapping.Get[int](f, "id"),
				Fee:         mapping.Opt[int](f, "fee"),
				IconID:      mapping.Opt[int](f, "icon_id"),
				PickupFee:   mapping.Opt[int](f, "pickup_fee"),
				ShippingFee: mapping.Opt[int](f, "shipping_fee"),
				TotalFee:    mapping.Opt[int](f, "total_fee"),
				IsPickup:    mapping.Opt[bool](f, "is_pickup"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*Comment]{
		Required: []mapping.Property{identifier("id"), scalar[string]("message"), timestamp("created")},
		Optional: []mapping.Property{record[*CommentUser]("user")},
		Build: func(f *mapping.Fields) (*Comment, error) {
			return &Comment{
				ID:      mapping.Get[string](f, "id"),
				Message: mapping.Get[string](f, "message"),
				Created: mapping.Get[time.Time](f, "created"),
				User:    mapping.Get[*CommentUser](f, "user"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*CommentUser]{
		Required: []mapping.Property{identifier("id"), scalar[string]("name")},
		Optional: []mapping.Property{scalar[string]("photo_url"), scalar[string]("photo_thumbnail_url")},
		Build: func(f *mapping.Fields) (*CommentUser, error) {
			return &CommentUser{
				ID:             mapping.Get[string](f, "id"),
				Name:           mapping.Get[string](f, "name"),
				Photo:          mapping.Opt[string](f, "photo_url"),
				PhotoThumbnail: mapping.Opt[string](f, "photo_thumbnail_url"),
			}, nil
		},
	})
}

func registerCategoryDefinitions(r *mapping.Registry) {
	mapping.Register(r, &mapping.Definition[*ItemCategory]{
		Required: []mapping.Property{scalar[int]("id"), scalar[string]("name")},
		Optional: []mapping.Property{
			scalar[int]("tab_order"),
			scalar[int]("display_order"),
			scalar[int]("parent_category_id"),
			scalar[string]("parent_category_name"),
			scalar[int]("root_category_id"),
			scalar[string]("root_category_name"),
			scalar[int]("size_group_id"),
			scalar[int]("brand_group_id"),
			records[*ItemCategory]("children"),
		},
		Build: func(f *mapping.Fields) (*ItemCategory, error) {
			return &ItemCategory{
				ID:                 mapping.Get[int](f, "id"),
				Name:               mapping.Get[string](f, "name"),
				TabOrder:           mapping.Opt[int](f, "tab_order"),
				DisplayOrder:       mapping.Opt[int](f, "display_order"),
				ParentCategoryID:   mapping.Opt[int](f, "parent_category_id"),
				ParentCategoryName: mapping.Opt[string](f, "parent_category_name"),
				RootCategoryID:     mapping.Opt[int](f, "root_category_id"),
				RootCategoryName:   mapping.Opt[string](f, "root_category_name"),
				SizeGroupID:        mapping.Opt[int](f, "size_group_id"),
				BrandGroupID:       mapping.Opt[int](f, "brand_group_id"),
				Children:           mapping.Get[[]*ItemCategory](f, "children"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*ItemCategorySummary]{
		Required: []mapping.Property{scalar[int]("id"), scalar[string]("name")},
		Optional: []mapping.Property{
			scalar[int]("display_order"),
			scalar[int]("parent_category_id"),
			scalar[string]("parent_category_name"),
			scalar[int]("root_category_id"),
			scalar[string]("root_category_name"),
		},
		Build: func(f *mapping.Fields) (*ItemCategorySummary, error) {
			return &ItemCategorySummary{
				ID:                 mapping.Get[int](f, "id"),
				Name:               mapping.Get[string](f, "name"),
				DisplayOrder:       mapping.Opt[int](f, "display_order"),
				ParentCategoryID:   mapping.Opt[int](f, "parent_category_id"),
				ParentCategoryName: mapping.Opt[string](f, "parent_category_name"),
				RootCategoryID:     mapping.Opt[int](f, "root_category_id"),
				RootCategoryName:   mapping.Opt[string](f, "root_category_name"),
			}, nil
		},
	})
}

func registerProfileDefinitions(r *mapping.Registry) {
	mapping.Register(r, &mapping.Definition[*profileResponse]{
		Required: []mapping.Property{record[*Profile]("data")},
		Build: func(f *mapping.Fields) (*profileResponse, error) {
			return &profileResponse{Data: mapping.Get[*Profile](f, "data")}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*Profile]{
		Required: []mapping.Property{identifier("id"), scalar[string]("name")},
		Optional: []mapping.Property{
			scalar[string]("photo_url"),
			scalar[string]("photo_thumbnail_url"),
			scalar[string]("register_sms_confirmation"),
			record[*ProfileRatings]("ratings"),
			record[*PolarizedRatings]("polarized_ratings"),
			scalar[int]("num_ratings"),
			scalar[int]("star_rating_score"),
			scalar[bool]("is_followable"),
			scalar[bool]("is_blocked"),
			scalar[int]("following_count"),
			scalar[int]("follower_count"),
			scalar[int]("score"),
			timestamp("created"),
			scalar[bool]("proper"),
			scalar[string]("introduction"),
			scalar[bool]("is_official"),
			scalar[int]("num_sell_items"),
			scalar[int]("num_ticket"),
			scalar[string]("bounce_mail_flag"),
			scalar[int]("current_point"),
			scalar[int]("current_sales"),
			scalar[bool]("is_organizational_user"),
		},
		Build: func(f *mapping.Fields) (*Profile, error) {
			return &Profile{
				ID:                      mapping.Get[string](f, "id"),
				Name:                    mapping.Get[string](f, "name"),
				PhotoURL:                mapping.Opt[string](f, "photo_url"),
				PhotoThumbnailURL:       mapping.Opt[string](f, "photo_thumbnail_url"),
				RegisterSMSConfirmation: mapping.Opt[string](f, "register_sms_confirmation"),
				Ratings:                 mapping.Get[*ProfileRatings](f, "ratings"),
				PolarizedRatings:        mapping.Get[*PolarizedRatings](f, "polarized_ratings"),
				NumRatings:              mapping.Opt[int](f, "num_ratings"),
				StarRatingScore:         mapping.Opt[int](f, "star_rating_score"),
				IsFollowable:            mapping.Opt[bool](f, "is_followable"),
				IsBlocked:               mapping.Opt[bool](f, "is_blocked"),
				FollowingCount:          mapping.Opt[int](f, "following_count"),
				FollowerCount:           mapping.Opt[int](f, "follower_count"),
				Score:                   mapping.Opt[int](f, "score"),
				Created:                 mapping.Opt[time.Time](f, "created"),
				Proper:                  mapping.Opt[bool](f, "proper"),
				Introduction:            mapping.Opt[string](f, "introduction"),
				IsOfficial:              mapping.Opt[bool](f, "is_official"),
				NumSellItems:            mapping.Opt[int](f, "num_sell_items"),
				NumTicket:               mapping.Opt[int](f, "num_ticket"),
				BounceMailFlag:          mapping.Opt[string](f, "bounce_mail_flag"),
				CurrentPoint:            mapping.Opt[int](f, "current_point"),
				CurrentSales:            mapping.Opt[int](f, "current_sales"),
				IsOrganizationalUser:    mapping.Opt[bool](f, "is_organizational_user"),
				client:                  clientFrom(f),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*ProfileRatings]{
		Required: []mapping.Property{scalar[int]("good"), scalar[int]("normal"), scalar[int]("bad")},
		Build: func(f *mapping.Fields) (*ProfileRatings, error) {
			return &ProfileRatings{
				Good:   mapping.Get[int](f, "good"),
				Normal: mapping.Get[int](f, "normal"),
				Bad:    mapping.Get[int](f, "bad"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*PolarizedRatings]{
		Required: []mapping.Property{scalar[int]("good"), scalar[int]("bad")},
		Build: func(f *mapping.Fields) (*PolarizedRatings, error) {
			return &PolarizedRatings{Good: mapping.Get[int](f, "good"), Bad: mapping.Get[int](f, "bad")}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*SellerItems]{
		Required: []mapping.Property{records[*SellerItem]("data")},
		Build: func(f *mapping.Fields) (*SellerItems, error) {
			return &SellerItems{Items: mapping.Get[[]*SellerItem](f, "data")}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*SellerItem]{
		Required: []mapping.Property{
			scalar[string]("id"),
			mapping.Prop("seller", "seller_id", mapping.PathID("seller", "id")),
			scalar[string]("status"),
			scalar[string]("name"),
			scalar[int]("price"),
		},
		Optional: []mapping.Property{
			stringsAt("thumbnails"),
			scalar[int]("root_category_id"),
			scalar[int]("num_likes"),
			scalar[int]("num_comments"),
			timestamp("created"),
			timestamp("updated"),
			record[*ItemCategory]("item_category"),
			record[*ShippingFromArea]("shipping_from_area"),
		},
		Build: func(f *mapping.Fields) (*SellerItem, error) {
			return &SellerItem{
				ID:               mapping.Get[string](f, "id"),
				SellerID:         mapping.Get[string](f, "seller_id"),
				Status:           mapping.Get[string](f, "status"),
				Name:             mapping.Get[string](f, "name"),
				Price:            mapping.Get[int](f, "price"),
				Thumbnails:       mapping.Get[[]string](f, "thumbnails"),
				RootCategoryID:   mapping.Opt[int](f, "root_category_id"),
				NumLikes:         mapping.Opt[int](f, "num_likes"),
				NumComments:      mapping.Opt[int](f, "num_comments"),
				Created:          mapping.Opt[time.Time](f, "created"),
				Updated:          mapping.Opt[time.Time](f, "updated"),
				ItemCategory:     mapping.Get[*ItemCategory](f, "item_category"),
				ShippingFromArea: mapping.Get[*ShippingFromArea](f, "shipping_from_area"),
				client:           clientFrom(f),
			}, nil
		},
	})
}

func registerSearchDefinitions(r *mapping.Registry) {
	mapping.Register(r, &mapping.Definition[*SearchResults]{
		Required: []mapping.Property{record[*SearchMeta]("meta"), records[*SearchResultItem]("items")},
		Build: func(f *mapping.Fields) (*SearchResults, error) {
			return &SearchResults{
				Meta:   mapping.Get[*SearchMeta](f, "meta"),
				Items:  mapping.Get[[]*SearchResultItem](f, "items"),
				client: clientFrom(f),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*SearchMeta]{
		Required: []mapping.Property{
			scalar[string]("nextPageToken"),
			scalar[string]("previousPageToken"),
			scalar[int]("numFound"),
		},
		Build: func(f *mapping.Fields) (*SearchMeta, error) {
			return &SearchMeta{
				NextPageToken: mapping.Get[string](f, "nextPageToken"),
				PrevPageToken: mapping.Get[string](f, "previousPageToken"),
				NumFound:      mapping.Get[int](f, "numFound"),
			}, nil
		},
	})

	mapping.Register(r, &mapping.Definition[*SearchResultItem]{
		Required: []mapping.Property{
			scalar[string]("id"),
			scalar[string]("name"),
			scalar[int]("price"),
			identifier("sellerId"),
			scalar[string]("status"),
			timestamp("created"),
			timestamp("updated"),
		},
		Optional: []mapping.Property{
			stringsAt("thumbnails"),
			scalar[string]("itemType"),
			scalar[int]("itemConditionId"),
			scalar[int]("shippingPayerId"),
			scalar[bool]("isNoPrice"),
		},
		Build: func(f *mapping.Fields) (*SearchResultItem, error) {
			return &SearchResultItem{
				ID:              mapping.Get[string](f, "id"),
				Name:            mapping.Get[string](f, "name"),
				Price:           mapping.Get[int](f, "price"),
				SellerID:        mapping.Get[string](f, "sellerId"),
				Status:          mapping.Get[string](f, "status"),
				Created:         mapping.Get[time.Time](f, "created"),
				Updated:         mapping.Get[time.Time](f, "updated"),
				Thumbnails:      mapping.Get[[]string](f, "thumbnails"),
				ItemType:        mapping.Opt[string](f, "itemType"),
				ItemConditionID: mapping.Opt[int](f, "itemConditionId"),
				ShippingPayerID: mapping.Opt[int](f, "shippingPayerId"),
				IsNoPrice:       mapping.Opt[bool](f, "isNoPrice"),
				client:          clientFrom(f),
			}, nil
		},
	})
}
