package mercapi

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
)

// ShippingMethodOption filters search results by delivery option.
type ShippingMethodOption string

const (
	ShippingAnonymous ShippingMethodOption = "SHIPPING_METHOD_ANONYMOUS"
	ShippingJapanPost ShippingMethodOption = "SHIPPING_METHOD_JAPAN_POST"
	ShippingNoOption  ShippingMethodOption = "SHIPPING_METHOD_NO_OPTION"
)

func (ShippingMethodOption) JSONSchema() *jsonschema.Schema {
	return enumSchema(ShippingAnonymous, ShippingJapanPost, ShippingNoOption)
}

// Status filters search results by listing status.
type Status string

const (
	StatusOnSale  Status = "STATUS_ON_SALE"
	StatusSoldOut Status = "STATUS_SOLD_OUT"

	// Sold out listings are only complete when trading ones are included.
	statusTrading Status = "STATUS_TRADING"
)

func (Status) JSONSchema() *jsonschema.Schema {
	return enumSchema(StatusOnSale, StatusSoldOut)
}

// SortBy selects the ordering key of a search.
type SortBy string

const (
	SortScore       SortBy = "SORT_SCORE"
	SortCreatedTime SortBy = "SORT_CREATED_TIME" // ordering is not guaranteed by the API
	SortPrice       SortBy = "SORT_PRICE"
	SortNumLikes    SortBy = "SORT_NUM_LIKES"
)

func (SortBy) JSONSchema() *jsonschema.Schema {
	return enumSchema(SortScore, SortCreatedTime, SortPrice, SortNumLikes)
}

// SortOrder is the direction of a sorted search.
type SortOrder string

const (
	OrderDesc SortOrder = "ORDER_DESC"
	OrderAsc  SortOrder = "ORDER_ASC"
)

func (SortOrder) JSONSchema() *jsonschema.Schema {
	return enumSchema(OrderDesc, OrderAsc)
}

func enumSchema[E ~string](values ...E) *jsonschema.Schema {
	enum := make([]any, 0, len(values))
	for _, v := range values {
		enum = append(enum, string(v))
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// sortings the official web app offers. Others are sent but may misbehave.
var supportedSortings = map[[2]string]bool{
	{string(SortScore), string(OrderDesc)}:       true,
	{string(SortCreatedTime), string(OrderDesc)}: true,
	{string(SortPrice), string(OrderDesc)}:       true,
	{string(SortPrice), string(OrderAsc)}:        true,
	{string(SortNumLikes), string(OrderDesc)}:    true,
}

// SearchConditions describes a search. Zero values mean "no filter"; the
// zero sort is SortScore, ORDER_DESC.
type SearchConditions struct {
	Query           string                 `json:"query" jsonschema:"required,description=Search keyword"`
	Categories      []int                  `json:"categories,omitempty" jsonschema:"description=Category ids"`
	Brands          []int                  `json:"brands,omitempty" jsonschema:"description=Brand ids"`
	Sizes           []int                  `json:"sizes,omitempty" jsonschema:"description=Size ids"`
	PriceMin        int                    `json:"price_min,omitempty" jsonschema:"minimum=0"`
	PriceMax        int                    `json:"price_max,omitempty" jsonschema:"minimum=0"`
	ItemConditions  []int                  `json:"item_conditions,omitempty" jsonschema:"description=Item condition ids (1-6)"`
	ShippingPayer   []int                  `json:"shipping_payer,omitempty" jsonschema:"description=Shipping payer ids"`
	Colors          []int                  `json:"colors,omitempty" jsonschema:"description=Color ids"`
	ShippingMethods []ShippingMethodOption `json:"shipping_methods,omitempty"`
	Status          []Status               `json:"status,omitempty"`
	SortBy          SortBy                 `json:"sort_by,omitempty"`
	SortOrder       SortOrder              `json:"sort_order,omitempty"`
	Exclude         string                 `json:"exclude,omitempty" jsonschema:"description=Keywords excluded from results"`
}

func (c SearchConditions) sorting() (SortBy, SortOrder) {
	by, order := c.SortBy, c.SortOrder
	if by == "" {
		by = SortScore
	}
	if order == "" {
		order = OrderDesc
	}
	return by, order
}

type searchPayload struct {
	UserID          string          `json:"userId"`
	PageSize        int             `json:"pageSize"`
	PageToken       string          `json:"pageToken"`
	SearchSessionID string          `json:"searchSessionId"`
	IndexRouting    string          `json:"indexRouting"`
	ThumbnailTypes  []string        `json:"thumbnailTypes"`
	SearchCondition searchCondition `json:"searchCondition"`
	DefaultDatasets []string        `json:"defaultDatasets"`
	ServiceFrom     string          `json:"serviceFrom"`
}

type searchCondition struct {
	Keyword          string   `json:"keyword"`
	Sort             string   `json:"sort"`
	Order            string   `json:"order"`
	Status           []string `json:"status"`
	SizeID           []int    `json:"sizeId"`
	CategoryID       []int    `json:"categoryId"`
	BrandID          []int    `json:"brandId"`
	SellerID         []string `json:"sellerId"`
	PriceMin         int      `json:"priceMin"`
	PriceMax         int      `json:"priceMax"`
	ItemConditionID  []int    `json:"itemConditionId"`
	ShippingPayerID  []int    `json:"shippingPayerId"`
	ShippingFromArea []int    `json:"shippingFromArea"`
	ShippingMethod   []string `json:"shippingMethod"`
	ColorID          []int    `json:"colorId"`
	HasCoupon        bool     `json:"hasCoupon"`
	Attributes       []string `json:"attributes"`
	ItemTypes        []string `json:"itemTypes"`
	SkuIDs           []string `json:"skuIds"`
	ExcludeKeyword   string   `json:"excludeKeyword"`
}

const searchPageSize = 120

// payload builds the request body the web app sends for c. Every list is
// non-nil so it encodes as [] rather than null.
func (c SearchConditions) payload(pageToken string) searchPayload {
	status := make([]string, 0, len(c.Status)+1)
	soldOut := false
	for _, s := range c.Status {
		status = append(status, string(s))
		soldOut = soldOut || s == StatusSoldOut
	}
	if soldOut {
		status = append(status, string(statusTrading))
	}

	methods := make([]string, 0, len(c.ShippingMethods))
	for _, m := range c.ShippingMethods {
		methods = append(methods, string(m))
	}

	by, order := c.sorting()
	return searchPayload{
		UserID:          "",
		PageSize:        searchPageSize,
		PageToken:       pageToken,
		SearchSessionID: hexUUID(),
		IndexRouting:    "INDEX_ROUTING_UNSPECIFIED",
		ThumbnailTypes:  []string{},
		SearchCondition: searchCondition{
			Keyword:          c.Query,
			Sort:             string(by),
			Order:            string(order),
			Status:           status,
			SizeID:           ints(c.Sizes),
			CategoryID:       ints(c.Categories),
			BrandID:          ints(c.Brands),
			SellerID:         []string{},
			PriceMin:         c.PriceMin,
			PriceMax:         c.PriceMax,
			ItemConditionID:  ints(c.ItemConditions),
			ShippingPayerID:  ints(c.ShippingPayer),
			ShippingFromArea: []int{},
			ShippingMethod:   methods,
			ColorID:          ints(c.Colors),
			HasCoupon:        false,
			Attributes:       []string{},
			ItemTypes:        []string{},
			SkuIDs:           []string{},
			ExcludeKeyword:   c.Exclude,
		},
		DefaultDatasets: []string{},
		ServiceFrom:     "suruga",
	}
}

func ints(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func hexUUID() string {
	u := uuid.New()
	return fmt.Sprintf("%x", u[:])
}

// NoPriceSentinel is the price the API reports for listings without a real
// price.
const NoPriceSentinel = 9999999

// SearchResultItem is one search hit.
type SearchResultItem struct {
	ID       string
	Name     string
	Price    int
	SellerID string
	Status   string
	Created  time.Time
	Updated  time.Time

	Thumbnails      []string
	ItemType        *string
	ItemConditionID *int
	ShippingPayerID *int
	IsNoPrice       *bool

	client *Client
}

// RealPrice returns nil for listings flagged as having no price and carrying
// the sentinel, the listed price otherwise.
func (it *SearchResultItem) RealPrice() *int {
	if it.IsNoPrice != nil && *it.IsNoPrice && it.Price == NoPriceSentinel {
		return nil
	}
	p := it.Price
	return &p
}

// Fields implements Record.
func (it *SearchResultItem) Fields() map[string]any {
	if it == nil {
		return nil
	}
	return map[string]any{
		"id":                it.ID,
		"name":              it.Name,
		"price":             it.Price,
		"seller_id":         it.SellerID,
		"status":            it.Status,
		"created":           it.Created.UTC(),
		"updated":           it.Updated.UTC(),
		"thumbnails":        stringList(it.Thumbnails),
		"item_type":         deref(it.ItemType),
		"item_condition_id": deref(it.ItemConditionID),
		"shipping_payer_id": deref(it.ShippingPayerID),
		"is_no_price":       deref(it.IsNoPrice),
	}
}

// FullItem fetches the full listing behind this hit.
func (it *SearchResultItem) FullItem(ctx context.Context) (*Item, error) {
	if it.client == nil {
		return nil, ErrDetached
	}
	return it.client.Item(ctx, it.ID)
}

// Seller fetches the profile of the seller of this hit.
func (it *SearchResultItem) Seller(ctx context.Context) (*Profile, error) {
	if it.client == nil {
		return nil, ErrDetached
	}
	return it.client.Profile(ctx, it.SellerID)
}

// SearchMeta carries the page tokens and hit count of a search page.
type SearchMeta struct {
	NextPageToken string
	PrevPageToken string
	NumFound      int
}

// Fields returns nil for a nil meta.
func (m *SearchMeta) Fields() map[string]any {
	if m == nil {
		return nil
	}
	return map[string]any{
		"next_page_token": m.NextPageToken,
		"prev_page_token": m.PrevPageToken,
		"num_found":       m.NumFound,
	}
}

// SearchResults is one page of search hits.
type SearchResults struct {
	Meta  *SearchMeta
	Items []*SearchResultItem

	client     *Client
	conditions SearchConditions
}

// Fields implements Record.
func (r *SearchResults) Fields() map[string]any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"meta":  nested(r.Meta),
		"items": nestedList(r.Items),
	}
}

// Conditions returns the conditions this page was searched with.
func (r *SearchResults) Conditions() SearchConditions { return r.conditions }

// NextPage fetches the following page with the same conditions. It fails
// with ErrIncorrectRequest, without sending a request, on the last page.
func (r *SearchResults) NextPage(ctx context.Context) (*SearchResults, error) {
	if r.Meta == nil || r.Meta.NextPageToken == "" {
		return nil, fmt.Errorf("%w: cannot fetch next page of search results, this is probably the last page", ErrIncorrectRequest)
	}
	return r.page(ctx, r.Meta.NextPageToken)
}

// PrevPage fetches the preceding page with the same conditions. It fails
// with ErrIncorrectRequest, without sending a request, on the first page.
func (r *SearchResults) PrevPage(ctx context.Context) (*SearchResults, error) {
	if r.Meta == nil || r.Meta.PrevPageToken == "" {
		return nil, fmt.Errorf("%w: cannot fetch previous page of search results, this is probably the first page", ErrIncorrectRequest)
	}
	return r.page(ctx, r.Meta.PrevPageToken)
}

func (r *SearchResults) page(ctx context.Context, token string) (*SearchResults, error) {
	if r.client == nil {
		return nil, ErrDetached
	}
	return r.client.SearchPage(ctx, r.conditions, token)
}
