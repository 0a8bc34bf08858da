package mercapitest

import "strconv"

// ItemFixture returns a complete "data" object of the item endpoint.
func ItemFixture(id, sellerID string) map[string]any {
	return map[string]any{
		"id":     id,
		"status": "on_sale",
		"name":   "DJ Sharpnel 完全網羅は無理でしたMix",
		"price":  4800,
		"seller": map[string]any{
			"id":                  mustAtoi(sellerID),
			"name":                "nananao",
			"photo_url":           "https://static.mercdn.net/images/member_photo_noimage.png",
			"photo_thumbnail_url": "https://static.mercdn.net/images/member_photo_noimage_thumb.png",
			"created":             1521901729,
			"num_sell_items":      578,
			"ratings":             map[string]any{"good": 1049, "normal": 3, "bad": 0},
			"num_ratings":         1052,
			"score":               1049,
			"is_official":         false,
			"quick_shipper":       true,
			"star_rating_score":   5,
		},
		"description": "CD",
		"photos":      []any{"https://static.mercdn.net/item/detail/orig/photos/" + id + "_1.jpg"},
		"thumbnails":  []any{"https://static.mercdn.net/c!/w=240/thumb/photos/" + id + "_1.jpg"},
		"item_category": map[string]any{
			"id":                   75,
			"name":                 "CD",
			"display_order":        2,
			"parent_category_id":   72,
			"parent_category_name": "本・音楽・ゲーム",
			"root_category_id":     5,
			"root_category_name":   "本・音楽・ゲーム",
		},
		"item_condition":     map[string]any{"id": 3, "name": "目立った傷や汚れなし"},
		"colors":             []any{map[string]any{"id": 1, "name": "ホワイト", "rgb": 16777215}},
		"shipping_payer":     map[string]any{"id": 2, "name": "送料込み(出品者負担)", "code": "seller"},
		"shipping_method":    map[string]any{"id": 14, "name": "らくらくメルカリ便", "is_deprecated": "false"},
		"shipping_from_area": map[string]any{"id": 20, "name": "長野県"},
		"shipping_duration":  map[string]any{"id": 3, "name": "4~7日で発送", "min_days": 4, "max_days": 7},
		"shipping_class": map[string]any{
			"id": 0, "fee": 0, "icon_id": 0, "pickup_fee": 0, "shipping_fee": 0, "total_fee": 0, "is_pickup": false,
		},
		"num_likes":    3,
		"num_comments": 1,
		"comments": []any{map[string]any{
			"id":      int64(8871234567890123456),
			"message": "購入可能ですか？",
			"created": 1652800000,
			"user":    map[string]any{"id": 12345, "name": "buyer"},
		}},
		"updated":  1661206795,
		"created":  1652715351,
		"pager_id": 1234567890,
		"liked":    false,
		"checksum": "abcdef",
	}
}

// ProfileFixture returns a complete "data" object of the profile endpoint.
func ProfileFixture(id string) map[string]any {
	return map[string]any{
		"id":                        mustAtoi(id),
		"name":                      "nananao",
		"photo_url":                 "https://static.mercdn.net/images/member_photo_noimage.png",
		"photo_thumbnail_url":       "https://static.mercdn.net/images/member_photo_noimage_thumb.png",
		"register_sms_confirmation": "yes",
		"ratings":                   map[string]any{"good": 1049, "normal": 3, "bad": 0},
		"polarized_ratings":         map[string]any{"good": 1052, "bad": 0},
		"num_ratings":               1052,
		"star_rating_score":         5,
		"is_followable":             true,
		"is_blocked":                false,
		"following_count":           0,
		"follower_count":            10,
		"score":                     1049,
		"created":                   1521901729,
		"proper":                    true,
		"introduction":              "よろしくお願い致します。",
		"is_official":               false,
		"num_sell_items":            578,
		"num_ticket":                0,
		"bounce_mail_flag":          "no",
		"current_point":             0,
		"current_sales":             0,
		"is_organizational_user":    false,
	}
}

// SellerItemFixture returns one entry of the seller listings endpoint.
func SellerItemFixture(id, sellerID string) map[string]any {
	return map[string]any{
		"id":               id,
		"seller":           map[string]any{"id": mustAtoi(sellerID)},
		"status":           "on_sale",
		"name":             "Reminiscences しんたろーアートワークス 画集 イラスト",
		"price":            1600,
		"thumbnails":       []any{"https://static.mercdn.net/c!/w=240/thumb/photos/" + id + "_1.jpg"},
		"root_category_id": 5,
		"num_likes":        0,
		"num_comments":     0,
		"created":          1663161407,
		"updated":          1663161407,
		"item_category": map[string]any{
			"id":                   677,
			"name":                 "アート/エンタメ",
			"parent_category_id":   72,
			"parent_category_name": "本",
			"root_category_id":     5,
			"root_category_name":   "本・音楽・ゲーム",
		},
		"shipping_from_area": map[string]any{"id": 20, "name": "長野県"},
	}
}

// SearchItemFixture returns one search hit. Like the real endpoint, price,
// timestamps and ids are strings.
func SearchItemFixture(id, sellerID string, price int) map[string]any {
	return map[string]any{
		"id":              id,
		"sellerId":        sellerID,
		"status":          "ITEM_STATUS_ON_SALE",
		"name":            "DJ Sharpnel 完全網羅は無理でしたMix",
		"price":           strconv.Itoa(price),
		"created":         "1652715351",
		"updated":         "1661206795",
		"thumbnails":      []any{"https://static.mercdn.net/c!/w=240,f=webp/thumb/photos/" + id + "_1.jpg"},
		"itemType":        "ITEM_TYPE_MERCARI",
		"itemConditionId": "3",
		"shippingPayerId": "2",
		"isNoPrice":       false,
	}
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic("mercapitest: numeric id required, got " + s)
	}
	return n
}
