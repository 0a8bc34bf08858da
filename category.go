package mercapi

// ItemCategory is a node of the category tree. Children are categories of
// the same shape, to any depth.
type ItemCategory struct {
	ID   int
	Name string

	TabOrder           *int
	DisplayOrder       *int
	ParentCategoryID   *int
	ParentCategoryName *string
	RootCategoryID     *int
	RootCategoryName   *string
	SizeGroupID        *int
	BrandGroupID       *int
	Children           []*ItemCategory
}

// Fields implements Record.
func (c *ItemCategory) Fields() map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"id":                   c.ID,
		"name":                 c.Name,
		"tab_order":            deref(c.TabOrder),
		"display_order":        deref(c.DisplayOrder),
		"parent_category_id":   deref(c.ParentCategoryID),
		"parent_category_name": deref(c.ParentCategoryName),
		"root_category_id":     deref(c.RootCategoryID),
		"root_category_name":   deref(c.RootCategoryName),
		"size_group_id":        deref(c.SizeGroupID),
		"brand_group_id":       deref(c.BrandGroupID),
		"children":             nestedList(c.Children),
	}
}

// Depth returns the number of category levels rooted at c, counting c.
func (c *ItemCategory) Depth() int {
	if c == nil {
		return 0
	}
	d := 0
	for _, ch := range c.Children {
		d = max(d, ch.Depth())
	}
	return d + 1
}

// ItemCategorySummary is the flat category reference carried by an Item.
type ItemCategorySummary struct {
	ID   int
	Name string

	DisplayOrder       *int
	ParentCategoryID   *int
	ParentCategoryName *string
	RootCategoryID     *int
	RootCategoryName   *string
}

// Fields implements Record.
func (c *ItemCategorySummary) Fields() map[string]any {
	if c == nil {
		return nil
	}
	return map[string]any{
		"id":                   c.ID,
		"name":                 c.Name,
		"display_order":        deref(c.DisplayOrder),
		"parent_category_id":   deref(c.ParentCategoryID),
		"parent_category_name": deref(c.ParentCategoryName),
		"root_category_id":     deref(c.RootCategoryID),
		"root_category_name":   deref(c.RootCategoryName),
	}
}
