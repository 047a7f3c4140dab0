package storefront

import (
	"context"
	"fmt"

	"github.com/mirrorops/storesync-worker/internal/models"
	"github.com/mirrorops/storesync-worker/internal/service"
)

const discountsQuery = `
query Discounts($first: Int!, $after: String, $updatedAfter: DateTime) {
  discounts(first: $first, after: $after, updatedAfter: $updatedAfter) {
    pageInfo { hasNextPage endCursor }
    nodes {
      id
      title
      valueType
      value
      targetType
      startsAt
      endsAt
      usageLimit
      updatedAt
      codes { id code usageCount }
    }
  }
}`

type discountNode struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	ValueType  string  `json:"valueType"`
	Value      float64 `json:"value"`
	TargetType string  `json:"targetType"`
	StartsAt   string  `json:"startsAt"`
	EndsAt     *string `json:"endsAt"`
	UsageLimit *int    `json:"usageLimit"`
	UpdatedAt  string  `json:"updatedAt"`
	Codes      []struct {
		ID         string `json:"id"`
		Code       string `json:"code"`
		UsageCount int    `json:"usageCount"`
	} `json:"codes"`
}

type discountsData struct {
	Discounts struct {
		PageInfo pageInfo       `json:"pageInfo"`
		Nodes    []discountNode `json:"nodes"`
	} `json:"discounts"`
}

// FetchDiscounts fetches one page of promotional rules for a shop
func (c *Client) FetchDiscounts(ctx context.Context, shop *models.Shop, filter service.FeedFilter, cursor string, pageSize int) (*service.FeedPage[models.Discount], error) {
	var data discountsData
	if err := c.execute(ctx, shop, discountsQuery, buildVariables(filter, cursor, pageSize), &data); err != nil {
		return nil, fmt.Errorf("failed to fetch discounts: %w", err)
	}

	items := make([]models.Discount, 0, len(data.Discounts.Nodes))
	for _, node := range data.Discounts.Nodes {
		discount, err := mapDiscount(shop.ID, node)
		if err != nil {
			return nil, err
		}
		items = append(items, discount)
	}

	return &service.FeedPage[models.Discount]{
		Items:      items,
		NextCursor: data.Discounts.PageInfo.EndCursor,
		HasMore:    data.Discounts.PageInfo.HasNextPage,
	}, nil
}

func mapDiscount(shopID string, node discountNode) (models.Discount, error) {
	updatedAt, err := parseTime(node.UpdatedAt)
	if err != nil {
		return models.Discount{}, fmt.Errorf("discount %s: %w", node.ID, err)
	}
	startsAt, err := parseTime(node.StartsAt)
	if err != nil {
		return models.Discount{}, fmt.Errorf("discount %s: %w", node.ID, err)
	}
	endsAt, err := parseTimePtr(node.EndsAt)
	if err != nil {
		return models.Discount{}, fmt.Errorf("discount %s: %w", node.ID, err)
	}

	discount := models.Discount{
		ID:         node.ID,
		ShopID:     shopID,
		Title:      node.Title,
		ValueType:  node.ValueType,
		Value:      node.Value,
		TargetType: node.TargetType,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
		UsageLimit: node.UsageLimit,
		UpdatedAt:  updatedAt,
	}

	for _, c := range node.Codes {
		discount.Codes = append(discount.Codes, models.DiscountCode{
			ID:         c.ID,
			ShopID:     shopID,
			DiscountID: node.ID,
			Code:       c.Code,
			UsageCount: c.UsageCount,
		})
	}

	return discount, nil
}
