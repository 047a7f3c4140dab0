package storefront

import (
	"context"
	"fmt"

	"github.com/mirrorops/storesync-worker/internal/models"
	"github.com/mirrorops/storesync-worker/internal/service"
)

const ordersQuery = `
query Orders($first: Int!, $after: String, $updatedAfter: DateTime) {
  orders(first: $first, after: $after, updatedAfter: $updatedAfter) {
    pageInfo { hasNextPage endCursor }
    nodes {
      id
      name
      email
      financialStatus
      fulfillmentStatus
      currency
      totalPrice
      processedAt
      cancelledAt
      updatedAt
      lineItems { id title sku quantity price }
    }
  }
}`

type orderNode struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	FinancialStatus   string  `json:"financialStatus"`
	FulfillmentStatus string  `json:"fulfillmentStatus"`
	Currency          string  `json:"currency"`
	TotalPrice        float64 `json:"totalPrice"`
	ProcessedAt       string  `json:"processedAt"`
	CancelledAt       *string `json:"cancelledAt"`
	UpdatedAt         string  `json:"updatedAt"`
	LineItems         []struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		SKU      string  `json:"sku"`
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
	} `json:"lineItems"`
}

type ordersData struct {
	Orders struct {
		PageInfo pageInfo    `json:"pageInfo"`
		Nodes    []orderNode `json:"nodes"`
	} `json:"orders"`
}

// FetchOrders fetches one page of orders for a shop
func (c *Client) FetchOrders(ctx context.Context, shop *models.Shop, filter service.FeedFilter, cursor string, pageSize int) (*service.FeedPage[models.Order], error) {
	var data ordersData
	if err := c.execute(ctx, shop, ordersQuery, buildVariables(filter, cursor, pageSize), &data); err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	items := make([]models.Order, 0, len(data.Orders.Nodes))
	for _, node := range data.Orders.Nodes {
		order, err := mapOrder(shop.ID, node)
		if err != nil {
			return nil, err
		}
		items = append(items, order)
	}

	return &service.FeedPage[models.Order]{
		Items:      items,
		NextCursor: data.Orders.PageInfo.EndCursor,
		HasMore:    data.Orders.PageInfo.HasNextPage,
	}, nil
}

func mapOrder(shopID string, node orderNode) (models.Order, error) {
	updatedAt, err := parseTime(node.UpdatedAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: %w", node.ID, err)
	}
	processedAt, err := parseTime(node.ProcessedAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: %w", node.ID, err)
	}
	cancelledAt, err := parseTimePtr(node.CancelledAt)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %s: %w", node.ID, err)
	}

	order := models.Order{
		ID:                node.ID,
		ShopID:            shopID,
		Name:              node.Name,
		Email:             node.Email,
		FinancialStatus:   node.FinancialStatus,
		FulfillmentStatus: node.FulfillmentStatus,
		Currency:          node.Currency,
		TotalPrice:        node.TotalPrice,
		ProcessedAt:       processedAt,
		CancelledAt:       cancelledAt,
		UpdatedAt:         updatedAt,
	}

	for _, li := range node.LineItems {
		order.LineItems = append(order.LineItems, models.OrderLineItem{
			ID:       li.ID,
			ShopID:   shopID,
			OrderID:  node.ID,
			Title:    li.Title,
			SKU:      li.SKU,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}

	return order, nil
}
